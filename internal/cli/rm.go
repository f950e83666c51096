package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		Run:   runSemRm,
	}

	semCmd.AddCommand(cmd)
}

func runSemRm(cmd *cobra.Command, args []string) {
	e := openEnv(cmd)
	defer e.close()
	svc := e.semantic(cmd.Context())
	defer svc.Close()

	if err := svc.Delete(cmd.Context(), profileID, args[0]); err != nil {
		exitErr("rm", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"profile_id":%q,"id":%q}`+"\n", profileID, args[0])
}
