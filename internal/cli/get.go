package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Retrieve a record",
		Args:  cobra.ExactArgs(1),
		Run:   runSemGet,
	}

	semCmd.AddCommand(cmd)
}

func runSemGet(cmd *cobra.Command, args []string) {
	e := openEnv(cmd)
	defer e.close()
	svc := e.semantic(cmd.Context())
	defer svc.Close()

	rec, err := svc.Get(cmd.Context(), profileID, args[0])
	if err != nil {
		exitErr("get", err)
	}
	printOut(cmd, rec, func(w io.Writer) { printRecord(w, *rec) })
}
