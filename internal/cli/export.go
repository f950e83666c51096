package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export semantic records as JSON",
		Long:  "Export semantic records as a JSON array. Use --all for every profile.",
		Run:   runExport,
	}

	cmd.Flags().Bool("all", false, "Export every profile")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	all, _ := cmd.Flags().GetBool("all")
	scope := profileID
	if all {
		scope = ""
	}

	e := openEnv(cmd)
	defer e.close()
	svc := e.semantic(cmd.Context())
	defer svc.Close()

	records, err := svc.Export(cmd.Context(), scope)
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(records, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
