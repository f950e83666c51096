package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		Run:   runSemList,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results (0 for all)")

	semCmd.AddCommand(cmd)
}

func runSemList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	e := openEnv(cmd)
	defer e.close()
	svc := e.semantic(cmd.Context())
	defer svc.Close()

	recs, err := svc.List(cmd.Context(), profileID, limit)
	if err != nil {
		exitErr("list", err)
	}
	printOut(cmd, recs, func(w io.Writer) {
		for _, rec := range recs {
			printRecord(w, rec)
		}
	})
}
