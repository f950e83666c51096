package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}
	RootCmd.AddCommand(cmd)

	semStatsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record count, distinct terms and mean importance",
		Run:   runSemStats,
	}
	clearCacheCmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Drop cached IDF values",
		Run:   runSemClearCache,
	}
	semCmd.AddCommand(semStatsCmd, clearCacheCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	e := openEnv(cmd)
	defer e.close()

	stats, err := e.store.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}
	printOut(cmd, stats, func(w io.Writer) {
		fmt.Fprintf(w, "db: %s (%d bytes)\nworking items: %d\nsemantic records: %d\ndistinct terms: %d\n",
			stats.DBPath, stats.DBSizeBytes, stats.WorkingItems, stats.SemanticRecords, stats.DistinctTerms)
		for _, p := range stats.Profiles {
			fmt.Fprintf(w, "  %s: %d working, %d semantic\n", p.ProfileID, p.WorkingItems, p.SemanticRecords)
		}
	})
}

func runSemStats(cmd *cobra.Command, args []string) {
	e := openEnv(cmd)
	defer e.close()
	svc := e.semantic(cmd.Context())
	defer svc.Close()

	st, err := svc.Stats(cmd.Context(), profileID)
	if err != nil {
		exitErr("stats", err)
	}
	printOut(cmd, st, func(w io.Writer) {
		fmt.Fprintf(w, "records: %d\ndistinct terms: %d\naverage importance: %.2f\n",
			st.Records, st.DistinctTerms, st.AverageImportance)
	})
}

func runSemClearCache(cmd *cobra.Command, args []string) {
	e := openEnv(cmd)
	defer e.close()
	svc := e.semantic(cmd.Context())
	defer svc.Close()

	svc.ClearIDFCache()
	fmt.Fprintln(cmd.OutOrStdout(), `{"ok":true}`)
}
