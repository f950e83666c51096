package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/agent-recall/internal/vector"
)

func init() {
	defaults := vector.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find records similar in meaning to the query",
		Long:  "Rank the profile's records by TF-IDF cosine similarity, optionally weighted toward recent records.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSemSearch,
	}

	cmd.Flags().IntP("limit", "l", defaults.Limit, "Max results")
	cmd.Flags().Float64("threshold", defaults.Threshold, "Minimum score")
	cmd.Flags().Bool("no-recency", false, "Disable the recency boost")

	semCmd.AddCommand(cmd)
}

func runSemSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	noRecency, _ := cmd.Flags().GetBool("no-recency")

	e := openEnv(cmd)
	defer e.close()
	svc := e.semantic(cmd.Context())
	defer svc.Close()

	matches, err := svc.FindSimilar(cmd.Context(), profileID, strings.Join(args, " "), vector.Options{
		Limit:       limit,
		Threshold:   threshold,
		BoostRecent: !noRecency,
	})
	if err != nil {
		exitErr("search", err)
	}

	printOut(cmd, matches, func(w io.Writer) {
		for _, m := range matches {
			fmt.Fprintf(w, "%.3f  ", m.Score)
			printRecord(w, m.Record)
		}
	})
}
