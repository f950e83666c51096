package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the working memory as numbered lines",
		Run:   runWMShow,
	}

	contextCmd := &cobra.Command{
		Use:   "context",
		Short: "Print as many leading lines as fit a byte budget",
		Long:  "Print working memory for injection into an LLM prompt. Whole lines only, in order, within --max bytes.",
		Run:   runWMContext,
	}
	contextCmd.Flags().Int("max", 2000, "Maximum bytes")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Case-sensitive substring search over items",
		Args:  cobra.ExactArgs(1),
		Run:   runWMSearch,
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage against the memory limit",
		Run:   runWMStats,
	}
	addMemoryFlags(statsCmd)

	wmCmd.AddCommand(showCmd, contextCmd, searchCmd, statsCmd)
}

func runWMShow(cmd *cobra.Command, args []string) {
	e := openEnv(cmd)
	defer e.close()

	svc := e.working()
	items, err := svc.Items(cmd.Context(), profileID)
	if err != nil {
		exitErr("show", err)
	}
	text, err := svc.Formatted(cmd.Context(), profileID)
	if err != nil {
		exitErr("show", err)
	}
	printOut(cmd, items, func(w io.Writer) {
		if text != "" {
			fmt.Fprintln(w, text)
		}
	})
}

func runWMContext(cmd *cobra.Command, args []string) {
	maxLen, _ := cmd.Flags().GetInt("max")

	e := openEnv(cmd)
	defer e.close()

	text, err := e.working().ForContext(cmd.Context(), profileID, maxLen)
	if err != nil {
		exitErr("context", err)
	}
	out := map[string]any{"profile_id": profileID, "max": maxLen, "length": len(text), "context": text}
	printOut(cmd, out, func(w io.Writer) {
		if text != "" {
			fmt.Fprintln(w, text)
		}
	})
}

func runWMSearch(cmd *cobra.Command, args []string) {
	e := openEnv(cmd)
	defer e.close()

	printResult(cmd, e.working().Search(cmd.Context(), profileID, args[0]))
}

func runWMStats(cmd *cobra.Command, args []string) {
	e := openEnv(cmd)
	defer e.close()

	st, err := e.working().Stats(cmd.Context(), profileID, e.mem)
	if err != nil {
		exitErr("stats", err)
	}
	printOut(cmd, st, func(w io.Writer) {
		fmt.Fprintf(w, "items: %d\nlength: %d/%d bytes (%.1f%%)\nstrategy: %s (auto cleanup: %t)\n",
			st.Items, st.Length, st.Limit, st.UsagePercent, st.Strategy, st.AutoCleanup)
	})
}
