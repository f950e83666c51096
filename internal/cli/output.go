package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/agent-recall/internal/working"
)

// printOut writes v in the selected format. text is used for --format text;
// when nil, text falls back to JSON.
func printOut(cmd *cobra.Command, v any, text func(w io.Writer)) {
	w := cmd.OutOrStdout()
	switch formatFlag {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			exitErr("encode yaml", err)
		}
		enc.Close()
	case "text":
		if text != nil {
			text(w)
			return
		}
		fallthrough
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			exitErr("encode json", err)
		}
		fmt.Fprintln(w, string(b))
	}
}

// printResult prints a working memory result and exits non-zero on failure.
func printResult(cmd *cobra.Command, res working.Result) {
	printOut(cmd, res, func(w io.Writer) {
		fmt.Fprintln(w, res.Message)
		for _, it := range res.Items {
			fmt.Fprintf(w, "%d. %s\n", it.Position, it.Content)
		}
	})
	if !res.Success {
		os.Exit(1)
	}
}

// readContent joins args, or reads piped stdin when there are none.
func readContent(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		return strings.TrimSpace(string(b))
	}
	return ""
}

// addMemoryFlags registers per-call overrides of the memory config.
func addMemoryFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", 0, "Memory limit in bytes (default from config, 2000)")
	cmd.Flags().String("strategy", "", "Cleanup strategy: truncate_old, truncate_new, reject, compress")
	cmd.Flags().Bool("no-cleanup", false, "Fail instead of resolving overflow")
}

func applyMemoryFlags(cmd *cobra.Command, raw map[string]any) {
	flags := cmd.Flags()
	if flags.Lookup("limit") == nil {
		return
	}
	if flags.Changed("limit") {
		raw["memory_limit"], _ = flags.GetInt("limit")
	}
	if flags.Changed("strategy") {
		raw["cleanup_strategy"], _ = flags.GetString("strategy")
	}
	if flags.Changed("no-cleanup") {
		noCleanup, _ := flags.GetBool("no-cleanup")
		raw["auto_cleanup"] = !noCleanup
	}
}
