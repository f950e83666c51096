package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

var wmCmd = &cobra.Command{
	Use:   "wm",
	Short: "Working memory: a numbered list kept under a byte limit",
}

func init() {
	addCmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Append an item, resolving overflow by the configured strategy",
		Long:  "Append an item. Content can be a positional arg or piped via stdin.",
		Run:   runWMAdd,
	}
	addMemoryFlags(addCmd)

	replaceCmd := &cobra.Command{
		Use:   "replace [content]",
		Short: "Discard all items and store content as item 1",
		Run:   runWMReplace,
	}
	addMemoryFlags(replaceCmd)

	rmCmd := &cobra.Command{
		Use:   "rm <n>",
		Short: "Delete item n (1-indexed); later items are renumbered",
		Args:  cobra.ExactArgs(1),
		Run:   runWMRm,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every item",
		Run:   runWMClear,
	}

	wmCmd.AddCommand(addCmd, replaceCmd, rmCmd, clearCmd)
	RootCmd.AddCommand(wmCmd)
}

func runWMAdd(cmd *cobra.Command, args []string) {
	e := openEnv(cmd)
	defer e.close()

	res := e.working().Add(cmd.Context(), profileID, readContent(args), e.mem)
	printResult(cmd, res)
}

func runWMReplace(cmd *cobra.Command, args []string) {
	e := openEnv(cmd)
	defer e.close()

	res := e.working().Replace(cmd.Context(), profileID, readContent(args), e.mem)
	printResult(cmd, res)
}

func runWMRm(cmd *cobra.Command, args []string) {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		exitErr("rm", fmt.Errorf("item number must be an integer: %q", args[0]))
	}

	e := openEnv(cmd)
	defer e.close()

	printResult(cmd, e.working().Delete(cmd.Context(), profileID, n))
}

func runWMClear(cmd *cobra.Command, args []string) {
	e := openEnv(cmd)
	defer e.close()

	res := e.working().Clear(cmd.Context(), profileID)
	printOut(cmd, res, func(w io.Writer) { fmt.Fprintln(w, res.Message) })
}
