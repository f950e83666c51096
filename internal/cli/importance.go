package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/agent-recall/internal/model"
	"github.com/rcliao/agent-recall/internal/semantic"
)

func init() {
	boostCmd := &cobra.Command{
		Use:   "boost <id>",
		Short: "Raise a record's importance (max 5.0)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runAdjust(cmd, args[0], (*semantic.Service).Boost)
		},
	}
	diminishCmd := &cobra.Command{
		Use:   "diminish <id>",
		Short: "Lower a record's importance (min 0.1)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runAdjust(cmd, args[0], (*semantic.Service).Diminish)
		},
	}

	for _, c := range []*cobra.Command{boostCmd, diminishCmd} {
		c.Flags().Float64("step", semantic.DefaultImportanceStep, "Amount to adjust by")
		semCmd.AddCommand(c)
	}
}

type adjustFunc func(*semantic.Service, context.Context, string, string, float64) (*model.SemanticRecord, error)

func runAdjust(cmd *cobra.Command, id string, adjust adjustFunc) {
	step, _ := cmd.Flags().GetFloat64("step")

	e := openEnv(cmd)
	defer e.close()
	svc := e.semantic(cmd.Context())
	defer svc.Close()

	rec, err := adjust(svc, cmd.Context(), profileID, id, step)
	if err != nil {
		exitErr(cmd.Name(), err)
	}
	printOut(cmd, rec, func(w io.Writer) { fmt.Fprintf(w, "%s importance=%.1f\n", rec.ID, rec.Importance) })
}
