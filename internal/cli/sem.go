package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/agent-recall/internal/chunker"
	"github.com/rcliao/agent-recall/internal/model"
)

var semCmd = &cobra.Command{
	Use:   "sem",
	Short: "Semantic memory: records retrieved by meaning",
}

func init() {
	putCmd := &cobra.Command{
		Use:   "put [content]",
		Short: "Store a record",
		Long:  "Store a record. Content can be a positional arg or piped via stdin.",
		Run:   runSemPut,
	}
	putCmd.Flags().Float64("importance", model.DefaultImportance, "Importance, 0.1 to 5.0")
	putCmd.Flags().Bool("chunk", false, "Split long content into passages stored as separate records")
	putCmd.Flags().Int("chunk-size", chunker.DefaultMaxBytes, "Maximum passage size in bytes")

	semCmd.AddCommand(putCmd)
	RootCmd.AddCommand(semCmd)
}

func runSemPut(cmd *cobra.Command, args []string) {
	importance, _ := cmd.Flags().GetFloat64("importance")
	chunk, _ := cmd.Flags().GetBool("chunk")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")

	e := openEnv(cmd)
	defer e.close()
	svc := e.semantic(cmd.Context())
	defer svc.Close()

	content := readContent(args)
	if chunk {
		opts := chunker.Options{TargetBytes: chunkSize * 2 / 3, MaxBytes: chunkSize}
		recs, err := svc.StorePassages(cmd.Context(), profileID, content, importance, opts)
		if err != nil {
			exitErr("put", err)
		}
		printOut(cmd, recs, func(w io.Writer) {
			for _, rec := range recs {
				fmt.Fprintln(w, rec.ID)
			}
		})
		return
	}

	rec, err := svc.Store(cmd.Context(), profileID, content, importance)
	if err != nil {
		exitErr("put", err)
	}
	printOut(cmd, rec, func(w io.Writer) { fmt.Fprintln(w, rec.ID) })
}

func printRecord(w io.Writer, rec model.SemanticRecord) {
	fmt.Fprintf(w, "%s  %s  importance=%.1f\n  %s\n", rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Importance, rec.Content)
}
