package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/agent-recall/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import semantic records from JSON",
		Long: `Import semantic records from JSON (file or stdin). Expects the format produced by export.
Vectors are rebuilt against the current corpus. With --into, records are moved to that profile.`,
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	cmd.Flags().String("into", "", "Target profile for every record")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	into, _ := cmd.Flags().GetString("into")

	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open file", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		exitErr("read input", err)
	}

	var records []model.SemanticRecord
	if err := json.Unmarshal(data, &records); err != nil {
		exitErr("parse json", err)
	}

	e := openEnv(cmd)
	defer e.close()
	svc := e.semantic(cmd.Context())
	defer svc.Close()

	res, err := svc.Import(cmd.Context(), into, records)
	if err != nil {
		exitErr("import", err)
	}
	printOut(cmd, res, nil)
}
