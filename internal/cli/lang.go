package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/agent-recall/internal/lang"
)

func init() {
	langCmd := &cobra.Command{
		Use:   "lang",
		Short: "Inspect language detection and tokenization",
	}

	detectCmd := &cobra.Command{
		Use:   "detect <text>",
		Short: "Detect the language of text",
		Args:  cobra.MinimumNArgs(1),
		Run:   runLangDetect,
	}

	tokenizeCmd := &cobra.Command{
		Use:   "tokenize <text>",
		Short: "Show the stemmed tokens used for vectors",
		Args:  cobra.MinimumNArgs(1),
		Run:   runLangTokenize,
	}
	tokenizeCmd.Flags().String("lang", "", "Language code (default: detect)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered languages",
		Run:   runLangList,
	}

	langCmd.AddCommand(detectCmd, tokenizeCmd, listCmd)
	RootCmd.AddCommand(langCmd)
}

// registry builds the configured language registry.
func registry(cmd *cobra.Command) *lang.Registry {
	e := openEnv(cmd)
	defer e.close()
	return e.languages(cmd.Context()).Current()
}

func runLangDetect(cmd *cobra.Command, args []string) {
	text := strings.Join(args, " ")
	r := registry(cmd)

	out := map[string]any{
		"language":       r.Detect(text),
		"cyrillic_ratio": lang.CyrillicRatio(text),
	}
	printOut(cmd, out, func(w io.Writer) { fmt.Fprintln(w, out["language"]) })
}

func runLangTokenize(cmd *cobra.Command, args []string) {
	code, _ := cmd.Flags().GetString("lang")
	text := strings.Join(args, " ")
	r := registry(cmd)

	if code == "" {
		code = r.Detect(text)
	}
	tokens := r.Tokenize(text, code)
	out := map[string]any{"language": code, "tokens": tokens}
	printOut(cmd, out, func(w io.Writer) { fmt.Fprintln(w, strings.Join(tokens, " ")) })
}

func runLangList(cmd *cobra.Command, args []string) {
	r := registry(cmd)

	type entry struct {
		Code      string `json:"code" yaml:"code"`
		Name      string `json:"name" yaml:"name"`
		StopWords int    `json:"stop_words" yaml:"stop_words"`
		Endings   int    `json:"endings" yaml:"endings"`
	}
	var out []entry
	for _, code := range r.Codes() {
		l, _ := r.Lookup(code)
		out = append(out, entry{Code: code, Name: l.Name, StopWords: len(l.StopWords), Endings: len(l.Endings)})
	}
	printOut(cmd, out, func(w io.Writer) {
		for _, e := range out {
			fmt.Fprintf(w, "%s\t%s\n", e.Code, e.Name)
		}
	})
}
