// Package cli implements the agent-recall CLI commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rcliao/agent-recall/internal/config"
	"github.com/rcliao/agent-recall/internal/lang"
	"github.com/rcliao/agent-recall/internal/semantic"
	"github.com/rcliao/agent-recall/internal/store"
	"github.com/rcliao/agent-recall/internal/working"
)

var (
	cfgFile    string
	formatFlag string
	profileID  string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "agent-recall",
	Short: "Working and semantic memory for AI agents",
	Long: `A CLI for agent memory. SQLite-backed, single binary.

Working memory (wm) is a short numbered list kept under a byte limit.
Semantic memory (sem) stores text with TF-IDF vectors and finds it by meaning.

Example:
  agent-recall -p assistant wm add "user prefers metric units"
  agent-recall -p assistant sem put "the deploy key lives in vault"
  agent-recall -p assistant sem search "where is the deploy key"`,
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .agent-recall.yaml)")
	RootCmd.PersistentFlags().StringP("db", "d", "", "Database path (default: $AGENT_RECALL_DB_PATH or ~/.agent-recall/memory.db)")
	RootCmd.PersistentFlags().String("language-dir", "", "Directory of language JSON documents")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json, yaml or text")
	RootCmd.PersistentFlags().StringVarP(&profileID, "profile", "p", "default", "Agent profile id")
	RootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")

	_ = viper.BindPFlag("db_path", RootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("language_dir", RootCmd.PersistentFlags().Lookup("language-dir"))
	_ = viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}
		viper.AddConfigPath(cwd)
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".agent-recall")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	_ = viper.BindEnv("watch_languages")

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// env bundles what a command needs.
type env struct {
	app    *config.App
	mem    config.Memory
	store  *store.SQLiteStore
	logger *slog.Logger
}

// openEnv loads configuration and opens the store. The memory config is
// decoded from the "memory" section of the config file through the same
// key/value path callers of the library use, with command flags applied on top.
func openEnv(cmd *cobra.Command) *env {
	logger := newLogger()
	slog.SetDefault(logger)

	app, err := config.Load(viper.GetViper())
	if err != nil {
		exitErr("load config", err)
	}

	raw := map[string]any{}
	for k, v := range viper.GetStringMap("memory") {
		raw[k] = v
	}
	applyMemoryFlags(cmd, raw)
	mem, err := config.FromMap(raw)
	if err != nil {
		exitErr("memory config", err)
	}

	s, err := store.NewSQLiteStore(app.DBPath)
	if err != nil {
		exitErr("open store", err)
	}
	return &env{app: app, mem: mem, store: s, logger: logger}
}

func (e *env) close() {
	e.store.Close()
}

func (e *env) working() *working.Service {
	return working.NewService(e.store, e.logger)
}

func (e *env) languages(ctx context.Context) *lang.Source {
	src := lang.NewSource(e.app.LanguageDir, e.mem.Languages, e.logger)
	if e.app.WatchLanguages && e.app.LanguageDir != "" {
		go func() {
			if err := src.Watch(ctx); err != nil && ctx.Err() == nil {
				e.logger.Warn("language watch stopped", "error", err)
			}
		}()
	}
	return src
}

func (e *env) semantic(ctx context.Context) *semantic.Service {
	svc, err := semantic.NewService(e.store, e.languages(ctx), semantic.WithLogger(e.logger))
	if err != nil {
		exitErr("semantic memory", err)
	}
	return svc
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
