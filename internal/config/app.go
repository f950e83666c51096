package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix read by Load.
const EnvPrefix = "AGENT_RECALL"

// App is the CLI configuration, read from .agent-recall.yaml and AGENT_RECALL_* variables.
type App struct {
	DBPath         string `mapstructure:"db_path" yaml:"db_path"`
	LanguageDir    string `mapstructure:"language_dir" yaml:"language_dir"`
	WatchLanguages bool   `mapstructure:"watch_languages" yaml:"watch_languages"`
	Memory         Memory `mapstructure:"memory" yaml:"memory"`
}

// Load builds an App from v, filling unset fields with defaults.
func Load(v *viper.Viper) (*App, error) {
	cfg := &App{Memory: DefaultMemory()}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)
	cfg.Memory.normalize(slog.Default())

	if err := cfg.Memory.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *App) {
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.Memory.MemoryLimit == 0 {
		cfg.Memory.MemoryLimit = DefaultMemoryLimit
	}
}

// DefaultDBPath returns ~/.agent-recall/memory.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".agent-recall", "memory.db")
}
