package cli

import (
	"fmt"
	"os"

	"smartrfq/pkg/config"
	"smartrfq/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the smartrfq command tree.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "smartrfq",
		Short:         "SmartRFQ procurement backend and client tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("log.level", "", "Log level (debug, info, warn, error)")
	flags.String("db.driver", "", "Database driver: postgres or sqlite")
	flags.String("database.url", "", "Postgres connection URL")
	flags.String("sqlite.path", "", "SQLite database file")
	flags.String("api.base_url", "", "Backend base URL used by client commands")
	flags.String("api.token", "", "Identity token used by client commands")
	flags.String("snapshot.backend", "", "Snapshot backend: sqlite, redis or memory")
	for _, name := range []string{"log.level", "db.driver", "database.url", "sqlite.path", "api.base_url", "api.token", "snapshot.backend"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newServeCommand(v),
		newSyncCommand(v),
		newSwitchOrgCommand(v),
		newExtractCommand(),
		newTokenCommand(v),
	)
	return root
}

// loadConfig reads the environment and lets explicitly set flags win.
func loadConfig(v *viper.Viper) *config.Config {
	cfg := config.Load()
	override := func(key string, dst *string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	override("log.level", &cfg.LogLevel)
	override("db.driver", &cfg.DBDriver)
	override("database.url", &cfg.DatabaseURL)
	override("sqlite.path", &cfg.SQLitePath)
	override("api.base_url", &cfg.APIBaseURL)
	override("api.token", &cfg.APIToken)
	override("snapshot.backend", &cfg.SnapshotBackend)
	return cfg
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
