package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	api "smartrfq/cmd/api"
	"smartrfq/pkg/database"
	"smartrfq/pkg/tracing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, mailbox poller and extraction workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(v)
			if port := v.GetString("port"); port != "" {
				cfg.Port = port
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdown, err := tracing.Init(ctx, log, cfg.OtelEnabled, "smartrfq-api", cfg.Env)
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Warn("tracer shutdown", "error", err)
				}
			}()

			db, err := database.Open(cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if err := api.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			handler, err := api.NewHandler(ctx, cfg, db, log, api.Options{})
			if err != nil {
				return err
			}
			return handler.Start(ctx, ":"+cfg.Port)
		},
	}
	cmd.Flags().String("port", "", "HTTP listen port")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}
