package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"smartrfq/internal/session"
	"smartrfq/internal/workspace"
	"smartrfq/pkg/config"
	"smartrfq/pkg/logger"
	"smartrfq/pkg/metrics"
	"smartrfq/pkg/notify"
	"smartrfq/pkg/rfqapi"
	"smartrfq/pkg/snapshot"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// openWorkspace builds the client runtime against the configured backend
// and restores the persisted snapshots.
func openWorkspace(ctx context.Context, cfg *config.Config, log *logger.Logger) (*workspace.Workspace, error) {
	persister, err := snapshot.Open(cfg.SnapshotBackend, cfg.SnapshotSQLitePath, cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	client := rfqapi.New(cfg.APIBaseURL, rfqapi.StaticToken(cfg.APIToken), rfqapi.WithLogger(log))
	ws := workspace.New(client, persister, workspace.Options{
		Notifier: notify.NewLogNotifier(log),
		Metrics:  metrics.NewSync(prometheus.NewRegistry()),
		Log:      log,
		Session:  session.Options{Timeout: cfg.IdleTimeout, Grace: cfg.IdleGrace},
	})
	if err := ws.LoadAll(ctx); err != nil {
		log.Warn("some snapshots could not be restored", "error", err)
	}
	return ws, nil
}

func newSyncCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Load the signed-in organization's data and persist snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(v)
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			ws, err := openWorkspace(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer ws.Session.Stop()

			sum, err := ws.Sync(ctx)
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "organization: %s\n", orDash(sum.OrgID))
			fmt.Fprintf(out, "projects:      %d\n", sum.Projects)
			fmt.Fprintf(out, "suppliers:     %d\n", sum.Suppliers)
			fmt.Fprintf(out, "conversations: %d\n", sum.Conversations)
			fmt.Fprintf(out, "items:         %d\n", sum.Stats.TotalItems)
			projects := make([]string, 0, len(sum.Stats.ItemsByProject))
			for id := range sum.Stats.ItemsByProject {
				projects = append(projects, id)
			}
			sort.Strings(projects)
			for _, id := range projects {
				fmt.Fprintf(out, "  %s: %d\n", id, sum.Stats.ItemsByProject[id])
			}
			return nil
		},
	}
}

func newSwitchOrgCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "switch-org <org-id>",
		Short: "Switch the cached workspace to another organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(v)
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			ws, err := openWorkspace(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer ws.Session.Stop()

			orgID := strings.TrimSpace(args[0])
			changed, err := ws.SwitchOrg(ctx, orgID)
			if err != nil {
				return fmt.Errorf("switch org: %w", err)
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "switched to %s; cached data cleared\n", orgID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "already on %s\n", orDash(orgID))
			}
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
