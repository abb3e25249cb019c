package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/backup"
	"github.com/rustyeddy/tradejournal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the journal API and, when backup.enabled is set, run the
scheduled CSV backups in the same process.

Example:
  tradejournal serve -c tradejournal.yaml
  tradejournal serve --addr :9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Backup.Enabled {
		sched, err := backup.NewScheduler(ctx, backup.New(a.svc, cfg.Backup, a.log), cfg.Backup.Cron)
		if err != nil {
			return fmt.Errorf("backup scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		a.log.Info("backups scheduled", zap.String("cron", cfg.Backup.Cron), zap.Time("next", sched.Next()))
	}

	return server.New(cfg.Server, a.svc, a.log).Run(ctx)
}
