package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a CSV backup to the blob store now",
	Long: `Export every trade to <backup.prefix>/trades-YYYYMMDD-HHMMSS.csv in the
configured blob store and prune old backups beyond backup.keep.`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	name, err := backup.New(a.svc, a.cfg.Backup, a.log).RunOnce(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Backup written: %s\n", name)
	return nil
}
