// Package backup writes CSV exports of the journal to the blob store, on
// demand or on a cron schedule.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/blob"
	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/service"
)

const nameLayout = "20060102-150405"

type Backup struct {
	svc    *service.JournalService
	prefix string
	keep   int
	log    *zap.Logger
}

func New(svc *service.JournalService, cfg config.BackupConfig, log *zap.Logger) *Backup {
	if log == nil {
		log = zap.NewNop()
	}
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = "backups"
	}
	return &Backup{svc: svc, prefix: prefix, keep: cfg.Keep, log: log}
}

// RunOnce exports every trade to <prefix>/trades-YYYYMMDD-HHMMSS.csv and
// prunes old exports down to the configured count. It returns the object
// name written.
func (b *Backup) RunOnce(ctx context.Context) (string, error) {
	blobs := b.svc.Blobs()
	if blobs == nil {
		return "", errors.New("backup: no blob store configured")
	}

	var buf bytes.Buffer
	n, err := b.svc.ExportCSV(ctx, &buf)
	if err != nil {
		return "", fmt.Errorf("backup: export: %w", err)
	}

	name := path.Join(b.prefix, "trades-"+b.svc.Now().UTC().Format(nameLayout)+".csv")
	if _, err := blobs.Put(ctx, name, &buf, "text/csv"); err != nil {
		return "", fmt.Errorf("backup: put %s: %w", name, err)
	}
	b.log.Info("backup written", zap.String("name", name), zap.Int("trades", n))

	if err := b.prune(ctx, blobs); err != nil {
		return name, err
	}
	return name, nil
}

// prune deletes the oldest exports beyond keep. Names embed the timestamp,
// so lexical order is age order.
func (b *Backup) prune(ctx context.Context, blobs blob.Store) error {
	if b.keep <= 0 {
		return nil
	}
	infos, err := blobs.List(ctx, b.prefix+"/trades-")
	if err != nil {
		return fmt.Errorf("backup: list: %w", err)
	}
	if len(infos) <= b.keep {
		return nil
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	for _, info := range infos[:len(infos)-b.keep] {
		if err := blobs.Delete(ctx, info.Name); err != nil && !errors.Is(err, blob.ErrNotFound) {
			return fmt.Errorf("backup: delete %s: %w", info.Name, err)
		}
		b.log.Info("backup pruned", zap.String("name", info.Name))
	}
	return nil
}

// Scheduler runs RunOnce on a standard five-field cron spec.
type Scheduler struct {
	cron   *cron.Cron
	backup *Backup
	log    *zap.Logger
}

func NewScheduler(ctx context.Context, b *Backup, spec string) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), backup: b, log: b.log}
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := b.RunOnce(ctx); err != nil {
			s.log.Warn("scheduled backup failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("register backup %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("backup scheduler started")
}

// Stop waits for a running backup to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("backup scheduler stopped")
}

// Next is the time of the next scheduled run, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
