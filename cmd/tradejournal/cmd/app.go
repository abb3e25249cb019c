package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/blob"
	s3blob "github.com/rustyeddy/tradejournal/blob/s3"
	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/journal/postgres"
	"github.com/rustyeddy/tradejournal/logger"
	"github.com/rustyeddy/tradejournal/service"
)

// app is everything a command needs, opened from the config.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store journal.Store
	svc   *service.JournalService
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	blobs, err := openBlobs(ctx, cfg.Blob)
	if err != nil {
		store.Close()
		return nil, err
	}

	svc := service.New(store, blobs, log,
		service.WithPolicy(cfg.Risk),
		service.WithSimDefaults(service.SimDefaults{
			Enabled:         cfg.Simulation.Enabled,
			StartingBalance: cfg.Simulation.StartingBalance,
			RiskPercent:     cfg.Simulation.RiskPercent,
		}),
	)
	if _, err := svc.Init(ctx, journal.Account{
		Name:        cfg.Account.Name,
		Currency:    cfg.Account.Currency,
		Balance:     cfg.Account.Balance,
		RiskPercent: cfg.Account.RiskPercent,
	}); err != nil {
		store.Close()
		return nil, fmt.Errorf("init account: %w", err)
	}

	return &app{cfg: cfg, log: log, store: store, svc: svc}, nil
}

// openApp loads the config and opens the app. CLI commands log at warn
// unless --verbose is set.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !verbose {
		cfg.Log.Level = "warn"
	}
	return newApp(ctx, cfg)
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store", zap.Error(err))
	}
	_ = a.log.Sync()
}

func openStore(ctx context.Context, cfg config.StorageConfig) (journal.Store, error) {
	switch cfg.Type {
	case "", "sqlite":
		j, err := journal.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.DBPath, err)
		}
		return j, nil
	case "postgres":
		s, err := postgres.Open(ctx, cfg.DSN, cfg.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
}

func openBlobs(ctx context.Context, cfg config.BlobConfig) (blob.Store, error) {
	switch cfg.Type {
	case "", "local":
		l, err := blob.NewLocal(cfg.Dir, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return l, nil
	case "s3":
		c, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
			PublicURL:      cfg.S3.PublicURL,
		})
		if err != nil {
			return nil, err
		}
		return s3blob.NewStore(c), nil
	}
	return nil, fmt.Errorf("unknown blob type %q", cfg.Type)
}
