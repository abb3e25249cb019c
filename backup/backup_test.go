package backup

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/blob"
	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/service"
)

// newTestService returns a service whose clock advances a minute per call.
func newTestService(t *testing.T) *service.JournalService {
	t.Helper()

	dir := t.TempDir()
	store, err := journal.NewSQLite(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	blobs, err := blob.NewLocal(filepath.Join(dir, "blobs"), "/files")
	require.NoError(t, err)

	now := time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	return service.New(store, blobs, nil, service.WithClock(clock))
}

func TestRunOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.CreateTrade(ctx, journal.Trade{Symbol: "EURUSD", PnLNet: 10, EntryDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	b := New(svc, config.BackupConfig{Prefix: "/nightly/"}, nil)
	name, err := b.RunOnce(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^nightly/trades-20240502-03\d{4}\.csv$`, name)

	rc, err := svc.Blobs().Get(ctx, name)
	require.NoError(t, err)
	defer rc.Close()

	trades, err := journal.ReadCSV(rc)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "EURUSD", trades[0].Symbol)
}

func TestRunOncePrunes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t)
	b := New(svc, config.BackupConfig{Keep: 2}, nil)

	var names []string
	for i := 0; i < 4; i++ {
		name, err := b.RunOnce(ctx)
		require.NoError(t, err)
		names = append(names, name)
	}

	infos, err := svc.Blobs().List(ctx, "backups/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, names[2], infos[0].Name)
	assert.Equal(t, names[3], infos[1].Name)

	_, err = svc.Blobs().Get(ctx, names[0])
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestRunOnceEmptyJournal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t)
	name, err := New(svc, config.BackupConfig{}, nil).RunOnce(ctx)
	require.NoError(t, err)

	rc, err := svc.Blobs().Get(ctx, name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,account_id,entry_date,"), string(data))
}

func TestScheduler(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	b := New(svc, config.BackupConfig{}, nil)

	_, err := NewScheduler(context.Background(), b, "not a cron")
	assert.Error(t, err)

	s, err := NewScheduler(context.Background(), b, "0 3 * * *")
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	next := s.Next()
	assert.False(t, next.IsZero())
	assert.Equal(t, 3, next.Hour())
}
