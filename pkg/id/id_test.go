package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsMonotonic(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 1000; i++ {
		next := New()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestShort(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", Short("abc"))
	assert.Equal(t, "01HZX3AB", Short("01HZX3ABCDEFGHJKMNPQRSTVWX"))
}

func TestNewParses(t *testing.T) {
	t.Parallel()

	v, err := ulid.ParseStrict(New())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ulid.Time(v.Time()), time.Minute)
}
