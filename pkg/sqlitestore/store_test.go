package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "energy.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, _, err = store.LatestPoint(ctx, "energy")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	err = store.WritePoint(ctx, "energy", map[string]interface{}{"power_used": int64(0), "total_usage_day": 50.0}, ts)
	require.NoError(t, err)
	err = store.WritePoint(ctx, "energy", map[string]interface{}{"power_used": int64(100), "total_usage_day": 50.1}, ts.Add(10*time.Second))
	require.NoError(t, err)

	fields, latest, err := store.LatestPoint(ctx, "energy")
	require.NoError(t, err)
	assert.Equal(t, ts.Add(10*time.Second), latest)
	assert.Equal(t, 100.0, fields["power_used"])
	assert.Equal(t, 50.1, fields["total_usage_day"])

	require.NoError(t, store.WriteMeter(ctx, "usage", "meter1", 100, ts))
	require.NoError(t, store.WriteMeter(ctx, "usage", "meter2", 50, ts))
	require.NoError(t, store.WriteMeter(ctx, "usage", "meter1", 100.5, ts.Add(10*time.Second)))

	values, err := store.MeterValues(ctx, "usage", "meter1")
	require.NoError(t, err)
	assert.Equal(t, []MeterValue{
		{Time: ts, Table: "usage", Meter: "meter1", Value: 100},
		{Time: ts.Add(10 * time.Second), Table: "usage", Meter: "meter1", Value: 100.5},
	}, values)
}

func TestOpenTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "energy.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.WriteMeter(context.Background(), "generated", "meter1", 1, time.Unix(10, 0)))
	require.NoError(t, store.Close())

	// schema creation is idempotent and data survives
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	values, err := store.MeterValues(context.Background(), "generated", "meter1")
	require.NoError(t, err)
	assert.Len(t, values, 1)
}
