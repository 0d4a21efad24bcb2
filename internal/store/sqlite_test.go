package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "signals.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	run := sampleRun("run-1", time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC))
	require.NoError(t, st.SaveRun(ctx, run, "summary"))

	got, err := st.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "harbor-sovereign-fund", got.Rows[0].Buyer)
	assert.Equal(t, 3.4, got.Rows[0].SignalScore)
}

func TestSQLiteStore_DuplicateIDRejected(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	run := sampleRun("run-1", time.Now().UTC())
	require.NoError(t, st.SaveRun(ctx, run, ""))
	assert.Error(t, st.SaveRun(ctx, run, ""))
}

func TestSQLiteStore_LatestRun(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	latest, err := st.LatestRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveRun(ctx, sampleRun("older", base), ""))
	require.NoError(t, st.SaveRun(ctx, sampleRun("newer", base.Add(time.Hour)), ""))

	latest, err = st.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "newer", latest.ID)
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, st.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour)), ""))
	}

	infos, err := st.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "run-c", infos[0].ID)
	assert.Equal(t, "run-b", infos[1].ID)
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	st := newTestSQLite(t)
	_, err := st.GetRun(context.Background(), "absent")
	assert.Error(t, err)
}

func TestSQLiteStore_Lock(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	release, err := st.Lock(ctx)
	require.NoError(t, err)

	_, err = st.Lock(ctx)
	assert.Error(t, err)

	release()
	release2, err := st.Lock(ctx)
	require.NoError(t, err)
	release2()
}
