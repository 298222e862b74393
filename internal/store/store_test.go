package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwlandry/governance/experiment"
	"github.com/nwlandry/governance/governance"
	"github.com/nwlandry/governance/opinions"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_Pragmas(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()
	var (
		journal           string
		busy, synchronous int
		foreignKeys       int
	)
	require.NoError(t, s.sqlDB.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journal))
	require.NoError(t, s.sqlDB.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busy))
	require.NoError(t, s.sqlDB.QueryRowContext(ctx, "PRAGMA synchronous").Scan(&synchronous))
	require.NoError(t, s.sqlDB.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, "wal", journal)
	assert.Equal(t, 5000, busy)
	assert.Equal(t, 1, synchronous) // NORMAL
	assert.Equal(t, 1, foreignKeys)
}

func createExperiment(t *testing.T, s *Store) Experiment {
	t.Helper()
	exp, err := s.CreateExperiment(context.Background(), Experiment{
		Name:   " baseline ",
		Seed:   7,
		Runs:   3,
		Config: "seed: 7\n",
	})
	require.NoError(t, err)
	return exp
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open("  ")
	require.Error(t, err)
}

func TestOpen_Reopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.db")
	s, err := Open(path)
	require.NoError(t, err)
	exp := createExperiment(t, s)
	require.NoError(t, s.Close())

	// Migrations already recorded must not run again.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetExperiment(context.Background(), exp.ID)
	require.NoError(t, err)
	assert.Equal(t, exp, got)
}

func TestCreateGetExperiment(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	exp := createExperiment(t, s)
	assert.Len(t, exp.ID, 36)
	assert.Equal(t, "baseline", exp.Name)
	assert.Equal(t, HashConfig("seed: 7\n"), exp.ConfigHash)
	assert.Len(t, exp.ConfigHash, 64)

	got, err := s.GetExperiment(context.Background(), exp.ID)
	require.NoError(t, err)
	assert.Equal(t, exp, got)

	_, err = s.GetExperiment(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateExperiment(context.Background(), Experiment{Runs: 0})
	require.Error(t, err)
}

func TestListExperiments_ByConfigHash(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()
	old := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	a, err := s.CreateExperiment(ctx, Experiment{Runs: 1, Config: "a", CreatedAt: old})
	require.NoError(t, err)
	b, err := s.CreateExperiment(ctx, Experiment{Runs: 1, Config: "b", CreatedAt: old.Add(time.Hour)})
	require.NoError(t, err)

	all, err := s.ListExperiments(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID)
	assert.Equal(t, a.ID, all[1].ID)

	only, err := s.ListExperiments(ctx, HashConfig("a"))
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, a.ID, only[0].ID)
}

func TestSummaries_RoundTrip(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	exp := createExperiment(t, s)
	ctx := context.Background()

	want := []experiment.Summary{
		{Run: 0, Seed: 11, Adopted: 3, Rejected: 1, MeanOpinion: 0.25, Polarization: 0.1, Agreement: 0.75, Participants: 8},
		{Run: 1, Seed: 12, Adopted: 2, Rejected: 2, MeanOpinion: -0.5, Polarization: 0.2, Agreement: 0.5, Participants: 6},
	}
	// Insert out of order; listing sorts by run.
	require.NoError(t, s.SaveSummary(ctx, exp.ID, want[1]))
	require.NoError(t, s.SaveSummary(ctx, exp.ID, want[0]))

	got, err := s.ListSummaries(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	err = s.SaveSummary(ctx, exp.ID, want[0])
	require.ErrorIs(t, err, ErrAlreadyExists)

	err = s.SaveSummary(ctx, "no-such-experiment", want[0])
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveLoadRun(t *testing.T) {
	t.Parallel()

	rel, err := opinions.Relationships(5, 0.5, 0.3, opinions.WithSeed(2))
	require.NoError(t, err)
	op, err := opinions.Random(12, 5, opinions.WithSeed(2))
	require.NoError(t, err)
	res, err := governance.Run(op, rel, governance.WithGroupSize(3), governance.WithSeed(5))
	require.NoError(t, err)

	s := openTempStore(t)
	exp := createExperiment(t, s)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, exp.ID, 0, res))

	history, groups, err := s.LoadRun(ctx, exp.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, res.History.Order(), history.Order())
	assert.Equal(t, res.History.Map(), history.Map())
	assert.Equal(t, res.Groups.Edges(), groups.Edges())
	for _, issue := range res.Groups.Edges() {
		want, err := res.Groups.Group(issue)
		require.NoError(t, err)
		got, err := groups.Group(issue)
		require.NoError(t, err)
		assert.Equal(t, want, got, "issue %d", issue)
	}

	require.ErrorIs(t, s.SaveRun(ctx, exp.ID, 0, res), ErrAlreadyExists)
	_, _, err = s.LoadRun(ctx, exp.ID, 1)
	require.ErrorIs(t, err, ErrNotFound)
	require.Error(t, s.SaveRun(ctx, exp.ID, 2, &governance.Result{}))
}

func TestSaveSummary_AsRunnerStore(t *testing.T) {
	t.Parallel()

	rel, err := opinions.Relationships(4, 0.5, 0.3, opinions.WithSeed(9))
	require.NoError(t, err)
	op, err := opinions.Random(10, 4, opinions.WithSeed(9))
	require.NoError(t, err)

	s := openTempStore(t)
	exp := createExperiment(t, s)

	var mu sync.Mutex
	stored := 0
	r := experiment.Runner{
		Runs:    6,
		Workers: 3,
		Seed:    exp.Seed,
		Store: func(ctx context.Context, sum experiment.Summary) error {
			mu.Lock()
			stored++
			mu.Unlock()
			return s.SaveSummary(ctx, exp.ID, sum)
		},
	}
	want, err := r.Run(context.Background(), op, rel)
	require.NoError(t, err)
	assert.Equal(t, 6, stored)

	got, err := s.ListSummaries(context.Background(), exp.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_NotConfigured(t *testing.T) {
	t.Parallel()

	var s *Store
	require.NoError(t, s.Close())
	_, err := s.ListSummaries(context.Background(), "x")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = openTempStore(t).ListExperiments(ctx, "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractUpMigration(t *testing.T) {
	t.Parallel()

	content := "-- +migrate Up\nCREATE TABLE a (x INT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (x INT);\n", extractUpMigration(content))
	assert.Equal(t, "SELECT 1;", extractUpMigration("SELECT 1;"))
	assert.Equal(t, "\nSELECT 1;", extractUpMigration("-- +migrate Up\nSELECT 1;"))
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"0002_extra.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE extra (x INTEGER);\n")},
		"README.md":      {Data: []byte("ignored")},
	}
	require.NoError(t, applyMigrations(ctx, s.sqlDB, fsys))
	require.NoError(t, applyMigrations(ctx, s.sqlDB, fsys))

	var n int
	require.NoError(t, s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+migrationTable).Scan(&n))
	assert.Equal(t, 2, n)
}
