// Package store persists governance experiments in SQLite: one row per
// experiment, one per run summary, and optionally the full decision history
// and group membership of individual runs.
package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/nwlandry/governance/experiment"
	"github.com/nwlandry/governance/governance"
	"github.com/nwlandry/governance/hypergraph"
	"github.com/nwlandry/governance/internal/store/migrations"
)

var (
	// ErrNotFound is returned when an experiment or run does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrAlreadyExists is returned when a run is saved twice.
	ErrAlreadyExists = errors.New("store: already exists")
)

// Experiment is the metadata row shared by every run of one Monte Carlo batch.
type Experiment struct {
	ID   string
	Name string
	Seed int64
	Runs int
	// Config is the serialized configuration the batch ran with.
	Config string
	// ConfigHash is the hex BLAKE3-256 digest of Config, so batches with
	// identical configuration can be grouped.
	ConfigHash string
	CreatedAt  time.Time
}

// Store persists experiments in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// HashConfig returns the hex BLAKE3-256 digest of a serialized configuration.
func HashConfig(config string) string {
	sum := blake3.Sum256([]byte(config))
	return hex.EncodeToString(sum[:])
}

// Open opens a SQLite results database and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Monte Carlo workers write concurrently; one connection serializes them.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// CreateExperiment inserts exp with a fresh ID and returns the stored row.
// ID, ConfigHash and a zero CreatedAt are filled in.
func (s *Store) CreateExperiment(ctx context.Context, exp Experiment) (Experiment, error) {
	if err := s.ready(ctx); err != nil {
		return Experiment{}, err
	}
	if exp.Runs < 1 {
		return Experiment{}, fmt.Errorf("runs must be greater than zero")
	}
	exp.ID = uuid.NewString()
	exp.Name = strings.TrimSpace(exp.Name)
	exp.ConfigHash = HashConfig(exp.Config)
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now()
	}
	exp.CreatedAt = fromMillis(toMillis(exp.CreatedAt))

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO experiments (id, name, seed, runs, config, config_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		exp.ID, exp.Name, exp.Seed, exp.Runs, exp.Config, exp.ConfigHash, toMillis(exp.CreatedAt),
	)
	if err != nil {
		return Experiment{}, fmt.Errorf("create experiment: %w", err)
	}
	return exp, nil
}

// GetExperiment returns one experiment by ID.
func (s *Store) GetExperiment(ctx context.Context, id string) (Experiment, error) {
	if err := s.ready(ctx); err != nil {
		return Experiment{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, seed, runs, config, config_hash, created_at
		   FROM experiments
		  WHERE id = ?`,
		strings.TrimSpace(id),
	)
	exp, err := scanExperiment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Experiment{}, fmt.Errorf("experiment %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Experiment{}, fmt.Errorf("get experiment: %w", err)
	}
	return exp, nil
}

// ListExperiments returns every experiment, newest first. A non-empty
// configHash restricts the list to batches run with that configuration.
func (s *Store) ListExperiments(ctx context.Context, configHash string) ([]Experiment, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT id, name, seed, runs, config, config_hash, created_at FROM experiments`
	var args []any
	if configHash != "" {
		query += ` WHERE config_hash = ?`
		args = append(args, configHash)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	defer rows.Close()

	var out []Experiment
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan experiment: %w", err)
		}
		out = append(out, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate experiments: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExperiment(row scanner) (Experiment, error) {
	var exp Experiment
	var createdAt int64
	if err := row.Scan(&exp.ID, &exp.Name, &exp.Seed, &exp.Runs, &exp.Config, &exp.ConfigHash, &createdAt); err != nil {
		return Experiment{}, err
	}
	exp.CreatedAt = fromMillis(createdAt)
	return exp, nil
}

// SaveSummary stores the summary of one run of experimentID.
// It is safe for concurrent use and can serve as experiment.Runner.Store.
func (s *Store) SaveSummary(ctx context.Context, experimentID string, sum experiment.Summary) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO run_summaries (
		   experiment_id, run, seed, adopted, rejected,
		   mean_opinion, polarization, agreement, participants
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		experimentID, sum.Run, sum.Seed, sum.Adopted, sum.Rejected,
		sum.MeanOpinion, sum.Polarization, sum.Agreement, sum.Participants,
	)
	if err != nil {
		return s.insertError("save summary", experimentID, err)
	}
	return nil
}

// ListSummaries returns the stored summaries of experimentID ordered by run.
func (s *Store) ListSummaries(ctx context.Context, experimentID string) ([]experiment.Summary, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT run, seed, adopted, rejected, mean_opinion, polarization, agreement, participants
		   FROM run_summaries
		  WHERE experiment_id = ?
		  ORDER BY run`,
		experimentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var out []experiment.Summary
	for rows.Next() {
		var sum experiment.Summary
		if err := rows.Scan(
			&sum.Run, &sum.Seed, &sum.Adopted, &sum.Rejected,
			&sum.MeanOpinion, &sum.Polarization, &sum.Agreement, &sum.Participants,
		); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return out, nil
}

// SaveRun stores the decision history and the decision groups of one run
// in a single transaction.
func (s *Store) SaveRun(ctx context.Context, experimentID string, run int, res *governance.Result) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if res == nil || res.History == nil || res.Groups == nil {
		return fmt.Errorf("save run %d: incomplete result", run)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for seq, issue := range res.History.Order() {
		outcome, _ := res.History.Outcome(issue)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO decisions (experiment_id, run, seq, issue, outcome) VALUES (?, ?, ?, ?, ?)`,
			experimentID, run, seq, issue, int(outcome),
		); err != nil {
			return s.insertError("save decision", experimentID, err)
		}

		members, err := res.Groups.Group(issue)
		if err != nil {
			return fmt.Errorf("save run %d: %w", run, err)
		}
		for _, m := range members {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO group_members (experiment_id, run, issue, stakeholder) VALUES (?, ?, ?, ?)`,
				experimentID, run, issue, m,
			); err != nil {
				return s.insertError("save group", experimentID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}
	return nil
}

// LoadRun rebuilds the decision history and the group hypergraph of one
// stored run.
func (s *Store) LoadRun(ctx context.Context, experimentID string, run int) (*governance.History, *hypergraph.Hypergraph, error) {
	if err := s.ready(ctx); err != nil {
		return nil, nil, err
	}

	members := make(map[int][]int)
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT issue, stakeholder FROM group_members
		  WHERE experiment_id = ? AND run = ?
		  ORDER BY issue, stakeholder`,
		experimentID, run,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("load groups: %w", err)
	}
	for rows.Next() {
		var issue, stakeholder int
		if err := rows.Scan(&issue, &stakeholder); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan group member: %w", err)
		}
		members[issue] = append(members[issue], stakeholder)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate groups: %w", err)
	}

	rows, err = s.sqlDB.QueryContext(ctx,
		`SELECT issue, outcome FROM decisions
		  WHERE experiment_id = ? AND run = ?
		  ORDER BY seq`,
		experimentID, run,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("load decisions: %w", err)
	}
	defer rows.Close()

	history := governance.NewHistory()
	groups := hypergraph.New(hypergraph.WithCapacity(len(members)))
	for rows.Next() {
		var issue, outcome int
		if err := rows.Scan(&issue, &outcome); err != nil {
			return nil, nil, fmt.Errorf("scan decision: %w", err)
		}
		if err := history.Record(issue, governance.Outcome(outcome)); err != nil {
			return nil, nil, fmt.Errorf("load run %d: %w", run, err)
		}
		if err := groups.AddGroup(issue, members[issue]); err != nil {
			return nil, nil, fmt.Errorf("load run %d: %w", run, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate decisions: %w", err)
	}
	if history.Len() == 0 {
		return nil, nil, fmt.Errorf("run %d of experiment %q: %w", run, experimentID, ErrNotFound)
	}
	return history, groups, nil
}

// insertError maps constraint violations to the package sentinels.
func (s *Store) insertError(op, experimentID string, err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%s: experiment %q: %w", op, experimentID, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
