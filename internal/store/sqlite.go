package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/buyer-signals/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	generated_at DATETIME NOT NULL,
	buyers       INTEGER NOT NULL,
	payload      TEXT NOT NULL,
	summary      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_lock (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	acquired_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run, summary string) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal run")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, generated_at, buyers, payload, summary) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.GeneratedAt.UTC(), len(run.Rows), string(payload), summary,
	)
	return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, payload FROM runs ORDER BY generated_at DESC LIMIT 1`,
	)

	var id, payload string
	err := row.Scan(&id, &payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest run")
	}

	var run model.Run
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		zap.L().Warn("store: prior run unreadable, starting fresh baseline",
			zap.String("run_id", id),
			zap.Error(err),
		)
		return nil, nil
	}
	run.ID = id
	return &run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM runs WHERE id = ?`, id,
	)

	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", id)
	}

	var run model.Run
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse run %s", id)
	}
	run.ID = id
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generated_at, buyers FROM runs ORDER BY generated_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.ID, &info.GeneratedAt, &info.Buyers); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		infos = append(infos, info)
	}
	return infos, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// Lock takes the run lease as a singleton row insert, which fails while
// another run holds it.
func (s *SQLiteStore) Lock(ctx context.Context) (func(), error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_lock (id, acquired_at) VALUES (1, ?)`,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: another run holds the lock")
	}

	return func() {
		if _, rmErr := s.db.Exec(`DELETE FROM run_lock WHERE id = 1`); rmErr != nil {
			zap.L().Warn("store: failed to release run lock", zap.Error(rmErr))
		}
	}, nil
}
