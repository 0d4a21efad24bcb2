package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/buyer-signals/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock satisfies
// it for tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 5
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	generated_at TIMESTAMPTZ NOT NULL,
	buyers       INTEGER NOT NULL,
	payload      JSONB NOT NULL,
	summary      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_lock (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	acquired_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.Run, summary string) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal run")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, generated_at, buyers, payload, summary) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.GeneratedAt.UTC(), len(run.Rows), string(payload), summary,
	)
	return eris.Wrapf(err, "postgres: insert run %s", run.ID)
}

func (s *PostgresStore) LatestRun(ctx context.Context) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, payload FROM runs ORDER BY generated_at DESC LIMIT 1`,
	)

	var id, payload string
	err := row.Scan(&id, &payload)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest run")
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

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT payload FROM runs WHERE id = $1`, id,
	)

	var payload string
	err := row.Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, eris.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", id)
	}

	var run model.Run
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		return nil, eris.Wrapf(err, "postgres: parse run %s", id)
	}
	run.ID = id
	return &run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, generated_at, buyers FROM runs ORDER BY generated_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.ID, &info.GeneratedAt, &info.Buyers); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		infos = append(infos, info)
	}
	return infos, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) Lock(ctx context.Context) (func(), error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO run_lock (id, acquired_at) VALUES (1, $1)`,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: another run holds the lock")
	}

	return func() {
		if _, rmErr := s.pool.Exec(context.Background(), `DELETE FROM run_lock WHERE id = 1`); rmErr != nil {
			zap.L().Warn("store: failed to release run lock", zap.Error(rmErr))
		}
	}, nil
}
