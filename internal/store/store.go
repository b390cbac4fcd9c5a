package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    instruction TEXT NOT NULL,
    mode        TEXT NOT NULL,
    model       TEXT NOT NULL,
    outcome     TEXT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS transcript_entries (
    run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq     INTEGER NOT NULL,
    role    TEXT NOT NULL,
    link_id TEXT NOT NULL DEFAULT '',
    blocks  JSONB NOT NULL,
    PRIMARY KEY (run_id, seq)
);`

const sqlInsertRun = `
        INSERT INTO runs (id, instruction, mode, model, outcome, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO UPDATE SET
            outcome = EXCLUDED.outcome,
            finished_at = EXCLUDED.finished_at;
    `

const sqlDeleteEntries = `DELETE FROM transcript_entries WHERE run_id = $1;`

const sqlSelectEntries = `
        SELECT role, link_id, blocks
        FROM transcript_entries
        WHERE run_id = $1
        ORDER BY seq ASC;
    `

var entryColumns = []string{"run_id", "seq", "role", "link_id", "blocks"}

// Store archives finished transcripts in PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

var _ schemas.TranscriptStore = (*Store)(nil)

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// EnsureSchema creates the archive tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create archive schema: %w", err)
	}
	return nil
}

// SaveTranscript writes the run record and its entries in one transaction.
// Saving the same run twice replaces its entries.
func (s *Store) SaveTranscript(ctx context.Context, run schemas.RunRecord, entries []schemas.Entry) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}

	rows := make([][]interface{}, len(entries))
	for i, e := range entries {
		blocks := e.Blocks
		if blocks == nil {
			blocks = []schemas.ContentBlock{}
		}
		payload, err := json.Marshal(blocks)
		if err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
		rows[i] = []interface{}{run.ID, i, string(e.Role), e.LinkID, payload}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if _, err := tx.Exec(ctx, sqlInsertRun,
		run.ID, run.Instruction, run.Mode, run.Model, run.Outcome,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	if _, err := tx.Exec(ctx, sqlDeleteEntries, run.ID); err != nil {
		return fmt.Errorf("failed to clear previous entries: %w", err)
	}

	if len(rows) > 0 {
		copyCount, err := tx.CopyFrom(ctx, pgx.Identifier{"transcript_entries"}, entryColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to copy transcript entries: %w", err)
		}
		if int(copyCount) != len(rows) {
			return fmt.Errorf("mismatch in copied entries count: expected %d, got %d", len(rows), copyCount)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Debug("Archived transcript.", zap.String("run_id", run.ID), zap.Int("entries", len(rows)))
	return nil
}

// GetTranscript loads the entries of a run in their original order.
func (s *Store) GetTranscript(ctx context.Context, runID string) ([]schemas.Entry, error) {
	rows, err := s.pool.Query(ctx, sqlSelectEntries, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript: %w", err)
	}
	defer rows.Close()

	var entries []schemas.Entry
	for rows.Next() {
		var (
			e       schemas.Entry
			role    string
			payload []byte
		)
		if err := rows.Scan(&role, &e.LinkID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan transcript row: %w", err)
		}
		if err := json.Unmarshal(payload, &e.Blocks); err != nil {
			return nil, fmt.Errorf("failed to decode transcript row: %w", err)
		}
		e.Role = schemas.Role(role)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return entries, nil
}
