package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

// flexibleSQLMatcher creates a regex that is insensitive to whitespace for more robust SQL mock testing.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

func newMockStore(t *testing.T, logger *zap.Logger) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	mockPool.ExpectPing()
	s, err := New(context.Background(), mockPool, logger)
	require.NoError(t, err)
	return s, mockPool
}

// expectRunWrite expects the run upsert and the entry reset for run, bound to its exact values.
func expectRunWrite(mockPool pgxmock.PgxPoolIface, run schemas.RunRecord) {
	mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertRun)).
		WithArgs(run.ID, run.Instruction, run.Mode, run.Model, run.Outcome, run.StartedAt.UTC(), run.FinishedAt.UTC()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec(flexibleSQLMatcher(sqlDeleteEntries)).
		WithArgs(run.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
}

func sampleRun() schemas.RunRecord {
	loc := time.FixedZone("UTC+2", 2*60*60)
	return schemas.RunRecord{
		ID:          "run-1",
		Instruction: "open the docs",
		Mode:        "dsl",
		Model:       "ui-tars",
		Outcome:     "finished",
		StartedAt:   time.Date(2025, 11, 20, 10, 0, 0, 0, loc),
		FinishedAt:  time.Date(2025, 11, 20, 10, 5, 0, 0, loc),
	}
}

func TestNewStore(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	pingErr := errors.New("database unavailable")
	mockPool.ExpectPing().WillReturnError(pingErr)

	_, err = New(context.Background(), mockPool, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, pingErr, "Error from ping should be propagated")
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	s, mockPool := newMockStore(t, zap.NewNop())
	mockPool.ExpectExec(flexibleSQLMatcher(schemaSQL)).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestSaveTranscript(t *testing.T) {
	ctx := context.Background()
	entries := []schemas.Entry{
		{Role: schemas.RoleUser, Blocks: []schemas.ContentBlock{schemas.TextBlock("go"), schemas.ImageBlock([]byte("png"))}},
		{Role: schemas.RoleAssistant, Blocks: []schemas.ContentBlock{schemas.TextBlock("Action: wait()")}},
		{Role: schemas.RoleUser, LinkID: "toolu_1"},
	}

	t.Run("writes run and entries in one transaction", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		s, mockPool := newMockStore(t, zap.New(core))
		run := sampleRun()

		mockPool.ExpectBegin()
		expectRunWrite(mockPool, run)
		mockPool.ExpectCopyFrom(pgx.Identifier{"transcript_entries"}, entryColumns).
			WillReturnResult(3)
		mockPool.ExpectCommit()
		mockPool.ExpectRollback().WillReturnError(pgx.ErrTxClosed)

		require.NoError(t, s.SaveTranscript(ctx, run, entries))
		assert.NoError(t, mockPool.ExpectationsWereMet())
		assert.Empty(t, logs.All(), "Expected no errors logged on successful commit")
	})

	t.Run("rolls back when the copy fails", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		run := sampleRun()

		mockPool.ExpectBegin()
		expectRunWrite(mockPool, run)
		mockPool.ExpectCopyFrom(pgx.Identifier{"transcript_entries"}, entryColumns).
			WillReturnError(errors.New("disk full"))
		mockPool.ExpectRollback()

		err := s.SaveTranscript(ctx, run, entries)
		assert.ErrorContains(t, err, "disk full")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("detects short copy", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		run := sampleRun()

		mockPool.ExpectBegin()
		expectRunWrite(mockPool, run)
		mockPool.ExpectCopyFrom(pgx.Identifier{"transcript_entries"}, entryColumns).WillReturnResult(2)
		mockPool.ExpectRollback()

		err := s.SaveTranscript(ctx, run, entries)
		assert.ErrorContains(t, err, "mismatch")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("requires a run id", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		err := s.SaveTranscript(ctx, schemas.RunRecord{}, entries)
		assert.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestGetTranscript(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes rows in order", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		rows := pgxmock.NewRows([]string{"role", "link_id", "blocks"}).
			AddRow("user", "", []byte(`[{"type":"text","text":"go"},{"type":"image","image":{"media_type":"image/png","data":"cG5n"}}]`)).
			AddRow("assistant", "", []byte(`[{"type":"text","text":"Action: wait()"}]`)).
			AddRow("user", "toolu_1", []byte(`[]`))
		mockPool.ExpectQuery(flexibleSQLMatcher(sqlSelectEntries)).WithArgs("run-1").WillReturnRows(rows)

		entries, err := s.GetTranscript(ctx, "run-1")
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, schemas.RoleUser, entries[0].Role)
		assert.Equal(t, []byte("png"), entries[0].Blocks[1].Image.Data)
		assert.Equal(t, "Action: wait()", entries[1].Blocks[0].Text)
		assert.Equal(t, "toolu_1", entries[2].LinkID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("propagates query errors", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		mockPool.ExpectQuery(flexibleSQLMatcher(sqlSelectEntries)).WithArgs("run-1").WillReturnError(errors.New("connection reset"))

		_, err := s.GetTranscript(ctx, "run-1")
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("rejects corrupt payloads", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		rows := pgxmock.NewRows([]string{"role", "link_id", "blocks"}).AddRow("user", "", []byte(`{not json`))
		mockPool.ExpectQuery(flexibleSQLMatcher(sqlSelectEntries)).WithArgs("run-1").WillReturnRows(rows)

		_, err := s.GetTranscript(ctx, "run-1")
		assert.ErrorContains(t, err, "decode")
	})
}
