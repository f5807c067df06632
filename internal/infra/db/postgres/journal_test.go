package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logolate/go_backend/internal/domain/quote"
)

type recordingExec struct {
	sql  []string
	args [][]any
	err  error
}

func (r *recordingExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql = append(r.sql, sql)
	r.args = append(r.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}

func TestJournal_Record(t *testing.T) {
	exec := &recordingExec{}
	j := &Journal{db: exec}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := j.Record(context.Background(), quote.JournalEntry{
		QuoteID:           "b-1",
		SequenceNumber:    "17",
		ClientEmail:       "ana@example.com",
		Total:             1650,
		Status:            quote.StatusPending,
		LineCount:         2,
		NotificationsSent: true,
		At:                at,
	})
	require.NoError(t, err)

	require.Len(t, exec.args, 1)
	assert.Contains(t, exec.sql[0], "INSERT INTO quote_submissions")
	assert.Equal(t, []any{"b-1", "17", "ana@example.com", 1650.0, "pending", 2, 0, true, "", "", at}, exec.args[0])
}

func TestJournal_RecordError(t *testing.T) {
	j := &Journal{db: &recordingExec{err: errors.New("conn refused")}}

	err := j.Record(context.Background(), quote.JournalEntry{})
	require.ErrorContains(t, err, "conn refused")
}

func TestJournal_Migrate(t *testing.T) {
	exec := &recordingExec{}
	j := &Journal{db: exec}

	require.NoError(t, j.Migrate(context.Background()))
	assert.Contains(t, exec.sql[0], "CREATE TABLE IF NOT EXISTS quote_submissions")
}
