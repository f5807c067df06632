package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"logolate/go_backend/internal/domain/quote"
)

const createJournalTable = `
CREATE TABLE IF NOT EXISTS quote_submissions (
	id                  BIGSERIAL PRIMARY KEY,
	quote_id            TEXT NOT NULL DEFAULT '',
	sequence_number     TEXT NOT NULL DEFAULT '',
	client_email        TEXT NOT NULL,
	total               DOUBLE PRECISION NOT NULL,
	status              TEXT NOT NULL DEFAULT '',
	line_count          INTEGER NOT NULL,
	price_failures      INTEGER NOT NULL DEFAULT 0,
	notifications_sent  BOOLEAN NOT NULL DEFAULT FALSE,
	notification_error  TEXT NOT NULL DEFAULT '',
	submit_error        TEXT NOT NULL DEFAULT '',
	recorded_at         TIMESTAMPTZ NOT NULL
)`

const insertJournalEntry = `
INSERT INTO quote_submissions (
	quote_id, sequence_number, client_email, total, status, line_count,
	price_failures, notifications_sent, notification_error, submit_error, recorded_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Journal records quote submissions in the quote_submissions table.
type Journal struct {
	db execer
}

func NewJournal(db *DB) *Journal { return &Journal{db: db.Pool} }

// Migrate creates the journal table when it does not exist yet.
func (j *Journal) Migrate(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, createJournalTable); err != nil {
		return fmt.Errorf("create quote_submissions: %w", err)
	}
	return nil
}

func (j *Journal) Record(ctx context.Context, e quote.JournalEntry) error {
	_, err := j.db.Exec(ctx, insertJournalEntry,
		e.QuoteID, e.SequenceNumber, e.ClientEmail, e.Total, string(e.Status), e.LineCount,
		e.PriceFailures, e.NotificationsSent, e.NotificationError, e.SubmitError, e.At)
	if err != nil {
		return fmt.Errorf("insert quote_submissions: %w", err)
	}
	return nil
}
