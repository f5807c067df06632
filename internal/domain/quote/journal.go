package quote

import (
	"context"
	"time"
)

// JournalEntry records one submission attempt.
type JournalEntry struct {
	QuoteID           string
	SequenceNumber    string
	ClientEmail       string
	Total             float64
	Status            Status
	LineCount         int
	PriceFailures     int
	NotificationsSent bool
	NotificationError string
	SubmitError       string
	At                time.Time
}

type Journal interface {
	Record(ctx context.Context, e JournalEntry) error
}

type NopJournal struct{}

func (NopJournal) Record(context.Context, JournalEntry) error { return nil }
