package quote

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logolate/go_backend/internal/domain/cart"
	"logolate/go_backend/internal/domain/catalog"
)

type fakeProducts struct {
	prices   map[string]float64
	calls    []string
	inFlight int32
	maxSeen  int32
}

func (f *fakeProducts) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	if n > f.maxSeen {
		f.maxSeen = n
	}
	f.calls = append(f.calls, id)
	price, ok := f.prices[id]
	if !ok {
		return catalog.Product{}, errors.New("product service unavailable")
	}
	return catalog.Product{ID: id, Price: price}, nil
}

type fakeBudgets struct {
	status Status
	err    error
	got    []Quote
}

func (f *fakeBudgets) CreateBudget(_ context.Context, q Quote) (Quote, error) {
	f.got = append(f.got, q)
	if f.err != nil {
		return Quote{}, f.err
	}
	q.ID = "b-1"
	q.SequenceNumber = "2024-0001"
	q.Status = f.status
	return q, nil
}

type fakeSettings struct {
	email string
	err   error
}

func (f fakeSettings) AdminEmail(context.Context) (string, error) { return f.email, f.err }

type fakeSender struct {
	err     error
	batches []NotificationBatch
}

func (f *fakeSender) SendQuoteNotifications(_ context.Context, b NotificationBatch) ([]NotificationOutcome, error) {
	f.batches = append(f.batches, b)
	if f.err != nil {
		return nil, f.err
	}
	now := time.Now()
	return []NotificationOutcome{
		{RecipientRole: RoleAdmin, Sent: true, SentAt: &now},
		{RecipientRole: RoleCustomer, Sent: true, SentAt: &now},
	}, nil
}

type fakeJournal struct {
	entries []JournalEntry
	err     error
}

func (f *fakeJournal) Record(_ context.Context, e JournalEntry) error {
	f.entries = append(f.entries, e)
	return f.err
}

type fixture struct {
	products *fakeProducts
	budgets  *fakeBudgets
	settings fakeSettings
	sender   *fakeSender
	journal  *fakeJournal
}

func newFixture() *fixture {
	return &fixture{
		products: &fakeProducts{prices: map[string]float64{"A": 12.50, "B": 8.00}},
		budgets:  &fakeBudgets{status: StatusPending},
		settings: fakeSettings{email: "pedidos@logolate.com"},
		sender:   &fakeSender{},
		journal:  &fakeJournal{},
	}
}

func (f *fixture) assembler(cfg Config) *Assembler {
	a := NewAssembler(Deps{
		Products: f.products,
		Budgets:  f.budgets,
		Settings: f.settings,
		Sender:   f.sender,
		Journal:  f.journal,
	}, cfg, nil)
	a.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return a
}

func twoLines() []cart.Line {
	return []cart.Line{
		{ProductID: "A", DisplayName: "Bombón logo", Reference: "BOM-01", UnitPrice: 1, Quantity: 100, MinQuantity: 100},
		{ProductID: "B", DisplayName: "Caramelo", Reference: "CAR-01", UnitPrice: 1, Quantity: 50, MinQuantity: 50},
	}
}

func validRequest() Request {
	return Request{
		Client: Client{Name: "Ana", Email: "ana@example.com"},
		Lines:  twoLines(),
	}
}

func TestEnrichPrices_UsesLivePrices(t *testing.T) {
	f := newFixture()
	lines, failures := f.assembler(Config{}).EnrichPrices(context.Background(), twoLines())

	assert.Empty(t, failures)
	require.Len(t, lines, 2)
	assert.Equal(t, 12.50, lines[0].UnitPrice)
	assert.Equal(t, 1250.0, lines[0].Subtotal)
	assert.Equal(t, 8.0, lines[1].UnitPrice)
	assert.Equal(t, 400.0, lines[1].Subtotal)
}

func TestEnrichPrices_FailedLookupPricesLineAtZeroAndContinues(t *testing.T) {
	f := newFixture()
	in := append(twoLines(), cart.Line{ProductID: "C", DisplayName: "Roto", Reference: "X", UnitPrice: 99, Quantity: 10})
	in[0], in[2] = in[2], in[0]

	lines, failures := f.assembler(Config{}).EnrichPrices(context.Background(), in)

	require.Len(t, lines, 3)
	assert.Equal(t, "C", lines[0].ProductID)
	assert.Equal(t, 0.0, lines[0].UnitPrice)
	assert.Equal(t, 0.0, lines[0].Subtotal)
	assert.Equal(t, 400.0, lines[1].Subtotal)
	assert.Equal(t, 1250.0, lines[2].Subtotal)

	require.Len(t, failures, 1)
	assert.Equal(t, "C", failures[0].ProductID)
}

func TestEnrichPrices_IsSequential(t *testing.T) {
	f := newFixture()
	f.assembler(Config{}).EnrichPrices(context.Background(), twoLines())

	assert.Equal(t, []string{"A", "B"}, f.products.calls)
	assert.Equal(t, int32(1), f.products.maxSeen)
}

func TestEnrichPrices_LineWithoutIdentity(t *testing.T) {
	f := newFixture()
	lines, failures := f.assembler(Config{}).EnrichPrices(context.Background(), []cart.Line{{DisplayName: "?", Quantity: 3, UnitPrice: 5}})

	require.Len(t, lines, 1)
	assert.Equal(t, 0.0, lines[0].Subtotal)
	assert.Len(t, failures, 1)
	assert.Empty(t, f.products.calls)
}

func TestAssemble_EndToEnd(t *testing.T) {
	f := newFixture()
	res, err := f.assembler(Config{}).Assemble(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "b-1", res.Quote.ID)
	assert.Equal(t, StatusPending, res.Quote.Status)
	assert.Equal(t, StageDone, res.Stage)
	assert.Equal(t, 1650.0, res.Quote.TotalPrice)

	require.Len(t, f.budgets.got, 1)
	assert.Equal(t, 1650.0, f.budgets.got[0].TotalPrice)

	require.Len(t, f.sender.batches, 1)
	batch := f.sender.batches[0]
	assert.Equal(t, 1650.0, batch.Quote.TotalPrice)
	assert.Equal(t, "pedidos@logolate.com", batch.AdminEmail)
	require.Len(t, batch.Emails, 2)
	assert.Equal(t, RoleAdmin, batch.Emails[0].Role)
	assert.Equal(t, "pedidos@logolate.com", batch.Emails[0].To)
	assert.Equal(t, RoleCustomer, batch.Emails[1].Role)
	assert.Equal(t, "ana@example.com", batch.Emails[1].To)

	assert.True(t, res.Notifications.AllSent())
	require.Len(t, f.journal.entries, 1)
	assert.True(t, f.journal.entries[0].NotificationsSent)
	assert.Equal(t, "b-1", f.journal.entries[0].QuoteID)
}

func TestAssemble_NotificationFailureStillSucceeds(t *testing.T) {
	f := newFixture()
	f.sender.err = errors.New("smtp relay down")

	res, err := f.assembler(Config{}).Assemble(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "b-1", res.Quote.ID)
	assert.Equal(t, 1650.0, res.Quote.TotalPrice)
	assert.Len(t, f.sender.batches, 1)
	assert.True(t, res.Notifications.Attempted)
	assert.False(t, res.Notifications.AllSent())

	var nerr NotificationError
	require.ErrorAs(t, res.Notifications.Err, &nerr)
	assert.Contains(t, res.Notifications.Error, "smtp relay down")
	require.Len(t, res.Notifications.Outcomes, 2)
	assert.False(t, res.Notifications.Outcomes[0].Sent)

	assert.Equal(t, res.Notifications.Error, f.journal.entries[0].NotificationError)
}

func TestAssemble_ConfigFailureUsesFallbackAdmin(t *testing.T) {
	f := newFixture()
	f.settings = fakeSettings{err: errors.New("config 500")}

	res, err := f.assembler(Config{}).Assemble(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, DefaultAdminEmail, res.Notifications.AdminEmail)
	assert.Equal(t, "admin@logolate.com", f.sender.batches[0].Emails[0].To)
}

func TestAssemble_ConfiguredFallbackAdmin(t *testing.T) {
	f := newFixture()
	f.settings = fakeSettings{email: "  "}

	res, err := f.assembler(Config{FallbackAdminEmail: "ops@logolate.com"}).Assemble(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "ops@logolate.com", res.Notifications.AdminEmail)
}

func TestAssemble_NonPendingSkipsNotifications(t *testing.T) {
	f := newFixture()
	f.budgets.status = StatusProcessing

	res, err := f.assembler(Config{}).Assemble(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, res.Notifications.Attempted)
	assert.Empty(t, f.sender.batches)
}

func TestAssemble_SubmissionErrorSurfaces(t *testing.T) {
	f := newFixture()
	backendErr := errors.New("backend 503")
	f.budgets.err = backendErr

	_, err := f.assembler(Config{}).Assemble(context.Background(), validRequest())

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, backendErr)
	assert.Empty(t, f.sender.batches)
	require.Len(t, f.budgets.got, 1)
	require.Len(t, f.journal.entries, 1)
	assert.Equal(t, "backend 503", f.journal.entries[0].SubmitError)
}

func TestAssemble_ValidationStopsBeforeNetwork(t *testing.T) {
	f := newFixture()
	req := validRequest()
	req.Lines[0].Quantity = 5

	_, err := f.assembler(Config{}).Assemble(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Messages, 1)
	assert.Contains(t, verr.Messages[0], "Bombón logo")
	assert.Empty(t, f.products.calls)
	assert.Empty(t, f.budgets.got)
	assert.Empty(t, f.journal.entries)
}

func TestAssemble_ClientIsValidated(t *testing.T) {
	f := newFixture()
	req := validRequest()
	req.Client = Client{Name: " ", Email: "not-an-email"}

	_, err := f.assembler(Config{}).Assemble(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Messages, 2)
}

func TestAssemble_PriceFailureStillSubmits(t *testing.T) {
	f := newFixture()
	delete(f.products.prices, "B")

	res, err := f.assembler(Config{}).Assemble(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 1250.0, res.Quote.TotalPrice)
	require.Len(t, res.PriceFailures, 1)
	assert.Equal(t, "B", res.PriceFailures[0].ProductID)
	assert.Equal(t, 1, f.journal.entries[0].PriceFailures)
}

func TestAssemble_ValiditySetsExpiry(t *testing.T) {
	f := newFixture()
	res, err := f.assembler(Config{Validity: 30 * 24 * time.Hour}).Assemble(context.Background(), validRequest())
	require.NoError(t, err)

	require.NotNil(t, res.Quote.ExpiresAt)
	assert.Equal(t, time.Date(2026, 3, 31, 10, 0, 0, 0, time.UTC), *res.Quote.ExpiresAt)
}

func TestAssemble_JournalFailureIsIgnored(t *testing.T) {
	f := newFixture()
	f.journal.err = errors.New("db down")

	_, err := f.assembler(Config{}).Assemble(context.Background(), validRequest())
	assert.NoError(t, err)
}

func TestNotify_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	f := newFixture()
	f.sender.err = errors.New("down")
	a := f.assembler(Config{BreakerFailures: 2, BreakerCooldown: time.Hour})

	q := Quote{ID: "q", Client: Client{Name: "Ana", Email: "ana@example.com"}}
	for i := 0; i < 3; i++ {
		r := a.Notify(context.Background(), q)
		require.Error(t, r.Err)
	}

	// the third call is rejected by the open breaker without reaching the sender
	assert.Len(t, f.sender.batches, 2)
	last := a.Notify(context.Background(), q)
	assert.True(t, strings.Contains(last.Error, "open"))
}
