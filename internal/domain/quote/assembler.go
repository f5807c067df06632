package quote

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"logolate/go_backend/internal/domain/cart"
	"logolate/go_backend/internal/domain/catalog"
)

type ProductSource interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

type BudgetCreator interface {
	CreateBudget(ctx context.Context, q Quote) (Quote, error)
}

type SettingsSource interface {
	AdminEmail(ctx context.Context) (string, error)
}

type NotificationSender interface {
	SendQuoteNotifications(ctx context.Context, b NotificationBatch) ([]NotificationOutcome, error)
}

type Deps struct {
	Products ProductSource
	Budgets  BudgetCreator
	Settings SettingsSource
	Sender   NotificationSender
	Journal  Journal
}

type Config struct {
	FallbackAdminEmail string
	// Validity sets ExpiresAt when the request has none; zero disables it.
	Validity time.Duration
	// BreakerFailures is how many consecutive notification failures open the breaker.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// SubmitResult separates "quote created" from "notifications sent".
type SubmitResult struct {
	Quote         Quote              `json:"quote"`
	Stage         Stage              `json:"stage"`
	PriceFailures []PriceLookupError `json:"-"`
	Notifications NotificationReport `json:"notifications"`
}

type Assembler struct {
	deps    Deps
	cfg     Config
	log     *zap.Logger
	breaker *gobreaker.CircuitBreaker[[]NotificationOutcome]
	now     func() time.Time
}

func NewAssembler(deps Deps, cfg Config, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Journal == nil {
		deps.Journal = NopJournal{}
	}
	if strings.TrimSpace(cfg.FallbackAdminEmail) == "" {
		cfg.FallbackAdminEmail = DefaultAdminEmail
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = time.Minute
	}
	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[[]NotificationOutcome](gobreaker.Settings{
		Name:        "quote-notifications",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return &Assembler{deps: deps, cfg: cfg, log: log, breaker: breaker, now: time.Now}
}

// Assemble runs the whole flow: validate, enrich prices, submit, notify.
func (a *Assembler) Assemble(ctx context.Context, req Request) (SubmitResult, error) {
	msgs := append(Validate(req.Lines), ValidateClient(req.Client)...)
	if len(msgs) > 0 {
		a.log.Info("quote rejected by validation", zap.Int("messages", len(msgs)))
		return SubmitResult{Stage: StageDraft}, &ValidationError{Messages: msgs}
	}
	a.log.Debug("quote stage", zap.Stringer("stage", StageValidated), zap.Int("lines", len(req.Lines)))

	lines, failures := a.EnrichPrices(ctx, req.Lines)
	a.log.Debug("quote stage", zap.Stringer("stage", StagePriceEnriched), zap.Int("price_failures", len(failures)))

	now := a.now()
	q := Quote{
		Client:           trimClient(req.Client),
		Lines:            lines,
		TotalPrice:       Total(lines),
		Status:           StatusPending,
		CreatedAt:        now,
		ExpiresAt:        req.ExpiresAt,
		Notes:            strings.TrimSpace(req.Notes),
		CompanyLogo:      strings.TrimSpace(req.CompanyLogo),
		AcceptsMarketing: req.AcceptsMarketing,
	}
	if q.ExpiresAt == nil && a.cfg.Validity > 0 {
		exp := now.Add(a.cfg.Validity)
		q.ExpiresAt = &exp
	}

	res, err := a.submit(ctx, q, len(failures))
	res.PriceFailures = failures
	return res, err
}

// EnrichPrices looks up each line's live price one product at a time. A
// failed lookup prices that line at zero and the loop moves on.
func (a *Assembler) EnrichPrices(ctx context.Context, lines []cart.Line) ([]Line, []PriceLookupError) {
	out := make([]Line, 0, len(lines))
	var failures []PriceLookupError
	for _, cl := range lines {
		l := lineFromCart(cl)
		key := cl.Key()

		var p catalog.Product
		err := errors.New("line has no product id")
		if key != "" {
			p, err = a.deps.Products.GetProduct(ctx, key)
		}
		if err != nil {
			a.log.Warn("price lookup failed, pricing line at zero",
				zap.String("product_id", key), zap.Error(err))
			failures = append(failures, PriceLookupError{ProductID: key, Err: err})
			l.UnitPrice = 0
			l.Subtotal = 0
			out = append(out, l)
			continue
		}
		l.UnitPrice = p.Price
		l.Subtotal = p.Price * float64(l.Quantity)
		out = append(out, l)
	}
	return out, failures
}

// Submit posts the quote. Notifications follow only when the backend
// answers with a pending quote, and their failure never fails Submit.
func (a *Assembler) Submit(ctx context.Context, q Quote) (SubmitResult, error) {
	return a.submit(ctx, q, 0)
}

func (a *Assembler) submit(ctx context.Context, q Quote, priceFailures int) (SubmitResult, error) {
	entry := JournalEntry{
		ClientEmail:   q.Client.Email,
		Total:         q.TotalPrice,
		LineCount:     len(q.Lines),
		PriceFailures: priceFailures,
		At:            a.now(),
	}

	created, err := a.deps.Budgets.CreateBudget(ctx, q)
	if err != nil {
		a.log.Error("quote submission failed", zap.String("client_email", q.Client.Email), zap.Error(err))
		entry.SubmitError = err.Error()
		a.record(ctx, entry)
		return SubmitResult{Quote: q, Stage: StagePriceEnriched}, &SubmissionError{Err: err}
	}
	if len(created.Lines) == 0 {
		created.Lines = q.Lines
	}
	if created.TotalPrice == 0 {
		created.TotalPrice = q.TotalPrice
	}
	if created.Client.Email == "" {
		created.Client = q.Client
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = q.CreatedAt
	}
	if created.ExpiresAt == nil {
		created.ExpiresAt = q.ExpiresAt
	}
	a.log.Info("quote created",
		zap.String("quote_id", created.ID),
		zap.String("sequence", created.SequenceNumber),
		zap.String("status", string(created.Status)),
		zap.Float64("total", created.TotalPrice))

	res := SubmitResult{Quote: created, Stage: StageSubmitted}
	if created.Status == StatusPending {
		res.Notifications = a.Notify(ctx, created)
		a.log.Debug("quote stage", zap.Stringer("stage", StageNotificationsAttempted), zap.String("quote_id", created.ID))
	} else {
		a.log.Info("quote not pending, notifications skipped",
			zap.String("quote_id", created.ID), zap.String("status", string(created.Status)))
	}
	res.Stage = StageDone

	entry.QuoteID = created.ID
	entry.SequenceNumber = created.SequenceNumber
	entry.Status = created.Status
	entry.NotificationsSent = res.Notifications.AllSent()
	entry.NotificationError = res.Notifications.Error
	a.record(ctx, entry)
	return res, nil
}

// Notify sends the admin alert and the customer confirmation. It never
// returns an error; failures are logged and reported.
func (a *Assembler) Notify(ctx context.Context, q Quote) NotificationReport {
	adminEmail, err := a.deps.Settings.AdminEmail(ctx)
	if err != nil || strings.TrimSpace(adminEmail) == "" {
		a.log.Warn("admin email unavailable, using fallback",
			zap.String("fallback", a.cfg.FallbackAdminEmail), zap.Error(err))
		adminEmail = a.cfg.FallbackAdminEmail
	}
	report := NotificationReport{Attempted: true, AdminEmail: adminEmail}

	batch, err := BuildNotifications(q, adminEmail)
	if err != nil {
		return a.failReport(report, q, err)
	}

	outcomes, err := a.breaker.Execute(func() ([]NotificationOutcome, error) {
		return a.deps.Sender.SendQuoteNotifications(ctx, batch)
	})
	if err != nil {
		return a.failReport(report, q, err)
	}
	report.Outcomes = outcomes
	a.log.Info("quote notifications sent", zap.String("quote_id", q.ID), zap.Int("outcomes", len(outcomes)))
	return report
}

func (a *Assembler) failReport(report NotificationReport, q Quote, err error) NotificationReport {
	nerr := NotificationError{Err: err}
	a.log.Warn("quote notifications failed", zap.String("quote_id", q.ID), zap.Error(nerr))
	report.Err = nerr
	report.Error = nerr.Error()
	report.Outcomes = []NotificationOutcome{
		{RecipientRole: RoleAdmin, Error: err.Error()},
		{RecipientRole: RoleCustomer, Error: err.Error()},
	}
	return report
}

func (a *Assembler) record(ctx context.Context, e JournalEntry) {
	if err := a.deps.Journal.Record(ctx, e); err != nil {
		a.log.Warn("quote journal write failed", zap.String("quote_id", e.QuoteID), zap.Error(err))
	}
}

func trimClient(c Client) Client {
	return Client{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
		Company: strings.TrimSpace(c.Company),
	}
}
