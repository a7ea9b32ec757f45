package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
	"expensetracker/internal/voice"
)

// TrackerOptions configures a Tracker. Zero values select defaults.
type TrackerOptions struct {
	Registry *core.Registry
	Guard    core.CreateGuard
	Now      func() time.Time
	NewID    func() string
	Logger   *log.Logger
}

// FormUpdate carries the draft fields posted by the form. Nil fields are left alone.
type FormUpdate struct {
	Amount   *string
	Category *string
	Type     *string
	Date     *string
}

// SegmentResult describes what a voice segment did.
type SegmentResult struct {
	Form    core.FormState
	Action  voice.Action
	Created *core.Transaction
}

// Tracker owns the draft form and serializes every change to it, so a
// segment's read-modify-write and a create/reset never interleave.
type Tracker struct {
	mu         sync.Mutex
	form       core.FormState
	transcript string

	store    ledger.Store
	registry *core.Registry
	mapper   *voice.Mapper
	guard    core.CreateGuard
	now      func() time.Time
	newID    func() string
	logger   *log.Logger
	events   *log.StructuredLogger

	version atomic.Uint64
}

func NewTracker(store ledger.Store, opts TrackerOptions) *Tracker {
	if opts.Registry == nil {
		opts.Registry = core.DefaultRegistry()
	}
	if opts.Guard == "" {
		opts.Guard = core.GuardStrict
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = core.NewID
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	logger := opts.Logger.WithComponent(log.ComponentTracker)

	return &Tracker{
		form:     core.NewFormState(opts.Now()),
		store:    store,
		registry: opts.Registry,
		mapper:   voice.NewMapper(opts.Registry, opts.Now),
		guard:    opts.Guard,
		now:      opts.Now,
		newID:    opts.NewID,
		logger:   logger,
		events:   log.NewStructuredLogger(logger),
	}
}

func (t *Tracker) Registry() *core.Registry { return t.registry }

// Form returns the current draft.
func (t *Tracker) Form() core.FormState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.form
}

// LastTranscript returns the words of the most recent voice segment.
func (t *Tracker) LastTranscript() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transcript
}

// Version increases on every change to the stored transactions.
func (t *Tracker) Version() uint64 {
	return t.version.Load()
}

// UpdateForm applies posted fields to the draft. Dates are normalized to
// YYYY-MM-DD when recognisable; an unknown type is ignored.
func (t *Tracker) UpdateForm(ctx context.Context, u FormUpdate) core.FormState {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.applyLocked(ctx, u)
	return t.form
}

func (t *Tracker) applyLocked(ctx context.Context, u FormUpdate) {
	if u.Amount != nil {
		t.form.Amount = strings.TrimSpace(*u.Amount)
	}
	if u.Category != nil {
		t.form.Category = strings.TrimSpace(*u.Category)
	}
	if u.Type != nil {
		typ, err := core.ParseTransactionType(*u.Type)
		if err != nil {
			t.logger.WarnContext(ctx, "Ignoring unknown transaction type",
				log.FieldTransactionType, *u.Type,
				log.FieldOperation, log.OpUpdate)
		} else {
			t.form.Type = typ
		}
	}
	if u.Date != nil {
		t.form.Date = core.NormalizeDate(*u.Date)
	}
}

// ResetForm restores the default draft.
func (t *Tracker) ResetForm(ctx context.Context) core.FormState {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.form = core.NewFormState(t.now())
	t.logger.DebugContext(ctx, "Form reset", log.FieldOperation, log.OpReset)
	return t.form
}

// CreateTransaction turns the current draft into a transaction. A draft the
// guard rejects is not an error: created is false and the draft is kept.
func (t *Tracker) CreateTransaction(ctx context.Context) (core.Transaction, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.createLocked(ctx, "form")
}

// Submit applies posted fields and creates the transaction in one step.
func (t *Tracker) Submit(ctx context.Context, u FormUpdate) (core.Transaction, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.applyLocked(ctx, u)
	return t.createLocked(ctx, "form")
}

func (t *Tracker) createLocked(ctx context.Context, source string) (core.Transaction, bool, error) {
	if err := t.guard.Check(t.form); err != nil {
		t.logger.WarnContext(ctx, "Draft rejected",
			log.FieldAmount, t.form.Amount,
			log.FieldDate, t.form.Date,
			log.FieldCategory, t.form.Category,
			log.FieldError, err.Error(),
			"guard", string(t.guard),
			log.FieldSource, source)
		return core.Transaction{}, false, nil
	}

	tx := t.form.Build(t.newID())
	if err := t.store.Add(ctx, tx); err != nil {
		t.events.LogError(ctx, "Store rejected transaction", err, log.OpCreate,
			log.NewFields().Add(log.FieldTransactionID, tx.ID).Add(log.FieldSource, source))
		return core.Transaction{}, false, fmt.Errorf("add transaction: %w", err)
	}
	t.version.Add(1)
	t.form = core.NewFormState(t.now())

	t.events.LogTransactionCreated(ctx, tx.ID, tx.Type.String(), tx.Amount.String(), tx.Category, tx.Date, source)
	return tx, true, nil
}

// HandleSegment folds a voice segment into the draft and performs the
// create or reset it asks for.
func (t *Tracker) HandleSegment(ctx context.Context, seg voice.Segment) (SegmentResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if words := seg.Transcript(); words != "" {
		t.transcript = words
	}

	form, action, report := t.mapper.Apply(t.form, seg)
	t.form = form

	fields := log.NewFields().WithSegment(seg.ID, seg.ContextID, string(seg.Intent.Intent), seg.IsFinal)
	for _, name := range report.UnmatchedCategories {
		t.logger.WarnContext(ctx, "Voice category not found", append(fields.ToSlice(), log.FieldCategory, name)...)
	}
	for _, e := range report.IgnoredEntities {
		t.logger.DebugContext(ctx, "Voice entity ignored", append(fields.ToSlice(), log.FieldEntity, string(e.Type))...)
	}

	result := SegmentResult{Action: action}
	switch action {
	case voice.ActionCreate:
		tx, created, err := t.createLocked(ctx, "voice")
		if err != nil {
			result.Form = t.form
			return result, err
		}
		if created {
			result.Created = &tx
		}
	case voice.ActionReset:
		t.logger.InfoContext(ctx, "Draft cancelled by voice", fields.ToSlice()...)
	}

	result.Form = t.form
	return result, nil
}

// DeleteTransaction removes a transaction. Unknown ids are a no-op.
func (t *Tracker) DeleteTransaction(ctx context.Context, id string) error {
	if err := t.store.Delete(ctx, id); err != nil {
		t.events.LogError(ctx, "Store delete failed", err, log.OpDelete,
			log.NewFields().Add(log.FieldTransactionID, id))
		return fmt.Errorf("delete transaction: %w", err)
	}
	t.version.Add(1)
	t.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpDelete)
	return nil
}

// Transactions lists stored transactions, newest first.
func (t *Tracker) Transactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := t.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Summary aggregates the stored transactions of one type.
func (t *Tracker) Summary(ctx context.Context, typ core.TransactionType) (core.Summary, error) {
	if !typ.IsValid() {
		return core.Summary{}, core.ErrUnknownType
	}
	txs, err := t.Transactions(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	for _, o := range core.Orphans(txs, typ, t.registry) {
		t.logger.DebugContext(ctx, "Transaction category not in registry",
			log.FieldTransactionID, o.ID,
			log.FieldCategory, o.Category,
			log.FieldTransactionType, o.Type.String())
	}
	return core.Summarize(txs, typ, t.registry), nil
}

// Balance is total income minus total expense.
func (t *Tracker) Balance(ctx context.Context) (decimal.Decimal, error) {
	txs, err := t.Transactions(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	income := core.Summarize(txs, core.Income, t.registry)
	expense := core.Summarize(txs, core.Expense, t.registry)
	return income.Total.Sub(expense.Total), nil
}
