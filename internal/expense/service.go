package expense

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	errors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
)

const (
	MsgExpenseAdded    = "Expense added successfully!"
	ActionAddExpense   = "Failed to add expense"
	ActionLoadExpenses = "Failed to load expenses"
)

type Options struct {
	Categories     []string
	CurrencySymbol string
	EventBus       *events.EventBus
	Clock          func() time.Time
}

// Service runs the entry workflow: validate, insert, reload the table and
// recompute the total.
type Service struct {
	store      Store
	table      *Table
	categories []string
	currency   string
	bus        *events.EventBus
	now        func() time.Time
	logger     *slog.Logger

	// refreshMu serialises ListAll through the summary update so a slower
	// reload never overwrites a newer one.
	refreshMu sync.Mutex
	mu        sync.RWMutex
	summary   Summary
}

func NewService(store Store, table *Table, lg *slog.Logger, opts Options) *Service {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	if table == nil {
		table = NewTable()
	}
	if len(opts.Categories) == 0 {
		opts.Categories = errors.DefaultCategories
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Service{
		store:      store,
		table:      table,
		categories: append([]string(nil), opts.Categories...),
		currency:   opts.CurrencySymbol,
		bus:        opts.EventBus,
		now:        opts.Clock,
		logger:     lg,
	}
	s.summary = Summary{Rows: []Row{}, TotalLabel: FormatTotal(s.currency, 0)}
	table.Subscribe(s.tableReplaced)
	return s
}

// tableReplaced runs after every table redraw.
func (s *Service) tableReplaced() {
	items := s.table.Items()
	total := Total(items)
	s.logger.Debug("expense table replaced", "rows", len(items), "total", total)
	if s.bus != nil {
		_ = s.bus.Publish(context.Background(), events.NewExpensesRefreshedEvent(len(items), total))
	}
}

func (s *Service) Table() *Table {
	return s.table
}

func (s *Service) Categories() []string {
	return append([]string(nil), s.categories...)
}

// NewForm returns a form in its reset state.
func (s *Service) NewForm() *EntryForm {
	f := &EntryForm{}
	f.Reset(s.categories[0], s.now())
	return f
}

// Summary returns the state computed by the last successful refresh.
func (s *Service) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

func (s *Service) TotalLabel() string {
	return s.Summary().TotalLabel
}

// Load performs the initial refresh. Failure is reported as a startup error.
func (s *Service) Load(ctx context.Context) (*Summary, error) {
	summary, err := s.refresh(ctx)
	if err != nil {
		logger.From(ctx).Error("initial load failed", "error", err)
		return nil, errors.NewStartupError(err)
	}
	return summary, nil
}

// Refresh reloads every expense into the table and recomputes the total.
func (s *Service) Refresh(ctx context.Context) (*Summary, error) {
	summary, err := s.refresh(ctx)
	if err != nil {
		logger.From(ctx).Error("refresh failed", "error", err)
		return nil, errors.NewStorageError(ActionLoadExpenses, err)
	}
	return summary, nil
}

func (s *Service) refresh(ctx context.Context) (*Summary, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	items, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	s.table.SetItems(items)
	total := Total(items)
	summary := Summary{
		Rows:       s.table.Rows(),
		Count:      len(items),
		Total:      total,
		TotalLabel: FormatTotal(s.currency, total),
	}

	s.mu.Lock()
	s.summary = summary
	s.mu.Unlock()

	return &summary, nil
}

// Submit validates form, inserts the expense and refreshes the display. On
// success the form is reset. On any failure the form is left untouched.
func (s *Service) Submit(ctx context.Context, form *EntryForm) (*SubmitResult, error) {
	lg := logger.From(ctx)

	amount, verr := validation.ValidateAmountText(form.Amount)
	if verr != nil {
		lg.Warn("expense rejected", "reason", verr.Code, "detail", verr.GetDetailedMessage(), "amount", form.Amount)
		return nil, verr
	}

	category := form.Category
	if category == "" {
		category = s.categories[0]
	}
	if verr := validation.ValidateCategory(category, s.categories); verr != nil {
		lg.Warn("expense rejected", "reason", verr.Code, "detail", verr.GetDetailedMessage(), "category", category)
		return nil, verr
	}

	description := strings.TrimSpace(form.Description)
	if verr := validation.ValidateDescription(description); verr != nil {
		lg.Warn("expense rejected", "reason", verr.Code, "detail", verr.GetDetailedMessage())
		return nil, verr
	}

	date := form.Date
	if date.IsZero() {
		date = s.now()
	}

	e := NewExpense(amount, category, description, date)
	if err := s.store.Insert(ctx, e); err != nil {
		lg.Error("failed to insert expense", "error", err)
		return nil, errors.NewStorageError(ActionAddExpense, err)
	}

	lg.Info("expense recorded",
		"expense_id", e.ID,
		"amount", e.Amount,
		"category", e.Category)

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewExpenseRecordedEvent(e.ID, e.Amount, e.Category, e.Date))
	}

	summary, err := s.refresh(ctx)
	if err != nil {
		lg.Error("failed to refresh after insert", "expense_id", e.ID, "error", err)
		return nil, errors.NewStorageError(ActionAddExpense, err)
	}

	form.Reset(s.categories[0], s.now())

	return &SubmitResult{
		Expense: e,
		Message: MsgExpenseAdded,
		Summary: summary,
	}, nil
}
