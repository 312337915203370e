package expense_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appErrors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/internal/expense"
)

// mockExpenseStore records calls and can be told to fail.
type mockExpenseStore struct {
	mu        sync.Mutex
	items     []*expense.Expense
	nextID    int
	insertErr error
	listErr   error
	inserts   int
	lists     int
}

func newMockExpenseStore() *mockExpenseStore {
	return &mockExpenseStore{}
}

func (m *mockExpenseStore) Insert(ctx context.Context, e *expense.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.insertErr != nil {
		return m.insertErr
	}
	m.nextID++
	e.ID = string(rune('a' + m.nextID - 1))
	cp := *e
	m.items = append(m.items, &cp)
	return nil
}

func (m *mockExpenseStore) ListAll(ctx context.Context) ([]*expense.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*expense.Expense, len(m.items))
	for i, e := range m.items {
		cp := *e
		out[i] = &cp
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *mockExpenseStore) insertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inserts
}

// staleListStore takes a snapshot on its next ListAll and then holds the
// call until release is closed.
type staleListStore struct {
	*mockExpenseStore
	hold    atomic.Bool
	started chan struct{}
	release chan struct{}
}

func newStaleListStore(inner *mockExpenseStore) *staleListStore {
	s := &staleListStore{
		mockExpenseStore: inner,
		started:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	s.hold.Store(true)
	return s
}

func (s *staleListStore) ListAll(ctx context.Context) ([]*expense.Expense, error) {
	if !s.hold.CompareAndSwap(true, false) {
		return s.mockExpenseStore.ListAll(ctx)
	}
	snapshot, err := s.mockExpenseStore.ListAll(ctx)
	close(s.started)
	<-s.release
	return snapshot, err
}

var (
	testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	fixedNow   = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.Local)
)

func newTestService(store expense.Store, bus *events.EventBus) *expense.Service {
	return expense.NewService(store, expense.NewTable(), testLogger, expense.Options{
		Categories:     []string{"Food", "Transport", "Other"},
		CurrencySymbol: "₹",
		EventBus:       bus,
		Clock:          func() time.Time { return fixedNow },
	})
}

var _ = Describe("Service", func() {
	var (
		store   *mockExpenseStore
		service *expense.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		store = newMockExpenseStore()
		service = newTestService(store, nil)
		ctx = context.Background()
	})

	Describe("NewForm", func() {
		It("starts blank with the first category and today's date", func() {
			form := service.NewForm()
			Expect(form.Amount).To(BeEmpty())
			Expect(form.Description).To(BeEmpty())
			Expect(form.Category).To(Equal("Food"))
			Expect(form.Date).To(Equal(fixedNow))
		})
	})

	Describe("Submit validation", func() {
		DescribeTable("rejects bad amounts in order without touching the store",
			func(amount, message string, code appErrors.ErrorCode) {
				form := &expense.EntryForm{Amount: amount, Category: "Food", Description: "x"}

				result, err := service.Submit(ctx, form)

				Expect(result).To(BeNil())
				Expect(err).To(MatchError(message))
				Expect(appErrors.IsValidationError(err)).To(BeTrue())
				appErr, _ := appErrors.IsAppError(err)
				Expect(appErr.Code).To(Equal(code))
				Expect(store.inserts).To(BeZero())
				Expect(form.Amount).To(Equal(amount))
				Expect(form.Description).To(Equal("x"))
			},
			Entry("empty", "", "Amount cannot be empty.", appErrors.ErrCodeAmountEmpty),
			Entry("whitespace", "   ", "Amount cannot be empty.", appErrors.ErrCodeAmountEmpty),
			Entry("not numeric", "abc", "Please enter a valid numeric amount.", appErrors.ErrCodeAmountNotNumeric),
			Entry("zero", "0", "Amount must be greater than zero.", appErrors.ErrCodeAmountNotPositive),
			Entry("negative", "-5", "Amount must be greater than zero.", appErrors.ErrCodeAmountNotPositive),
			Entry("underflows to zero", "1e-400", "Amount must be greater than zero.", appErrors.ErrCodeAmountNotPositive),
			Entry("exponent out of range", "1e30000000", "Please enter a valid numeric amount.", appErrors.ErrCodeAmountNotNumeric),
		)

		It("rejects an overlong description and keeps the form", func() {
			long := strings.Repeat("a", validation.MaxDescriptionLength+1)
			form := &expense.EntryForm{Amount: "5", Description: long}

			_, err := service.Submit(ctx, form)

			Expect(err).To(MatchError(validation.MsgDescriptionTooLong))
			Expect(appErrors.IsValidationError(err)).To(BeTrue())
			Expect(store.inserts).To(BeZero())
			Expect(form.Description).To(Equal(long))
		})

		It("rejects a category outside the configured set", func() {
			_, err := service.Submit(ctx, &expense.EntryForm{Amount: "5", Category: "Travel"})
			Expect(err).To(MatchError("Please select a valid category."))
			Expect(store.inserts).To(BeZero())
		})
	})

	Describe("Submit success", func() {
		It("stores, refreshes, resets the form and reports success", func() {
			date := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.Local)
			form := &expense.EntryForm{Amount: " 150.50 ", Category: "Transport", Description: " taxi ", Date: date}

			result, err := service.Submit(ctx, form)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Message).To(Equal("Expense added successfully!"))
			Expect(result.Expense.ID).NotTo(BeEmpty())
			Expect(result.Expense.Amount).To(Equal(150.5))
			Expect(result.Expense.Description).To(Equal("taxi"))
			Expect(result.Expense.Date).To(Equal(date))

			Expect(result.Summary.Count).To(Equal(1))
			Expect(result.Summary.TotalLabel).To(Equal("Total: ₹150.50"))
			Expect(result.Summary.Rows).To(Equal([]expense.Row{
				{Date: "2024-06-01", Category: "Transport", Description: "taxi", Amount: "150.50"},
			}))

			Expect(form.Amount).To(BeEmpty())
			Expect(form.Description).To(BeEmpty())
			Expect(form.Category).To(Equal("Food"))
			Expect(form.Date).To(Equal(fixedNow))

			Expect(service.Table().RowCount()).To(Equal(1))
			Expect(service.TotalLabel()).To(Equal("Total: ₹150.50"))
		})

		It("defaults a blank category and date", func() {
			result, err := service.Submit(ctx, &expense.EntryForm{Amount: "3"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Expense.Category).To(Equal("Food"))
			Expect(result.Expense.Date).To(Equal(fixedNow))
		})

		It("sums every stored amount", func() {
			for _, a := range []string{"100", "50.5", "0.25"} {
				_, err := service.Submit(ctx, &expense.EntryForm{Amount: a})
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(service.Summary().Total).To(BeNumerically("~", 150.75, 1e-9))
			Expect(service.TotalLabel()).To(Equal("Total: ₹150.75"))
		})

		It("publishes an expense.recorded event", func() {
			bus := events.NewEventBus(testLogger)
			service = newTestService(store, bus)

			received := make(chan string, 1)
			bus.Subscribe(events.ExpenseRecordedEventType, func(ctx context.Context, e events.Event) error {
				received <- e.(*events.ExpenseRecordedEvent).ExpenseID()
				return nil
			})

			result, err := service.Submit(ctx, &expense.EntryForm{Amount: "9"})
			Expect(err).NotTo(HaveOccurred())
			Eventually(received).Should(Receive(Equal(result.Expense.ID)))
		})

		It("publishes expenses.refreshed whenever the table is replaced", func() {
			bus := events.NewEventBus(testLogger)
			service = newTestService(store, bus)

			counts := make(chan interface{}, 2)
			bus.Subscribe(events.ExpensesRefreshedEventType, func(ctx context.Context, e events.Event) error {
				counts <- e.(*events.ExpensesRefreshedEvent).Data["count"]
				return nil
			})

			_, err := service.Submit(ctx, &expense.EntryForm{Amount: "9"})
			Expect(err).NotTo(HaveOccurred())
			Eventually(counts).Should(Receive(Equal(1)))

			service.Table().SetItems(nil)
			Eventually(counts).Should(Receive(Equal(0)))
		})
	})

	Describe("Submit failures", func() {
		It("reports an insert failure and keeps the form", func() {
			store.insertErr = errors.New("connection refused")
			form := &expense.EntryForm{Amount: "10", Category: "Food", Description: "keep me"}

			result, err := service.Submit(ctx, form)

			Expect(result).To(BeNil())
			Expect(err).To(MatchError("Failed to add expense: connection refused"))
			Expect(appErrors.IsStorageError(err)).To(BeTrue())
			Expect(errors.Is(err, store.insertErr)).To(BeTrue())
			Expect(form.Amount).To(Equal("10"))
			Expect(form.Description).To(Equal("keep me"))
			Expect(store.lists).To(BeZero())
		})

		It("reports a refresh failure after insert and keeps the form", func() {
			store.listErr = errors.New("read timeout")
			form := &expense.EntryForm{Amount: "10"}

			_, err := service.Submit(ctx, form)

			Expect(err).To(MatchError("Failed to add expense: read timeout"))
			Expect(store.inserts).To(Equal(1))
			Expect(form.Amount).To(Equal("10"))
		})
	})

	Describe("Refresh and Load", func() {
		It("starts with an empty table and a zero total", func() {
			Expect(service.Summary().Rows).To(BeEmpty())
			Expect(service.TotalLabel()).To(Equal("Total: ₹0.00"))
		})

		It("reloads the table from the store", func() {
			store.items = []*expense.Expense{
				{ID: "1", Amount: 5, Category: "Food", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)},
				{ID: "2", Amount: 7, Category: "Other", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)},
			}

			summary, err := service.Refresh(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Count).To(Equal(2))
			Expect(summary.Rows[0].Date).To(Equal("2024-02-01"))
			Expect(summary.TotalLabel).To(Equal("Total: ₹12.00"))
		})

		It("keeps a submission's reload when an older reload finishes later", func() {
			stale := newStaleListStore(store)
			service = newTestService(stale, nil)
			dispatcher := expense.NewDispatcher(service, expense.DispatcherConfig{}, testLogger)
			defer dispatcher.Shutdown()

			refreshed := make(chan error, 1)
			go func() {
				_, err := service.Refresh(ctx)
				refreshed <- err
			}()
			Eventually(stale.started).Should(BeClosed())

			submitted := make(chan error, 1)
			go func() {
				_, err := dispatcher.Submit(ctx, &expense.EntryForm{Amount: "50"})
				submitted <- err
			}()
			Eventually(store.insertCount).Should(Equal(1))

			close(stale.release)
			Eventually(refreshed).Should(Receive(BeNil()))
			Eventually(submitted).Should(Receive(BeNil()))

			Expect(service.TotalLabel()).To(Equal("Total: ₹50.00"))
			Expect(service.Table().RowCount()).To(Equal(1))
		})

		It("wraps a refresh failure as a storage error", func() {
			store.listErr = errors.New("down")
			_, err := service.Refresh(ctx)
			Expect(err).To(MatchError("Failed to load expenses: down"))
		})

		It("wraps an initial load failure as a startup error", func() {
			store.listErr = errors.New("no server")
			_, err := service.Load(ctx)
			Expect(err).To(MatchError("Error starting application: no server"))
			appErr, ok := appErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(appErrors.ErrorTypeStartup))
		})
	})
})
