package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/google/uuid"
)

// ExpenseRepository keeps expenses in process memory. Contents are lost on exit.
type ExpenseRepository struct {
	mu    sync.RWMutex
	items []expense.Expense
}

func NewExpenseRepository() *ExpenseRepository {
	return &ExpenseRepository{}
}

func (r *ExpenseRepository) Insert(ctx context.Context, e *expense.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.IsStored() {
		return expense.ErrAlreadyStored
	}

	e.ID = uuid.NewString()
	r.mu.Lock()
	r.items = append(r.items, *e)
	r.mu.Unlock()
	return nil
}

// ListAll returns copies ordered by date, most recent first. Equal dates keep
// insertion order.
func (r *ExpenseRepository) ListAll(ctx context.Context) ([]*expense.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]*expense.Expense, len(r.items))
	for i := range r.items {
		e := r.items[i]
		out[i] = &e
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (r *ExpenseRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
