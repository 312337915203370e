package expense

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Expense is a single recorded expense. ID is empty until a Store assigns it.
type Expense struct {
	ID          string    `json:"id,omitempty" yaml:"id,omitempty"`
	Amount      float64   `json:"amount" yaml:"amount"`
	Category    string    `json:"category" yaml:"category"`
	Description string    `json:"description" yaml:"description"`
	Date        time.Time `json:"date" yaml:"date"`
}

// Store persists expenses. Implementations assign the ID on Insert and return
// ListAll results ordered by Date, most recent first.
type Store interface {
	Insert(ctx context.Context, e *Expense) error
	ListAll(ctx context.Context) ([]*Expense, error)
}

var (
	ErrMalformedRecord = errors.New("malformed expense record")
	ErrAlreadyStored   = errors.New("expense already has an id")
)

func NewExpense(amount float64, category, description string, date time.Time) *Expense {
	return &Expense{
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
	}
}

func (e *Expense) IsStored() bool {
	return e.ID != ""
}

func ToDocument(e *Expense) *expenseDatamodel.Document {
	doc := &expenseDatamodel.Document{
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
	}
	if oid, err := primitive.ObjectIDFromHex(e.ID); err == nil {
		doc.ID = oid
	}
	return doc
}

// FromStoredDocument converts a decoded document, failing with
// ErrMalformedRecord when a required field is missing.
func FromStoredDocument(d *expenseDatamodel.StoredDocument) (*Expense, error) {
	if missing := d.MissingFields(); len(missing) > 0 {
		return nil, &MalformedRecordError{ID: d.ID.Hex(), Fields: missing}
	}
	e := &Expense{
		ID:       d.ID.Hex(),
		Amount:   *d.Amount,
		Category: *d.Category,
		Date:     *d.Date,
	}
	if d.Description != nil {
		e.Description = *d.Description
	}
	return e, nil
}

func ToRow(e *Expense) *expenseDatamodel.Row {
	return &expenseDatamodel.Row{
		ID:          e.ID,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.UTC(),
	}
}

func FromRow(r *expenseDatamodel.Row) *Expense {
	return &Expense{
		ID:          r.ID,
		Amount:      r.Amount,
		Category:    r.Category,
		Description: r.Description,
		Date:        r.Date,
	}
}

func FromRows(rows []*expenseDatamodel.Row) []*Expense {
	result := make([]*Expense, len(rows))
	for i, r := range rows {
		result[i] = FromRow(r)
	}
	return result
}

// Total sums every amount.
func Total(expenses []*Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// MalformedRecordError reports a stored record lacking required fields.
type MalformedRecordError struct {
	ID     string
	Fields []string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s %s: missing %s", ErrMalformedRecord, e.ID, strings.Join(e.Fields, ", "))
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}
