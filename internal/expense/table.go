package expense

import (
	"sync"
)

const (
	ColumnDate = iota
	ColumnCategory
	ColumnDescription
	ColumnAmount
)

var Columns = []string{"Date", "Category", "Description", "Amount"}

// Row is the display form of one expense.
type Row struct {
	Date        string `json:"date" yaml:"date"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`
	Amount      string `json:"amount" yaml:"amount"`
}

// Table holds the expenses currently on display and notifies subscribers
// whenever the item list is replaced. Cells are read-only.
type Table struct {
	mu        sync.RWMutex
	items     []*Expense
	listeners map[int]func()
	nextID    int
}

func NewTable() *Table {
	return &Table{listeners: make(map[int]func())}
}

// SetItems replaces the displayed list with a copy of items.
func (t *Table) SetItems(items []*Expense) {
	t.mu.Lock()
	t.items = append([]*Expense(nil), items...)
	listeners := make([]func(), 0, len(t.listeners))
	for _, fn := range t.listeners {
		listeners = append(listeners, fn)
	}
	t.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Subscribe registers fn to run after every SetItems. The returned func
// removes it.
func (t *Table) Subscribe(fn func()) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

func (t *Table) RowCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

func (t *Table) ColumnCount() int {
	return len(Columns)
}

func (t *Table) ColumnName(col int) string {
	if col < 0 || col >= len(Columns) {
		return ""
	}
	return Columns[col]
}

// ValueAt returns the display text of a cell, or "" outside the table.
func (t *Table) ValueAt(row, col int) string {
	e, ok := t.ExpenseAt(row)
	if !ok {
		return ""
	}
	switch col {
	case ColumnDate:
		return FormatDate(e.Date)
	case ColumnCategory:
		return e.Category
	case ColumnDescription:
		return e.Description
	case ColumnAmount:
		return FormatAmount(e.Amount)
	default:
		return ""
	}
}

func (t *Table) IsCellEditable(row, col int) bool {
	return false
}

// ExpenseAt returns the expense displayed at row.
func (t *Table) ExpenseAt(row int) (*Expense, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row < 0 || row >= len(t.items) {
		return nil, false
	}
	return t.items[row], true
}

func (t *Table) Items() []*Expense {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Expense(nil), t.items...)
}

func (t *Table) Rows() []Row {
	items := t.Items()
	rows := make([]Row, len(items))
	for i, e := range items {
		rows[i] = ToDisplayRow(e)
	}
	return rows
}

func ToDisplayRow(e *Expense) Row {
	return Row{
		Date:        FormatDate(e.Date),
		Category:    e.Category,
		Description: e.Description,
		Amount:      FormatAmount(e.Amount),
	}
}
