package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	ExpenseRecordedEventType   = "expense.recorded"
	ExpensesRefreshedEventType = "expenses.refreshed"
)

type ExpenseRecordedEvent struct {
	BaseEvent
}

func NewExpenseRecordedEvent(expenseID string, amount float64, category string, date time.Time) *ExpenseRecordedEvent {
	return &ExpenseRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      ExpenseRecordedEventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"expense_id": expenseID,
				"amount":     amount,
				"category":   category,
				"date":       date,
			},
		},
	}
}

func (e *ExpenseRecordedEvent) ExpenseID() string {
	if id, ok := e.Data["expense_id"].(string); ok {
		return id
	}
	return ""
}

type ExpensesRefreshedEvent struct {
	BaseEvent
}

func NewExpensesRefreshedEvent(count int, total float64) *ExpensesRefreshedEvent {
	return &ExpensesRefreshedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      ExpensesRefreshedEventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"count": count,
				"total": total,
			},
		},
	}
}
