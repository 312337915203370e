package postgres

import (
	"context"
	"fmt"

	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpenseRepository stores expenses in a SQL table through GORM. It serves
// both the postgres and sqlite backends.
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// AutoMigrate creates the expenses table when it does not exist. Postgres
// deployments use the goose migrations instead.
func (r *ExpenseRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&expenseDatamodel.Row{})
}

func (r *ExpenseRepository) Insert(ctx context.Context, e *expense.Expense) error {
	if e.IsStored() {
		return expense.ErrAlreadyStored
	}

	row := expense.ToRow(e)
	row.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	e.ID = row.ID
	return nil
}

func (r *ExpenseRepository) ListAll(ctx context.Context) ([]*expense.Expense, error) {
	var rows []*expenseDatamodel.Row
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expense.FromRows(rows), nil
}

func (r *ExpenseRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *ExpenseRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
