package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/expense-tracker/internal"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExpenseRepository stores one expense per document.
type ExpenseRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewExpenseRepository(coll *mongo.Collection, timeout time.Duration) *ExpenseRepository {
	return &ExpenseRepository{coll: coll, timeout: timeout}
}

func (r *ExpenseRepository) Insert(ctx context.Context, e *expense.Expense) error {
	if e.IsStored() {
		return expense.ErrAlreadyStored
	}

	ctx, cancel := internal.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, expense.ToDocument(e))
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert expense: unexpected id type %T", res.InsertedID)
	}
	e.ID = oid.Hex()
	return nil
}

// ListAll reads the whole collection, newest date first. A document missing
// a required field fails the entire read.
func (r *ExpenseRepository) ListAll(ctx context.Context) ([]*expense.Expense, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*expense.Expense, 0)
	for cur.Next(ctx) {
		var doc expenseDatamodel.StoredDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("list expenses: %w: %v", expense.ErrMalformedRecord, err)
		}
		e, err := expense.FromStoredDocument(&doc)
		if err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		out = append(out, e)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (r *ExpenseRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
