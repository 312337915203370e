package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/internal/expense/memory"
	"github.com/frahmantamala/expense-tracker/internal/expense/mongodb"
	expensePostgres "github.com/frahmantamala/expense-tracker/internal/expense/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// storeHandle is an opened store plus what is needed to probe and close it.
type storeHandle struct {
	Store  expense.Store
	Pinger interface {
		Ping(ctx context.Context) error
	}
	Backend string
	Name    string
	closeFn func(ctx context.Context) error
}

func (h *storeHandle) Close(ctx context.Context) error {
	if h.closeFn == nil {
		return nil
	}
	return h.closeFn(ctx)
}

func openStore(ctx context.Context, cfg *internal.Config) (*storeHandle, error) {
	switch cfg.Storage.Backend {
	case internal.BackendMongo:
		client, err := mongodb.Connect(ctx, mongodb.ConfigFrom(cfg.Storage.Mongo))
		if err != nil {
			return nil, err
		}
		repo := mongodb.NewExpenseRepository(client.Collection(cfg.Storage.Mongo.Collection), cfg.Storage.Mongo.OperationTimeout)
		return &storeHandle{
			Store:   repo,
			Pinger:  client,
			Backend: cfg.Storage.Backend,
			Name:    client.Name(),
			closeFn: client.Close,
		}, nil

	case internal.BackendPostgres:
		db, err := initDB(cfg.Storage.Database)
		if err != nil {
			return nil, err
		}
		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), gormConfig())
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to open gorm: %w", err)
		}
		var name string
		if err := db.GetContext(ctx, &name, "SELECT current_database()"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to read database name: %w", err)
		}
		repo := expensePostgres.NewExpenseRepository(gdb)
		return &storeHandle{
			Store:   repo,
			Pinger:  repo,
			Backend: cfg.Storage.Backend,
			Name:    name,
			closeFn: func(context.Context) error { return db.Close() },
		}, nil

	case internal.BackendSQLite:
		gdb, err := gorm.Open(sqlite.Open(cfg.Storage.Database.Source), gormConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		repo := expensePostgres.NewExpenseRepository(gdb)
		if err := repo.AutoMigrate(ctx); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
		}
		return &storeHandle{
			Store:   repo,
			Pinger:  repo,
			Backend: cfg.Storage.Backend,
			Name:    cfg.Storage.Database.Source,
			closeFn: func(context.Context) error { return repo.Close() },
		}, nil

	case internal.BackendMemory:
		repo := memory.NewExpenseRepository()
		return &storeHandle{
			Store:   repo,
			Pinger:  repo,
			Backend: cfg.Storage.Backend,
			Name:    internal.BackendMemory,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return dbConn, nil
}

func newWorkflow(cfg *internal.Config, store expense.Store, bus *events.EventBus, lg *slog.Logger) *expense.Service {
	return expense.NewService(store, expense.NewTable(), lg, expense.Options{
		Categories:     cfg.Display.Categories,
		CurrencySymbol: cfg.Display.CurrencySymbol,
		EventBus:       bus,
	})
}

// withStore loads config, opens the store and runs fn, closing the store after.
func withStore(fn func(ctx context.Context, cfg *internal.Config, h *storeHandle) error) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	h, err := openStore(ctx, cfg)
	if err != nil {
		return internal.NewStartupError(err)
	}
	defer func() {
		if err := h.Close(ctx); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	return fn(ctx, cfg, h)
}
