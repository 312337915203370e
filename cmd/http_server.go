package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/category"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/internal/transport/rest"
	"github.com/frahmantamala/expense-tracker/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server serving the expense table and the entry form API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	Store      *storeHandle
	EventBus   *events.EventBus
	Workflow   *expense.Service
	Dispatcher *expense.Dispatcher
	Router     *chi.Mux
	Logger     *slog.Logger
}

func startHTTPServer() error {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		return err
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "backend", deps.Store.Backend)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			runErr = err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error("Server shutdown error", "error", err)
	}
	deps.shutdown(ctx)

	deps.Logger.Info("Server stopped")
	return runErr
}

func (d *Dependencies) shutdown(ctx context.Context) {
	d.Dispatcher.Shutdown()
	if err := d.EventBus.Wait(ctx); err != nil {
		d.Logger.Warn("event handlers still running at shutdown", "error", err)
	}
	if err := d.Store.Close(ctx); err != nil {
		d.Logger.Error("Store close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) {
	base := transport.NewBaseHandler(deps.Logger)
	categories := category.NewService(deps.Config.Display.Categories, deps.Logger)

	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Expense:  expense.NewHandler(base, deps.Workflow, deps.Dispatcher),
		Category: category.NewHandler(base, categories),
		Health:   rest.NewHealthHandler(deps.Store.Pinger, deps.Store.Backend),
	}, deps.Logger)
}

// initializeDependencies opens the store and performs the initial load. A
// failure at either step is a startup error.
func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	store, err := openStore(ctx, config)
	if err != nil {
		return nil, internal.NewStartupError(err)
	}

	bus := events.NewEventBus(lg)
	registerEventHandlers(bus, lg)

	workflow := newWorkflow(config, store.Store, bus, lg)
	if _, err := workflow.Load(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	return &Dependencies{
		Config:     config,
		Store:      store,
		EventBus:   bus,
		Workflow:   workflow,
		Dispatcher: expense.NewDispatcher(workflow, expense.DispatcherConfig{}, lg),
		Router:     chi.NewRouter(),
		Logger:     lg,
	}, nil
}
