package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-tracker/internal/category"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/internal/transport/middleware"
	"github.com/frahmantamala/expense-tracker/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Expense  *expense.Handler
	Category *category.Handler
	Health   *HealthHandler
}

// OpenAPIPath is where the served API document is read from.
var OpenAPIPath = "./api/openapi.yml"

func RegisterAllRoutes(router chi.Router, h Handlers, logger *slog.Logger) {
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID(logger))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, OpenAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	if h.Health != nil {
		router.Get("/health", h.Health.HealthCheckHandler)
		router.Get("/ping", h.Health.PingHandler)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Category != nil {
			r.Get("/categories", h.Category.GetCategories)
		}

		if h.Expense != nil {
			r.Route("/expenses", func(er chi.Router) {
				er.Get("/", h.Expense.ListExpenses)
				er.Post("/", h.Expense.CreateExpense)
				er.Get("/form", h.Expense.GetForm)
				er.Get("/rows/{index}", h.Expense.GetRow)
			})
		}
	})
}
