package expense

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Summary() Summary
	NewForm() *EntryForm
	Table() *Table
	Refresh(ctx context.Context) (*Summary, error)
}

type SubmitterAPI interface {
	Submit(ctx context.Context, form *EntryForm) (*SubmitResult, error)
	Busy() bool
}

type Handler struct {
	*transport.BaseHandler
	Service   ServiceAPI
	Submitter SubmitterAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, submitter SubmitterAPI) *Handler {
	if baseHandler == nil {
		lg := logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
		baseHandler = transport.NewBaseHandler(lg)
	}
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Submitter:   submitter,
	}
}

func (h *Handler) tableResponse(s Summary) TableResponse {
	rows := s.Rows
	if rows == nil {
		rows = []Row{}
	}
	return TableResponse{
		Columns:       Columns,
		Rows:          rows,
		Count:         s.Count,
		Total:         s.Total,
		TotalLabel:    s.TotalLabel,
		SubmitEnabled: !h.Submitter.Busy(),
	}
}

// ListExpenses returns the current table. With ?refresh=true the store is
// read again first.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	summary := h.Service.Summary()
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		s, err := h.Service.Refresh(r.Context())
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		summary = *s
	}

	h.WriteJSON(w, http.StatusOK, h.tableResponse(summary))
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	lg := logger.From(r.Context())

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		lg.Warn("CreateExpense: invalid request body", "error", err)
		h.HandleServiceError(w, r, errors.NewValidationError("invalid request body", errors.ErrCodeInvalidBody))
		return
	}

	form, err := req.ToForm()
	if err != nil {
		lg.Warn("CreateExpense: invalid date", "date", req.Date, "error", err)
		h.HandleServiceError(w, r, errors.NewValidationFieldError("date", validation.MsgInvalidDate, errors.ErrCodeInvalidDate))
		return
	}

	result, err := h.Submitter.Submit(r.Context(), form)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, SubmitResponse{
		Message: result.Message,
		Expense: result.Expense,
		Form:    ToFormResponse(form),
		Table:   h.tableResponse(*result.Summary),
	})
}

// GetForm returns a blank entry form with its defaults filled in.
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, ToFormResponse(h.Service.NewForm()))
}

func (h *Handler) GetRow(w http.ResponseWriter, r *http.Request) {
	indexStr := chi.URLParam(r, "index")
	index, err := strconv.Atoi(indexStr)
	if err != nil {
		h.HandleServiceError(w, r, errors.NewValidationError("invalid row index", errors.ErrCodeInvalidBody))
		return
	}

	e, ok := h.Service.Table().ExpenseAt(index)
	if !ok {
		h.HandleServiceError(w, r, errors.NewNotFoundError("row not found", errors.ErrCodeRowNotFound))
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}
