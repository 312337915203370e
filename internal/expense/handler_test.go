package expense_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/go-chi/chi"
)

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var _ = Describe("Handler", func() {
	var (
		store      *mockExpenseStore
		service    *expense.Service
		dispatcher *expense.Dispatcher
		router     *chi.Mux
	)

	BeforeEach(func() {
		store = newMockExpenseStore()
		service = newTestService(store, nil)
		dispatcher = expense.NewDispatcher(service, expense.DispatcherConfig{}, testLogger)
		handler := expense.NewHandler(transport.NewBaseHandler(testLogger), service, dispatcher)

		router = chi.NewRouter()
		router.Get("/expenses", handler.ListExpenses)
		router.Post("/expenses", handler.CreateExpense)
		router.Get("/expenses/form", handler.GetForm)
		router.Get("/expenses/rows/{index}", handler.GetRow)
	})

	AfterEach(func() {
		dispatcher.Shutdown()
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeError := func(w *httptest.ResponseRecorder) errorBody {
		var body errorBody
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body
	}

	It("lists an empty table", func() {
		w := do(http.MethodGet, "/expenses", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp expense.TableResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Columns).To(Equal([]string{"Date", "Category", "Description", "Amount"}))
		Expect(resp.Rows).To(BeEmpty())
		Expect(resp.TotalLabel).To(Equal("Total: ₹0.00"))
		Expect(resp.SubmitEnabled).To(BeTrue())
	})

	It("creates an expense from a string amount", func() {
		w := do(http.MethodPost, "/expenses", `{"amount":"150.50","category":"Transport","description":"taxi","date":"2024-06-01"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var resp expense.SubmitResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Message).To(Equal("Expense added successfully!"))
		Expect(resp.Expense.Amount).To(Equal(150.5))
		Expect(resp.Form.Amount).To(BeEmpty())
		Expect(resp.Form.Category).To(Equal("Food"))
		Expect(resp.Table.Rows).To(Equal([]expense.Row{
			{Date: "2024-06-01", Category: "Transport", Description: "taxi", Amount: "150.50"},
		}))
		Expect(resp.Table.TotalLabel).To(Equal("Total: ₹150.50"))
	})

	It("accepts a numeric amount", func() {
		w := do(http.MethodPost, "/expenses", `{"amount":12.5}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
	})

	DescribeTable("rejects invalid input with the form message",
		func(body, code, message string) {
			w := do(http.MethodPost, "/expenses", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			resp := decodeError(w)
			Expect(resp.Error.Code).To(Equal(code))
			Expect(resp.Error.Message).To(Equal(message))
		},
		Entry("missing amount", `{"category":"Food"}`, "AMOUNT_EMPTY", "Amount cannot be empty."),
		Entry("text amount", `{"amount":"ten"}`, "AMOUNT_NOT_NUMERIC", "Please enter a valid numeric amount."),
		Entry("zero amount", `{"amount":"0"}`, "AMOUNT_NOT_POSITIVE", "Amount must be greater than zero."),
		Entry("bad category", `{"amount":"1","category":"Travel"}`, "INVALID_CATEGORY", "Please select a valid category."),
		Entry("bad date", `{"amount":"1","date":"yesterday"}`, "INVALID_DATE", "Please select a valid date."),
		Entry("broken json", `{"amount":`, "INVALID_BODY", "invalid request body"),
	)

	It("maps store failures to 502 with the failure message", func() {
		store.insertErr = errors.New("connection refused")

		w := do(http.MethodPost, "/expenses", `{"amount":"5"}`)
		Expect(w.Code).To(Equal(http.StatusBadGateway))
		resp := decodeError(w)
		Expect(resp.Error.Type).To(Equal("STORAGE_ERROR"))
		Expect(resp.Error.Message).To(Equal("Failed to add expense: connection refused"))
	})

	It("answers 503 with a shutdown message once the worker has stopped", func() {
		dispatcher.Shutdown()

		w := do(http.MethodPost, "/expenses", `{"amount":"5"}`)
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		resp := decodeError(w)
		Expect(resp.Error.Type).To(Equal("UNAVAILABLE"))
		Expect(resp.Error.Code).To(Equal("SHUTTING_DOWN"))
		Expect(resp.Error.Message).To(Equal(expense.MsgShuttingDown))
		Expect(store.inserts).To(BeZero())
	})

	It("refreshes from the store on request", func() {
		_, err := service.Submit(context.Background(), &expense.EntryForm{Amount: "4"})
		Expect(err).NotTo(HaveOccurred())
		store.listErr = errors.New("gone")

		w := do(http.MethodGet, "/expenses", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodGet, "/expenses?refresh=true", "")
		Expect(w.Code).To(Equal(http.StatusBadGateway))
		Expect(decodeError(w).Error.Message).To(Equal("Failed to load expenses: gone"))
	})

	It("returns a blank form", func() {
		w := do(http.MethodGet, "/expenses/form", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var form expense.FormResponse
		Expect(json.NewDecoder(w.Body).Decode(&form)).To(Succeed())
		Expect(form).To(Equal(expense.FormResponse{Category: "Food", Date: expense.FormatDate(fixedNow)}))
	})

	Describe("row lookup", func() {
		BeforeEach(func() {
			_, err := service.Submit(context.Background(), &expense.EntryForm{Amount: "7", Description: "coffee"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the expense at the index", func() {
			w := do(http.MethodGet, "/expenses/rows/0", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			var e expense.Expense
			Expect(json.NewDecoder(w.Body).Decode(&e)).To(Succeed())
			Expect(e.Description).To(Equal("coffee"))
		})

		It("returns 404 past the end", func() {
			w := do(http.MethodGet, "/expenses/rows/1", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decodeError(w).Error.Code).To(Equal("ROW_NOT_FOUND"))
		})

		It("returns 400 for a non-numeric index", func() {
			w := do(http.MethodGet, "/expenses/rows/abc", "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
