package expense

import (
	"bytes"
	"encoding/json"
	"time"
)

// EntryForm is the pending input of one expense entry. Amount is kept as
// raw text so validation can tell empty from non-numeric.
type EntryForm struct {
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// Reset clears the amount and description, selects category and sets the
// date to now.
func (f *EntryForm) Reset(category string, now time.Time) {
	f.Amount = ""
	f.Description = ""
	f.Category = category
	f.Date = now
}

// AmountText decodes either a JSON string or a JSON number into its raw text.
type AmountText string

func (a *AmountText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountText(s)
		return nil
	}
	*a = AmountText(data)
	return nil
}

type CreateExpenseRequest struct {
	Amount      AmountText `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Date        string     `json:"date,omitempty"`
}

// ToForm converts the request. An unparseable date is reported as an error.
func (r CreateExpenseRequest) ToForm() (*EntryForm, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return nil, err
	}
	return &EntryForm{
		Amount:      string(r.Amount),
		Category:    r.Category,
		Description: r.Description,
		Date:        date,
	}, nil
}

type FormResponse struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

func ToFormResponse(f *EntryForm) FormResponse {
	return FormResponse{
		Amount:      f.Amount,
		Category:    f.Category,
		Description: f.Description,
		Date:        FormatDate(f.Date),
	}
}

// Summary is the refreshed state of the display.
type Summary struct {
	Rows       []Row   `json:"rows" yaml:"rows"`
	Count      int     `json:"count" yaml:"count"`
	Total      float64 `json:"total" yaml:"total"`
	TotalLabel string  `json:"total_label" yaml:"total_label"`
}

type TableResponse struct {
	Columns       []string `json:"columns"`
	Rows          []Row    `json:"rows"`
	Count         int      `json:"count"`
	Total         float64  `json:"total"`
	TotalLabel    string   `json:"total_label"`
	SubmitEnabled bool     `json:"submit_enabled"`
}

type SubmitResponse struct {
	Message string        `json:"message"`
	Expense *Expense      `json:"expense"`
	Form    FormResponse  `json:"form"`
	Table   TableResponse `json:"table"`
}

type SubmitResult struct {
	Expense *Expense
	Message string
	Summary *Summary
}
