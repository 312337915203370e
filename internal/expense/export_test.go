package expense_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/frahmantamala/expense-tracker/internal/expense"
)

var _ = Describe("WriteExport", func() {
	summary := expense.Summary{
		Rows: []expense.Row{
			{Date: "2024-06-02", Category: "Food", Description: "pizza, large", Amount: "20.00"},
			{Date: "2024-06-01", Category: "Bills", Description: "", Amount: "130.50"},
		},
		Count:      2,
		Total:      150.5,
		TotalLabel: "Total: ₹150.50",
	}

	It("writes csv with a header and a total row", func() {
		var buf bytes.Buffer
		Expect(expense.WriteExport(&buf, "csv", summary)).To(Succeed())
		Expect(buf.String()).To(Equal(
			"Date,Category,Description,Amount\n" +
				"2024-06-02,Food,\"pizza, large\",20.00\n" +
				"2024-06-01,Bills,,130.50\n" +
				"Total,,,150.50\n"))
	})

	It("writes json", func() {
		var buf bytes.Buffer
		Expect(expense.WriteExport(&buf, "JSON", summary)).To(Succeed())

		var out expense.Export
		Expect(json.Unmarshal(buf.Bytes(), &out)).To(Succeed())
		Expect(out.Rows).To(Equal(summary.Rows))
		Expect(out.Total).To(Equal("150.50"))
		Expect(out.Count).To(Equal(2))
	})

	It("writes yaml", func() {
		var buf bytes.Buffer
		Expect(expense.WriteExport(&buf, "yaml", summary)).To(Succeed())

		var out expense.Export
		Expect(yaml.Unmarshal(buf.Bytes(), &out)).To(Succeed())
		Expect(out.Columns).To(Equal(expense.Columns))
		Expect(out.TotalLabel).To(Equal("Total: ₹150.50"))
	})

	It("rejects unknown formats", func() {
		var buf bytes.Buffer
		Expect(expense.WriteExport(&buf, "xml", summary)).To(MatchError(expense.ErrUnknownFormat))
	})
})
