package expense

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrUnknownFormat = fmt.Errorf("unknown export format")

type Export struct {
	Columns    []string `json:"columns" yaml:"columns"`
	Rows       []Row    `json:"rows" yaml:"rows"`
	Count      int      `json:"count" yaml:"count"`
	Total      string   `json:"total" yaml:"total"`
	TotalLabel string   `json:"total_label" yaml:"total_label"`
}

func NewExport(s Summary) Export {
	rows := s.Rows
	if rows == nil {
		rows = []Row{}
	}
	return Export{
		Columns:    Columns,
		Rows:       rows,
		Count:      s.Count,
		Total:      FormatAmount(s.Total),
		TotalLabel: s.TotalLabel,
	}
}

// WriteExport writes the displayed rows in format. CSV ends with a Total row.
func WriteExport(w io.Writer, format string, s Summary) error {
	exp := NewExport(s)

	switch strings.ToLower(format) {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(exp.Columns); err != nil {
			return err
		}
		for _, r := range exp.Rows {
			if err := cw.Write([]string{r.Date, r.Category, r.Description, r.Amount}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{"Total", "", "", exp.Total}); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(exp)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(exp); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
