package costs

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// Mode names the policy used to turn a value column into a fixed-cost total.
type Mode string

const (
	// LedgerMode: the column holds a bank-statement style ledger. Costs are the
	// negative entries; credits are ignored.
	LedgerMode Mode = "ledger"
	// CostListMode: the column is a list of already-positive cost items.
	CostListMode Mode = "cost_list"
)

// LineItem is one row that contributed a parsed amount.
type LineItem struct {
	Row         int
	Description string
	Amount      decimal.Decimal
}

// Credits summarises positive entries ignored in ledger mode.
type Credits struct {
	Count int
	Sum   decimal.Decimal
}

// Summary is the outcome of normalizing an uploaded table.
type Summary struct {
	Total             decimal.Decimal
	Mode              Mode
	ValueColumn       string
	DescriptionColumn string
	Items             []LineItem
	ExcludedRows      int
	IgnoredCredits    Credits
}

// Normalize computes the monthly fixed-cost total of an uploaded table.
func Normalize(t Table) (Summary, error) {
	valueCol, ok := DetectValueColumn(t)
	if !ok {
		err := errors.WithHintf(ErrNoValueColumn,
			"name the amount column with one of: %s", strings.Join(ValueKeywords, ", "))
		return Summary{Total: decimal.Zero}, errors.Mark(err, ErrInvalidFile)
	}
	descCol, hasDesc := DetectDescriptionColumn(t, valueCol)

	s := Summary{ValueColumn: t.Headers[valueCol]}
	if hasDesc {
		s.DescriptionColumn = t.Headers[descCol]
	}

	all := decimal.Zero
	negatives := decimal.Zero
	credits := Credits{Sum: decimal.Zero}
	for i := range t.Rows {
		desc := ""
		if hasDesc {
			desc = t.Cell(i, descCol)
			if isTotalRow(desc) {
				s.ExcludedRows++
				continue
			}
		}

		amount, ok := ParseAmount(t.Cell(i, valueCol))
		if !ok {
			continue
		}
		// +2: one for the header row, one for 1-based spreadsheet numbering.
		s.Items = append(s.Items, LineItem{Row: i + 2, Description: desc, Amount: amount})

		all = all.Add(amount)
		switch {
		case amount.IsNegative():
			negatives = negatives.Add(amount)
		case amount.IsPositive():
			credits.Count++
			credits.Sum = credits.Sum.Add(amount)
		}
	}

	if negatives.IsNegative() {
		s.Mode = LedgerMode
		s.Total = negatives.Abs()
		s.IgnoredCredits = credits
		return s, nil
	}

	s.Mode = CostListMode
	s.Total = all
	s.IgnoredCredits = Credits{Sum: decimal.Zero}
	return s, nil
}

// FromUpload reads an uploaded file and normalizes it in one step.
func FromUpload(r io.Reader, filename string, maxBytes int64) (Summary, error) {
	t, err := ReadTable(r, filename, maxBytes)
	if err != nil {
		return Summary{Total: decimal.Zero}, err
	}
	return Normalize(t)
}
