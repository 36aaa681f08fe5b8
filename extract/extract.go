// Package extract defines the contract shared by every statement parsing
// strategy: each strategy produces zero or more transactions plus running
// totals in an explicit accumulator that is threaded through and returned,
// never kept in package state.
package extract

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/vikramsengal/dukandar-shop-tool/ledger"
)

// Container is the declared or inferred shape of the input.
type Container string

const (
	ContainerAuto     Container = "auto"
	ContainerTabular  Container = "tabular"
	ContainerDocument Container = "document"
)

// Fatal input errors. Everything else degrades gracefully per row or line.
var (
	// ErrNoUsableEncoding means every encoding in the fallback chain failed
	// to produce a usable header row.
	ErrNoUsableEncoding = errors.New("no encoding produced usable tabular headers")
	// ErrNoTextCapability means no text-extraction strategy is available for
	// the document at all (no text layer and no OCR tooling).
	ErrNoTextCapability = errors.New("no text extraction capability available")
)

// DetectContainer infers the container kind from the file extension.
func DetectContainer(path string) Container {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return ContainerTabular
	case ".pdf":
		return ContainerDocument
	}
	return ContainerAuto
}

// Counters tracks recoverable anomalies resolved by fallback policy. They are
// silent at the engine level but reported for observability.
type Counters struct {
	AmbiguousSkipped int `json:"ambiguous_skipped"`
	NoAmountSkipped  int `json:"no_amount_skipped"`
	UnknownDates     int `json:"unknown_dates"`
}

// Result is the accumulator every strategy fills.
type Result struct {
	Transactions []ledger.Transaction `json:"transactions"`
	TotalDebit   decimal.Decimal      `json:"total_debit"`
	TotalCredit  decimal.Decimal      `json:"total_credit"`
	RowsParsed   int                  `json:"rows_parsed"`
	Counters     Counters             `json:"counters"`
}

// Add appends a transaction and folds it into the running totals.
func (r *Result) Add(tx ledger.Transaction) {
	r.Transactions = append(r.Transactions, tx)
	r.TotalDebit = r.TotalDebit.Add(tx.Debit)
	r.TotalCredit = r.TotalCredit.Add(tx.Credit)
	if tx.Date == ledger.UnknownDate {
		r.Counters.UnknownDates++
	}
}

// ColumnCandidates are the ordered header keyword lists per column role.
// Candidates are tried in list order across all headers, so a specific
// keyword like "credit" claims its column before a loose one like "cr" can
// land on the wrong header.
type ColumnCandidates struct {
	Debit       []string `mapstructure:"debit"`
	Credit      []string `mapstructure:"credit"`
	Amount      []string `mapstructure:"amount"`
	Type        []string `mapstructure:"type"`
	Date        []string `mapstructure:"date"`
	Description []string `mapstructure:"description"`
	Sales       []string `mapstructure:"sales"`
}

// Options carries the data-driven parsing policy shared by the strategies.
type Options struct {
	DebitKeywords  []string
	CreditKeywords []string
	DateLayouts    []string
	// AmountPick decides which amount-shaped token on an unstructured line is
	// the transaction amount: "last" (statements put the net figure last) or
	// "first". A heuristic, kept configurable on purpose.
	AmountPick string
	Encodings  []string
	Columns    ColumnCandidates
}

// DefaultOptions mirrors the embedded configuration.
func DefaultOptions() Options {
	return Options{
		DebitKeywords:  []string{"debit", "debited", "paid", "payment", "sent", "transfer to", "withdraw", "dr"},
		CreditKeywords: []string{"credit", "credited", "received", "collect", "deposit", "refund", "cr", "added"},
		DateLayouts:    ledger.DefaultDateLayouts(),
		AmountPick:     "last",
		Encodings:      []string{"utf-8-sig", "utf-8", "latin-1"},
		Columns: ColumnCandidates{
			Debit:       []string{"debit", "withdraw", "paid", "dr", "sent", "outflow", "transfer out"},
			Credit:      []string{"credit", "deposit", "received", "cr", "inflow", "transfer in", "added"},
			Amount:      []string{"amount", "amt"},
			Type:        []string{"type", "txn type", "transaction type", "cr/dr", "dr/cr"},
			Date:        []string{"date", "txn date", "transaction date", "value date", "posted date"},
			Description: []string{"description", "narration", "particulars", "details", "remarks"},
			Sales:       []string{"sales", "sale amount", "amount", "total", "value", "amt"},
		},
	}
}

// OptionsFromConfig reads the parsing policy from viper, keeping defaults for
// anything unset.
func OptionsFromConfig() Options {
	opts := DefaultOptions()
	if kw := viper.GetStringSlice("keywords.debit"); len(kw) > 0 {
		opts.DebitKeywords = kw
	}
	if kw := viper.GetStringSlice("keywords.credit"); len(kw) > 0 {
		opts.CreditKeywords = kw
	}
	if layouts := viper.GetStringSlice("dates.layouts"); len(layouts) > 0 {
		opts.DateLayouts = layouts
	}
	if pick := viper.GetString("extract.amount_pick"); pick != "" {
		opts.AmountPick = pick
	}
	if encs := viper.GetStringSlice("extract.encodings"); len(encs) > 0 {
		opts.Encodings = encs
	}
	var cols ColumnCandidates
	if err := viper.UnmarshalKey("columns", &cols); err == nil {
		if len(cols.Debit) > 0 {
			opts.Columns.Debit = cols.Debit
		}
		if len(cols.Credit) > 0 {
			opts.Columns.Credit = cols.Credit
		}
		if len(cols.Amount) > 0 {
			opts.Columns.Amount = cols.Amount
		}
		if len(cols.Type) > 0 {
			opts.Columns.Type = cols.Type
		}
		if len(cols.Date) > 0 {
			opts.Columns.Date = cols.Date
		}
		if len(cols.Description) > 0 {
			opts.Columns.Description = cols.Description
		}
		if len(cols.Sales) > 0 {
			opts.Columns.Sales = cols.Sales
		}
	}
	return opts
}

// MatchesAny reports whether text contains any keyword, case-insensitive.
func MatchesAny(text string, keywords []string) bool {
	low := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(low, kw) {
			return true
		}
	}
	return false
}
