package ledger

import (
	"github.com/shopspring/decimal"
)

// UnknownDate is the bucket key for transactions whose date could not be
// parsed. It sorts after every canonical YYYY-MM-DD key.
const UnknownDate = "Unknown Date"

// Kind is the direction of a transaction.
type Kind string

const (
	Debit  Kind = "debit"
	Credit Kind = "credit"
)

// CategoryOther is the fallback category when no rule matches.
const CategoryOther = "Other"

// Transaction is a single normalized statement line. Immutable once built;
// callers own the slice for the lifetime of one analysis run.
type Transaction struct {
	Sequence    int             `json:"sequence"`
	Date        string          `json:"date"` // YYYY-MM-DD or UnknownDate
	Description string          `json:"description"`
	Kind        Kind            `json:"kind"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}

// NewTransaction derives Kind and Amount from the populated side.
// If debit and credit are equal and non-zero, debit wins.
func NewTransaction(sequence int, date, description string, debit, credit decimal.Decimal) Transaction {
	kind := Credit
	amount := credit
	if debit.GreaterThanOrEqual(credit) && debit.IsPositive() {
		kind = Debit
		amount = debit
	} else if credit.IsZero() && debit.IsZero() {
		// zero-amount rows keep a debit kind so they stay countable
		kind = Debit
	}
	return Transaction{
		Sequence:    sequence,
		Date:        date,
		Description: description,
		Kind:        kind,
		Debit:       debit,
		Credit:      credit,
		Amount:      amount,
		Category:    CategoryOther,
	}
}

// Confidence grades a detection result.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// DetectionResult is advisory metadata about the statement source. It never
// alters parsing behaviour.
type DetectionResult struct {
	Bank       string     `json:"bank"`
	Format     string     `json:"format"`
	Confidence Confidence `json:"confidence"`
}

// TaxResult holds derived tax figures for one period. Recomputed on demand,
// never persisted as source of truth.
type TaxResult struct {
	Taxable      decimal.Decimal `json:"taxable"`
	GST          decimal.Decimal `json:"gst"`
	Additional   decimal.Decimal `json:"additional"`
	TotalPayable decimal.Decimal `json:"total_payable"`
	CGST         decimal.Decimal `json:"cgst"`
	SGST         decimal.Decimal `json:"sgst"`
	IGST         decimal.Decimal `json:"igst"`
}

// ReconciliationResult compares credited revenue against an independently
// supplied sales ledger.
type ReconciliationResult struct {
	SalesTotal   decimal.Decimal            `json:"sales_total"`
	Gap          decimal.Decimal            `json:"gap"` // total credit - sales total
	MonthlySales map[string]decimal.Decimal `json:"monthly_sales"`
	MonthlyGap   map[string]decimal.Decimal `json:"monthly_gap"`
}

// PartyTotal is one row of the per-counterparty ledger.
type PartyTotal struct {
	Party       string          `json:"party"`
	Paid        decimal.Decimal `json:"paid"`
	Received    decimal.Decimal `json:"received"`
	Outstanding decimal.Decimal `json:"outstanding"` // paid - received
}
