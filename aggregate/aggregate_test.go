package aggregate

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vikramsengal/dukandar-shop-tool/ledger"
)

func tx(seq int, date, desc string, debit, credit int64) ledger.Transaction {
	return ledger.NewTransaction(seq, date, desc, decimal.NewFromInt(debit), decimal.NewFromInt(credit))
}

func TestSummarize_Totals(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-01", "RENT", 5000, 0),
		tx(2, "2024-04-01", "SALE INVOICE 12", 0, 1500),
		tx(3, "2024-04-02", "SALE INVOICE 13", 0, 500),
	}

	s := Summarize(txns)

	if s.TotalDebit.String() != "5000" {
		t.Errorf("Expected total debit 5000, got %s", s.TotalDebit.String())
	}
	if s.TotalCredit.String() != "2000" {
		t.Errorf("Expected total credit 2000, got %s", s.TotalCredit.String())
	}
	if s.NetBalance.String() != "-3000" {
		t.Errorf("Expected net balance -3000, got %s", s.NetBalance.String())
	}
}

func TestSummarize_Buckets(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-01", "RENT", 5000, 0),
		tx(2, "2024-04-01", "SALE", 0, 1500),
		tx(3, "2024-05-02", "SALE", 0, 500),
	}

	s := Summarize(txns)

	day := s.Daily["2024-04-01"]
	if day == nil || day.Count != 2 {
		t.Fatalf("Expected 2 transactions on 2024-04-01, got %+v", day)
	}
	if day.TotalDebit.String() != "5000" || day.TotalCredit.String() != "1500" {
		t.Errorf("Unexpected daily totals: %+v", day)
	}

	if len(s.Monthly) != 2 {
		t.Errorf("Expected 2 monthly buckets, got %d", len(s.Monthly))
	}
	if s.Monthly["2024-05"].TotalCredit.String() != "500" {
		t.Errorf("Unexpected May credit: %s", s.Monthly["2024-05"].TotalCredit.String())
	}
}

func TestSummarize_UnknownDateBucket(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, ledger.UnknownDate, "SMUDGED ROW", 100, 0),
	}

	s := Summarize(txns)

	if s.Daily[ledger.UnknownDate] == nil {
		t.Fatal("Expected unknown-date daily bucket")
	}
	if s.Monthly[ledger.UnknownDate] == nil {
		t.Fatal("Expected unknown-date monthly bucket")
	}
	if s.TotalDebit.String() != "100" {
		t.Errorf("Unknown-date rows must still count, got %s", s.TotalDebit.String())
	}
}

func TestSummarize_CategoriesSumBothSides(t *testing.T) {
	a := tx(1, "2024-04-01", "RENT", 5000, 0)
	a.Category = "Rent"
	b := tx(2, "2024-04-02", "RENT REFUND", 0, 1000)
	b.Category = "Rent"

	s := Summarize([]ledger.Transaction{a, b})

	if s.Categories["Rent"].String() != "6000" {
		t.Errorf("Expected category total 6000, got %s", s.Categories["Rent"].String())
	}
}

func TestFilterByDateRange_Bounds(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-03-31", "BEFORE", 1, 0),
		tx(2, "2024-04-01", "ON FROM", 1, 0),
		tx(3, "2024-04-15", "INSIDE", 1, 0),
		tx(4, "2024-04-30", "ON TO", 1, 0),
		tx(5, "2024-05-01", "AFTER", 1, 0),
	}

	got := FilterByDateRange(txns, "2024-04-01", "2024-04-30")

	if len(got) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(got))
	}
	if got[0].Description != "ON FROM" || got[2].Description != "ON TO" {
		t.Errorf("Bounds must be inclusive: %+v", got)
	}
}

func TestFilterByDateRange_UnknownExcludedWhenBounded(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-15", "KNOWN", 1, 0),
		tx(2, ledger.UnknownDate, "UNKNOWN", 1, 0),
	}

	got := FilterByDateRange(txns, "2024-04-01", "")
	if len(got) != 1 {
		t.Errorf("Expected unknown-date row excluded, got %d rows", len(got))
	}

	// With no bounds everything passes through untouched.
	got = FilterByDateRange(txns, "", "")
	if len(got) != 2 {
		t.Errorf("Expected all rows with no bounds, got %d", len(got))
	}
}

func TestSortedDateKeys_SentinelLast(t *testing.T) {
	m := map[string]*Bucket{
		"2024-01-05":       {},
		ledger.UnknownDate: {},
		"2024-01-01":       {},
	}

	got := SortedDateKeys(m)
	want := []string{"2024-01-01", "2024-01-05", ledger.UnknownDate}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPartyLedger_GroupsAndSorts(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-01", "Sharma  Traders", 3000, 0),
		tx(2, "2024-04-02", "SHARMA TRADERS", 0, 1000),
		tx(3, "2024-04-03", "Gupta Stores", 0, 500),
		tx(4, "2024-04-04", "   ", 100, 0),
	}

	parties := PartyLedger(txns)

	if len(parties) != 2 {
		t.Fatalf("Expected 2 parties, got %d", len(parties))
	}
	// Whitespace and case variations collapse into one party.
	if parties[0].Party != "SHARMA TRADERS" {
		t.Fatalf("Expected SHARMA TRADERS first by |outstanding|, got %s", parties[0].Party)
	}
	if parties[0].Outstanding.String() != "2000" {
		t.Errorf("Expected outstanding 2000, got %s", parties[0].Outstanding.String())
	}
	if parties[1].Outstanding.String() != "-500" {
		t.Errorf("Expected outstanding -500, got %s", parties[1].Outstanding.String())
	}
}
