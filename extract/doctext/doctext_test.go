package doctext

import (
	"context"
	"testing"

	"github.com/vikramsengal/dukandar-shop-tool/extract"
	"github.com/vikramsengal/dukandar-shop-tool/ledger"
)

func TestParse_DebitAndCreditLines(t *testing.T) {
	lines := []string{
		"STATEMENT OF ACCOUNT",
		"15/04/2024 paid to sharma traders 450.00",
		"16/04/2024 received from customer 1,200.00",
	}

	result, err := Parse(context.Background(), lines, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(result.Transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(result.Transactions))
	}
	if result.TotalDebit.String() != "450" {
		t.Errorf("Expected total debit 450, got %s", result.TotalDebit.String())
	}
	if result.TotalCredit.String() != "1200" {
		t.Errorf("Expected total credit 1200, got %s", result.TotalCredit.String())
	}
	if result.Transactions[0].Date != "2024-04-15" {
		t.Errorf("Expected date '2024-04-15', got '%s'", result.Transactions[0].Date)
	}
}

func TestParse_LastAmountWins(t *testing.T) {
	// Statement lines put the running balance last; with the default policy
	// that last figure is taken as the amount.
	lines := []string{"15/04/2024 paid 450.00 balance 9,550.00"}

	result, err := Parse(context.Background(), lines, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if result.TotalDebit.String() != "9550" {
		t.Errorf("Expected last token 9550, got %s", result.TotalDebit.String())
	}
}

func TestParse_FirstAmountPolicy(t *testing.T) {
	opts := extract.DefaultOptions()
	opts.AmountPick = "first"

	lines := []string{"paid 450.00 balance 9,550.00"}

	result, err := Parse(context.Background(), lines, opts)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if result.TotalDebit.String() != "450" {
		t.Errorf("Expected first token 450, got %s", result.TotalDebit.String())
	}
}

func TestParse_AmbiguousLineSkipped(t *testing.T) {
	lines := []string{
		"15/04/2024 paid refund adjustment 100.00", // both signals
		"15/04/2024 misc entry 100.00",             // neither signal
	}

	result, err := Parse(context.Background(), lines, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(result.Transactions) != 0 {
		t.Errorf("Expected no transactions, got %d", len(result.Transactions))
	}
	if result.Counters.AmbiguousSkipped != 2 {
		t.Errorf("Expected 2 ambiguous skips, got %d", result.Counters.AmbiguousSkipped)
	}
}

func TestParse_ZeroAmountSkipped(t *testing.T) {
	lines := []string{"15/04/2024 paid 0.00"}

	result, err := Parse(context.Background(), lines, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(result.Transactions) != 0 {
		t.Errorf("Expected no transactions, got %d", len(result.Transactions))
	}
	if result.Counters.NoAmountSkipped != 1 {
		t.Errorf("Expected 1 no-amount skip, got %d", result.Counters.NoAmountSkipped)
	}
}

func TestParse_NoDateGetsSentinel(t *testing.T) {
	lines := []string{"paid to landlord 5,000.00"}

	result, err := Parse(context.Background(), lines, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(result.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(result.Transactions))
	}
	if result.Transactions[0].Date != ledger.UnknownDate {
		t.Errorf("Expected sentinel date, got '%s'", result.Transactions[0].Date)
	}
	if result.Counters.UnknownDates != 1 {
		t.Errorf("Expected 1 unknown date counted, got %d", result.Counters.UnknownDates)
	}
}

func TestParse_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, []string{"paid 100.00"}, extract.DefaultOptions())
	if err == nil {
		t.Fatal("Expected cancellation error")
	}
}
