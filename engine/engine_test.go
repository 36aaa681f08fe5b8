package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikramsengal/dukandar-shop-tool/tax"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleStatement = `Date,Description,Debit,Credit
01/04/2024,SHOP RENT APRIL,5000,
02/04/2024,UPI SALE INVOICE 12,,1500
03/04/2024,NEFT CUSTOMER PAYMENT,,500`

func defaultInput(path string) Input {
	rules := DefaultRules()
	return Input{
		StatementPath: path,
		Config: Config{
			GSTRatePct: decimal.NewFromInt(18),
			Basis:      tax.BasisCredit,
		},
		Rules: &rules,
	}
}

func TestAnalyze_TabularEndToEnd(t *testing.T) {
	path := writeTemp(t, "statement.csv", sampleStatement)

	report, err := Analyze(context.Background(), defaultInput(path))
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "statement.csv", report.Source)
	assert.Equal(t, 3, report.RowsParsed)
	assert.Len(t, report.Transactions, 3)

	assert.Equal(t, "5000", report.Summary.TotalDebit.String())
	assert.Equal(t, "2000", report.Summary.TotalCredit.String())
	assert.Equal(t, "-3000", report.Summary.NetBalance.String())

	// Credit basis at 18%: 2000 -> 360, split evenly intrastate.
	assert.Equal(t, "2000", report.Tax.Taxable.String())
	assert.Equal(t, "360", report.Tax.GST.String())
	assert.Equal(t, "180", report.Tax.CGST.String())
	assert.Equal(t, "180", report.Tax.SGST.String())
	assert.True(t, report.Tax.IGST.IsZero())

	// Categorization ran over every transaction.
	assert.Equal(t, "Rent", report.Transactions[0].Category)
	assert.Equal(t, "Sales", report.Transactions[1].Category)
}

func TestAnalyze_PerPeriodTax(t *testing.T) {
	path := writeTemp(t, "statement.csv", sampleStatement)

	report, err := Analyze(context.Background(), defaultInput(path))
	require.NoError(t, err)

	require.Contains(t, report.TaxByDay, "2024-04-02")
	assert.Equal(t, "1500", report.TaxByDay["2024-04-02"].Taxable.String())

	require.Contains(t, report.TaxByMonth, "2024-04")
	assert.Equal(t, "2000", report.TaxByMonth["2024-04"].Taxable.String())
}

func TestAnalyze_DateRangeFilter(t *testing.T) {
	path := writeTemp(t, "statement.csv", sampleStatement)

	in := defaultInput(path)
	in.Config.DateFrom = "2024-04-02"
	in.Config.DateTo = "2024-04-03"

	report, err := Analyze(context.Background(), in)
	require.NoError(t, err)

	// Raw transactions keep everything; the analysis views use the filter.
	assert.Len(t, report.Transactions, 3)
	assert.Len(t, report.Filtered, 2)
	assert.True(t, report.Summary.TotalDebit.IsZero())
	assert.Equal(t, "2000", report.Summary.TotalCredit.String())
}

func TestAnalyze_InvalidDateRangeFailsBeforeParsing(t *testing.T) {
	in := defaultInput("nonexistent.csv")
	in.Config.DateFrom = "2024-05-01"
	in.Config.DateTo = "2024-04-01"

	_, err := Analyze(context.Background(), in)
	require.Error(t, err)
	// Config validation must fire before the file is ever touched.
	assert.True(t, errors.Is(err, ErrInvalidDateRange))
}

func TestAnalyze_MissingFile(t *testing.T) {
	_, err := Analyze(context.Background(), defaultInput(filepath.Join(t.TempDir(), "missing.csv")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestAnalyze_BankDetection(t *testing.T) {
	content := "Date,Description,Debit,Credit\n01/04/2024,HDFC BANK NETBANKING TRANSFER,100,\n"
	path := writeTemp(t, "statement.csv", content)

	report, err := Analyze(context.Background(), defaultInput(path))
	require.NoError(t, err)

	assert.Equal(t, "HDFC Bank", report.Detection.Bank)
	assert.Equal(t, "tabular", report.Detection.Format)
}

func TestAnalyze_SalesReconciliation(t *testing.T) {
	statement := writeTemp(t, "statement.csv", sampleStatement)
	sales := writeTemp(t, "sales.csv", "Date,Sales\n01/04/2024,2500\n")

	in := defaultInput(statement)
	in.SalesPath = sales

	report, err := Analyze(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, report.Reconciliation)
	assert.Equal(t, "2500", report.Reconciliation.SalesTotal.String())
	// Credited 2000 against declared sales 2500.
	assert.Equal(t, "-500", report.Reconciliation.Gap.String())
	assert.Equal(t, "-500", report.Reconciliation.MonthlyGap["2024-04"].String())
}

func TestAnalyze_NoSalesPathLeavesReconciliationNil(t *testing.T) {
	path := writeTemp(t, "statement.csv", sampleStatement)

	report, err := Analyze(context.Background(), defaultInput(path))
	require.NoError(t, err)
	assert.Nil(t, report.Reconciliation)
}

func TestAnalyze_DuplicatesAndAlerts(t *testing.T) {
	content := `Date,Description,Debit,Credit
01/04/2024,UPI SHARMA TRADERS,450,
01/04/2024,UPI SHARMA TRADERS,450,
02/04/2024,CASH DEPOSIT BRANCH,,150000`
	path := writeTemp(t, "statement.csv", content)

	report, err := Analyze(context.Background(), defaultInput(path))
	require.NoError(t, err)

	assert.Len(t, report.Duplicates, 2)
	// 150000 cash credit trips both the high-value and large-cash checks.
	assert.Len(t, report.Alerts, 2)
}

func TestAnalyze_PartyLedger(t *testing.T) {
	content := `Date,Description,Debit,Credit
01/04/2024,SHARMA TRADERS,3000,
02/04/2024,SHARMA TRADERS,,1000`
	path := writeTemp(t, "statement.csv", content)

	report, err := Analyze(context.Background(), defaultInput(path))
	require.NoError(t, err)

	require.Len(t, report.PartyLedger, 1)
	assert.Equal(t, "SHARMA TRADERS", report.PartyLedger[0].Party)
	assert.Equal(t, "2000", report.PartyLedger[0].Outstanding.String())
}

func TestAnalyze_ContextCancelled(t *testing.T) {
	path := writeTemp(t, "statement.csv", sampleStatement)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, defaultInput(path))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Basis: tax.BasisCredit, DateFrom: "2024-04-01", DateTo: "2024-04-30"}
	assert.NoError(t, cfg.Validate())

	cfg = Config{Basis: "bogus"}
	assert.Error(t, cfg.Validate())

	cfg = Config{DateFrom: "01/04/2024"}
	assert.Error(t, cfg.Validate(), "bounds must be canonical YYYY-MM-DD")
}
