package anomaly

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vikramsengal/dukandar-shop-tool/ledger"
)

func tx(seq int, date, desc string, debit, credit float64) ledger.Transaction {
	return ledger.NewTransaction(seq, date, desc, decimal.NewFromFloat(debit), decimal.NewFromFloat(credit))
}

func TestDuplicates_ReportsWholeCluster(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-01", "UPI SHARMA TRADERS", 450, 0),
		tx(2, "2024-04-01", "upi  sharma traders", 450, 0),
		tx(3, "2024-04-02", "RENT", 5000, 0),
	}

	dups := Duplicates(txns)

	// Both members of the cluster come back, in input order.
	assert.Len(t, dups, 2)
	assert.Equal(t, 1, dups[0].Sequence)
	assert.Equal(t, 2, dups[1].Sequence)
}

func TestDuplicates_KindSeparatesClusters(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-01", "SETTLEMENT", 450, 0),
		tx(2, "2024-04-01", "SETTLEMENT", 0, 450),
	}

	assert.Empty(t, Duplicates(txns))
}

func TestDuplicates_RoundingBoundary(t *testing.T) {
	// 100.005 and 100.0049 round to different 2-decimal values, so they are
	// not the same signature.
	txns := []ledger.Transaction{
		tx(1, "2024-04-01", "X", 100.005, 0),
		tx(2, "2024-04-01", "X", 100.0049, 0),
	}
	assert.Empty(t, Duplicates(txns))

	// But 100.005 and 100.0051 both round to 100.01.
	txns = []ledger.Transaction{
		tx(1, "2024-04-01", "X", 100.005, 0),
		tx(2, "2024-04-01", "X", 100.0051, 0),
	}
	assert.Len(t, Duplicates(txns), 2)
}

func TestAlerts_HighValue(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-01", "NEFT PROPERTY PURCHASE", 150000, 0),
		tx(2, "2024-04-02", "SMALL PAYMENT", 500, 0),
	}

	alerts := Alerts(txns, DefaultConfig())

	assert.Len(t, alerts, 1)
	assert.Contains(t, alerts[0], "high value")
	assert.Contains(t, alerts[0], "150000.00")
}

func TestAlerts_LargeCash(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-01", "CASH DEPOSIT BRANCH", 0, 60000),
	}

	alerts := Alerts(txns, DefaultConfig())

	assert.Len(t, alerts, 1)
	assert.Contains(t, alerts[0], "large cash")
}

func TestAlerts_CashBelowThresholdIsQuiet(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-01", "ATM WDL", 40000, 0),
	}

	assert.Empty(t, Alerts(txns, DefaultConfig()))
}

func TestAlerts_RoundTrip(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-01", "TO SUPPLIER", 25000, 0),
		tx(2, "2024-04-01", "FROM SUPPLIER", 0, 25000),
	}

	alerts := Alerts(txns, DefaultConfig())

	assert.Len(t, alerts, 1)
	assert.Contains(t, alerts[0], "round trip")
	assert.Contains(t, alerts[0], "2024-04-01")
}

func TestAlerts_RoundTripDifferentDatesIsQuiet(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-01", "TO SUPPLIER", 25000, 0),
		tx(2, "2024-04-02", "FROM SUPPLIER", 0, 25000),
	}

	assert.Empty(t, Alerts(txns, DefaultConfig()))
}

func TestAlerts_HighValueCashTriggersBoth(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-01", "CASH DEPOSIT", 0, 120000),
	}

	alerts := Alerts(txns, DefaultConfig())

	assert.Len(t, alerts, 2)
	joined := strings.Join(alerts, "\n")
	assert.Contains(t, joined, "high value")
	assert.Contains(t, joined, "large cash")
}

func TestAlerts_Sorted(t *testing.T) {
	txns := []ledger.Transaction{
		tx(1, "2024-04-03", "ZENITH PAYMENT", 200000, 0),
		tx(2, "2024-04-01", "ALPHA PAYMENT", 150000, 0),
	}

	alerts := Alerts(txns, DefaultConfig())

	assert.Len(t, alerts, 2)
	assert.True(t, alerts[0] < alerts[1], "alerts must be sorted")
}
