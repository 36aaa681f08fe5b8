// Package anomaly flags duplicate and suspicious transactions using
// signature- and pattern-based heuristics. The output is meant for human
// review, not automated rejection.
package anomaly

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/vikramsengal/dukandar-shop-tool/ledger"
)

// Config holds the detection thresholds and the cash-term table.
type Config struct {
	HighValueThreshold decimal.Decimal
	CashThreshold      decimal.Decimal
	CashTerms          []string
}

// DefaultConfig mirrors Indian cash-reporting practice: ₹1,00,000 for any
// single movement, ₹50,000 for cash-tagged movements.
func DefaultConfig() Config {
	return Config{
		HighValueThreshold: decimal.NewFromInt(100000),
		CashThreshold:      decimal.NewFromInt(50000),
		CashTerms:          []string{"cash", "atm", "cdm", "self withdrawal"},
	}
}

// ConfigFromViper reads thresholds from the anomaly config section, keeping
// defaults for anything unset.
func ConfigFromViper() Config {
	cfg := DefaultConfig()
	if v := viper.GetFloat64("anomaly.high_value_threshold"); v > 0 {
		cfg.HighValueThreshold = decimal.NewFromFloat(v)
	}
	if v := viper.GetFloat64("anomaly.cash_threshold"); v > 0 {
		cfg.CashThreshold = decimal.NewFromFloat(v)
	}
	if terms := viper.GetStringSlice("anomaly.cash_terms"); len(terms) > 0 {
		cfg.CashTerms = terms
	}
	return cfg
}

var dupSpaceRegex = regexp.MustCompile(`\s+`)

// signature builds the duplicate-group key: date, amount rounded to two
// decimals, kind, and the lower-cased trimmed description.
func signature(tx ledger.Transaction) string {
	desc := strings.ToLower(strings.TrimSpace(dupSpaceRegex.ReplaceAllString(tx.Description, " ")))
	return fmt.Sprintf("%s|%s|%s|%s", tx.Date, tx.Amount.Round(2).String(), tx.Kind, desc)
}

// Duplicates returns every member of every signature group with more than one
// transaction, preserving input order. Reporting the whole cluster (not just
// the extras) gives reviewers the full picture.
func Duplicates(txns []ledger.Transaction) []ledger.Transaction {
	counts := make(map[string]int, len(txns))
	for _, tx := range txns {
		counts[signature(tx)]++
	}
	var out []ledger.Transaction
	for _, tx := range txns {
		if counts[signature(tx)] > 1 {
			out = append(out, tx)
		}
	}
	return out
}

// Alerts runs the suspicious-pattern heuristics and returns a deduplicated,
// sorted list of human-readable alert strings.
func Alerts(txns []ledger.Transaction, cfg Config) []string {
	seen := make(map[string]struct{})

	add := func(format string, args ...any) {
		seen[fmt.Sprintf(format, args...)] = struct{}{}
	}

	type sideKey struct {
		date   string
		amount string
	}
	bySide := map[ledger.Kind]map[sideKey]bool{
		ledger.Debit:  {},
		ledger.Credit: {},
	}

	for _, tx := range txns {
		rounded := tx.Amount.Round(2)
		if rounded.GreaterThanOrEqual(cfg.HighValueThreshold) {
			add("high value %s of %s on %s (%s)", tx.Kind, rounded.StringFixed(2), tx.Date, strings.TrimSpace(tx.Description))
		}
		if rounded.GreaterThanOrEqual(cfg.CashThreshold) && containsAny(tx.Description, cfg.CashTerms) {
			add("large cash %s of %s on %s (%s)", tx.Kind, rounded.StringFixed(2), tx.Date, strings.TrimSpace(tx.Description))
		}
		bySide[tx.Kind][sideKey{date: tx.Date, amount: rounded.String()}] = true
	}

	// Round trip: same date, same rounded amount, both directions present.
	// One alert per date/amount pair.
	for key := range bySide[ledger.Debit] {
		if bySide[ledger.Credit][key] {
			add("round trip of %s on %s: debit and credit for the same amount", key.amount, key.date)
		}
	}

	alerts := make([]string, 0, len(seen))
	for a := range seen {
		alerts = append(alerts, a)
	}
	sort.Strings(alerts)
	return alerts
}

func containsAny(text string, terms []string) bool {
	low := strings.ToLower(text)
	for _, term := range terms {
		if term != "" && strings.Contains(low, term) {
			return true
		}
	}
	return false
}
