// Package aggregate builds daily, monthly, category and per-party roll-ups
// from a transaction list in a single linear pass.
package aggregate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vikramsengal/dukandar-shop-tool/ledger"
)

// Bucket accumulates totals for one date or month key. Bucket accumulators
// are the only values mutated during an aggregation pass.
type Bucket struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Count       int             `json:"count"`
}

// Summary is the output of one aggregation pass.
type Summary struct {
	TotalDebit  decimal.Decimal            `json:"total_debit"`
	TotalCredit decimal.Decimal            `json:"total_credit"`
	NetBalance  decimal.Decimal            `json:"net_balance"` // credit - debit
	Daily       map[string]*Bucket         `json:"daily"`
	Monthly     map[string]*Bucket         `json:"monthly"`
	Categories  map[string]decimal.Decimal `json:"categories"`
}

// FilterByDateRange keeps transactions with from <= date <= to. Either bound
// may be empty (unbounded). Unknown-date transactions are excluded whenever a
// bound is supplied, since they have no comparable date.
func FilterByDateRange(txns []ledger.Transaction, from, to string) []ledger.Transaction {
	if from == "" && to == "" {
		return txns
	}
	filtered := make([]ledger.Transaction, 0, len(txns))
	for _, tx := range txns {
		if tx.Date == ledger.UnknownDate {
			continue
		}
		if from != "" && tx.Date < from {
			continue
		}
		if to != "" && tx.Date > to {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered
}

// Summarize rolls the transactions up into totals, daily and monthly buckets,
// and per-category totals. Category totals sum debit + credit: they measure
// money touched, not net position.
func Summarize(txns []ledger.Transaction) Summary {
	s := Summary{
		Daily:      make(map[string]*Bucket),
		Monthly:    make(map[string]*Bucket),
		Categories: make(map[string]decimal.Decimal),
	}
	for _, tx := range txns {
		s.TotalDebit = s.TotalDebit.Add(tx.Debit)
		s.TotalCredit = s.TotalCredit.Add(tx.Credit)

		day := bucket(s.Daily, tx.Date)
		day.TotalDebit = day.TotalDebit.Add(tx.Debit)
		day.TotalCredit = day.TotalCredit.Add(tx.Credit)
		day.Count++

		month := bucket(s.Monthly, ledger.MonthKey(tx.Date))
		month.TotalDebit = month.TotalDebit.Add(tx.Debit)
		month.TotalCredit = month.TotalCredit.Add(tx.Credit)
		month.Count++

		s.Categories[tx.Category] = s.Categories[tx.Category].Add(tx.Debit).Add(tx.Credit)
	}
	s.NetBalance = s.TotalCredit.Sub(s.TotalDebit)
	return s
}

func bucket(m map[string]*Bucket, key string) *Bucket {
	b, ok := m[key]
	if !ok {
		b = &Bucket{}
		m[key] = b
	}
	return b
}

// SortedDateKeys returns the bucket keys ascending by canonical date string,
// with the unknown-date sentinel always last.
func SortedDateKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == ledger.UnknownDate) != (keys[j] == ledger.UnknownDate) {
			return keys[j] == ledger.UnknownDate
		}
		return keys[i] < keys[j]
	})
	return keys
}

var spaceRegex = regexp.MustCompile(`\s+`)

// partyKey normalizes a description for grouping: collapse whitespace,
// trim, uppercase.
func partyKey(description string) string {
	return strings.ToUpper(strings.TrimSpace(spaceRegex.ReplaceAllString(description, " ")))
}

// PartyLedger groups transactions by normalized description and reports what
// was paid to and received from each counterparty. Sorted by absolute
// outstanding, largest first; empty descriptions are left out.
func PartyLedger(txns []ledger.Transaction) []ledger.PartyTotal {
	byParty := make(map[string]*ledger.PartyTotal)
	order := []string{}
	for _, tx := range txns {
		key := partyKey(tx.Description)
		if key == "" {
			continue
		}
		p, ok := byParty[key]
		if !ok {
			p = &ledger.PartyTotal{Party: key}
			byParty[key] = p
			order = append(order, key)
		}
		p.Paid = p.Paid.Add(tx.Debit)
		p.Received = p.Received.Add(tx.Credit)
	}

	out := make([]ledger.PartyTotal, 0, len(order))
	for _, key := range order {
		p := byParty[key]
		p.Outstanding = p.Paid.Sub(p.Received)
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Outstanding.Abs().GreaterThan(out[j].Outstanding.Abs())
	})
	return out
}
