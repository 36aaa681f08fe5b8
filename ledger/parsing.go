package ledger

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalDateLayout is the canonical form every parsed date is rendered in.
const CanonicalDateLayout = "2006-01-02"

var (
	amountStripRegex = regexp.MustCompile(`[^0-9,.\-]`)
	dateTokenRegex   = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`)

	// AmountTokenRegex matches amount-shaped tokens in free text, with an
	// optional currency prefix. Thousands groups follow the Indian convention
	// of 2- or 3-digit groups.
	AmountTokenRegex = regexp.MustCompile(`(?:INR|Rs\.?|₹)?\s*([0-9]{1,3}(?:,[0-9]{2,3})*(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)`)
)

// DefaultDateLayouts is the ordered list of layouts NormalizeDate tries.
// Day-month order is tried before month-day order on purpose: ambiguous
// values like 03/04/2024 resolve by this priority, not semantic inference.
func DefaultDateLayouts() []string {
	return []string{
		"2-1-2006", "2/1/2006", "2-1-06", "2/1/06",
		"2006-01-02", "2006/01/02",
		"1-2-2006", "1/2/2006", "1-2-06", "1/2/06",
	}
}

// CleanAmount strips everything except digits, comma, dot and minus, drops
// thousands separators, and parses the rest. Best-effort: unparsable or
// empty input yields zero, never an error.
func CleanAmount(value string) decimal.Decimal {
	s := amountStripRegex.ReplaceAllString(strings.TrimSpace(value), "")
	s = strings.ReplaceAll(s, ",", "")
	switch s {
	case "", ".", "-", "-.":
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// NormalizeDate takes the first whitespace-delimited token of value and
// tries each layout in order, returning the first successful parse in
// canonical YYYY-MM-DD form. Returns "" when no layout matches.
func NormalizeDate(value string, layouts []string) string {
	token := strings.TrimSpace(value)
	if token == "" {
		return ""
	}
	if i := strings.IndexAny(token, " \t"); i >= 0 {
		token = token[:i]
	}
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts()
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, token, time.Local); err == nil {
			return t.Format(CanonicalDateLayout)
		}
	}
	return ""
}

// ExtractDateFromText scans a free-text line for a date-shaped token and
// normalizes it. Returns "" when no token parses.
func ExtractDateFromText(line string, layouts []string) string {
	m := dateTokenRegex.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return NormalizeDate(m[1], layouts)
}

// MonthKey reduces a canonical date to its YYYY-MM bucket key. The unknown
// sentinel maps to itself.
func MonthKey(date string) string {
	if date == UnknownDate || len(date) < 7 {
		return UnknownDate
	}
	return date[:7]
}
