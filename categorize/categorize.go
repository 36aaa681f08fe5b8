// Package categorize tags transactions with a semantic category using an
// ordered keyword rule table. First match wins; nothing matching falls
// through to Other.
package categorize

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/vikramsengal/dukandar-shop-tool/ledger"
)

// Rule pairs a category tag with its keyword list.
type Rule struct {
	Name     string   `mapstructure:"name"`
	Keywords []string `mapstructure:"keywords"`
}

// DefaultRules is the built-in rule table, evaluated top to bottom.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "Sales", Keywords: []string{"sale", "invoice", "customer", "billing", "pos "}},
		{Name: "Purchases", Keywords: []string{"purchase", "supplier", "vendor", "stock", "wholesale"}},
		{Name: "Rent", Keywords: []string{"rent", "lease"}},
		{Name: "Salaries", Keywords: []string{"salary", "wages", "staff", "payroll"}},
		{Name: "Utilities", Keywords: []string{"electricity", "power bill", "water bill", "internet", "broadband", "recharge", "mobile bill"}},
		{Name: "Loan & EMI", Keywords: []string{"emi", "loan", "interest", "instalment", "installment"}},
		{Name: "Bank Charges", Keywords: []string{"charges", "chrg", "fee", "penalty", "amc"}},
		{Name: "Cash", Keywords: []string{"cash", "atm", "cdm", "self withdrawal"}},
		{Name: "Transfers", Keywords: []string{"transfer", "neft", "imps", "rtgs", "upi"}},
	}
}

// RulesFromConfig reads the categories table from viper, falling back to the
// built-in rules.
func RulesFromConfig() []Rule {
	var rules []Rule
	if err := viper.UnmarshalKey("categories", &rules); err != nil || len(rules) == 0 {
		return DefaultRules()
	}
	return rules
}

// Categorize lower-cases text and returns the first rule whose keyword list
// has a substring match. Pure function, no state.
func Categorize(text string, rules []Rule) string {
	low := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(low, kw) {
				return rule.Name
			}
		}
	}
	return ledger.CategoryOther
}
