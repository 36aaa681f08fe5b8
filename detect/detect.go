// Package detect guesses the source bank of a statement from a small sample
// of its content. The result is advisory metadata only: it is attached to the
// report and never changes how the statement is parsed.
package detect

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/vikramsengal/dukandar-shop-tool/ledger"
)

// Profile is one known bank with its fixed hint phrases.
type Profile struct {
	Name  string   `mapstructure:"name"`
	Hints []string `mapstructure:"hints"`
}

// UnknownBank is reported when no profile scores at all.
const UnknownBank = "Unknown"

// DefaultProfiles is the built-in profile table, used when the config carries
// no banks section.
func DefaultProfiles() []Profile {
	return []Profile{
		{Name: "State Bank of India", Hints: []string{"state bank of india", "sbi", "sbin"}},
		{Name: "HDFC Bank", Hints: []string{"hdfc bank", "hdfc"}},
		{Name: "ICICI Bank", Hints: []string{"icici bank", "icici"}},
		{Name: "Axis Bank", Hints: []string{"axis bank", "utib"}},
		{Name: "Punjab National Bank", Hints: []string{"punjab national bank", "pnb"}},
		{Name: "Kotak Mahindra Bank", Hints: []string{"kotak mahindra", "kotak"}},
		{Name: "Bank of Baroda", Hints: []string{"bank of baroda", "barb"}},
		{Name: "Paytm Payments Bank", Hints: []string{"paytm payments bank", "paytm"}},
	}
}

// ProfilesFromConfig reads the banks table from viper, falling back to the
// built-in profiles.
func ProfilesFromConfig() []Profile {
	var profiles []Profile
	if err := viper.UnmarshalKey("banks", &profiles); err != nil || len(profiles) == 0 {
		return DefaultProfiles()
	}
	return profiles
}

// Detect scores each profile by counting its hint phrases present in the
// sample (case-insensitive substring). Highest score wins; ties favour the
// earlier profile. Confidence: high for score >= 2, medium for 1, low for 0.
func Detect(sample []string, format string, profiles []Profile) ledger.DetectionResult {
	haystack := strings.ToLower(strings.Join(sample, "\n"))

	best := -1
	bestScore := 0
	for i, p := range profiles {
		score := 0
		for _, hint := range p.Hints {
			if hint != "" && strings.Contains(haystack, strings.ToLower(hint)) {
				score++
			}
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	result := ledger.DetectionResult{
		Bank:       UnknownBank,
		Format:     format,
		Confidence: ledger.ConfidenceLow,
	}
	if best >= 0 {
		result.Bank = profiles[best].Name
		if bestScore >= 2 {
			result.Confidence = ledger.ConfidenceHigh
		} else {
			result.Confidence = ledger.ConfidenceMedium
		}
	}
	return result
}
