package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/vikramsengal/dukandar-shop-tool/anomaly"
	"github.com/vikramsengal/dukandar-shop-tool/categorize"
	"github.com/vikramsengal/dukandar-shop-tool/detect"
	"github.com/vikramsengal/dukandar-shop-tool/extract"
	"github.com/vikramsengal/dukandar-shop-tool/ledger"
	"github.com/vikramsengal/dukandar-shop-tool/tax"
)

// ErrInvalidDateRange marks configuration validation failures, surfaced
// before any parsing work begins and distinct from parse failures.
var ErrInvalidDateRange = errors.New("invalid date range")

// Config is the per-run analysis configuration supplied by the caller.
type Config struct {
	GSTRatePct      decimal.Decimal `json:"gst_rate_pct"`
	AdditionalPct   decimal.Decimal `json:"additional_pct"`
	AdditionalFixed decimal.Decimal `json:"additional_fixed"`
	Basis           tax.Basis       `json:"basis"`
	Interstate      bool            `json:"interstate"`
	DateFrom        string          `json:"date_from,omitempty"` // YYYY-MM-DD, inclusive
	DateTo          string          `json:"date_to,omitempty"`   // YYYY-MM-DD, inclusive
}

// ConfigFromViper builds a Config from the tax section of the loaded
// configuration.
func ConfigFromViper() Config {
	basis, err := tax.ParseBasis(viper.GetString("tax.basis"))
	if err != nil {
		basis = tax.BasisNetCredit
	}
	return Config{
		GSTRatePct:      decimal.NewFromFloat(viper.GetFloat64("tax.gst_rate_pct")),
		AdditionalPct:   decimal.NewFromFloat(viper.GetFloat64("tax.additional_pct")),
		AdditionalFixed: decimal.NewFromFloat(viper.GetFloat64("tax.additional_fixed")),
		Basis:           basis,
		Interstate:      viper.GetBool("tax.interstate"),
	}
}

// Validate checks the configuration before any parsing starts. Date bounds
// must be canonical calendar dates with from <= to.
func (c Config) Validate() error {
	if _, err := tax.ParseBasis(string(c.Basis)); err != nil {
		return err
	}
	for _, bound := range []struct{ name, value string }{
		{"date_from", c.DateFrom},
		{"date_to", c.DateTo},
	} {
		if bound.value == "" {
			continue
		}
		if _, err := time.Parse(ledger.CanonicalDateLayout, bound.value); err != nil {
			return fmt.Errorf("%w: %s %q is not a valid YYYY-MM-DD date", ErrInvalidDateRange, bound.name, bound.value)
		}
	}
	if c.DateFrom != "" && c.DateTo != "" && c.DateFrom > c.DateTo {
		return fmt.Errorf("%w: from %s is after to %s", ErrInvalidDateRange, c.DateFrom, c.DateTo)
	}
	return nil
}

// Rules bundles every data-driven table the engine consumes.
type Rules struct {
	Extract    extract.Options
	Banks      []detect.Profile
	Categories []categorize.Rule
	Anomaly    anomaly.Config
}

// DefaultRules is the built-in rule set, independent of any loaded config.
func DefaultRules() Rules {
	return Rules{
		Extract:    extract.DefaultOptions(),
		Banks:      detect.DefaultProfiles(),
		Categories: categorize.DefaultRules(),
		Anomaly:    anomaly.DefaultConfig(),
	}
}

// RulesFromConfig reads every rule table from viper, each with its own
// built-in fallback.
func RulesFromConfig() Rules {
	return Rules{
		Extract:    extract.OptionsFromConfig(),
		Banks:      detect.ProfilesFromConfig(),
		Categories: categorize.RulesFromConfig(),
		Anomaly:    anomaly.ConfigFromViper(),
	}
}
