// Package engine runs a full statement analysis: extraction, categorization,
// aggregation, anomaly detection, tax assessment and sales reconciliation.
// Each Analyze call is self-contained: it builds every result fresh from its
// inputs and shares no mutable state with other invocations.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/vikramsengal/dukandar-shop-tool/aggregate"
	"github.com/vikramsengal/dukandar-shop-tool/anomaly"
	"github.com/vikramsengal/dukandar-shop-tool/categorize"
	"github.com/vikramsengal/dukandar-shop-tool/detect"
	"github.com/vikramsengal/dukandar-shop-tool/extract"
	"github.com/vikramsengal/dukandar-shop-tool/extract/doctext"
	"github.com/vikramsengal/dukandar-shop-tool/extract/ocr"
	"github.com/vikramsengal/dukandar-shop-tool/extract/tabular"
	"github.com/vikramsengal/dukandar-shop-tool/ledger"
	"github.com/vikramsengal/dukandar-shop-tool/tax"
)

// detectionSampleSize bounds how much raw content feeds the bank detector.
const detectionSampleSize = 40

// Input identifies the statement to analyze plus its per-run configuration.
// Rules may be nil, in which case the loaded config (or built-in defaults)
// supplies every rule table.
type Input struct {
	StatementPath string
	SalesPath     string
	Container     extract.Container
	Config        Config
	Rules         *Rules
}

// Report is the engine's sole contract with report generation, export and UI
// collaborators.
type Report struct {
	RunID          string                       `json:"run_id"`
	Source         string                       `json:"source"`
	Detection      ledger.DetectionResult       `json:"detection"`
	Transactions   []ledger.Transaction         `json:"transactions"`
	Filtered       []ledger.Transaction         `json:"filtered"`
	Summary        aggregate.Summary            `json:"summary"`
	RowsParsed     int                          `json:"rows_parsed"`
	Counters       extract.Counters             `json:"counters"`
	Tax            ledger.TaxResult             `json:"tax"`
	TaxByDay       map[string]ledger.TaxResult  `json:"tax_by_day"`
	TaxByMonth     map[string]ledger.TaxResult  `json:"tax_by_month"`
	Duplicates     []ledger.Transaction         `json:"duplicates"`
	Alerts         []string                     `json:"alerts"`
	PartyLedger    []ledger.PartyTotal          `json:"party_ledger"`
	Reconciliation *ledger.ReconciliationResult `json:"reconciliation,omitempty"`
}

// Analyze runs one synchronous, single-pass analysis. Configuration is
// validated before any parsing work; fatal input errors carry the file and
// stage; recoverable anomalies resolve by fallback policy and surface only in
// the report counters.
func Analyze(ctx context.Context, in Input) (*Report, error) {
	if err := in.Config.Validate(); err != nil {
		return nil, err
	}

	var rules Rules
	if in.Rules != nil {
		rules = *in.Rules
	} else {
		rules = RulesFromConfig()
	}

	container := in.Container
	if container == "" || container == extract.ContainerAuto {
		container = extract.DetectContainer(in.StatementPath)
		if container == extract.ContainerAuto {
			container = extract.ContainerTabular
		}
	}

	source := filepath.Base(in.StatementPath)
	report := &Report{
		RunID:  uuid.NewString(),
		Source: source,
	}

	var result *extract.Result
	var err error
	switch container {
	case extract.ContainerDocument:
		result, report.Detection, err = analyzeDocument(ctx, in.StatementPath, rules)
	default:
		result, report.Detection, err = analyzeTabular(ctx, in.StatementPath, rules)
	}
	if err != nil {
		return nil, err
	}

	for i := range result.Transactions {
		result.Transactions[i].Category = categorize.Categorize(result.Transactions[i].Description, rules.Categories)
	}

	report.Transactions = result.Transactions
	report.RowsParsed = result.RowsParsed
	report.Counters = result.Counters
	report.Filtered = aggregate.FilterByDateRange(result.Transactions, in.Config.DateFrom, in.Config.DateTo)
	report.Summary = aggregate.Summarize(report.Filtered)

	report.Tax = assess(report.Summary.TotalDebit, report.Summary.TotalCredit, in.Config)
	report.TaxByDay = assessBuckets(report.Summary.Daily, in.Config)
	report.TaxByMonth = assessBuckets(report.Summary.Monthly, in.Config)

	report.Duplicates = anomaly.Duplicates(report.Filtered)
	report.Alerts = anomaly.Alerts(report.Filtered, rules.Anomaly)
	report.PartyLedger = aggregate.PartyLedger(report.Filtered)

	if in.SalesPath != "" {
		reconciliation, err := reconcileSales(ctx, in.SalesPath, rules, report.Summary)
		if err != nil {
			return nil, err
		}
		report.Reconciliation = reconciliation
	}

	log.Debug().
		Str("run_id", report.RunID).
		Str("source", source).
		Int("rows_parsed", report.RowsParsed).
		Int("ambiguous_skipped", report.Counters.AmbiguousSkipped).
		Int("no_amount_skipped", report.Counters.NoAmountSkipped).
		Int("unknown_dates", report.Counters.UnknownDates).
		Msg("analysis complete")

	return report, nil
}

func analyzeTabular(ctx context.Context, path string, rules Rules) (*extract.Result, ledger.DetectionResult, error) {
	var detection ledger.DetectionResult

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, detection, fmt.Errorf("statement %s: reading: %w", filepath.Base(path), err)
	}

	sample := tabular.SampleLines(data, rules.Extract, detectionSampleSize)
	detection = detect.Detect(sample, string(extract.ContainerTabular), rules.Banks)

	result, err := tabular.Parse(ctx, bytes.NewReader(data), rules.Extract)
	if err != nil {
		return nil, detection, fmt.Errorf("statement %s: tabular parse: %w", filepath.Base(path), err)
	}
	return result, detection, nil
}

func analyzeDocument(ctx context.Context, path string, rules Rules) (*extract.Result, ledger.DetectionResult, error) {
	var detection ledger.DetectionResult
	format := string(extract.ContainerDocument)

	rows, pdfErr := doctext.ExtractRows(ctx, path)
	if pdfErr != nil || len(rows) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, detection, err
		}
		// No extractable text layer: fall back to OCR. If that is impossible
		// too, the run fails with every attempted strategy's error.
		ocrRows, ocrErr := ocr.ExtractLines(ctx, path)
		if ocrErr != nil {
			combined := multierr.Combine(extract.ErrNoTextCapability, pdfErr, ocrErr)
			return nil, detection, fmt.Errorf("statement %s: text extraction: %w", filepath.Base(path), combined)
		}
		rows = ocrRows
		format = "document (ocr)"
	}

	sampleEnd := len(rows)
	if sampleEnd > detectionSampleSize {
		sampleEnd = detectionSampleSize
	}
	detection = detect.Detect(rows[:sampleEnd], format, rules.Banks)

	result, err := doctext.Parse(ctx, rows, rules.Extract)
	if err != nil {
		return nil, detection, fmt.Errorf("statement %s: document parse: %w", filepath.Base(path), err)
	}
	return result, detection, nil
}

func reconcileSales(ctx context.Context, path string, rules Rules, summary aggregate.Summary) (*ledger.ReconciliationResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sales ledger %s: reading: %w", filepath.Base(path), err)
	}
	defer file.Close()

	sales, err := tabular.ParseSales(ctx, file, rules.Extract)
	if err != nil {
		return nil, fmt.Errorf("sales ledger %s: parse: %w", filepath.Base(path), err)
	}

	monthlyCredit := make(map[string]decimal.Decimal, len(summary.Monthly))
	for month, bucket := range summary.Monthly {
		monthlyCredit[month] = bucket.TotalCredit
	}
	result := tax.Reconcile(summary.TotalCredit, monthlyCredit, sales.Total, sales.Monthly)
	return &result, nil
}

func assess(totalDebit, totalCredit decimal.Decimal, cfg Config) ledger.TaxResult {
	return tax.Assess(totalDebit, totalCredit, cfg.GSTRatePct, cfg.AdditionalPct, cfg.AdditionalFixed, cfg.Basis, cfg.Interstate)
}

func assessBuckets(buckets map[string]*aggregate.Bucket, cfg Config) map[string]ledger.TaxResult {
	out := make(map[string]ledger.TaxResult, len(buckets))
	for key, b := range buckets {
		out[key] = assess(b.TotalDebit, b.TotalCredit, cfg)
	}
	return out
}
