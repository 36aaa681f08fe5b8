// Package tabular parses delimited statement exports with a header row. It
// tries a fixed chain of text encodings and heuristically maps header names
// to column roles, so it tolerates the many shapes of bank CSV exports.
package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/text/encoding/charmap"

	"github.com/vikramsengal/dukandar-shop-tool/extract"
	"github.com/vikramsengal/dukandar-shop-tool/ledger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode renders raw bytes as text under one named encoding. The strategy
// names follow the chain the original exports were seen in: a BOM-tolerant
// UTF-8, strict UTF-8, then Latin-1 which accepts any byte.
func decode(name string, data []byte) (string, error) {
	switch name {
	case "utf-8-sig":
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", errors.New("not valid UTF-8")
		}
		return string(data), nil
	case "utf-8":
		if !utf8.Valid(data) {
			return "", errors.New("not valid UTF-8")
		}
		return string(data), nil
	case "latin-1":
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}
	return "", fmt.Errorf("unknown encoding %q", name)
}

// guessColumn maps header names to a role. Candidates are tried in priority
// order and for each candidate every header is checked (case-insensitive
// substring); the first hit wins. Returns -1 when nothing matches.
func guessColumn(headers []string, candidates []string) int {
	low := make([]string, len(headers))
	for i, h := range headers {
		low[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for _, cand := range candidates {
		for i, h := range low {
			if cand != "" && strings.Contains(h, cand) {
				return i
			}
		}
	}
	return -1
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// decodeAttempts runs the encoding chain and hands each successful decode to
// parse, collecting every failure. If no encoding yields a usable result the
// aggregate error wraps ErrNoUsableEncoding plus every attempt's error.
func decodeAttempts(data []byte, encodings []string, parse func(text string) error) error {
	var attempts error
	for _, enc := range encodings {
		text, err := decode(enc, data)
		if err != nil {
			attempts = multierr.Append(attempts, fmt.Errorf("%s: %w", enc, err))
			continue
		}
		err = parse(text)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		attempts = multierr.Append(attempts, fmt.Errorf("%s: %w", enc, err))
	}
	return multierr.Append(extract.ErrNoUsableEncoding, attempts)
}

// Parse reads a delimited statement and extracts transactions. Rows with an
// unparsable date get the unknown-date sentinel; rows whose type matches
// neither keyword set contribute zero to both totals but are still counted.
// It fails only when every encoding fails to produce a header row.
func Parse(ctx context.Context, r io.Reader, opts extract.Options) (*extract.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading tabular input: %w", err)
	}

	var result *extract.Result
	err = decodeAttempts(data, opts.Encodings, func(text string) error {
		parsed, perr := parseText(ctx, text, opts)
		if perr != nil {
			return perr
		}
		result = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func parseText(ctx context.Context, text string, opts extract.Options) (*extract.Result, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}
	if len(headers) == 0 || (len(headers) == 1 && strings.TrimSpace(headers[0]) == "") {
		return nil, errors.New("empty header row")
	}

	debitCol := guessColumn(headers, opts.Columns.Debit)
	creditCol := guessColumn(headers, opts.Columns.Credit)
	amountCol := guessColumn(headers, opts.Columns.Amount)
	typeCol := guessColumn(headers, opts.Columns.Type)
	dateCol := guessColumn(headers, opts.Columns.Date)
	descCol := guessColumn(headers, opts.Columns.Description)

	result := &extract.Result{}
	sequence := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// malformed row, not a malformed file
			continue
		}

		result.RowsParsed++
		sequence++

		debit := decimal.Zero
		credit := decimal.Zero
		if debitCol >= 0 {
			debit = ledger.CleanAmount(cell(record, debitCol))
		}
		if creditCol >= 0 {
			credit = ledger.CleanAmount(cell(record, creditCol))
		}

		// No dedicated debit/credit columns: fall back to a single amount
		// column plus a type column. A type matching neither keyword set
		// leaves both sides zero.
		if debit.IsZero() && credit.IsZero() && amountCol >= 0 {
			amount := ledger.CleanAmount(cell(record, amountCol))
			typeText := strings.ToLower(cell(record, typeCol))
			switch {
			case extract.MatchesAny(typeText, opts.DebitKeywords):
				debit = amount
			case extract.MatchesAny(typeText, opts.CreditKeywords):
				credit = amount
			}
		}

		date := ledger.UnknownDate
		if dateCol >= 0 {
			if normalized := ledger.NormalizeDate(cell(record, dateCol), opts.DateLayouts); normalized != "" {
				date = normalized
			}
		}

		result.Add(ledger.NewTransaction(sequence, date, strings.TrimSpace(cell(record, descCol)), debit, credit))
	}

	return result, nil
}

// SalesLedger is the parsed independent sales record used by reconciliation.
type SalesLedger struct {
	Total   decimal.Decimal            `json:"total"`
	Monthly map[string]decimal.Decimal `json:"monthly"`
	Rows    int                        `json:"rows"`
}

// ParseSales reads a sales ledger through the same tabular path, specialized
// to a single amount+date role pair.
func ParseSales(ctx context.Context, r io.Reader, opts extract.Options) (*SalesLedger, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading sales input: %w", err)
	}

	var sales *SalesLedger
	err = decodeAttempts(data, opts.Encodings, func(text string) error {
		parsed, perr := parseSalesText(ctx, text, opts)
		if perr != nil {
			return perr
		}
		sales = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func parseSalesText(ctx context.Context, text string, opts extract.Options) (*SalesLedger, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading sales header row: %w", err)
	}

	amountCol := guessColumn(headers, opts.Columns.Sales)
	dateCol := guessColumn(headers, opts.Columns.Date)
	if amountCol < 0 {
		return nil, errors.New("no sales amount column found")
	}

	sales := &SalesLedger{Monthly: make(map[string]decimal.Decimal)}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		sales.Rows++
		amount := ledger.CleanAmount(cell(record, amountCol))
		sales.Total = sales.Total.Add(amount)

		month := ledger.UnknownDate
		if dateCol >= 0 {
			if normalized := ledger.NormalizeDate(cell(record, dateCol), opts.DateLayouts); normalized != "" {
				month = ledger.MonthKey(normalized)
			}
		}
		sales.Monthly[month] = sales.Monthly[month].Add(amount)
	}
	return sales, nil
}

// SampleLines decodes the raw bytes best-effort and returns up to n lines for
// the bank detector. Detection is advisory, so decoding failures just produce
// an empty sample.
func SampleLines(data []byte, opts extract.Options, n int) []string {
	for _, enc := range opts.Encodings {
		text, err := decode(enc, data)
		if err != nil {
			continue
		}
		lines := strings.Split(text, "\n")
		if len(lines) > n {
			lines = lines[:n]
		}
		return lines
	}
	return nil
}
