// Package doctext extracts transactions from line-oriented document text,
// the shape produced by PDF statements and the OCR fallback. Each line is an
// independent candidate: it needs an amount-shaped token and an unambiguous
// debit or credit signal to become a transaction.
package doctext

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vikramsengal/dukandar-shop-tool/extract"
	"github.com/vikramsengal/dukandar-shop-tool/ledger"
)

// Parse walks the lines and extracts candidate transactions. The amount is
// picked from the line's amount-shaped tokens per the configured policy
// (default: the last token, since statements put the running-balance or net
// figure last). Lines matching both or neither keyword set are skipped
// silently but counted. The context is checked between lines.
func Parse(ctx context.Context, lines []string, opts extract.Options) (*extract.Result, error) {
	result := &extract.Result{}
	sequence := 0

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		matches := ledger.AmountTokenRegex.FindAllStringSubmatch(line, -1)
		if len(matches) == 0 {
			continue
		}

		token := matches[len(matches)-1][1]
		if opts.AmountPick == "first" {
			token = matches[0][1]
		}
		amount := ledger.CleanAmount(token)
		if !amount.IsPositive() {
			result.Counters.NoAmountSkipped++
			continue
		}

		isDebit := extract.MatchesAny(line, opts.DebitKeywords)
		isCredit := extract.MatchesAny(line, opts.CreditKeywords)
		if isDebit == isCredit {
			// both or neither: ambiguous, skip
			result.Counters.AmbiguousSkipped++
			continue
		}

		date := ledger.ExtractDateFromText(line, opts.DateLayouts)
		if date == "" {
			date = ledger.UnknownDate
		}

		sequence++
		result.RowsParsed++
		if isDebit {
			result.Add(ledger.NewTransaction(sequence, date, line, amount, decimal.Zero))
		} else {
			result.Add(ledger.NewTransaction(sequence, date, line, decimal.Zero, amount))
		}
	}

	return result, nil
}
