// Package tax computes estimated GST liabilities and reconciles credited
// revenue against an independent sales ledger. Figures are estimates for
// human review, not filings.
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vikramsengal/dukandar-shop-tool/ledger"
)

// Basis selects which total the tax rate applies to.
type Basis string

const (
	BasisCredit    Basis = "credit"
	BasisDebit     Basis = "debit"
	BasisNetCredit Basis = "net_credit"
)

// ParseBasis maps a config string to a Basis.
func ParseBasis(s string) (Basis, error) {
	switch Basis(s) {
	case BasisCredit, BasisDebit, BasisNetCredit:
		return Basis(s), nil
	case "":
		return BasisNetCredit, nil
	}
	return "", fmt.Errorf("unknown tax basis %q", s)
}

var hundred = decimal.NewFromInt(100)

// Calculate derives the taxable base, GST, additional charges and total
// payable for one period. Pure: callable with identical semantics for the
// whole statement, a day, or a month. NetCredit clamps at zero.
func Calculate(totalDebit, totalCredit, gstRatePct, additionalPct, additionalFixed decimal.Decimal, basis Basis) ledger.TaxResult {
	var taxable decimal.Decimal
	switch basis {
	case BasisCredit:
		taxable = totalCredit
	case BasisDebit:
		taxable = totalDebit
	default: // net credit
		taxable = totalCredit.Sub(totalDebit)
		if taxable.IsNegative() {
			taxable = decimal.Zero
		}
	}

	gst := taxable.Mul(gstRatePct).Div(hundred)
	additional := taxable.Mul(additionalPct).Div(hundred).Add(additionalFixed)

	return ledger.TaxResult{
		Taxable:      taxable,
		GST:          gst,
		Additional:   additional,
		TotalPayable: gst.Add(additional),
	}
}

// SplitGST distributes a GST amount across its jurisdictional components:
// interstate supplies carry IGST in full, intrastate supplies split evenly
// into CGST and SGST.
func SplitGST(gst decimal.Decimal, interstate bool) (cgst, sgst, igst decimal.Decimal) {
	if interstate {
		return decimal.Zero, decimal.Zero, gst
	}
	half := gst.Div(decimal.NewFromInt(2))
	return half, half, decimal.Zero
}

// Assess combines Calculate and SplitGST into a full TaxResult.
func Assess(totalDebit, totalCredit, gstRatePct, additionalPct, additionalFixed decimal.Decimal, basis Basis, interstate bool) ledger.TaxResult {
	result := Calculate(totalDebit, totalCredit, gstRatePct, additionalPct, additionalFixed, basis)
	result.CGST, result.SGST, result.IGST = SplitGST(result.GST, interstate)
	return result
}

// Reconcile compares credited revenue against the sales ledger. Gap is
// creditTotal - salesTotal; the monthly breakdown subtracts monthly sales
// from monthly credit, covering months present on either side.
func Reconcile(creditTotal decimal.Decimal, monthlyCredit map[string]decimal.Decimal, salesTotal decimal.Decimal, monthlySales map[string]decimal.Decimal) ledger.ReconciliationResult {
	monthlyGap := make(map[string]decimal.Decimal, len(monthlyCredit)+len(monthlySales))
	for month, credit := range monthlyCredit {
		monthlyGap[month] = credit.Sub(monthlySales[month])
	}
	for month, sales := range monthlySales {
		if _, ok := monthlyCredit[month]; !ok {
			monthlyGap[month] = sales.Neg()
		}
	}
	return ledger.ReconciliationResult{
		SalesTotal:   salesTotal,
		Gap:          creditTotal.Sub(salesTotal),
		MonthlySales: monthlySales,
		MonthlyGap:   monthlyGap,
	}
}
