package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vikramsengal/dukandar-shop-tool/engine"
	"github.com/vikramsengal/dukandar-shop-tool/tax"
)

func basisOrExit(s string) tax.Basis {
	basis, err := tax.ParseBasis(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return basis
}

var (
	analyzeSales      string
	analyzeFrom       string
	analyzeTo         string
	analyzeBasis      string
	analyzeInterstate bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [statement]",
	Short: "Analyze a statement file",
	Long: `Analyzes a bank statement (CSV or PDF) and prints the full report as
JSON: transactions, daily/monthly/category totals, GST estimate with
CGST/SGST/IGST split, duplicate clusters, alerts and, when a sales
ledger is supplied, the reconciliation gap.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) {
	target := viper.GetString("target")
	if len(args) == 1 {
		target = args[0]
	}
	if target == "" {
		fmt.Fprintln(os.Stderr, "error: statement file is required")
		os.Exit(1)
	}

	cfg := engine.ConfigFromViper()
	cfg.DateFrom = analyzeFrom
	cfg.DateTo = analyzeTo
	if analyzeBasis != "" {
		cfg.Basis = basisOrExit(analyzeBasis)
	}
	if cmd != nil && cmd.Flags().Changed("interstate") {
		cfg.Interstate = analyzeInterstate
	}

	report, err := engine.Analyze(context.Background(), engine.Input{
		StatementPath: target,
		SalesPath:     analyzeSales,
		Config:        cfg,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	asJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(asJSON))
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeSales, "sales", "s", "", "independent sales ledger (CSV) for reconciliation")
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "inclusive start date filter (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "inclusive end date filter (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVarP(&analyzeBasis, "basis", "b", "", "tax basis: credit, debit or net_credit")
	analyzeCmd.Flags().BoolVar(&analyzeInterstate, "interstate", false, "treat supplies as interstate (IGST instead of CGST+SGST)")
	analyzeCmd.Flags().Float64P("gst", "g", 0, "GST rate percent override")
	viper.BindPFlag("tax.gst_rate_pct", analyzeCmd.Flags().Lookup("gst"))
}
