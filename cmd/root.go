package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Embedded default configuration. A ~/.dukandar.yaml or --config file
// overrides it; every table here is data-driven on purpose so keyword rules
// can be tuned without a rebuild.
const defaultConfigYAML = `
banks:
  - name: State Bank of India
    hints: ["state bank of india", "sbi", "sbin"]
  - name: HDFC Bank
    hints: ["hdfc bank", "hdfc"]
  - name: ICICI Bank
    hints: ["icici bank", "icici"]
  - name: Axis Bank
    hints: ["axis bank", "utib"]
  - name: Punjab National Bank
    hints: ["punjab national bank", "pnb"]
  - name: Kotak Mahindra Bank
    hints: ["kotak mahindra", "kotak"]
  - name: Bank of Baroda
    hints: ["bank of baroda", "barb"]
  - name: Paytm Payments Bank
    hints: ["paytm payments bank", "paytm"]
keywords:
  debit: [debit, debited, paid, payment, sent, transfer to, withdraw, dr]
  credit: [credit, credited, received, collect, deposit, refund, cr, added]
columns:
  debit: [debit, withdraw, paid, dr, sent, outflow, transfer out]
  credit: [credit, deposit, received, cr, inflow, transfer in, added]
  amount: [amount, amt]
  type: [type, txn type, transaction type, cr/dr, dr/cr]
  date: [date, txn date, transaction date, value date, posted date]
  description: [description, narration, particulars, details, remarks]
  sales: [sales, sale amount, amount, total, value, amt]
dates:
  layouts: ["2-1-2006", "2/1/2006", "2-1-06", "2/1/06", "2006-01-02", "2006/01/02", "1-2-2006", "1/2/2006", "1-2-06", "1/2/06"]
extract:
  amount_pick: last
  encodings: [utf-8-sig, utf-8, latin-1]
anomaly:
  high_value_threshold: 100000
  cash_threshold: 50000
  cash_terms: [cash, atm, cdm, self withdrawal]
tax:
  gst_rate_pct: 18
  additional_pct: 0
  additional_fixed: 0
  basis: net_credit
  interstate: false
categories:
  - name: Sales
    keywords: [sale, invoice, customer, billing]
  - name: Purchases
    keywords: [purchase, supplier, vendor, stock, wholesale]
  - name: Rent
    keywords: [rent, lease]
  - name: Salaries
    keywords: [salary, wages, staff, payroll]
  - name: Utilities
    keywords: [electricity, power bill, water bill, internet, broadband, recharge, mobile bill]
  - name: Loan & EMI
    keywords: [emi, loan, interest, instalment, installment]
  - name: Bank Charges
    keywords: [charges, chrg, fee, penalty, amc]
  - name: Cash
    keywords: [cash, atm, cdm, self withdrawal]
  - name: Transfers
    keywords: [transfer, neft, imps, rtgs, upi]
`

var (
	cfgFile string
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "dukandar [statement]",
		Short: "Statement ingestion and financial analysis for small shops",
		Long: `dukandar turns bank statements (CSV or PDF, OCR fallback for scans)
into a normalized transaction ledger with GST estimates, anomaly flags
and sales reconciliation.`,
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				viper.Set("target", args[0])
				runAnalyze(cmd, nil)
				return
			}
			cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.dukandar.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".dukandar")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
				fmt.Printf("Error loading embedded configuration: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
