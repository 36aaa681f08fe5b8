package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vikramsengal/dukandar-shop-tool/engine"
)

// RunExists checks if a run already exists using the source file digest
func (db *DB) RunExists(ctx context.Context, digest string) (bool, string, error) {
	var id string
	err := db.Pool.QueryRow(ctx, `
		SELECT id FROM runs WHERE source_digest = $1
	`, digest).Scan(&id)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to check run: %w", err)
	}

	return true, id, nil
}

// CreateRun inserts a new analysis run
func (db *DB) CreateRun(ctx context.Context, digest string, report *engine.Report) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO runs (
			id, source, source_digest, bank, confidence, format, rows_parsed,
			total_debit, total_credit, net_balance,
			taxable, gst, total_payable
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		report.RunID, report.Source, digest,
		report.Detection.Bank, string(report.Detection.Confidence), report.Detection.Format,
		report.RowsParsed,
		report.Summary.TotalDebit, report.Summary.TotalCredit, report.Summary.NetBalance,
		report.Tax.Taxable, report.Tax.GST, report.Tax.TotalPayable,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// DeleteRun removes a run and its transactions (cascade)
func (db *DB) DeleteRun(ctx context.Context, runID string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}
