package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vikramsengal/dukandar-shop-tool/ledger"
)

// CreateTransactions bulk inserts the categorized transactions of a run
func (db *DB) CreateTransactions(ctx context.Context, runID string, transactions []ledger.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, tx := range transactions {
		batch.Queue(`
			INSERT INTO transactions (
				run_id, sequence, date, description, kind, debit, credit, amount, category
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			runID, tx.Sequence, tx.Date, tx.Description,
			string(tx.Kind), tx.Debit, tx.Credit, tx.Amount, tx.Category,
		)
	}

	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	for range transactions {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	return nil
}
