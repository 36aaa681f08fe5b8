package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- Analysis runs, one per processed statement file
CREATE TABLE IF NOT EXISTS runs (
    id UUID PRIMARY KEY,
    source VARCHAR(255) NOT NULL,
    source_digest CHAR(64) NOT NULL,
    bank VARCHAR(100) NOT NULL DEFAULT 'Unknown Bank',
    confidence VARCHAR(10) NOT NULL DEFAULT 'low',
    format VARCHAR(20) NOT NULL DEFAULT '',
    rows_parsed INTEGER NOT NULL DEFAULT 0,
    total_debit NUMERIC(18,2) NOT NULL,
    total_credit NUMERIC(18,2) NOT NULL,
    net_balance NUMERIC(18,2) NOT NULL,
    taxable NUMERIC(18,2) NOT NULL,
    gst NUMERIC(18,2) NOT NULL,
    total_payable NUMERIC(18,2) NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),

    -- Natural key for deduplication: the file's content digest
    UNIQUE(source_digest)
);

-- Transactions table
CREATE TABLE IF NOT EXISTS transactions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    sequence INTEGER NOT NULL,
    date VARCHAR(12) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    kind VARCHAR(10) NOT NULL,
    debit NUMERIC(18,2) NOT NULL,
    credit NUMERIC(18,2) NOT NULL,
    amount NUMERIC(18,2) NOT NULL,
    category VARCHAR(100) NOT NULL DEFAULT 'Other',
    created_at TIMESTAMPTZ DEFAULT NOW(),

    -- Prevent duplicate transactions within a run
    UNIQUE(run_id, sequence)
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
CREATE INDEX IF NOT EXISTS idx_transactions_run_id ON transactions(run_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);
`

// EnsureSchema creates tables if they don't exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
