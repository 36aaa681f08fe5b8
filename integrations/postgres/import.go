package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vikramsengal/dukandar-shop-tool/engine"
)

// ImportResult tracks the outcome of an import operation
type ImportResult struct {
	Processed int
	Skipped   int
	Failed    int
	Errors    []string
}

// ImportOptions configures the import behavior
type ImportOptions struct {
	Force bool // Force reprocessing of already imported files
}

// fileDigest returns the hex sha256 of the file contents. It is the run's
// natural key, so re-importing an unchanged statement is a no-op.
func fileDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ImportFile analyzes a single statement file and stores the run in the
// database. Returns: processed count, skipped count, failed count, errors.
func (db *DB) ImportFile(ctx context.Context, filePath string, opts ImportOptions) (processed int, skipped int, failed int, errors []string) {
	fileName := filepath.Base(filePath)

	digest, err := fileDigest(filePath)
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s: failed to read file: %v", fileName, err)}
	}

	exists, existingID, err := db.RunExists(ctx, digest)
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s: check error: %v", fileName, err)}
	}

	if exists && !opts.Force {
		log.Debug().Str("file", fileName).Msg("skipping, already imported")
		return 0, 1, 0, nil
	}

	report, err := engine.Analyze(ctx, engine.Input{
		StatementPath: filePath,
		Config:        engine.ConfigFromViper(),
	})
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s: analysis error: %v", fileName, err)}
	}

	if exists && opts.Force {
		if err := db.DeleteRun(ctx, existingID); err != nil {
			return 0, 0, 1, []string{fmt.Sprintf("%s: delete error: %v", fileName, err)}
		}
	}

	if err := db.CreateRun(ctx, digest, report); err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s: run error: %v", fileName, err)}
	}

	if err := db.CreateTransactions(ctx, report.RunID, report.Transactions); err != nil {
		// Rollback by deleting the run
		_ = db.DeleteRun(ctx, report.RunID)
		return 0, 0, 1, []string{fmt.Sprintf("%s: transactions error: %v", fileName, err)}
	}

	log.Debug().Str("file", fileName).Int("transactions", len(report.Transactions)).Msg("imported")
	return 1, 0, 0, nil
}

// ImportDirectory processes all statement files in a directory
func (db *DB) ImportDirectory(ctx context.Context, dirPath string, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var dataFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".tsv", ".txt", ".pdf":
			dataFiles = append(dataFiles, filepath.Join(dirPath, e.Name()))
		}
	}

	log.Info().Str("dir", dirPath).Int("files", len(dataFiles)).Msg("scanning")

	for _, filePath := range dataFiles {
		processed, skipped, failed, errors := db.ImportFile(ctx, filePath, opts)

		result.Processed += processed
		result.Skipped += skipped
		result.Failed += failed
		result.Errors = append(result.Errors, errors...)
	}

	return result, nil
}

// Import handles both file and directory imports
func (db *DB) Import(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	if info.IsDir() {
		return db.ImportDirectory(ctx, path, opts)
	}

	result := &ImportResult{}
	result.Processed, result.Skipped, result.Failed, result.Errors = db.ImportFile(ctx, path, opts)
	return result, nil
}
