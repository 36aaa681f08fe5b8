// Package ocr recovers text lines from scanned statements that carry no text
// layer, by rasterizing pages with pdftoppm and running Tesseract on each
// image. Used only as the last strategy in the document extraction chain.
package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

// Available reports whether the external OCR tooling is installed. Both
// pdftoppm (poppler-utils) and tesseract (tesseract-ocr) are required.
func Available() error {
	var err error
	if _, lookErr := exec.LookPath("pdftoppm"); lookErr != nil {
		err = multierr.Append(err, fmt.Errorf("pdftoppm not available (install poppler-utils): %w", lookErr))
	}
	if _, lookErr := exec.LookPath("tesseract"); lookErr != nil {
		err = multierr.Append(err, fmt.Errorf("tesseract not available (install tesseract-ocr): %w", lookErr))
	}
	return err
}

// ExtractLines rasterizes the PDF at 300 DPI and OCRs every page, returning
// the recovered text as individual lines in page order. The context is
// checked between pages; pages that fail OCR are skipped with a warning.
func ExtractLines(ctx context.Context, filePath string) ([]string, error) {
	if err := Available(); err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	imgPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", filePath, imgPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(out))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("reading temp dir: %w", err)
	}
	var images []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			images = append(images, filepath.Join(tmpDir, e.Name()))
		}
	}
	sort.Strings(images)
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}

	var lines []string
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// PSM 4: single column of text of variable sizes, fits statements
		outBase := strings.TrimSuffix(img, ".png") + "-ocr"
		cmd := exec.CommandContext(ctx, "tesseract", img, outBase, "-l", "eng", "--psm", "4")
		if out, err := cmd.CombinedOutput(); err != nil {
			log.Warn().Str("image", filepath.Base(img)).Err(err).Str("output", string(out)).Msg("tesseract failed for page")
			continue
		}
		data, err := os.ReadFile(outBase + ".txt")
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("OCR produced no text from %d page images", len(images))
	}
	return lines, nil
}
