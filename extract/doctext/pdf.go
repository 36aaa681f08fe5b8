package doctext

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/dslipak/pdf"
	"github.com/rs/zerolog/log"
)

// ExtractRows opens a PDF and returns its text content row by row, in page
// order. Pages whose text cannot be read are skipped with a warning; the
// context is checked between pages so long documents can be cancelled.
func ExtractRows(ctx context.Context, path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ExtractRowsFromReader(ctx, file)
}

// ExtractRowsFromReader is ExtractRows over an io.Reader. Readers that are
// not io.ReaderAt are buffered in memory first.
func ExtractRowsFromReader(ctx context.Context, reader io.Reader) ([]string, error) {
	var readerAt io.ReaderAt
	var size int64

	if ra, ok := reader.(io.ReaderAt); ok {
		seeker, ok := reader.(io.Seeker)
		if !ok {
			return nil, errors.New("reader is io.ReaderAt but not io.Seeker, cannot determine size")
		}
		cur, _ := seeker.Seek(0, io.SeekCurrent)
		end, _ := seeker.Seek(0, io.SeekEnd)
		seeker.Seek(cur, io.SeekStart)
		readerAt = ra
		size = end
	} else {
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(reader); err != nil {
			return nil, err
		}
		b := buf.Bytes()
		readerAt = bytes.NewReader(b)
		size = int64(len(b))
	}

	r, err := pdf.NewReader(readerAt, size)
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	rows := make([]string, 0, numPages*64)

	for no := 1; no <= numPages; no++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(no)
		pageRows, err := page.GetTextByRow()
		if err != nil {
			log.Warn().Int("page", no).Err(err).Msg("skipping unreadable PDF page")
			continue
		}
		for _, row := range pageRows {
			var builder strings.Builder
			for i, text := range row.Content {
				builder.WriteString(text.S)
				if i < len(row.Content)-1 {
					builder.WriteByte(' ')
				}
			}
			if builder.Len() > 0 {
				rows = append(rows, builder.String())
			}
		}
	}

	return rows, nil
}
