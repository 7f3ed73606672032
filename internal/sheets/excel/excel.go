// Package excel loads the revenue table from an .xlsx workbook.
package excel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"revenueqa/internal/core"
	ports "revenueqa/internal/sheets"
)

// Reader reads one worksheet of a workbook file. The file is reopened on
// every ReadRevenue so a replaced workbook is picked up by the next reload.
type Reader struct {
	path  string
	sheet string
}

var _ ports.RevenueReader = (*Reader)(nil)

// New returns a Reader for path. An empty sheet selects the first worksheet.
func New(path, sheet string) *Reader {
	return &Reader{path: path, sheet: sheet}
}

// ReadRevenue implements ports.RevenueReader.
func (r *Reader) ReadRevenue(ctx context.Context) ([]core.RevenueRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	records, err := Parse(f, r.sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	return records, nil
}

// Parse reads revenue rows from workbook data. Cells are read raw, so dates
// stored as spreadsheet serials and plain numbers reach the row parser
// without display formatting.
func Parse(src io.Reader, sheet string) ([]core.RevenueRecord, error) {
	wb, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer wb.Close()

	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return ports.ParseRecords(rows)
}
