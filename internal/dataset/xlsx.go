package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

// Load reads the selected sheet. Sheet (by name, case-insensitive) wins over
// SheetIndex, which is 1-based; with neither set the first sheet is used.
func (xlsxLoader) Load(ctx context.Context, path string, opt Options) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()
	next := func() ([]string, bool, error) {
		if !rows.Next() {
			return nil, false, rows.Error()
		}
		rec, err := rows.Columns()
		if err != nil {
			return nil, false, err
		}
		return rec, true, nil
	}
	return readTable(ctx, filepath.Base(path), next, opt)
}

func pickSheet(sheets []string, opt Options, book string) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook '%s' has no sheets", book)
	}
	if opt.Sheet != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			opt.Sheet, book, strings.Join(sheets, ", "))
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range for workbook '%s' (%d sheets).\nAvailable sheets: %s",
			idx, book, len(sheets), strings.Join(sheets, ", "))
	}
	return sheets[idx-1], nil
}
