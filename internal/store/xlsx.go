package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rezmoss/prodlog/internal/ledger"
)

// XLSX keeps the ledger in a worksheet of an Excel workbook. The first row is
// the header.
type XLSX struct {
	path  string
	sheet string
}

func NewXLSX(path, sheet string) *XLSX {
	return &XLSX{path: path, sheet: sheet}
}

func (x *XLSX) Read(ctx context.Context) ([]ledger.Row, error) {
	f, err := excelize.OpenFile(x.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if idx, err := f.GetSheetIndex(x.sheet); err != nil || idx == -1 {
		return nil, nil
	}

	// Raw values so date cells come back as serials ParseDate understands
	// instead of whatever display format the sheet was given.
	cells, err := f.GetRows(x.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", x.sheet, err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	header := cells[0]
	var rows []ledger.Row
	for _, rec := range cells[1:] {
		if blank(rec) {
			continue
		}
		rows = append(rows, ledger.FromCells(header, rec))
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ReplaceAll rewrites the worksheet. The new contents are built in a scratch
// sheet which then takes the old sheet's place, so stale cells from a wider or
// longer previous table never survive. Other sheets are left alone.
func (x *XLSX) ReplaceAll(ctx context.Context, rows []ledger.Row) error {
	f, fresh, err := x.open()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	idx, err := f.GetSheetIndex(x.sheet)
	if err != nil {
		return fmt.Errorf("lookup sheet %q: %w", x.sheet, err)
	}

	target := x.sheet
	if idx != -1 {
		target = x.sheet + "_new"
	}
	if _, err := f.NewSheet(target); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeSheet(f, target, rows); err != nil {
		return err
	}

	if idx != -1 {
		if err := f.DeleteSheet(x.sheet); err != nil {
			return fmt.Errorf("drop old sheet: %w", err)
		}
		if err := f.SetSheetName(target, x.sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}
	if fresh && x.sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("drop default sheet: %w", err)
		}
	}
	if n, err := f.GetSheetIndex(x.sheet); err == nil && n != -1 {
		f.SetActiveSheet(n)
	}

	return x.save(f)
}

func (x *XLSX) open() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(x.path)
	if err == nil {
		return f, false, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("open workbook: %w", err)
}

func writeSheet(f *excelize.File, sheet string, rows []ledger.Row) error {
	header := ledger.Header(rows)
	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cells := r.Cells(header)
		vals := make([]interface{}, len(cells))
		for j, c := range cells {
			vals[j] = cellValue(c)
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, addr, &vals); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}

// cellValue stores whole numbers as numbers so the sheet can sum them.
func cellValue(s string) interface{} {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return s
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

func (x *XLSX) save(f *excelize.File) error {
	dir := filepath.Dir(x.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	// SaveAs checks the extension, so the scratch file keeps it.
	tmp := filepath.Join(dir, ".tmp-"+filepath.Base(x.path))
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return os.Rename(tmp, x.path)
}

func (x *XLSX) Close() error { return nil }
