package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rezmoss/prodlog/internal/ledger"
)

func sampleRows() []ledger.Row {
	return []ledger.Row{
		{ledger.ColDate: "01/05/2026", ledger.ColDailyProduction: "1000", ledger.ColJobs: "2", "Monday": "1"},
		{ledger.ColDate: "02/10/2026", ledger.ColDailyProduction: "500", ledger.ColJobs: "1", "Operator": "night shift"},
	}
}

// checkContract runs the behaviour every driver shares.
func checkContract(t *testing.T, open func(sheet string) Source) {
	t.Helper()
	ctx := context.Background()

	src := open("Data")
	defer src.Close()

	rows, err := src.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows, "a sheet that was never written reads as empty")

	require.NoError(t, src.ReplaceAll(ctx, sampleRows()))
	rows, err = src.Read(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "01/05/2026", rows[0][ledger.ColDate])
	assert.Equal(t, "1000", rows[0][ledger.ColDailyProduction])
	assert.Equal(t, "1", rows[0]["Monday"])
	assert.Equal(t, "0", rows[0][ledger.ColYearProduction], "declared columns are filled on write")
	assert.Equal(t, "night shift", rows[1]["Operator"], "extra columns survive")
	for _, col := range ledger.Columns {
		assert.Contains(t, rows[1], col)
	}

	got := ledger.ComputeYtdMetrics(ledger.Day(mustDate(t, "2026-02-15")), rows)
	assert.Equal(t, ledger.Ytd{Production: 1500, Jobs: 3}, got)

	// A shorter table fully replaces the longer one.
	require.NoError(t, src.ReplaceAll(ctx, rows[1:]))
	rows, err = src.Read(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "02/10/2026", rows[0][ledger.ColDate])

	// Sheets are independent.
	other := open("Archive")
	defer other.Close()
	archived, err := other.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, archived)

	require.NoError(t, src.ReplaceAll(ctx, nil))
	rows, err = src.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	v, ok := ledger.ParseDate(s)
	require.True(t, ok)
	return v
}

func TestJSONContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	checkContract(t, func(sheet string) Source { return NewJSON(path, sheet) })
}

func TestXLSXContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	checkContract(t, func(sheet string) Source { return NewXLSX(path, sheet) })
}

func TestSQLiteContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	checkContract(t, func(sheet string) Source {
		s, err := OpenSQLite(path, sheet)
		require.NoError(t, err)
		return s
	})
}

func TestRedisContract(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	checkContract(t, func(sheet string) Source {
		r, err := OpenRedis(context.Background(), "redis://"+mr.Addr(), sheet)
		require.NoError(t, err)
		return r
	})
}

// TestPostgresContract needs a live server, for example
// PRODLOG_TEST_POSTGRES_DSN="host=localhost user=postgres dbname=prodlog sslmode=disable".
func TestPostgresContract(t *testing.T) {
	dsn := os.Getenv("PRODLOG_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PRODLOG_TEST_POSTGRES_DSN not set")
	}
	// Sheets are namespaced per run so the shared table starts clean.
	prefix := uuid.NewString() + "-"
	checkContract(t, func(sheet string) Source {
		p, err := OpenPostgres(context.Background(), dsn, prefix+sheet)
		require.NoError(t, err)
		return p
	})
}

func TestMemoryContract(t *testing.T) {
	sheets := map[string]*Memory{}
	checkContract(t, func(sheet string) Source {
		if m, ok := sheets[sheet]; ok {
			return m
		}
		sheets[sheet] = NewMemory()
		return sheets[sheet]
	})
}

func TestMemoryInjectedErrors(t *testing.T) {
	m := NewMemory()
	m.ReadErr = errors.New("offline")
	_, err := m.Read(context.Background())
	assert.EqualError(t, err, "offline")

	m.WriteErr = errors.New("read-only")
	assert.EqualError(t, m.ReplaceAll(context.Background(), nil), "read-only")
	assert.Equal(t, 0, m.Writes)
}

func TestXLSXReadsSpreadsheetDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]interface{}{" ProductionDate", "DailyProductionTotal", "NoOfJobs"}))
	// A real date cell, as someone typing into the sheet would create.
	require.NoError(t, f.SetCellValue("Data", "A2", mustDate(t, "2026-01-05")))
	require.NoError(t, f.SetCellValue("Data", "B2", 1000))
	require.NoError(t, f.SetCellValue("Data", "C2", "2"))
	// An empty row between entries is ignored.
	require.NoError(t, f.SetCellValue("Data", "A4", "2026-02-10"))
	require.NoError(t, f.SetCellValue("Data", "B4", 500))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := NewXLSX(path, "Data").Read(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	d, ok := rows[0].Date()
	require.True(t, ok)
	assert.Equal(t, mustDate(t, "2026-01-05"), d)
	assert.Equal(t, 1000, rows[0].Int(ledger.ColDailyProduction))
	assert.Equal(t, ledger.Ytd{Production: 1500, Jobs: 2},
		ledger.ComputeYtdMetrics(mustDate(t, "2026-02-15"), rows))
}

func TestXLSXKeepsOtherSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	ctx := context.Background()

	require.NoError(t, NewXLSX(path, "Notes").ReplaceAll(ctx, []ledger.Row{{ledger.ColDate: "2026-01-01"}}))
	require.NoError(t, NewXLSX(path, "Data").ReplaceAll(ctx, sampleRows()))
	require.NoError(t, NewXLSX(path, "Data").ReplaceAll(ctx, sampleRows()[:1]))

	notes, err := NewXLSX(path, "Notes").Read(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	data, err := NewXLSX(path, "Data").Read(ctx)
	require.NoError(t, err)
	assert.Len(t, data, 1)

	_, err = os.Stat(filepath.Join(filepath.Dir(path), ".tmp-book.xlsx"))
	assert.True(t, os.IsNotExist(err), "scratch file is renamed into place")
}

func TestJSONCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := NewJSON(path, "Data").Read(context.Background())
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src, err := Open(ctx, Options{Driver: "json", Spreadsheet: filepath.Join(dir, "l.json")})
	require.NoError(t, err)
	assert.IsType(t, &JSONFile{}, src)

	src, err = Open(ctx, Options{Driver: "XLSX", Spreadsheet: filepath.Join(dir, "l.xlsx"), Sheet: "Data"})
	require.NoError(t, err)
	assert.IsType(t, &XLSX{}, src)

	src, err = Open(ctx, Options{Driver: "sqlite", Spreadsheet: filepath.Join(dir, "l.db"), Sheet: "Data"})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, src)
	require.NoError(t, src.Close())

	_, err = Open(ctx, Options{Driver: "gsheets", Spreadsheet: "x"})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(ctx, Options{Driver: "json"})
	assert.Error(t, err)
}
