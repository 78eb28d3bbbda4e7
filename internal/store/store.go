// Package store reads and replaces the ledger table in its backing store.
//
// Every driver exposes the same two operations: read the whole sheet, and
// replace the whole sheet. There is no row-level write; concurrent writers
// overwrite each other and the last one wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rezmoss/prodlog/internal/ledger"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Source is one sheet of a ledger.
type Source interface {
	// Read returns every row. A sheet that does not exist yet reads as empty.
	Read(ctx context.Context) ([]ledger.Row, error)
	// ReplaceAll overwrites the sheet with rows. Each row is written with
	// every declared column present.
	ReplaceAll(ctx context.Context, rows []ledger.Row) error
	Close() error
}

// Options addresses a sheet.
type Options struct {
	Driver      string
	Spreadsheet string
	Sheet       string
}

// String names the sheet without echoing connection secrets.
func (o Options) String() string {
	return fmt.Sprintf("%s sheet %q", o.Driver, o.Sheet)
}

// Drivers lists what Open accepts.
var Drivers = []string{"xlsx", "json", "sqlite", "postgres", "redis"}

// Open connects to the sheet described by opts.
func Open(ctx context.Context, opts Options) (Source, error) {
	if opts.Sheet == "" {
		opts.Sheet = "Data"
	}
	if opts.Spreadsheet == "" {
		return nil, fmt.Errorf("open %s: no spreadsheet configured", opts)
	}

	switch strings.ToLower(opts.Driver) {
	case "xlsx", "excel":
		return NewXLSX(opts.Spreadsheet, opts.Sheet), nil
	case "json":
		return NewJSON(opts.Spreadsheet, opts.Sheet), nil
	case "sqlite":
		s, err := OpenSQLite(opts.Spreadsheet, opts.Sheet)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres", "postgresql":
		p, err := OpenPostgres(ctx, opts.Spreadsheet, opts.Sheet)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "redis":
		r, err := OpenRedis(ctx, opts.Spreadsheet, opts.Sheet)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%q (known: %s): %w", opts.Driver, strings.Join(Drivers, ", "), ErrUnknownDriver)
	}
}

func encodeRow(r ledger.Row) ([]byte, error) {
	return json.Marshal(ledger.Normalize(r))
}

func decodeRow(data []byte) (ledger.Row, error) {
	var r ledger.Row
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r == nil {
		r = ledger.Row{}
	}
	return r, nil
}

func normalizeAll(rows []ledger.Row) []ledger.Row {
	out := make([]ledger.Row, len(rows))
	for i, r := range rows {
		out[i] = ledger.Normalize(r)
	}
	return out
}
