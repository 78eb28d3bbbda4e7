package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/rezmoss/prodlog/internal/ledger"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS ledger_rows (
    sheet    TEXT    NOT NULL,
    position INTEGER NOT NULL,
    cells    TEXT    NOT NULL,
    PRIMARY KEY (sheet, position)
);
`

// SQLite keeps each sheet as ordered JSON rows in a local database file.
type SQLite struct {
	db    *sql.DB
	sheet string
}

// OpenSQLite opens (or creates) the database at dbPath.
func OpenSQLite(dbPath, sheet string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db, sheet: sheet}, nil
}

func (s *SQLite) Read(ctx context.Context) ([]ledger.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cells FROM ledger_rows WHERE sheet = ? ORDER BY position ASC`, s.sheet)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var out []ledger.Row
	for rows.Next() {
		var cells string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r, err := decodeRow([]byte(cells))
		if err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReplaceAll swaps the sheet's rows in one transaction.
func (s *SQLite) ReplaceAll(ctx context.Context, rows []ledger.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_rows WHERE sheet = ?`, s.sheet); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ledger_rows (sheet, position, cells) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		data, err := encodeRow(r)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, s.sheet, i, string(data)); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
