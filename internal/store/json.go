package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rezmoss/prodlog/internal/ledger"
)

// book is the on-disk layout: one array of rows per sheet.
type book struct {
	Sheets map[string][]ledger.Row `json:"sheets"`
}

// JSONFile keeps sheets in a single JSON document on local disk.
type JSONFile struct {
	path  string
	sheet string
}

func NewJSON(path, sheet string) *JSONFile {
	return &JSONFile{path: path, sheet: sheet}
}

func (j *JSONFile) Read(ctx context.Context) ([]ledger.Row, error) {
	b, err := loadBook(j.path)
	if err != nil {
		return nil, err
	}
	return b.Sheets[j.sheet], nil
}

func (j *JSONFile) ReplaceAll(ctx context.Context, rows []ledger.Row) error {
	b, err := loadBook(j.path)
	if err != nil {
		return err
	}
	b.Sheets[j.sheet] = normalizeAll(rows)
	return saveBook(j.path, b)
}

func (j *JSONFile) Close() error { return nil }

func loadBook(path string) (*book, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &book{Sheets: map[string][]ledger.Row{}}, nil
		}
		return nil, err
	}
	defer f.Close()
	var b book
	if err := json.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if b.Sheets == nil {
		b.Sheets = map[string][]ledger.Row{}
	}
	return &b, nil
}

func saveBook(path string, b *book) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
