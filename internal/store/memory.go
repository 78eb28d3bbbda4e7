package store

import (
	"context"
	"sync"

	"github.com/rezmoss/prodlog/internal/ledger"
)

// Memory is an in-process Source. ReadErr and WriteErr, when set, are
// returned instead of touching the rows.
type Memory struct {
	mu       sync.Mutex
	rows     []ledger.Row
	ReadErr  error
	WriteErr error
	Writes   int
}

func NewMemory(rows ...ledger.Row) *Memory {
	return &Memory{rows: rows}
}

func (m *Memory) Read(ctx context.Context) ([]ledger.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	out := make([]ledger.Row, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Clone()
	}
	return out, nil
}

func (m *Memory) ReplaceAll(ctx context.Context, rows []ledger.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.rows = normalizeAll(rows)
	m.Writes++
	return nil
}

// Rows returns the current table.
func (m *Memory) Rows() []ledger.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ledger.Row, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Clone()
	}
	return out
}

func (m *Memory) Close() error { return nil }
