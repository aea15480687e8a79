package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// Mirror keeps rows in process memory. It stands in for the spreadsheet
// when none is configured.
type Mirror struct {
	mu   sync.Mutex
	rows [][]any
	ids  map[int64]struct{}
}

var _ sheets.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{ids: map[int64]struct{}{}}
}

// AppendTransaction stores the row and returns a synthetic row reference.
func (m *Mirror) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, sheets.Row(t))
	m.ids[t.ID] = struct{}{}
	return fmt.Sprintf("mem:%d", len(m.rows)), nil
}

func (m *Mirror) MirroredIDs(_ context.Context) (map[int64]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]struct{}, len(m.ids))
	for id := range m.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// Rows returns a copy of every stored row.
func (m *Mirror) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]any, len(m.rows))
	copy(out, m.rows)
	return out
}
