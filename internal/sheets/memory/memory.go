// Package memory is an in-process mirror used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"forgeledger/internal/sheets"
)

type Mirror struct {
	mu      sync.Mutex
	entries []sheets.MirrorEntry
}

var _ sheets.MirrorWriter = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// Append stores the entry and returns a synthetic row reference.
func (m *Mirror) Append(_ context.Context, e sheets.MirrorEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return fmt.Sprintf("mem:%d", len(m.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (m *Mirror) Entries() []sheets.MirrorEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sheets.MirrorEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
