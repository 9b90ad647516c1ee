// Package sheets defines the outbound port for the ledger mirror: an
// append-only feed of transaction change rows kept outside the system of
// record, e.g. in a spreadsheet the user can eyeball.
package sheets

import (
	"context"
	"time"
)

// MirrorEntry is one mirrored ledger change. Amount is the exact decimal
// string ("499.50"); Action is created/updated/deleted.
type MirrorEntry struct {
	Action        string
	TransactionID int64
	Date          string
	Type          string
	Amount        string
	Category      string
	Description   string
	RecordedAt    time.Time
}

// MirrorWriter appends entries to the mirror and returns an opaque row
// reference.
type MirrorWriter interface {
	Append(ctx context.Context, e MirrorEntry) (rowRef string, err error)
}
