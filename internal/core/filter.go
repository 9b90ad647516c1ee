package core

import "sort"

// Filter narrows a transaction set along three optional dimensions. All
// present predicates combine with logical AND; a nil/absent predicate leaves
// that dimension unrestricted. An empty CategoryIDs slice means "no category
// filter", not "match nothing".
type Filter struct {
	Type        *EntryType
	CategoryIDs []int64
	DateFrom    *Date // inclusive
	DateTo      *Date // inclusive
}

// TypeIs returns a filter value restricted to one entry type.
func TypeIs(t EntryType) *EntryType {
	return &t
}

// DateIs returns a pointer to d, for use as an inclusive filter bound.
func DateIs(d Date) *Date {
	return &d
}

// Matches reports whether tx satisfies every present predicate. This is the
// single definition of filter semantics; storage backends must agree with it.
func (f Filter) Matches(tx Transaction) bool {
	if f.Type != nil && tx.Type != *f.Type {
		return false
	}
	if len(f.CategoryIDs) > 0 {
		found := false
		for _, id := range f.CategoryIDs {
			if tx.CategoryID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.DateFrom != nil && tx.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && tx.Date.After(*f.DateTo) {
		return false
	}
	return true
}

// Apply returns the matching subset of txs in query order. The input slice
// is not modified; an empty result is an empty slice, never nil.
func (f Filter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	SortForQuery(out)
	return out
}

// SortForQuery orders transactions by date descending, then created_at
// descending, then id descending. The id tie-break makes the order total, so
// repeated queries and pagination are deterministic.
func SortForQuery(txs []Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// SortChronological orders transactions ascending by date, created_at, id:
// the ordering under which running balances are defined.
func SortChronological(txs []Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
