// Package memory provides an in-process ledger store with the same
// semantics as the SQLite repository. It backs the "memory" data backend
// and keeps service-level tests free of filesystem state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"forgeledger/internal/core"
)

type Store struct {
	mu           sync.Mutex
	categories   map[int64]core.Category
	transactions map[int64]core.Transaction
	nextCatID    int64
	nextTxID     int64
}

func New() *Store {
	return &Store{
		categories:   make(map[int64]core.Category),
		transactions: make(map[int64]core.Transaction),
		nextCatID:    1,
		nextTxID:     1,
	}
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(c.Name, 0) {
		return core.Category{}, &core.DuplicateNameError{Name: c.Name}
	}

	now := time.Now().UTC()
	c.ID = s.nextCatID
	s.nextCatID++
	c.CreatedAt = now
	c.UpdatedAt = now
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[c.ID]
	if !ok {
		return core.Category{}, &core.NotFoundError{Entity: "category", ID: c.ID}
	}
	if s.nameTaken(c.Name, c.ID) {
		return core.Category{}, &core.DuplicateNameError{Name: c.Name}
	}
	if c.Type != existing.Type {
		if count := s.referenceCount(c.ID); count > 0 {
			return core.Category{}, &core.CategoryInUseError{ID: c.ID, Count: count}
		}
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return &core.NotFoundError{Entity: "category", ID: id}
	}
	if count := s.referenceCount(id); count > 0 {
		return &core.CategoryInUseError{ID: id, Count: count}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, &core.NotFoundError{Entity: "category", ID: id}
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, typ *core.EntryType) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if typ != nil && c.Type != *typ {
			continue
		}
		out = append(out, c)
	}
	sortCategoriesByName(out)
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCategoryAgreement(t); err != nil {
		return core.Transaction{}, err
	}

	now := time.Now().UTC()
	t.ID = s.nextTxID
	s.nextTxID++
	t.CreatedAt = now
	t.UpdatedAt = now
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.transactions[t.ID]
	if !ok {
		return core.Transaction{}, &core.NotFoundError{Entity: "transaction", ID: t.ID}
	}
	if err := s.checkCategoryAgreement(t); err != nil {
		return core.Transaction{}, err
	}

	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return &core.NotFoundError{Entity: "transaction", ID: id}
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, &core.NotFoundError{Entity: "transaction", ID: id}
	}
	return t, nil
}

func (s *Store) QueryTransactions(_ context.Context, f core.Filter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		all = append(all, t)
	}
	return f.Apply(all), nil
}

func (s *Store) nameTaken(name string, excludeID int64) bool {
	for _, c := range s.categories {
		if c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (s *Store) referenceCount(categoryID int64) int64 {
	var count int64
	for _, t := range s.transactions {
		if t.CategoryID == categoryID {
			count++
		}
	}
	return count
}

func (s *Store) checkCategoryAgreement(t core.Transaction) error {
	cat, ok := s.categories[t.CategoryID]
	if !ok {
		return &core.NotFoundError{Entity: "category", ID: t.CategoryID}
	}
	if cat.Type != t.Type {
		return &core.TypeMismatchError{
			CategoryID:      t.CategoryID,
			TransactionType: t.Type,
			CategoryType:    cat.Type,
		}
	}
	return nil
}

func sortCategoriesByName(cats []core.Category) {
	sort.Slice(cats, func(i, j int) bool {
		an, bn := strings.ToLower(cats[i].Name), strings.ToLower(cats[j].Name)
		if an != bn {
			return an < bn
		}
		return cats[i].ID < cats[j].ID
	})
}
