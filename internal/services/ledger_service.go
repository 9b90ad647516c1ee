// Package services orchestrates ledger operations: field validation in
// core, atomic persistence in storage, and best-effort event publishing
// for the mirror pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"forgeledger/internal/amqp"
	"forgeledger/internal/core"
)

// Repository is the persistence contract the service needs. Implementations
// must run each cross-entity check and its mutation as one atomic unit and
// report failures with the typed errors from core.
type Repository interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context, typ *core.EntryType) ([]core.Category, error)

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	QueryTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error)

	Ping(ctx context.Context) error
	Close() error
}

// CategoryUpdate carries the fields of a partial category update; nil
// means "keep the current value".
type CategoryUpdate struct {
	Name *string
	Type *core.EntryType
}

// TransactionUpdate carries the fields of a partial transaction update;
// nil means "keep the current value". The merged record is re-validated in
// full, so a partial update cannot sneak past an invariant.
type TransactionUpdate struct {
	Amount      *core.Money
	Type        *core.EntryType
	CategoryID  *int64
	Date        *core.Date
	Description *string
}

// Report bundles the derived aggregates for a filtered transaction subset.
type Report struct {
	Summary    core.Summary
	ByCategory []core.CategoryTotal
	ByMonth    []core.MonthTotal
}

// LedgerService exposes the ledger's business operations.
type LedgerService struct {
	repo       Repository
	amqpClient *amqp.Client
	clock      core.Clock
}

// NewLedgerService creates a service over the given repository. amqpClient
// may be nil; events are then skipped. A nil clock falls back to the
// system clock.
func NewLedgerService(repo Repository, amqpClient *amqp.Client, clock core.Clock) *LedgerService {
	if clock == nil {
		clock = core.SystemClock()
	}
	return &LedgerService{
		repo:       repo,
		amqpClient: amqpClient,
		clock:      clock,
	}
}

// CreateCategory validates and stores a new category.
func (s *LedgerService) CreateCategory(ctx context.Context, name string, typ core.EntryType) (core.Category, error) {
	c := core.Category{Name: name, Type: typ}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.repo.CreateCategory(ctx, c)
}

// UpdateCategory applies a partial update. The merged record passes the
// same validation as a create; the repository enforces name uniqueness and
// refuses a type change while transactions reference the category.
func (s *LedgerService) UpdateCategory(ctx context.Context, id int64, update CategoryUpdate) (core.Category, error) {
	existing, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}

	merged := existing
	if update.Name != nil {
		merged.Name = *update.Name
	}
	if update.Type != nil {
		merged.Type = *update.Type
	}
	merged.Normalize()
	if err := merged.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.repo.UpdateCategory(ctx, merged)
}

// DeleteCategory removes an unreferenced category. A referenced category
// is never deleted; the error carries the blocking reference count.
func (s *LedgerService) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

// GetCategory returns one category by id.
func (s *LedgerService) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// ListCategories returns categories ordered by name, optionally filtered
// by entry type.
func (s *LedgerService) ListCategories(ctx context.Context, typ *core.EntryType) ([]core.Category, error) {
	return s.repo.ListCategories(ctx, typ)
}

// CreateTransaction validates and stores a new transaction, then publishes
// a created event for the mirror worker. A publish failure is logged but
// never fails the request: the record is already safely stored.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = 0
	t.Normalize()
	if err := t.Validate(s.clock); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.repo.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, amqp.NewEventMessage(amqp.ActionCreated, created.ID))
	return created, nil
}

// UpdateTransaction merges the update onto the stored record and re-runs
// full validation and the category agreement check against the merged
// result. created_at never changes.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id int64, update TransactionUpdate) (core.Transaction, error) {
	existing, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	merged := existing
	if update.Amount != nil {
		merged.Amount = *update.Amount
	}
	if update.Type != nil {
		merged.Type = *update.Type
	}
	if update.CategoryID != nil {
		merged.CategoryID = *update.CategoryID
	}
	if update.Date != nil {
		merged.Date = *update.Date
	}
	if update.Description != nil {
		merged.Description = *update.Description
	}
	merged.Normalize()
	if err := merged.Validate(s.clock); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.repo.UpdateTransaction(ctx, merged)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, amqp.NewEventMessage(amqp.ActionUpdated, updated.ID))
	return updated, nil
}

// DeleteTransaction hard-deletes a transaction and publishes a deleted
// event carrying the final snapshot. Deleting a missing id reports
// NotFoundError; repeated deletes are not silently idempotent.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	existing, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	categoryName := ""
	if cat, err := s.repo.GetCategory(ctx, existing.CategoryID); err == nil {
		categoryName = cat.Name
	}

	s.publish(ctx, amqp.NewDeleteMessage(id, amqp.TransactionSnapshot{
		Date:         existing.Date.String(),
		Type:         string(existing.Type),
		AmountCents:  existing.Amount.Cents,
		CategoryID:   existing.CategoryID,
		CategoryName: categoryName,
		Description:  existing.Description,
	}))
	return nil
}

// GetTransaction returns one transaction by id.
func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// Query returns the transactions matching the filter in query order.
func (s *LedgerService) Query(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	return s.repo.QueryTransactions(ctx, f)
}

// Report computes totals and breakdowns over the filtered subset. The
// aggregates are always derived from the records on this call; nothing is
// cached between calls.
func (s *LedgerService) Report(ctx context.Context, f core.Filter) (Report, error) {
	txs, err := s.repo.QueryTransactions(ctx, f)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Summary:    core.Summarize(txs),
		ByCategory: core.BreakdownByCategory(txs),
		ByMonth:    core.BreakdownByMonth(txs),
	}, nil
}

// RunningBalances returns the filtered subset in chronological order with
// the net balance after each transaction.
func (s *LedgerService) RunningBalances(ctx context.Context, f core.Filter) ([]core.BalancePoint, error) {
	txs, err := s.repo.QueryTransactions(ctx, f)
	if err != nil {
		return nil, err
	}
	return core.RunningBalances(txs), nil
}

// Ping reports storage connectivity for health checks.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.LedgerEventMessage) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"action", msg.Action,
			"id", msg.ID,
			"error", err)
	}
}

// Close releases the repository and the AMQP connection.
func (s *LedgerService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
