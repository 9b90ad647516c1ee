package services

import (
	"context"
	"errors"
	"testing"

	"forgeledger/internal/core"
	"forgeledger/internal/storage/memory"
)

func newTestService() *LedgerService {
	clock := core.FixedClock(core.NewDate(2025, 6, 15))
	return NewLedgerService(memory.New(), nil, clock)
}

func mustCategory(t *testing.T, s *LedgerService, name string, typ core.EntryType) core.Category {
	t.Helper()
	c, err := s.CreateCategory(context.Background(), name, typ)
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return c
}

func mustTransaction(t *testing.T, s *LedgerService, tx core.Transaction) core.Transaction {
	t.Helper()
	created, err := s.CreateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return created
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	mustCategory(t, s, "Rent", core.Expense)

	// Names collide case-insensitively and across types.
	for _, name := range []string{"Rent", "rent", "  RENT  "} {
		_, err := s.CreateCategory(ctx, name, core.Income)
		var dup *core.DuplicateNameError
		if !errors.As(err, &dup) {
			t.Fatalf("%q: expected DuplicateNameError, got %v", name, err)
		}
	}
}

func TestCreateCategoryInvalid(t *testing.T) {
	s := newTestService()
	_, err := s.CreateCategory(context.Background(), "   ", "neither")
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !verr.Has("name") || !verr.Has("type") {
		t.Fatalf("expected violations on name and type, got %v", verr.Fields)
	}
}

func TestUpdateCategoryKeepsOwnName(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	c := mustCategory(t, s, "Groceries", core.Expense)

	// Re-submitting the category's own name is not a duplicate.
	updated, err := s.UpdateCategory(ctx, c.ID, CategoryUpdate{Name: ptr("Groceries")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Groceries" {
		t.Fatalf("expected name kept, got %q", updated.Name)
	}
}

func TestUpdateCategoryTypeImmutableOnceReferenced(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	c := mustCategory(t, s, "Salary", core.Income)

	// Unreferenced: type may still change.
	if _, err := s.UpdateCategory(ctx, c.ID, CategoryUpdate{Type: entryPtr(core.Expense)}); err != nil {
		t.Fatalf("type change on unreferenced category should succeed: %v", err)
	}
	if _, err := s.UpdateCategory(ctx, c.ID, CategoryUpdate{Type: entryPtr(core.Income)}); err != nil {
		t.Fatalf("restore type: %v", err)
	}

	mustTransaction(t, s, core.Transaction{
		Amount:     core.Money{Cents: 500000},
		Type:       core.Income,
		CategoryID: c.ID,
		Date:       core.NewDate(2025, 6, 15),
	})

	_, err := s.UpdateCategory(ctx, c.ID, CategoryUpdate{Type: entryPtr(core.Expense)})
	var inUse *core.CategoryInUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("expected CategoryInUseError, got %v", err)
	}
	if inUse.Count != 1 {
		t.Fatalf("expected count 1, got %d", inUse.Count)
	}
}

func TestDeleteCategoryBlockedWhileReferenced(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	// Scenario: Salary 5000.00 income, summary, blocked delete, then
	// delete transaction and category in order.
	salary := mustCategory(t, s, "Salary", core.Income)
	tx := mustTransaction(t, s, core.Transaction{
		Amount:     core.Money{Cents: 500000},
		Type:       core.Income,
		CategoryID: salary.ID,
		Date:       core.NewDate(2025, 6, 15),
	})

	report, err := s.Report(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Summary.TotalIncome.String() != "5000.00" {
		t.Fatalf("expected total income 5000.00, got %s", report.Summary.TotalIncome)
	}
	if report.Summary.NetBalance.String() != "5000.00" {
		t.Fatalf("expected net balance 5000.00, got %s", report.Summary.NetBalance)
	}

	err = s.DeleteCategory(ctx, salary.ID)
	var inUse *core.CategoryInUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("expected CategoryInUseError, got %v", err)
	}
	if inUse.Count != 1 {
		t.Fatalf("expected blocking count 1, got %d", inUse.Count)
	}

	if err := s.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if err := s.DeleteCategory(ctx, salary.ID); err != nil {
		t.Fatalf("delete category after unreferencing: %v", err)
	}
}

func TestCreateTransactionTypeMismatch(t *testing.T) {
	s := newTestService()
	groceries := mustCategory(t, s, "Groceries", core.Expense)

	_, err := s.CreateTransaction(context.Background(), core.Transaction{
		Amount:     core.Money{Cents: 100},
		Type:       core.Income,
		CategoryID: groceries.ID,
		Date:       core.NewDate(2025, 6, 15),
	})
	var mismatch *core.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
	if mismatch.TransactionType != core.Income || mismatch.CategoryType != core.Expense {
		t.Fatalf("unexpected mismatch contents: %+v", mismatch)
	}
}

func TestCreateTransactionMissingCategory(t *testing.T) {
	s := newTestService()
	_, err := s.CreateTransaction(context.Background(), core.Transaction{
		Amount:     core.Money{Cents: 100},
		Type:       core.Income,
		CategoryID: 42,
		Date:       core.NewDate(2025, 6, 15),
	})
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Entity != "category" || nf.ID != 42 {
		t.Fatalf("unexpected not-found contents: %+v", nf)
	}
}

func TestCreateTransactionZeroAmount(t *testing.T) {
	s := newTestService()
	c := mustCategory(t, s, "Misc", core.Expense)

	_, err := s.CreateTransaction(context.Background(), core.Transaction{
		Amount:     core.Money{Cents: 0},
		Type:       core.Expense,
		CategoryID: c.ID,
		Date:       core.NewDate(2025, 6, 15),
	})
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !verr.Has("amount") {
		t.Fatalf("expected amount violation, got %v", verr.Fields)
	}
}

func TestUpdateTransactionRoundTrip(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	c := mustCategory(t, s, "Salary", core.Income)
	created := mustTransaction(t, s, core.Transaction{
		Amount:      core.Money{Cents: 123456},
		Type:        core.Income,
		CategoryID:  c.ID,
		Date:        core.NewDate(2025, 6, 1),
		Description: "June salary",
	})

	// Updating a transaction with its own current values keeps every
	// invariant and never touches created_at.
	updated, err := s.UpdateTransaction(ctx, created.ID, TransactionUpdate{
		Amount:      &created.Amount,
		Type:        &created.Type,
		CategoryID:  &created.CategoryID,
		Date:        &created.Date,
		Description: &created.Description,
	})
	if err != nil {
		t.Fatalf("round-trip update: %v", err)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
	if updated.Amount != created.Amount || updated.Type != created.Type ||
		updated.CategoryID != created.CategoryID || !updated.Date.Equal(created.Date) ||
		updated.Description != created.Description {
		t.Fatalf("round-trip changed data: %+v vs %+v", updated, created)
	}
}

func TestUpdateTransactionPartialCannotBypassInvariants(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	income := mustCategory(t, s, "Salary", core.Income)
	expense := mustCategory(t, s, "Rent", core.Expense)
	created := mustTransaction(t, s, core.Transaction{
		Amount:     core.Money{Cents: 1000},
		Type:       core.Income,
		CategoryID: income.ID,
		Date:       core.NewDate(2025, 6, 1),
	})

	// Pointing only category_id at an expense category type-mismatches
	// the merged record.
	_, err := s.UpdateTransaction(ctx, created.ID, TransactionUpdate{CategoryID: &expense.ID})
	var mismatch *core.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}

	// A future date on an otherwise valid partial update is rejected.
	future := core.NewDate(2025, 6, 16)
	_, err = s.UpdateTransaction(ctx, created.ID, TransactionUpdate{Date: &future})
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// Failed updates leave the stored record untouched.
	got, err := s.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if got.CategoryID != income.ID || !got.Date.Equal(created.Date) {
		t.Fatalf("failed update modified the record: %+v", got)
	}
}

func TestDeleteTransactionNotIdempotent(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	c := mustCategory(t, s, "Misc", core.Expense)
	tx := mustTransaction(t, s, core.Transaction{
		Amount:     core.Money{Cents: 100},
		Type:       core.Expense,
		CategoryID: c.ID,
		Date:       core.NewDate(2025, 6, 15),
	})

	if err := s.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	err := s.DeleteTransaction(ctx, tx.ID)
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("second delete: expected NotFoundError, got %v", err)
	}
}

func TestQueryAndReportOverFilter(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	salary := mustCategory(t, s, "Salary", core.Income)
	rent := mustCategory(t, s, "Rent", core.Expense)

	mustTransaction(t, s, core.Transaction{
		Amount: core.Money{Cents: 100000}, Type: core.Income,
		CategoryID: salary.ID, Date: core.NewDate(2025, 6, 1),
	})
	mustTransaction(t, s, core.Transaction{
		Amount: core.Money{Cents: 50050}, Type: core.Expense,
		CategoryID: rent.ID, Date: core.NewDate(2025, 6, 2),
	})

	report, err := s.Report(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Summary.NetBalance.String() != "499.50" {
		t.Fatalf("expected net 499.50, got %s", report.Summary.NetBalance)
	}

	onlyIncome, err := s.Query(ctx, core.Filter{Type: core.TypeIs(core.Income)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(onlyIncome) != 1 || onlyIncome[0].CategoryID != salary.ID {
		t.Fatalf("unexpected filtered result: %+v", onlyIncome)
	}

	balances, err := s.RunningBalances(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("running balances: %v", err)
	}
	if len(balances) != 2 || balances[1].Balance.String() != "499.50" {
		t.Fatalf("unexpected running balances: %+v", balances)
	}
}

func TestListCategoriesOrderedByName(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	mustCategory(t, s, "Utilities", core.Expense)
	mustCategory(t, s, "groceries", core.Expense)
	mustCategory(t, s, "Salary", core.Income)

	all, err := s.ListCategories(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(all))
	}
	wantOrder := []string{"groceries", "Salary", "Utilities"}
	for i, name := range wantOrder {
		if all[i].Name != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, all[i].Name)
		}
	}

	expenses, err := s.ListCategories(ctx, core.TypeIs(core.Expense))
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("expected 2 expense categories, got %d", len(expenses))
	}
}

func ptr(s string) *string {
	return &s
}

func entryPtr(t core.EntryType) *core.EntryType {
	return &t
}
