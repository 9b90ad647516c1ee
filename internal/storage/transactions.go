package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"forgeledger/internal/core"
)

// Sync states for the mirror pipeline.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

const transactionColumns = `id, amount_cents, type, category_id, date, description, created_at, updated_at`

// CreateTransaction inserts a new transaction. The referenced category must
// exist and carry the same entry type; both checks share the insert's
// transaction so a concurrent category delete cannot race past them.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var created core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkCategoryAgreement(ctx, tx, t); err != nil {
			return err
		}

		now := nowNanos()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (amount_cents, type, category_id, date, description, created_at, updated_at, sync_status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Amount.Cents, string(t.Type), t.CategoryID, t.Date.String(), t.Description, now, now, SyncPending)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("transaction id: %w", err)
		}

		created = t
		created.ID = id
		created.CreatedAt = fromNanos(now)
		created.UpdatedAt = fromNanos(now)
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", created.ID,
		"amount_cents", created.Amount.Cents,
		"type", created.Type,
		"category_id", created.CategoryID,
		"date", created.Date.String())
	return created, nil
}

// UpdateTransaction stores new field values for an existing transaction.
// The caller passes the fully merged record; created_at is never modified
// and the category agreement is re-checked inside the same transaction.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var updated core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getTransactionTx(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		if err := checkCategoryAgreement(ctx, tx, t); err != nil {
			return err
		}

		now := nowNanos()
		if _, err := tx.ExecContext(ctx,
			`UPDATE transactions
			 SET amount_cents = ?, type = ?, category_id = ?, date = ?, description = ?, updated_at = ?, sync_status = ?
			 WHERE id = ?`,
			t.Amount.Cents, string(t.Type), t.CategoryID, t.Date.String(), t.Description, now, SyncPending, t.ID); err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}

		updated = t
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = fromNanos(now)
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction updated",
		"id", updated.ID,
		"amount_cents", updated.Amount.Cents,
		"type", updated.Type,
		"category_id", updated.CategoryID)
	return updated, nil
}

// DeleteTransaction hard-deletes a transaction. Deleting an id that does
// not exist reports NotFoundError rather than succeeding silently; delete
// is deliberately not idempotent at this layer.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction result: %w", err)
	}
	if affected == 0 {
		return &core.NotFoundError{Entity: "transaction", ID: id}
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// GetTransaction returns the transaction with the given id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	return scanTransaction(row, id)
}

// QueryTransactions returns the transactions matching the filter, ordered
// by date descending with created_at and id descending as tie-breaks. The
// ordering is total, so repeated queries paginate identically.
func (r *SQLiteRepository) QueryTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions`
	var (
		conds []string
		args  []any
	)
	if f.Type != nil {
		conds = append(conds, `type = ?`)
		args = append(args, string(*f.Type))
	}
	// An empty id set means no category restriction at all.
	if len(f.CategoryIDs) > 0 {
		placeholders := strings.Repeat("?,", len(f.CategoryIDs))
		conds = append(conds, `category_id IN (`+placeholders[:len(placeholders)-1]+`)`)
		for _, id := range f.CategoryIDs {
			args = append(args, id)
		}
	}
	if f.DateFrom != nil {
		conds = append(conds, `date >= ?`)
		args = append(args, f.DateFrom.String())
	}
	if f.DateTo != nil {
		conds = append(conds, `date <= ?`)
		args = append(args, f.DateTo.String())
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY date DESC, created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

// GetPendingSync returns up to limit transactions not yet mirrored, oldest
// first. Used by the mirror worker as catchup for lost queue messages.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE sync_status = ? ORDER BY created_at, id LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]core.Transaction, 0, limit)
	for rows.Next() {
		t, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending transactions: %w", err)
	}
	return transactions, nil
}

// MarkSynced records that a transaction reached the mirror.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ?, synced_at = ? WHERE id = ?`,
		SyncDone, nowNanos(), id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

// MarkSyncError records a failed mirror attempt.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

// checkCategoryAgreement resolves the transaction's category inside tx and
// verifies the type invariant: transaction.type == category.type.
func checkCategoryAgreement(ctx context.Context, tx *sql.Tx, t core.Transaction) error {
	var catType string
	err := tx.QueryRowContext(ctx,
		`SELECT type FROM categories WHERE id = ?`, t.CategoryID).Scan(&catType)
	if err == sql.ErrNoRows {
		return &core.NotFoundError{Entity: "category", ID: t.CategoryID}
	}
	if err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}
	if core.EntryType(catType) != t.Type {
		return &core.TypeMismatchError{
			CategoryID:      t.CategoryID,
			TransactionType: t.Type,
			CategoryType:    core.EntryType(catType),
		}
	}
	return nil
}

func scanTransaction(row rowScanner, id int64) (core.Transaction, error) {
	t, err := scanTransactionRowErr(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, &core.NotFoundError{Entity: "transaction", ID: id}
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

func scanTransactionRow(row rowScanner) (core.Transaction, error) {
	t, err := scanTransactionRowErr(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

func scanTransactionRowErr(row rowScanner) (core.Transaction, error) {
	var (
		t        core.Transaction
		date     string
		created  int64
		modified int64
	)
	if err := row.Scan(&t.ID, &t.Amount.Cents, &t.Type, &t.CategoryID, &date, &t.Description, &created, &modified); err != nil {
		return core.Transaction{}, err
	}
	d, err := scanDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Date = d
	t.CreatedAt = fromNanos(created)
	t.UpdatedAt = fromNanos(modified)
	return t, nil
}

func getTransactionTx(ctx context.Context, tx *sql.Tx, id int64) (core.Transaction, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	return scanTransaction(row, id)
}
