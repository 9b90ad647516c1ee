package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"forgeledger/internal/core"
)

// CreateCategory inserts a new category. The case-insensitive duplicate
// check and the insert share one transaction.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	var created core.Category
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		taken, err := nameTaken(ctx, tx, c.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return &core.DuplicateNameError{Name: c.Name}
		}

		now := nowNanos()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, type, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			c.Name, string(c.Type), now, now)
		if err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("category id: %w", err)
		}

		created = c
		created.ID = id
		created.CreatedAt = fromNanos(now)
		created.UpdatedAt = fromNanos(now)
		return nil
	})
	if err != nil {
		return core.Category{}, err
	}

	slog.InfoContext(ctx, "Category created",
		"id", created.ID,
		"name", created.Name,
		"type", created.Type)
	return created, nil
}

// UpdateCategory stores new field values for an existing category. A type
// change is refused while any transaction references the category, so the
// type/transaction agreement invariant cannot be broken retroactively.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	var updated core.Category
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getCategoryTx(ctx, tx, c.ID)
		if err != nil {
			return err
		}

		taken, err := nameTaken(ctx, tx, c.Name, c.ID)
		if err != nil {
			return err
		}
		if taken {
			return &core.DuplicateNameError{Name: c.Name}
		}

		if c.Type != existing.Type {
			count, err := referenceCount(ctx, tx, c.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				return &core.CategoryInUseError{ID: c.ID, Count: count}
			}
		}

		now := nowNanos()
		if _, err := tx.ExecContext(ctx,
			`UPDATE categories SET name = ?, type = ?, updated_at = ? WHERE id = ?`,
			c.Name, string(c.Type), now, c.ID); err != nil {
			return fmt.Errorf("update category: %w", err)
		}

		updated = c
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = fromNanos(now)
		return nil
	})
	if err != nil {
		return core.Category{}, err
	}

	slog.InfoContext(ctx, "Category updated",
		"id", updated.ID,
		"name", updated.Name,
		"type", updated.Type)
	return updated, nil
}

// DeleteCategory removes a category. The reference count and the delete
// share one transaction, so a concurrent transaction insert cannot race
// past the check.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getCategoryTx(ctx, tx, id); err != nil {
			return err
		}
		count, err := referenceCount(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return &core.CategoryInUseError{ID: id, Count: count}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

// GetCategory returns the category with the given id.
func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, created_at, updated_at FROM categories WHERE id = ?`, id)
	return scanCategory(row, id)
}

// ListCategories returns categories ordered by name, optionally restricted
// to one entry type.
func (r *SQLiteRepository) ListCategories(ctx context.Context, typ *core.EntryType) ([]core.Category, error) {
	query := `SELECT id, name, type, created_at, updated_at FROM categories`
	args := []any{}
	if typ != nil {
		query += ` WHERE type = ?`
		args = append(args, string(*typ))
	}
	query += ` ORDER BY name COLLATE NOCASE, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]core.Category, 0)
	for rows.Next() {
		var (
			c        core.Category
			created  int64
			modified int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &created, &modified); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.CreatedAt = fromNanos(created)
		c.UpdatedAt = fromNanos(modified)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner, id int64) (core.Category, error) {
	var (
		c        core.Category
		created  int64
		modified int64
	)
	err := row.Scan(&c.ID, &c.Name, &c.Type, &created, &modified)
	if err == sql.ErrNoRows {
		return core.Category{}, &core.NotFoundError{Entity: "category", ID: id}
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("scan category: %w", err)
	}
	c.CreatedAt = fromNanos(created)
	c.UpdatedAt = fromNanos(modified)
	return c, nil
}

func getCategoryTx(ctx context.Context, tx *sql.Tx, id int64) (core.Category, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, name, type, created_at, updated_at FROM categories WHERE id = ?`, id)
	return scanCategory(row, id)
}

// nameTaken reports whether another category already uses the name. The
// name column is COLLATE NOCASE, so the comparison is case-insensitive.
func nameTaken(ctx context.Context, tx *sql.Tx, name string, excludeID int64) (bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE name = ? AND id != ?`, name, excludeID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return true, nil
}

func referenceCount(ctx context.Context, tx *sql.Tx, categoryID int64) (int64, error) {
	var count int64
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count category references: %w", err)
	}
	return count, nil
}
