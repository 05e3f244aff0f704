package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"swapwear/internal/model"
)

// ItemParams holds the mutable listing fields.
type ItemParams struct {
	Title       string
	Description string
	Category    string
	Size        string
	ImageURL    string
	PointsCost  int
}

// validateItemParams checks listing fields, reporting the first failure.
func validateItemParams(p ItemParams) error {
	if utf8.RuneCountInString(strings.TrimSpace(p.Title)) < 3 {
		return &ValidationError{Field: "title", Reason: "must be at least 3 characters"}
	}
	if !model.ValidCategory(p.Category) {
		return &ValidationError{Field: "category", Reason: "must be one of male, female, kids"}
	}
	if !model.ValidSize(p.Size) {
		return &ValidationError{Field: "size", Reason: "must be one of S, M, L, XL"}
	}
	if p.PointsCost <= 0 {
		return &ValidationError{Field: "points_cost", Reason: "must be a positive integer"}
	}
	return nil
}

// CreateItem creates a new listing owned by owner.
func CreateItem(ctx context.Context, db *sql.DB, owner *model.User, p ItemParams) (*model.Item, error) {
	if err := validateItemParams(p); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (owner_id, title, description, category, size, image_url, points_cost)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		owner.ID, strings.TrimSpace(p.Title), p.Description, p.Category, p.Size, p.ImageURL, p.PointsCost,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns a non-deleted item by ID, or nil if absent.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	return getItem(ctx, db, id)
}

// querier covers *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getItem(ctx context.Context, q querier, id int64) (*model.Item, error) {
	item := &model.Item{}
	var description, imageURL sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, category, size, image_url, points_cost, created_at, deleted_at
		 FROM items WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&item.ID, &item.OwnerID, &item.Title, &description, &item.Category, &item.Size,
		&imageURL, &item.PointsCost, &item.CreatedAt, &item.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.Description = description.String
	item.ImageURL = imageURL.String
	return item, nil
}

// ItemFilter narrows ListItems results. Zero values mean no filtering;
// MaxPoints of 0 means no upper bound.
type ItemFilter struct {
	Category  string
	Size      string
	MinPoints int
	MaxPoints int
	Search    string
}

// ListItems returns non-deleted listings matching the filter, newest first.
func ListItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, error) {
	query := `SELECT i.id, i.owner_id, i.title, i.description, i.category, i.size,
	                 i.image_url, i.points_cost, i.created_at, i.deleted_at,
	                 u.username AS owner_name
	          FROM items i
	          JOIN users u ON u.id = i.owner_id
	          WHERE i.deleted_at IS NULL`
	var args []any

	if f.Category != "" {
		query += ` AND i.category = ?`
		args = append(args, f.Category)
	}
	if f.Size != "" {
		query += ` AND i.size = ?`
		args = append(args, f.Size)
	}
	if f.MinPoints > 0 {
		query += ` AND i.points_cost >= ?`
		args = append(args, f.MinPoints)
	}
	if f.MaxPoints > 0 {
		query += ` AND i.points_cost <= ?`
		args = append(args, f.MaxPoints)
	}
	if f.Search != "" {
		query += ` AND (i.title LIKE ? OR i.description LIKE ?)`
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var description, imageURL sql.NullString
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Title, &description, &item.Category, &item.Size,
			&imageURL, &item.PointsCost, &item.CreatedAt, &item.DeletedAt, &item.OwnerName); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Description = description.String
		item.ImageURL = imageURL.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem overwrites a listing's mutable fields. Only the owner or an
// admin may update, and the new fields are validated before any write.
func UpdateItem(ctx context.Context, db *sql.DB, actor *model.User, id int64, p ItemParams) (*model.Item, error) {
	if err := validateItemParams(p); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getItem(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if !actor.CanManage(item.OwnerID) {
		return nil, fmt.Errorf("updating item %d: %w", id, ErrForbidden)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, category = ?, size = ?, image_url = ?, points_cost = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		strings.TrimSpace(p.Title), p.Description, p.Category, p.Size, p.ImageURL, p.PointsCost, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item update: %w", err)
	}

	return GetItem(ctx, db, id)
}

// DeleteItem soft-deletes a listing. Pending swap requests that reference
// the item on either side are removed in the same transaction so no request
// is left pointing at a dead listing.
func DeleteItem(ctx context.Context, db *sql.DB, actor *model.User, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getItem(ctx, tx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if !actor.CanManage(item.OwnerID) {
		return fmt.Errorf("deleting item %d: %w", id, ErrForbidden)
	}

	if err := removePendingSwapsForItem(ctx, tx, id); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item deletion: %w", err)
	}
	return nil
}

// removePendingSwapsForItem deletes pending swap requests referencing the
// item as either the requested or the offered side.
func removePendingSwapsForItem(ctx context.Context, tx *sql.Tx, itemID int64) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM swap_requests
		 WHERE status = 'pending' AND (requested_item_id = ? OR offered_item_id = ?)`,
		itemID, itemID,
	)
	if err != nil {
		return fmt.Errorf("removing pending swaps for item: %w", err)
	}
	return nil
}
