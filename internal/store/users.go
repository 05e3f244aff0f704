package store

import (
	"context"
	"database/sql"
	"fmt"

	"swapwear/internal/model"
)

// CreateUser creates a new user. Username and email must be unique among
// active users; a clash returns ErrConflict.
func CreateUser(ctx context.Context, db *sql.DB, username, email, passwordHash string, points int, isAdmin bool) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, points, is_admin) VALUES (?, ?, ?, ?, ?)`,
		username, email, passwordHash, points, isAdmin,
	)
	if err != nil {
		if constraintConflict(err) {
			return nil, fmt.Errorf("username or email already taken: %w", ErrConflict)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if absent.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, points, is_admin, created_at, deleted_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Points, &u.IsAdmin, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns a user by username (including soft-deleted for
// auth checks), or nil if absent.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, points, is_admin, created_at, deleted_at
		 FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Points, &u.IsAdmin, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, username, email, password_hash, points, is_admin, created_at, deleted_at
		 FROM users WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Points, &u.IsAdmin, &u.CreatedAt, &u.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// SetUserPoints sets a user's point balance. Admin only.
func SetUserPoints(ctx context.Context, db *sql.DB, actor *model.User, id int64, points int) error {
	if !actor.IsAdmin {
		return fmt.Errorf("setting points: %w", ErrForbidden)
	}
	if points < 0 {
		return &ValidationError{Field: "points", Reason: "must not be negative"}
	}

	result, err := db.ExecContext(ctx,
		`UPDATE users SET points = ? WHERE id = ? AND deleted_at IS NULL`,
		points, id,
	)
	if err != nil {
		return fmt.Errorf("setting points: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting points: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteUser soft-deletes a user and walks its dependents in one transaction:
// pending swaps touching the user's items are removed, the user's own swap
// requests are removed, and the user's items are soft-deleted.
func DeleteUser(ctx context.Context, db *sql.DB, actor *model.User, id int64) error {
	if !actor.IsAdmin && actor.ID != id {
		return fmt.Errorf("deleting user: %w", ErrForbidden)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = ? AND deleted_at IS NULL)`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking user: %w", err)
	}
	if !exists {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}

	// Pending swaps that request or offer one of the user's items.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM swap_requests WHERE status = 'pending' AND (
		    requested_item_id IN (SELECT id FROM items WHERE owner_id = ?)
		    OR offered_item_id IN (SELECT id FROM items WHERE owner_id = ?)
		 )`, id, id,
	)
	if err != nil {
		return fmt.Errorf("removing swaps for user items: %w", err)
	}

	// The user's own requests, in any state.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM swap_requests WHERE requester_id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("removing user swap requests: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE owner_id = ? AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("removing user items: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing user deletion: %w", err)
	}
	return nil
}
