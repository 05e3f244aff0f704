package store

import (
	"context"
	"database/sql"
	"fmt"

	"swapwear/internal/model"
)

// RequestExchange creates a pending item-for-item swap request. All
// preconditions are checked inside one transaction, in order, first failure
// wins: the offered item exists and is owned by the requester, the requested
// item exists and is not the requester's own, the (requester, requested item)
// pair has no pending request yet, and the offered item is not pledged in
// another pending request. The partial unique indexes on swap_requests catch
// races the in-transaction checks cannot see.
func RequestExchange(ctx context.Context, db *sql.DB, requester *model.User, requestedItemID, offeredItemID int64) (*model.SwapRequest, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	offered, err := getItem(ctx, tx, offeredItemID)
	if err != nil {
		return nil, err
	}
	if offered == nil {
		return nil, fmt.Errorf("offered item %d: %w", offeredItemID, ErrNotFound)
	}
	if offered.OwnerID != requester.ID {
		return nil, fmt.Errorf("offered item is not yours: %w", ErrForbidden)
	}

	requested, err := getItem(ctx, tx, requestedItemID)
	if err != nil {
		return nil, err
	}
	if requested == nil {
		return nil, fmt.Errorf("requested item %d: %w", requestedItemID, ErrNotFound)
	}
	if requested.OwnerID == requester.ID {
		return nil, &ValidationError{Field: "requested_item_id", Reason: "cannot request your own item"}
	}

	if err := checkNoPendingDuplicate(ctx, tx, requester.ID, requestedItemID); err != nil {
		return nil, err
	}

	var pledged bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM swap_requests WHERE offered_item_id = ? AND status = 'pending')`,
		offeredItemID,
	).Scan(&pledged)
	if err != nil {
		return nil, fmt.Errorf("checking offered item pledge: %w", err)
	}
	if pledged {
		return nil, fmt.Errorf("offered item already pledged in another pending swap: %w", ErrConflict)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO swap_requests (requester_id, requested_item_id, offered_item_id, kind, status)
		 VALUES (?, ?, ?, 'exchange', 'pending')`,
		requester.ID, requestedItemID, offeredItemID,
	)
	if err != nil {
		if constraintConflict(err) {
			return nil, fmt.Errorf("creating swap request: %w", ErrConflict)
		}
		return nil, fmt.Errorf("creating swap request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting swap request id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if constraintConflict(err) {
			return nil, fmt.Errorf("committing swap request: %w", ErrConflict)
		}
		return nil, fmt.Errorf("committing swap request: %w", err)
	}

	return GetSwap(ctx, db, id)
}

// RequestPointSwap creates a pending point swap for an item. The requester
// pays with their point balance instead of staking an item; the balance
// check is repeated at acceptance time, inside the same transaction as the
// deduction.
func RequestPointSwap(ctx context.Context, db *sql.DB, requester *model.User, itemID int64) (*model.SwapRequest, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	requested, err := getItem(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}
	if requested == nil {
		return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	if requested.OwnerID == requester.ID {
		return nil, &ValidationError{Field: "requested_item_id", Reason: "cannot request your own item"}
	}

	var points int
	err = tx.QueryRowContext(ctx,
		`SELECT points FROM users WHERE id = ? AND deleted_at IS NULL`, requester.ID,
	).Scan(&points)
	if err != nil {
		return nil, fmt.Errorf("reading requester balance: %w", err)
	}
	if points < requested.PointsCost {
		return nil, &ValidationError{Field: "points", Reason: "insufficient balance"}
	}

	if err := checkNoPendingDuplicate(ctx, tx, requester.ID, itemID); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO swap_requests (requester_id, requested_item_id, kind, status)
		 VALUES (?, ?, 'points', 'pending')`,
		requester.ID, itemID,
	)
	if err != nil {
		if constraintConflict(err) {
			return nil, fmt.Errorf("creating point swap request: %w", ErrConflict)
		}
		return nil, fmt.Errorf("creating point swap request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting swap request id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if constraintConflict(err) {
			return nil, fmt.Errorf("committing point swap request: %w", ErrConflict)
		}
		return nil, fmt.Errorf("committing point swap request: %w", err)
	}

	return GetSwap(ctx, db, id)
}

// checkNoPendingDuplicate rejects a second pending request by the same
// requester for the same item.
func checkNoPendingDuplicate(ctx context.Context, tx *sql.Tx, requesterID, itemID int64) error {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM swap_requests
		  WHERE requester_id = ? AND requested_item_id = ? AND status = 'pending')`,
		requesterID, itemID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking pending duplicates: %w", err)
	}
	if exists {
		return fmt.Errorf("a pending request for this item already exists: %w", ErrConflict)
	}
	return nil
}

// AcceptSwap completes a pending swap. Only the current owner of the
// requested item may accept. For an exchange the two items trade owners; for
// a point swap the requester's balance moves to the owner and the item is
// consumed. Every write is guarded by the expected prior state so that a
// swap whose items changed hands since creation fails with ErrStaleSwap
// instead of committing a one-sided transfer.
func AcceptSwap(ctx context.Context, db *sql.DB, actor *model.User, swapID int64) (*model.SwapRequest, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	swap, err := getSwapRow(ctx, tx, swapID)
	if err != nil {
		return nil, err
	}
	if swap == nil {
		return nil, fmt.Errorf("swap %d: %w", swapID, ErrNotFound)
	}
	if swap.Status != model.SwapStatusPending {
		return nil, fmt.Errorf("swap %d is %s, not pending: %w", swapID, swap.Status, ErrConflict)
	}

	requested, err := getItem(ctx, tx, swap.RequestedItemID)
	if err != nil {
		return nil, err
	}
	if requested == nil {
		return nil, fmt.Errorf("requested item no longer exists: %w", ErrStaleSwap)
	}
	if requested.OwnerID != actor.ID {
		return nil, fmt.Errorf("only the requested item's owner may accept: %w", ErrForbidden)
	}

	if swap.IsExchange() {
		err = acceptExchange(ctx, tx, swap, requested, actor)
	} else {
		err = acceptPointSwap(ctx, tx, swap, requested, actor)
	}
	if err != nil {
		return nil, err
	}

	if err := markSwapStatus(ctx, tx, swapID, model.SwapStatusCompleted); err != nil {
		return nil, err
	}

	if !swap.IsExchange() {
		// The item is consumed: clear other pending requests for it, then
		// retire the listing. Runs after the status write so this swap,
		// already completed, survives the sweep.
		if err := removePendingSwapsForItem(ctx, tx, requested.ID); err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
			requested.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("consuming item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		if constraintConflict(err) {
			return nil, fmt.Errorf("committing swap acceptance: %w", ErrConflict)
		}
		return nil, fmt.Errorf("committing swap acceptance: %w", err)
	}

	return GetSwap(ctx, db, swapID)
}

// acceptExchange trades ownership of the two items. Both updates assert the
// expected current owner; if either item drifted since the request was
// created the whole transaction rolls back with ErrStaleSwap.
func acceptExchange(ctx context.Context, tx *sql.Tx, swap *model.SwapRequest, requested *model.Item, actor *model.User) error {
	offered, err := getItem(ctx, tx, *swap.OfferedItemID)
	if err != nil {
		return err
	}
	if offered == nil {
		return fmt.Errorf("offered item no longer exists: %w", ErrStaleSwap)
	}
	if offered.OwnerID != swap.RequesterID {
		return fmt.Errorf("offered item changed hands since the request: %w", ErrStaleSwap)
	}
	if offered.OwnerID == requested.OwnerID {
		return fmt.Errorf("both items have the same owner: %w", ErrStaleSwap)
	}

	if err := reassignItem(ctx, tx, requested.ID, actor.ID, swap.RequesterID); err != nil {
		return err
	}
	return reassignItem(ctx, tx, offered.ID, swap.RequesterID, actor.ID)
}

// reassignItem moves an item from expected owner to new owner, failing with
// ErrStaleSwap when the expected owner no longer holds it.
func reassignItem(ctx context.Context, tx *sql.Tx, itemID, expectedOwnerID, newOwnerID int64) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET owner_id = ? WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`,
		newOwnerID, itemID, expectedOwnerID,
	)
	if err != nil {
		return fmt.Errorf("reassigning item %d: %w", itemID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reassigning item %d: %w", itemID, err)
	}
	if n != 1 {
		return fmt.Errorf("item %d owner changed: %w", itemID, ErrStaleSwap)
	}
	return nil
}

// acceptPointSwap moves the item's cost from the requester to the owner. The
// deduction asserts a sufficient balance so the requester's points can never
// go negative, even under concurrent accepts.
func acceptPointSwap(ctx context.Context, tx *sql.Tx, swap *model.SwapRequest, requested *model.Item, actor *model.User) error {
	cost := requested.PointsCost

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET points = points - ? WHERE id = ? AND points >= ? AND deleted_at IS NULL`,
		cost, swap.RequesterID, cost,
	)
	if err != nil {
		return fmt.Errorf("deducting points: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deducting points: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("requester no longer has %d points: %w", cost, ErrConflict)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET points = points + ? WHERE id = ? AND deleted_at IS NULL`,
		cost, actor.ID,
	)
	if err != nil {
		return fmt.Errorf("crediting points: %w", err)
	}
	return nil
}

// markSwapStatus transitions a pending swap to a terminal status, failing
// with ErrConflict when the swap is no longer pending.
func markSwapStatus(ctx context.Context, tx *sql.Tx, swapID int64, status string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE swap_requests SET status = ? WHERE id = ? AND status = 'pending'`,
		status, swapID,
	)
	if err != nil {
		return fmt.Errorf("updating swap status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating swap status: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("swap %d is no longer pending: %w", swapID, ErrConflict)
	}
	return nil
}

// DeclineSwap rejects a pending swap. Only the requested item's current
// owner may decline. An exchange is kept with status declined; a point swap
// is removed, matching the legacy flow.
func DeclineSwap(ctx context.Context, db *sql.DB, actor *model.User, swapID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	swap, err := getSwapRow(ctx, tx, swapID)
	if err != nil {
		return err
	}
	if swap == nil {
		return fmt.Errorf("swap %d: %w", swapID, ErrNotFound)
	}
	if swap.Status != model.SwapStatusPending {
		return fmt.Errorf("swap %d is %s, not pending: %w", swapID, swap.Status, ErrConflict)
	}

	requested, err := getItem(ctx, tx, swap.RequestedItemID)
	if err != nil {
		return err
	}
	if requested == nil {
		return fmt.Errorf("requested item no longer exists: %w", ErrStaleSwap)
	}
	if requested.OwnerID != actor.ID {
		return fmt.Errorf("only the requested item's owner may decline: %w", ErrForbidden)
	}

	if swap.IsExchange() {
		if err := markSwapStatus(ctx, tx, swapID, model.SwapStatusDeclined); err != nil {
			return err
		}
	} else {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM swap_requests WHERE id = ? AND status = 'pending'`, swapID,
		)
		if err != nil {
			return fmt.Errorf("removing point swap request: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("removing point swap request: %w", err)
		}
		if n != 1 {
			return fmt.Errorf("swap %d is no longer pending: %w", swapID, ErrConflict)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing swap decline: %w", err)
	}
	return nil
}

// CancelSwap removes a pending swap request entirely. Only the original
// requester may cancel.
func CancelSwap(ctx context.Context, db *sql.DB, actor *model.User, swapID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	swap, err := getSwapRow(ctx, tx, swapID)
	if err != nil {
		return err
	}
	if swap == nil {
		return fmt.Errorf("swap %d: %w", swapID, ErrNotFound)
	}
	if swap.RequesterID != actor.ID {
		return fmt.Errorf("only the requester may cancel: %w", ErrForbidden)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM swap_requests WHERE id = ? AND status = 'pending'`, swapID,
	)
	if err != nil {
		return fmt.Errorf("cancelling swap: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancelling swap: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("swap %d is no longer pending: %w", swapID, ErrConflict)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing swap cancellation: %w", err)
	}
	return nil
}

// getSwapRow reads a swap request's base columns.
func getSwapRow(ctx context.Context, q querier, id int64) (*model.SwapRequest, error) {
	s := &model.SwapRequest{}
	err := q.QueryRowContext(ctx,
		`SELECT id, requester_id, requested_item_id, offered_item_id, kind, status, created_at
		 FROM swap_requests WHERE id = ?`, id,
	).Scan(&s.ID, &s.RequesterID, &s.RequestedItemID, &s.OfferedItemID, &s.Kind, &s.Status, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting swap request: %w", err)
	}
	return s, nil
}

// GetSwap returns a swap request with display names joined, or nil if
// absent. Items are joined without the deletion filter so completed point
// swaps keep their titles after the item is consumed.
func GetSwap(ctx context.Context, db *sql.DB, id int64) (*model.SwapRequest, error) {
	s := &model.SwapRequest{}
	var offeredTitle sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT s.id, s.requester_id, s.requested_item_id, s.offered_item_id, s.kind, s.status, s.created_at,
		        u.username AS requester_name, ri.title AS requested_title, oi.title AS offered_title
		 FROM swap_requests s
		 JOIN users u ON u.id = s.requester_id
		 JOIN items ri ON ri.id = s.requested_item_id
		 LEFT JOIN items oi ON oi.id = s.offered_item_id
		 WHERE s.id = ?`, id,
	).Scan(&s.ID, &s.RequesterID, &s.RequestedItemID, &s.OfferedItemID, &s.Kind, &s.Status, &s.CreatedAt,
		&s.RequesterName, &s.RequestedTitle, &offeredTitle)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting swap request: %w", err)
	}
	s.OfferedTitle = offeredTitle.String
	return s, nil
}

// ListSwaps returns a user's swap requests. Direction "outgoing" selects
// requests the user made, "incoming" selects requests against items the user
// currently owns, and empty selects both. Status optionally narrows further.
func ListSwaps(ctx context.Context, db *sql.DB, user *model.User, direction, status string) ([]model.SwapRequest, error) {
	query := `SELECT s.id, s.requester_id, s.requested_item_id, s.offered_item_id, s.kind, s.status, s.created_at,
	                 u.username AS requester_name, ri.title AS requested_title, oi.title AS offered_title
	          FROM swap_requests s
	          JOIN users u ON u.id = s.requester_id
	          JOIN items ri ON ri.id = s.requested_item_id
	          LEFT JOIN items oi ON oi.id = s.offered_item_id`
	var args []any

	switch direction {
	case "outgoing":
		query += ` WHERE s.requester_id = ?`
		args = append(args, user.ID)
	case "incoming":
		query += ` WHERE ri.owner_id = ? AND s.requester_id != ?`
		args = append(args, user.ID, user.ID)
	default:
		query += ` WHERE (s.requester_id = ? OR ri.owner_id = ?)`
		args = append(args, user.ID, user.ID)
	}

	if status != "" {
		query += ` AND s.status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY s.created_at DESC, s.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing swap requests: %w", err)
	}
	defer rows.Close()

	var swaps []model.SwapRequest
	for rows.Next() {
		var s model.SwapRequest
		var offeredTitle sql.NullString
		if err := rows.Scan(&s.ID, &s.RequesterID, &s.RequestedItemID, &s.OfferedItemID, &s.Kind, &s.Status, &s.CreatedAt,
			&s.RequesterName, &s.RequestedTitle, &offeredTitle); err != nil {
			return nil, fmt.Errorf("scanning swap request: %w", err)
		}
		s.OfferedTitle = offeredTitle.String
		swaps = append(swaps, s)
	}
	return swaps, rows.Err()
}
