package store

import (
	"context"
	"errors"
	"testing"

	"swapwear/internal/db"
)

func TestCreateUserUniqueness(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice, err := CreateUser(ctx, database, "alice", "alice@example.com", "hash", 5, false)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if alice.Points != 5 || alice.IsAdmin {
		t.Errorf("created user fields wrong: %+v", alice)
	}

	if _, err := CreateUser(ctx, database, "alice", "other@example.com", "hash", 0, false); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate username: expected ErrConflict, got %v", err)
	}
	if _, err := CreateUser(ctx, database, "alice2", "alice@example.com", "hash", 0, false); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate email: expected ErrConflict, got %v", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	testUser(t, database, "alice", 0)

	user, err := GetUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user == nil || user.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}

	missing, err := GetUserByUsername(ctx, database, "nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing user, got %+v", missing)
	}
}

func TestSetUserPoints(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin := testAdmin(t, database, "root")
	alice := testUser(t, database, "alice", 0)

	if err := SetUserPoints(ctx, database, alice, alice.ID, 50); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-admin set points: expected ErrForbidden, got %v", err)
	}

	var verr *ValidationError
	if err := SetUserPoints(ctx, database, admin, alice.ID, -1); !errors.As(err, &verr) {
		t.Errorf("negative points: expected ValidationError, got %v", err)
	}

	if err := SetUserPoints(ctx, database, admin, alice.ID, 50); err != nil {
		t.Fatalf("SetUserPoints: %v", err)
	}
	got, _ := GetUser(ctx, database, alice.ID)
	if got.Points != 50 {
		t.Errorf("points = %d, want 50", got.Points)
	}

	if err := SetUserPoints(ctx, database, admin, 9999, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin := testAdmin(t, database, "root")
	alice := testUser(t, database, "alice", 10)
	bob := testUser(t, database, "bob", 15)
	itemX := testItem(t, database, alice, "Wool coat", 10)
	itemY := testItem(t, database, bob, "Denim jacket", 8)

	// A swap targeting alice's item and one made by alice.
	incoming, err := RequestExchange(ctx, database, bob, itemX.ID, itemY.ID)
	if err != nil {
		t.Fatalf("RequestExchange: %v", err)
	}
	outgoing, err := RequestPointSwap(ctx, database, alice, itemY.ID)
	if err != nil {
		t.Fatalf("RequestPointSwap: %v", err)
	}

	if err := DeleteUser(ctx, database, alice, bob.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-admin delete: expected ErrForbidden, got %v", err)
	}

	if err := DeleteUser(ctx, database, admin, alice.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if got, _ := GetUser(ctx, database, alice.ID); got == nil || got.DeletedAt == nil {
		t.Errorf("user not marked deleted: %+v", got)
	}
	if item, _ := GetItem(ctx, database, itemX.ID); item != nil {
		t.Errorf("deleted user's item still listed: %+v", item)
	}
	if swap, _ := GetSwap(ctx, database, incoming.ID); swap != nil {
		t.Errorf("pending swap on deleted user's item survived: %+v", swap)
	}
	if swap, _ := GetSwap(ctx, database, outgoing.ID); swap != nil {
		t.Errorf("deleted user's own request survived: %+v", swap)
	}

	// Bob is untouched.
	if got, _ := GetUser(ctx, database, bob.ID); got == nil || got.DeletedAt != nil {
		t.Error("unrelated user lost")
	}
	if item, _ := GetItem(ctx, database, itemY.ID); item == nil {
		t.Error("unrelated item lost")
	}

	// The freed username can be registered again.
	if _, err := CreateUser(ctx, database, "alice", "alice@example.com", "hash", 0, false); err != nil {
		t.Errorf("re-registering freed username: %v", err)
	}
}
