package store

import (
	"context"
	"errors"
	"testing"

	"swapwear/internal/db"
	"swapwear/internal/model"
)

func TestCreateItemValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := testUser(t, database, "alice", 0)

	valid := ItemParams{
		Title:      "Wool coat",
		Category:   model.CategoryFemale,
		Size:       model.SizeM,
		PointsCost: 10,
	}

	tests := []struct {
		name   string
		mutate func(*ItemParams)
		field  string
	}{
		{"short title", func(p *ItemParams) { p.Title = "ab" }, "title"},
		{"whitespace title", func(p *ItemParams) { p.Title = "  a  " }, "title"},
		{"unknown category", func(p *ItemParams) { p.Category = "unisex" }, "category"},
		{"unknown size", func(p *ItemParams) { p.Size = "XXL" }, "size"},
		{"zero cost", func(p *ItemParams) { p.PointsCost = 0 }, "points_cost"},
		{"negative cost", func(p *ItemParams) { p.PointsCost = -5 }, "points_cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			_, err := CreateItem(ctx, database, alice, p)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("validation field = %s, want %s", verr.Field, tt.field)
			}
		})
	}

	item, err := CreateItem(ctx, database, alice, valid)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.OwnerID != alice.ID || item.Title != "Wool coat" {
		t.Errorf("created item fields wrong: %+v", item)
	}
}

func TestCreateItemTrimsTitle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := testUser(t, database, "alice", 0)

	item, err := CreateItem(ctx, database, alice, ItemParams{
		Title:      "  Wool coat  ",
		Category:   model.CategoryFemale,
		Size:       model.SizeM,
		PointsCost: 10,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Title != "Wool coat" {
		t.Errorf("title not trimmed: %q", item.Title)
	}
}

func TestGetItemNotFound(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := GetItem(ctx, database, 9999)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil for missing item, got %+v", item)
	}
}

func TestUpdateItemAuthorization(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice := testUser(t, database, "alice", 0)
	bob := testUser(t, database, "bob", 0)
	admin := testAdmin(t, database, "root")
	item := testItem(t, database, alice, "Wool coat", 10)

	p := ItemParams{Title: "Winter coat", Category: model.CategoryMale, Size: model.SizeL, PointsCost: 12}

	if _, err := UpdateItem(ctx, database, bob, item.ID, p); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner update: expected ErrForbidden, got %v", err)
	}

	updated, err := UpdateItem(ctx, database, alice, item.ID, p)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "Winter coat" || updated.PointsCost != 12 {
		t.Errorf("update not applied: %+v", updated)
	}

	// Admins may edit any listing.
	p.Title = "Parka"
	if _, err := UpdateItem(ctx, database, admin, item.ID, p); err != nil {
		t.Errorf("admin update: %v", err)
	}

	if _, err := UpdateItem(ctx, database, alice, 9999, p); !errors.Is(err, ErrNotFound) {
		t.Errorf("updating missing item: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteItemCascadesPendingSwaps(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice := testUser(t, database, "alice", 0)
	bob := testUser(t, database, "bob", 15)
	itemX := testItem(t, database, alice, "Wool coat", 10)
	itemY := testItem(t, database, bob, "Denim jacket", 8)

	asRequested, err := RequestPointSwap(ctx, database, bob, itemX.ID)
	if err != nil {
		t.Fatalf("RequestPointSwap: %v", err)
	}
	asOffered, err := RequestExchange(ctx, database, alice, itemY.ID, itemX.ID)
	if err != nil {
		t.Fatalf("RequestExchange: %v", err)
	}

	if err := DeleteItem(ctx, database, bob, itemX.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner delete: expected ErrForbidden, got %v", err)
	}

	if err := DeleteItem(ctx, database, alice, itemX.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	if item, _ := GetItem(ctx, database, itemX.ID); item != nil {
		t.Errorf("deleted item still listed: %+v", item)
	}

	// Pending swaps touching the item, on either side, are gone.
	for _, id := range []int64{asRequested.ID, asOffered.ID} {
		if swap, _ := GetSwap(ctx, database, id); swap != nil {
			t.Errorf("pending swap %d survived item deletion: %+v", id, swap)
		}
	}
}

func TestDeleteItemKeepsCompletedSwaps(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice := testUser(t, database, "alice", 0)
	bob := testUser(t, database, "bob", 0)
	itemX := testItem(t, database, alice, "Wool coat", 10)
	itemY := testItem(t, database, bob, "Denim jacket", 8)

	swap, err := RequestExchange(ctx, database, bob, itemX.ID, itemY.ID)
	if err != nil {
		t.Fatalf("RequestExchange: %v", err)
	}
	if _, err := AcceptSwap(ctx, database, alice, swap.ID); err != nil {
		t.Fatalf("AcceptSwap: %v", err)
	}

	// Bob owns X now and retires it; the completed swap stays in history.
	if err := DeleteItem(ctx, database, bob, itemX.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	got, err := GetSwap(ctx, database, swap.ID)
	if err != nil || got == nil {
		t.Fatalf("completed swap lost after item deletion: %v, %v", got, err)
	}
	if got.RequestedTitle != "Wool coat" {
		t.Errorf("completed swap lost its title: %+v", got)
	}
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice := testUser(t, database, "alice", 0)
	bob := testUser(t, database, "bob", 0)

	coat, err := CreateItem(ctx, database, alice, ItemParams{
		Title: "Wool coat", Description: "warm winter coat",
		Category: model.CategoryFemale, Size: model.SizeM, PointsCost: 10,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	jacket, err := CreateItem(ctx, database, bob, ItemParams{
		Title: "Denim jacket", Description: "classic blue",
		Category: model.CategoryMale, Size: model.SizeL, PointsCost: 8,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	hoodie, err := CreateItem(ctx, database, bob, ItemParams{
		Title: "Kids hoodie", Description: "barely worn",
		Category: model.CategoryKids, Size: model.SizeS, PointsCost: 4,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	all, err := ListItems(ctx, database, ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	// Newest first.
	if all[0].ID != hoodie.ID || all[2].ID != coat.ID {
		t.Errorf("wrong order: %d, %d, %d", all[0].ID, all[1].ID, all[2].ID)
	}
	if all[0].OwnerName != "bob" {
		t.Errorf("owner name not joined: %+v", all[0])
	}

	byCategory, err := ListItems(ctx, database, ItemFilter{Category: model.CategoryMale})
	if err != nil {
		t.Fatalf("ListItems by category: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].ID != jacket.ID {
		t.Errorf("category filter wrong: %+v", byCategory)
	}

	bySize, err := ListItems(ctx, database, ItemFilter{Size: model.SizeM})
	if err != nil {
		t.Fatalf("ListItems by size: %v", err)
	}
	if len(bySize) != 1 || bySize[0].ID != coat.ID {
		t.Errorf("size filter wrong: %+v", bySize)
	}

	byPoints, err := ListItems(ctx, database, ItemFilter{MinPoints: 5, MaxPoints: 9})
	if err != nil {
		t.Fatalf("ListItems by points: %v", err)
	}
	if len(byPoints) != 1 || byPoints[0].ID != jacket.ID {
		t.Errorf("points filter wrong: %+v", byPoints)
	}

	bySearch, err := ListItems(ctx, database, ItemFilter{Search: "winter"})
	if err != nil {
		t.Fatalf("ListItems by search: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].ID != coat.ID {
		t.Errorf("search filter wrong: %+v", bySearch)
	}

	// Deleted listings never show up.
	if err := DeleteItem(ctx, database, bob, hoodie.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	all, err = ListItems(ctx, database, ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 items after deletion, got %d", len(all))
	}
}
