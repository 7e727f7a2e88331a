package traderoom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaan09TTT/tradeforge/internal/apperr"
)

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry()
	seller := Seller{ID: "seller", Name: "Seller"}

	_, err := r.Create(ctx, seller, CreateInput{
		Title:       "abc",
		Description: "too short",
		Price:       0,
		Category:    "Weird Stuff",
	})
	require.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Details, "title")
	assert.Contains(t, ae.Details, "description")
	assert.Contains(t, ae.Details, "price")
	assert.Contains(t, ae.Details, "category")

	room := createOpenRoom(t, r, "seller", 100)
	assert.Equal(t, StatusOpen, room.Status)
	assert.NotEmpty(t, room.ID)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry()
	seller := Seller{ID: "seller", Name: "Seller"}

	mk := func(title, category string, price int64) {
		_, err := r.Create(ctx, seller, CreateInput{
			Title:       title,
			Description: "A long enough description for the listing.",
			Price:       price,
			Category:    category,
		})
		require.NoError(t, err)
	}
	mk("Fortnite Account Level 100", "Gaming Accounts", 2500)
	mk("Adobe Creative Suite License", "Software & Applications", 3500)
	mk("Digital Marketing Course", "Courses & E-Learning", 1200)

	all, err := r.List(ctx, Filters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Category is an exact match, not a substring.
	gaming, err := r.List(ctx, Filters{Category: "Gaming Accounts"})
	require.NoError(t, err)
	require.Len(t, gaming, 1)
	assert.Equal(t, "Fortnite Account Level 100", gaming[0].Title)

	none, err := r.List(ctx, Filters{Category: "Gaming"})
	require.NoError(t, err)
	assert.Empty(t, none)

	mid, err := r.List(ctx, Filters{MinPrice: 2000, MaxPrice: 3000})
	require.NoError(t, err)
	require.Len(t, mid, 1)
	assert.Equal(t, int64(2500), mid[0].Price)

	found, err := r.List(ctx, Filters{Search: "adobe"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Adobe Creative Suite License", found[0].Title)

	asc, err := r.List(ctx, Filters{Sort: "price_asc"})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, int64(1200), asc[0].Price)
	assert.Equal(t, int64(3500), asc[2].Price)
}

func TestUpdateOwnershipAndLocking(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry()
	room := createOpenRoom(t, r, "seller", 500)

	newTitle := "Renamed Premium Listing"
	_, err := r.Update(ctx, room.ID, "intruder", UpdateInput{Title: &newTitle})
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	got, err := r.Update(ctx, room.ID, "seller", UpdateInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, got.Title)

	// Once a trade is live the price is frozen.
	_, err = r.InitiatePurchase(ctx, room.ID, "buyer")
	require.NoError(t, err)

	newPrice := int64(900)
	_, err = r.Update(ctx, room.ID, "seller", UpdateInput{Price: &newPrice})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))

	// Cosmetic edits still go through.
	desc := "An updated description that is clearly long enough."
	got, err = r.Update(ctx, room.ID, "seller", UpdateInput{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, got.Description)
}

func TestDeleteGuards(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry()
	room := createOpenRoom(t, r, "seller", 200)

	err := r.Delete(ctx, room.ID, "intruder")
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	_, err = r.InitiatePurchase(ctx, room.ID, "buyer")
	require.NoError(t, err)

	err = r.Delete(ctx, room.ID, "seller")
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))

	_, err = r.MarkDelivered(ctx, room.ID, "seller")
	require.NoError(t, err)
	_, err = r.ConfirmReceipt(ctx, room.ID, "buyer")
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, room.ID, "seller"))
	_, err = r.Get(ctx, room.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestPostMessage(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry()
	room := createOpenRoom(t, r, "seller", 200)

	_, err := r.PostMessage(ctx, room.ID, "buyer", "Buyer", "   ")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	msg, err := r.PostMessage(ctx, room.ID, "buyer", "Buyer", "  is this still available?  ")
	require.NoError(t, err)
	assert.Equal(t, "is this still available?", msg.Content)

	got, err := r.Get(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, msg.ID, got.Messages[0].ID)
}
