package service

import (
	"context"
	"testing"

	"github.com/ikkim/storefront/internal/cart"
	"github.com/ikkim/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartServiceTest(t *testing.T) (CartService, *cart.Store) {
	t.Helper()
	ls, err := storage.NewLocalStorage(storage.NewMemoryBackend(), "cart-service-test")
	require.NoError(t, err)
	return NewCartService(), cart.NewStore(context.Background(), ls)
}

func TestCartService_AddItem(t *testing.T) {
	svc, store := setupCartServiceTest(t)
	ctx := context.Background()

	in := AddItemInput{ID: "p1", Name: "Bunny", Price: "19.50", Image: "images/b.jpg"}
	require.NoError(t, svc.AddItem(ctx, store, in))
	require.NoError(t, svc.AddItem(ctx, store, in))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "39", store.Subtotal().String())
}

func TestCartService_AddItem_InvalidInput(t *testing.T) {
	svc, store := setupCartServiceTest(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   AddItemInput
	}{
		{"missing id", AddItemInput{Price: "1"}},
		{"bad price", AddItemInput{ID: "p1", Price: "free"}},
		{"negative price", AddItemInput{ID: "p1", Price: "-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AddItem(ctx, store, tt.in)
			assert.ErrorIs(t, err, ErrInvalidCartInput)
		})
	}
	assert.True(t, store.IsEmpty())
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	svc, store := setupCartServiceTest(t)
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, store, AddItemInput{ID: "p1", Price: "2"}))
	require.NoError(t, svc.AddItem(ctx, store, AddItemInput{ID: "p2", Price: "3"}))

	require.NoError(t, svc.UpdateQuantity(ctx, store, "p1", 5))
	assert.Equal(t, 6, store.Count())

	err := svc.UpdateQuantity(ctx, store, "nope", 1)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)

	require.NoError(t, svc.UpdateQuantity(ctx, store, "p1", 0))
	require.NoError(t, svc.RemoveItem(ctx, store, "p2"))
	assert.True(t, store.IsEmpty())
}

func TestCartService_Checkout(t *testing.T) {
	svc, store := setupCartServiceTest(t)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, store)
	assert.ErrorIs(t, err, ErrCartEmpty)

	require.NoError(t, svc.AddItem(ctx, store, AddItemInput{ID: "p1", Price: "10"}))
	msg, err := svc.Checkout(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, CheckoutMessage, msg)
	assert.True(t, store.IsEmpty())
	assert.True(t, store.GrandTotal().IsZero())
}
