package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/storefront/internal/cart"
	"github.com/ikkim/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

var (
	ErrCartEmpty        = errors.New("cart is empty")
	ErrInvalidCartInput = errors.New("invalid cart input")
)

// CheckoutMessage confirms a (simulated) order.
const CheckoutMessage = "Thank you for your order! This is a demo site, so no actual payment will be processed."

// AddItemInput is the product posted by an "Add to Cart" button
type AddItemInput struct {
	ID          string
	Name        string
	Price       string
	Image       string
	Description string
}

// Product validates the input and converts it for the cart.
func (in AddItemInput) Product() (cart.Product, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return cart.Product{}, fmt.Errorf("%w: missing product id", ErrInvalidCartInput)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return cart.Product{}, fmt.Errorf("%w: price %q", ErrInvalidCartInput, in.Price)
	}
	if price.IsNegative() {
		return cart.Product{}, fmt.Errorf("%w: negative price", ErrInvalidCartInput)
	}
	return cart.Product{
		ID:          id,
		Name:        in.Name,
		Price:       price,
		Image:       in.Image,
		Description: in.Description,
	}, nil
}

type CartService interface {
	AddItem(ctx context.Context, store *cart.Store, in AddItemInput) error
	UpdateQuantity(ctx context.Context, store *cart.Store, productID string, quantity int) error
	RemoveItem(ctx context.Context, store *cart.Store, productID string) error
	Checkout(ctx context.Context, store *cart.Store) (string, error)
}

type cartService struct{}

func NewCartService() CartService {
	return &cartService{}
}

func (s *cartService) AddItem(ctx context.Context, store *cart.Store, in AddItemInput) error {
	product, err := in.Product()
	if err != nil {
		logger.Warn("Rejected add to cart", map[string]interface{}{
			"product_id": in.ID,
			"error":      err.Error(),
		})
		return err
	}

	if err := store.AddItem(ctx, product); err != nil {
		logger.Error("Failed to add item to cart", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"product_id": product.ID,
		"count":      store.Count(),
	})
	return nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, store *cart.Store, productID string, quantity int) error {
	if err := store.UpdateQuantity(ctx, productID, quantity); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			logger.Warn("Cannot update quantity: item not in cart", map[string]interface{}{
				"product_id": productID,
			})
			return err
		}
		logger.Error("Failed to update cart quantity", err, map[string]interface{}{
			"product_id": productID,
			"quantity":   quantity,
		})
		return err
	}

	logger.Info("Cart quantity updated", map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})
	return nil
}

func (s *cartService) RemoveItem(ctx context.Context, store *cart.Store, productID string) error {
	if err := store.RemoveItem(ctx, productID); err != nil {
		logger.Error("Failed to remove cart item", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	logger.Info("Item removed from cart", map[string]interface{}{
		"product_id": productID,
	})
	return nil
}

// Checkout confirms the order and empties the cart. No payment happens.
func (s *cartService) Checkout(ctx context.Context, store *cart.Store) (string, error) {
	if store.IsEmpty() {
		return "", ErrCartEmpty
	}

	total := store.GrandTotal()
	units := store.Count()
	if err := store.Clear(ctx); err != nil {
		logger.Error("Failed to clear cart after checkout", err, nil)
		return "", err
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"units": units,
		"total": total.StringFixed(2),
	})
	return CheckoutMessage, nil
}
