package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront/internal/app/service"
	apperrors "github.com/ikkim/storefront/internal/errors"
	"github.com/ikkim/storefront/internal/middleware"
	"github.com/ikkim/storefront/internal/session"
)

const msgItemAdded = "Item added to cart!"

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

// AddToCartRequest mirrors the hidden fields of an "Add to Cart" form
type AddToCartRequest struct {
	ID          string `form:"id" json:"id" binding:"required"`
	Name        string `form:"name" json:"name"`
	Price       string `form:"price" json:"price" binding:"required"`
	Image       string `form:"image" json:"image"`
	Description string `form:"description" json:"description"`
}

type UpdateQuantityRequest struct {
	Quantity *int `form:"quantity" json:"quantity" binding:"required"`
}

// GetCart returns the rendered cart regions
// GET /api/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cart": s.Regions(),
	})
}

// AddItem adds one unit of the posted product
// POST /cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	s, ok := currentSession(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		ctrl.fail(c, s, service.ErrInvalidCartInput, "add to cart", "/shop")
		return
	}

	err := ctrl.cartService.AddItem(c.Request.Context(), s.Cart, service.AddItemInput{
		ID:          req.ID,
		Name:        req.Name,
		Price:       req.Price,
		Image:       req.Image,
		Description: req.Description,
	})
	if err != nil {
		ctrl.fail(c, s, err, "add to cart", "/shop")
		return
	}

	ctrl.done(c, s, msgItemAdded, "/shop")
}

// UpdateQuantity sets the quantity of a line item; zero removes it
// POST /cart/items/:id/quantity
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	s, ok := currentSession(c)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid quantity update", map[string]interface{}{
			"product_id": c.Param("id"),
			"error":      err.Error(),
		})
		ctrl.fail(c, s, service.ErrInvalidCartInput, "update cart", "/cart")
		return
	}

	if err := ctrl.cartService.UpdateQuantity(c.Request.Context(), s.Cart, c.Param("id"), *req.Quantity); err != nil {
		ctrl.fail(c, s, err, "update cart", "/cart")
		return
	}
	ctrl.done(c, s, "", "/cart")
}

// RemoveItem drops a line item
// POST /cart/items/:id/remove
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveItem(c.Request.Context(), s.Cart, c.Param("id")); err != nil {
		ctrl.fail(c, s, err, "remove item", "/cart")
		return
	}
	ctrl.done(c, s, "", "/cart")
}

// Checkout confirms the simulated order and empties the cart
// POST /cart/checkout
func (ctrl *CartController) Checkout(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	msg, err := ctrl.cartService.Checkout(c.Request.Context(), s.Cart)
	if err != nil {
		ctrl.fail(c, s, err, "check out", "/cart")
		return
	}
	ctrl.done(c, s, msg, "/cart")
}

// done answers a successful mutation: JSON regions for scripts, a flash and
// redirect for forms.
func (ctrl *CartController) done(c *gin.Context, s *session.Session, message, fallback string) {
	if wantsJSON(c) {
		body := gin.H{"cart": s.Regions()}
		if message != "" {
			body["message"] = message
		}
		c.JSON(http.StatusOK, body)
		return
	}
	if message != "" {
		s.AddFlash(session.FlashSuccess, message)
	}
	redirectBack(c, fallback)
}

func (ctrl *CartController) fail(c *gin.Context, s *session.Session, err error, action, fallback string) {
	if wantsJSON(c) {
		apperrors.ParseAndRespond(c, err, action)
		return
	}
	s.AddFlash(session.FlashError, userMessage(err, action))
	redirectBack(c, fallback)
}
