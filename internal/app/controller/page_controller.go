package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront/internal/app/service"
	"github.com/ikkim/storefront/internal/middleware"
	"github.com/ikkim/storefront/internal/session"
	"github.com/ikkim/storefront/pkg/storefrontapi"
)

const (
	msgFeaturedFailed = "Failed to load featured products."
	msgProductsFailed = "Failed to load products."
)

// PriceRange is one option of the shop's price filter
type PriceRange struct {
	Value string
	Label string
}

var (
	shopCategories = []string{"Amigurumi", "Accessories", "Bags", "Blankets", "Home Decor"}
	shopColors     = []string{"White", "Black", "Red", "Pink", "Blue", "Green", "Yellow", "Brown"}
	shopPrices     = []PriceRange{
		{Value: "0-25", Label: "Under $25"},
		{Value: "25-50", Label: "$25 - $50"},
		{Value: "50-100", Label: "$50 - $100"},
		{Value: "100+", Label: "$100+"},
	}
)

// PageController renders the storefront pages
type PageController struct {
	catalogService service.CatalogService
}

func NewPageController(catalogService service.CatalogService) *PageController {
	return &PageController{
		catalogService: catalogService,
	}
}

// base is the data every page layout needs. Reading it consumes the flashes.
func (ctrl *PageController) base(c *gin.Context, s *session.Session, title, active string) gin.H {
	return gin.H{
		"Title":    title,
		"Active":   active,
		"Cart":     s.Regions(),
		"Flashes":  s.PopFlashes(),
		"Settings": ctrl.catalogService.SiteSettings(c.Request.Context()),
	}
}

// Home renders the landing page
// GET /
func (ctrl *PageController) Home(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	s, ok := currentSession(c)
	if !ok {
		return
	}

	data := ctrl.base(c, s, "Home", "home")

	featured, err := ctrl.catalogService.FeaturedProducts(c.Request.Context())
	if err != nil {
		log.Error("Failed to load featured products", err, nil)
		data["FeaturedError"] = msgFeaturedFailed
	}
	data["Featured"] = featured
	data["Testimonials"] = ctrl.catalogService.Testimonials(c.Request.Context())

	c.HTML(http.StatusOK, "index.html", data)
}

// Shop renders the filtered product grid
// GET /shop?search=&category=&color=&price=
func (ctrl *PageController) Shop(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	s, ok := currentSession(c)
	if !ok {
		return
	}

	filter := storefrontapi.Filter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Color:    c.Query("color"),
		Price:    c.Query("price"),
	}

	data := ctrl.base(c, s, "Shop", "shop")
	data["Filter"] = filter
	data["Categories"] = shopCategories
	data["Colors"] = shopColors
	data["PriceRanges"] = shopPrices

	products, err := ctrl.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		log.Error("Failed to load products", err, map[string]interface{}{
			"query": filter.Query().Encode(),
		})
		data["ProductsError"] = msgProductsFailed
	}
	data["Products"] = products

	c.HTML(http.StatusOK, "shop.html", data)
}

// Cart renders the cart page from the session's last render
// GET /cart
func (ctrl *PageController) Cart(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "cart.html", ctrl.base(c, s, "Cart", "cart"))
}

// Contact renders the contact form
// GET /contact
func (ctrl *PageController) Contact(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	data := ctrl.base(c, s, "Contact", "contact")
	data["Form"] = service.ContactForm{}
	c.HTML(http.StatusOK, "contact.html", data)
}
