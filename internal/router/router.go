package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront/config"
	"github.com/ikkim/storefront/internal/app/controller"
	"github.com/ikkim/storefront/internal/app/service"
	"github.com/ikkim/storefront/internal/middleware"
	"github.com/ikkim/storefront/internal/web"
)

type Router struct {
	pageController    *controller.PageController
	cartController    *controller.CartController
	contactController *controller.ContactController
	adminController   *controller.AdminController
	liveController    *controller.LiveController
	sessionMiddleware *middleware.SessionMiddleware
	adminService      service.AdminService
	config            *config.Config
}

func NewRouter(
	pageController *controller.PageController,
	cartController *controller.CartController,
	contactController *controller.ContactController,
	adminController *controller.AdminController,
	liveController *controller.LiveController,
	sessionMiddleware *middleware.SessionMiddleware,
	adminService service.AdminService,
	cfg *config.Config,
) *Router {
	return &Router{
		pageController:    pageController,
		cartController:    cartController,
		contactController: contactController,
		adminController:   adminController,
		liveController:    liveController,
		sessionMiddleware: sessionMiddleware,
		adminService:      adminService,
		config:            cfg,
	}
}

func (r *Router) Setup() (*gin.Engine, error) {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	router.Use(gin.Recovery())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Storefront is running",
		})
	})

	router.StaticFS("/static", web.Static())

	site := router.Group("/")
	site.Use(r.sessionMiddleware.Attach())
	{
		site.GET("/", r.pageController.Home)
		site.GET("/shop", r.pageController.Shop)
		site.GET("/cart", r.pageController.Cart)
		site.GET("/contact", r.pageController.Contact)
		site.POST("/contact", r.contactController.Submit)

		cart := site.Group("/cart")
		{
			cart.POST("/items", r.cartController.AddItem)
			cart.POST("/items/:id/quantity", r.cartController.UpdateQuantity)
			cart.POST("/items/:id/remove", r.cartController.RemoveItem)
			cart.POST("/checkout", r.cartController.Checkout)
		}

		site.GET("/api/cart", r.cartController.GetCart)
		site.GET("/ws/cart", r.liveController.CartSocket)

		admin := site.Group("/admin")
		{
			admin.POST("/login", r.adminController.Login)
			admin.GET("", r.adminController.Dashboard)

			products := admin.Group("/products")
			products.Use(middleware.RequireAdmin(r.adminService))
			{
				products.POST("", r.adminController.AddProduct)
				products.POST("/:id/remove", r.adminController.RemoveProduct)
			}
		}
	}

	return router, nil
}
