package controller

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront/internal/app/service"
	apperrors "github.com/ikkim/storefront/internal/errors"
	"github.com/ikkim/storefront/internal/middleware"
	"github.com/ikkim/storefront/internal/session"
	"github.com/ikkim/storefront/pkg/storefrontapi"
)

const (
	msgLoginFailed    = "Login failed: "
	msgProductAdded   = "Product added successfully!"
	msgAddFailed      = "Error adding product: "
	msgRemoveFailed   = "Error removing product: "
	maxImageFormBytes = 10 << 20
)

var invalidProductForm = apperrors.ErrorInfo{
	Status: http.StatusBadRequest,
	Code:   apperrors.ValidationInvalidInput,
}

// productFormFields are bound into NewProduct; anything else is forwarded as is.
var productFormFields = map[string]bool{
	"name": true, "price": true, "category": true, "description": true, "color": true,
}

type AdminController struct {
	adminService service.AdminService
	pages        *PageController
}

func NewAdminController(adminService service.AdminService, pages *PageController) *AdminController {
	return &AdminController{
		adminService: adminService,
		pages:        pages,
	}
}

type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type AddProductRequest struct {
	Name        string `form:"name" binding:"required"`
	Price       string `form:"price" binding:"required"`
	Category    string `form:"category"`
	Description string `form:"description"`
	Color       string `form:"color"`
}

// Login signs the visitor in against the remote API. The API's session
// cookie lands in the visitor's jar.
// POST /admin/login
func (ctrl *AdminController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	s, ok := currentSession(c)
	if !ok {
		return
	}

	// a body that does not bind leaves the credentials empty; the admin
	// service reports them as missing
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := ctrl.adminService.Login(c.Request.Context(), s.API, req.Username, req.Password); err != nil {
		text := msgLoginFailed + userMessage(err, "log in")
		if wantsJSON(c) {
			info := apperrors.ParseError(err, "log in")
			apperrors.RespondWithError(c, info.Status, info.Code, text)
			return
		}
		s.AddFlash(session.FlashError, text)
		redirectBack(c, "/")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"redirect": "/admin"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

// Dashboard renders stats and the product table
// GET /admin
func (ctrl *AdminController) Dashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	s, ok := currentSession(c)
	if !ok {
		return
	}

	dash, err := ctrl.adminService.Dashboard(c.Request.Context(), s.API)
	if err != nil {
		if !errors.Is(err, service.ErrNotAdmin) {
			log.Error("Failed to load admin dashboard", err, nil)
		}
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	data := ctrl.pages.base(c, s, "Admin", "admin")
	data["Dashboard"] = dash
	c.HTML(http.StatusOK, "admin.html", data)
}

// AddProduct creates a product from the multipart admin form
// POST /admin/products
func (ctrl *AdminController) AddProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	s, ok := currentSession(c)
	if !ok {
		return
	}

	var req AddProductRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid add product request", map[string]interface{}{
			"error": err.Error(),
		})
		ctrl.fail(c, s, invalidProductForm, msgAddFailed+"name and price are required")
		return
	}

	product := storefrontapi.NewProduct{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
		Color:       req.Color,
		Extra:       extraFields(c),
	}

	if fh, err := c.FormFile("image"); err == nil {
		if fh.Size > maxImageFormBytes {
			ctrl.fail(c, s, invalidProductForm, msgAddFailed+"image is too large")
			return
		}
		f, err := fh.Open()
		if err != nil {
			log.Error("Failed to open uploaded image", err, nil)
			ctrl.fail(c, s, invalidProductForm, msgAddFailed+"could not read the image")
			return
		}
		defer f.Close()
		product.Image = &storefrontapi.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		}
	}

	if _, err := ctrl.adminService.AddProduct(c.Request.Context(), s.API, product); err != nil {
		info := apperrors.ParseError(err, "add product")
		ctrl.fail(c, s, info, msgAddFailed+info.Message)
		return
	}
	ctrl.succeed(c, s, msgProductAdded)
}

// RemoveProduct deletes a product
// POST /admin/products/:id/remove
func (ctrl *AdminController) RemoveProduct(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	if err := ctrl.adminService.RemoveProduct(c.Request.Context(), s.API, c.Param("id")); err != nil {
		info := apperrors.ParseError(err, "remove product")
		ctrl.fail(c, s, info, msgRemoveFailed+info.Message)
		return
	}
	ctrl.succeed(c, s, "")
}

func (ctrl *AdminController) succeed(c *gin.Context, s *session.Session, message string) {
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"message": message})
		return
	}
	if message != "" {
		s.AddFlash(session.FlashSuccess, message)
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (ctrl *AdminController) fail(c *gin.Context, s *session.Session, info apperrors.ErrorInfo, message string) {
	if wantsJSON(c) {
		apperrors.RespondWithError(c, info.Status, info.Code, message)
		return
	}
	s.AddFlash(session.FlashError, message)
	c.Redirect(http.StatusSeeOther, "/admin")
}

func extraFields(c *gin.Context) url.Values {
	extra := url.Values{}
	for k, vs := range c.Request.PostForm {
		if productFormFields[k] {
			continue
		}
		for _, v := range vs {
			extra.Add(k, v)
		}
	}
	return extra
}
