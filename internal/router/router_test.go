package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ikkim/storefront/config"
	"github.com/ikkim/storefront/internal/app/controller"
	"github.com/ikkim/storefront/internal/app/service"
	"github.com/ikkim/storefront/internal/middleware"
	"github.com/ikkim/storefront/internal/session"
	"github.com/ikkim/storefront/internal/storage"
	ws "github.com/ikkim/storefront/internal/websocket"
	"github.com/ikkim/storefront/pkg/storefrontapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server:  config.ServerConfig{GinMode: "test"},
		Session: config.SessionConfig{Secret: "router-test-secret", CookieName: "storefront_session", TTL: time.Hour},
	}

	api, err := storefrontapi.NewClient(storefrontapi.Config{BaseURL: storefrontapi.DefaultBaseURL})
	require.NoError(t, err)

	hub := ws.NewHub()
	manager := session.NewManager(storage.NewMemoryBackend(), api, hub.CartSink)
	adminService := service.NewAdminService()
	pages := controller.NewPageController(service.NewCatalogService(api, time.Minute))

	r := NewRouter(
		pages,
		controller.NewCartController(service.NewCartService()),
		controller.NewContactController(service.NewContactService(), pages),
		controller.NewAdminController(adminService, pages),
		controller.NewLiveController(hub),
		middleware.NewSessionMiddleware(manager, cfg.Session.Secret, cfg.Session.CookieName, cfg.Session.TTL, false),
		adminService,
		cfg,
	)
	engine, err := r.Setup()
	require.NoError(t, err)
	return engine
}

func TestRouter_Health(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Empty(t, w.Result().Cookies())
}

func TestRouter_StaticAssets(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/cart.js", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/ws/cart")
}

func TestRouter_CartRoutes(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"id":"p1","name":"Bunny","price":"10"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	require.NotEmpty(t, w.Result().Cookies())
}

func TestRouter_AdminProductsRequireAdmin(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/products/p1/remove", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}
