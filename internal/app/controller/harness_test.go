package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront/internal/app/service"
	"github.com/ikkim/storefront/internal/middleware"
	"github.com/ikkim/storefront/internal/session"
	"github.com/ikkim/storefront/internal/storage"
	"github.com/ikkim/storefront/internal/web"
	ws "github.com/ikkim/storefront/internal/websocket"
	"github.com/ikkim/storefront/pkg/storefrontapi"
	"github.com/stretchr/testify/require"
)

const (
	testSecret     = "controller-test-session-secret"
	testCookieName = "storefront_session"
	adminCookie    = "admin_token"
)

// remote is a fake storefront API.
type remote struct {
	mu sync.Mutex

	products     []map[string]interface{}
	failProducts bool
	failFeatured bool

	lastQuery    url.Values
	created      []url.Values
	createdImage string
	deleted      []string
	contacts     []storefrontapi.ContactRequest
}

func newRemote() *remote {
	return &remote{
		products: []map[string]interface{}{
			{"_id": "p1", "name": "Bunny", "price": 19.5, "image": "/uploads/bunny.jpg", "category": "Amigurumi", "sales": 4},
			{"_id": "p2", "name": "Blanket", "price": "42.00", "images": []map[string]string{{"url": "images/blanket.jpg"}}, "category": "Blankets"},
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func isAdmin(r *http.Request) bool {
	c, err := r.Cookie(adminCookie)
	return err == nil && c.Value == "ok"
}

func (rm *remote) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		rm.mu.Lock()
		defer rm.mu.Unlock()
		rm.lastQuery = r.URL.Query()
		if rm.failProducts {
			http.Error(w, "", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, gin.H{"products": rm.products})
	})
	mux.HandleFunc("GET /api/products/featured", func(w http.ResponseWriter, r *http.Request) {
		rm.mu.Lock()
		defer rm.mu.Unlock()
		if rm.failFeatured {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, rm.products[:1])
	})
	mux.HandleFunc("POST /api/products", func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rm.mu.Lock()
		defer rm.mu.Unlock()
		rm.created = append(rm.created, r.MultipartForm.Value)
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			rm.createdImage = files[0].Filename
		}
		writeJSON(w, http.StatusCreated, gin.H{"_id": "p9", "name": r.FormValue("name"), "price": r.FormValue("price")})
	})
	mux.HandleFunc("DELETE /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		id := r.PathValue("id")
		if id == "missing" {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		rm.mu.Lock()
		rm.deleted = append(rm.deleted, id)
		rm.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/site-settings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, gin.H{"contactEmail": "hello@crochet.test", "phone": "555-0100"})
	})
	mux.HandleFunc("GET /api/testimonials", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []gin.H{{"content": "Lovely stitching", "username": "Ann"}})
	})
	mux.HandleFunc("POST /api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var req storefrontapi.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "admin" || req.Password != "secret" {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: adminCookie, Value: "ok", Path: "/"})
		writeJSON(w, http.StatusOK, gin.H{"message": "ok"})
	})
	mux.HandleFunc("GET /api/admin/profile", func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, gin.H{"username": "admin", "email": "admin@crochet.test"})
	})
	mux.HandleFunc("GET /api/admin-dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, gin.H{"totalValue": 120.5, "totalProducts": 2, "totalChatUsers": 7})
	})
	mux.HandleFunc("POST /api/chat-users", func(w http.ResponseWriter, r *http.Request) {
		var req storefrontapi.ContactRequest
		json.NewDecoder(r.Body).Decode(&req)
		rm.mu.Lock()
		rm.contacts = append(rm.contacts, req)
		rm.mu.Unlock()
		writeJSON(w, http.StatusCreated, gin.H{"message": "Thanks " + req.Username})
	})
	return mux
}

type harness struct {
	t       *testing.T
	router  *gin.Engine
	remote  *remote
	api     *storefrontapi.Client
	manager *session.Manager
	hub     *ws.Hub
	cookie  *http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rm := newRemote()
	srv := httptest.NewServer(rm.handler())
	t.Cleanup(srv.Close)

	api, err := storefrontapi.NewClient(storefrontapi.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second})
	require.NoError(t, err)

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	manager := session.NewManager(storage.NewMemoryBackend(), api, hub.CartSink)
	hub.SetRefresh(manager.Regions)

	tmpl, err := web.Templates()
	require.NoError(t, err)

	pages := NewPageController(service.NewCatalogService(api, 0))
	carts := NewCartController(service.NewCartService())
	contact := NewContactController(service.NewContactService(), pages)
	adminService := service.NewAdminService()
	admin := NewAdminController(adminService, pages)
	live := NewLiveController(hub)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.NewSessionMiddleware(manager, testSecret, testCookieName, time.Hour, false).Attach())

	r.GET("/", pages.Home)
	r.GET("/shop", pages.Shop)
	r.GET("/cart", pages.Cart)
	r.GET("/contact", pages.Contact)
	r.POST("/contact", contact.Submit)
	r.GET("/api/cart", carts.GetCart)
	r.POST("/cart/items", carts.AddItem)
	r.POST("/cart/items/:id/quantity", carts.UpdateQuantity)
	r.POST("/cart/items/:id/remove", carts.RemoveItem)
	r.POST("/cart/checkout", carts.Checkout)
	r.GET("/ws/cart", live.CartSocket)
	r.POST("/admin/login", admin.Login)
	r.GET("/admin", admin.Dashboard)
	r.POST("/admin/products", middleware.RequireAdmin(adminService), admin.AddProduct)
	r.POST("/admin/products/:id/remove", middleware.RequireAdmin(adminService), admin.RemoveProduct)

	return &harness{t: t, router: r, remote: rm, api: api, manager: manager, hub: hub}
}

// do sends the request with the visitor's cookie and keeps any new one.
func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	h.t.Helper()
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName {
			h.cookie = c
		}
	}
	return w
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *harness) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return h.do(formRequest(path, form))
}

func (h *harness) postJSON(path string, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return h.do(req)
}

func (h *harness) session() *session.Session {
	h.t.Helper()
	ids := h.manager.Live()
	require.Len(h.t, ids, 1)
	s, ok := h.manager.Lookup(ids[0])
	require.True(h.t, ok)
	return s
}

func addBunny() url.Values {
	return url.Values{
		"id":    {"p1"},
		"name":  {"Bunny"},
		"price": {"19.50"},
		"image": {"images/bunny.jpg"},
	}
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
