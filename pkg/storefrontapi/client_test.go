package storefrontapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL + "/api"})
	require.NoError(t, err)
	return client, server
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"default", DefaultBaseURL, false},
		{"https", "https://shop.example.com/api", false},
		{"empty", "", true},
		{"no scheme", "localhost:5001/api", true},
		{"ftp", "ftp://example.com", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{BaseURL: tc.baseURL}
			err := cfg.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Origin(t *testing.T) {
	cfg := Config{BaseURL: "http://localhost:5001/api"}
	assert.Equal(t, "http://localhost:5001", cfg.Origin())
}

func TestFilter_Query(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"empty", Filter{}, ""},
		{"search lowercased", Filter{Search: "Blue Bunny"}, "search=blue+bunny"},
		{"category and color", Filter{Category: "toys", Color: "Red"}, "category=toys&color=Red"},
		{"open ended price", Filter{Price: "50+"}, "minPrice=50"},
		{"price range", Filter{Price: "10-25"}, "maxPrice=25&minPrice=10"},
		{"range without max", Filter{Price: "10-"}, "minPrice=10"},
		{"range without min", Filter{Price: "-25"}, "maxPrice=25"},
		{"unknown price form", Filter{Price: "cheap"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Query().Encode())
		})
	}
}

func TestResolveImageURL(t *testing.T) {
	origin := "http://localhost:5001"
	assert.Equal(t, DefaultImage, ResolveImageURL(origin, ""))
	assert.Equal(t, "https://cdn.example.com/a.jpg", ResolveImageURL(origin, "https://cdn.example.com/a.jpg"))
	assert.Equal(t, "data:image/png;base64,AAAA", ResolveImageURL(origin, "data:image/png;base64,AAAA"))
	assert.Equal(t, "images/bunny.jpg", ResolveImageURL(origin, "images/bunny.jpg"))
	assert.Equal(t, "http://localhost:5001/uploads/x.jpg", ResolveImageURL(origin, "/uploads/x.jpg"))
	assert.Equal(t, "uploads/x.jpg", ResolveImageURL(origin, "uploads/x.jpg"))
}

func TestListProducts_ArrayAndWrapped(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if r.URL.Query().Get("category") == "wrapped" {
			w.Write([]byte(`{"products":[{"id":"p2","name":"Hat","price":"7.25","image":"/uploads/hat.jpg"}]}`))
			return
		}
		w.Write([]byte(`[{"_id":"m1","name":"Bunny","price":19.5,"images":[{"url":"https://cdn/b.jpg"}],"image":"ignored.jpg","sales":3}]`))
	})
	client, server := newTestClient(t, mux)

	products, err := client.ListProducts(context.Background(), Filter{Search: "BUN"})
	require.NoError(t, err)
	assert.Equal(t, "search=bun", gotQuery)
	require.Len(t, products, 1)
	assert.Equal(t, "m1", products[0].ID)
	assert.Equal(t, "https://cdn/b.jpg", products[0].Image)
	assert.Equal(t, "19.5", products[0].Price.String())
	assert.Equal(t, "3", products[0].Sales)

	products, err = client.ListProducts(context.Background(), Filter{Category: "wrapped"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p2", products[0].ID)
	assert.Equal(t, server.URL+"/uploads/hat.jpg", products[0].Image)
	assert.Equal(t, "0", products[0].Sales)
}

func TestListProducts_NumericIDs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":42,"name":"Bunny","price":"19.5"},{"id":7,"name":"Hat","price":"7"},{"_id":null,"id":"p3","name":"Tote","price":"3"}]`))
	})
	client, _ := newTestClient(t, mux)

	products, err := client.ListProducts(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "42", products[0].ID)
	assert.Equal(t, "7", products[1].ID)
	assert.Equal(t, "p3", products[2].ID)
}

func TestID_RejectsObjects(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"oid":"x"}`), &id))
}

func TestDoRequest_ErrorMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products/featured", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Invalid credentials\n"))
	})
	client, _ := newTestClient(t, mux)

	_, err := client.FeaturedProducts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "HTTP 500", Message(err))

	err = client.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", Message(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestDoRequest_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client, err := NewClient(Config{BaseURL: server.URL + "/api"})
	require.NoError(t, err)
	server.Close()

	_, err = client.ListProducts(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, "Failed to fetch", Message(err))
}

func TestLogin_SendsCredentialsAndKeepsCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if req.Username != "admin" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc", Path: "/"})
		w.Write([]byte(`{"success":true}`))
	})
	mux.HandleFunc("/api/admin/profile", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("token"); err != nil || c.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"username":"admin","email":"a@example.com"}`))
	})
	base, _ := newTestClient(t, mux)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := base.WithJar(jar)

	_, err = client.Profile(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, client.Login(context.Background(), "admin", "secret"))
	profile, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin", profile.Username)

	// the base client has no jar and stays signed out
	_, err = base.Profile(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateProduct_Multipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		assert.Equal(t, "Bunny", r.FormValue("name"))
		assert.Equal(t, "19.99", r.FormValue("price"))
		assert.Equal(t, "pink", r.FormValue("colors"))
		assert.Empty(t, r.MultipartForm.Value["color"])
		assert.Equal(t, "10", r.FormValue("stock"))

		file, header, err := r.FormFile(imageField)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "bunny.jpg", header.Filename)
		assert.Equal(t, "jpeg-bytes", string(data))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":"new1","name":"Bunny","price":19.99,"image":"/uploads/bunny.jpg"}`))
	})
	client, server := newTestClient(t, mux)

	created, err := client.CreateProduct(context.Background(), NewProduct{
		Name:  "Bunny",
		Price: "19.99",
		Color: "pink",
		Extra: map[string][]string{"stock": {"10"}, "color": {"ignored"}},
		Image: &ImageUpload{Filename: "bunny.jpg", ContentType: "image/jpeg", Content: strings.NewReader("jpeg-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "new1", created.ID)
	assert.Equal(t, server.URL+"/uploads/bunny.jpg", created.Image)
}

func TestNewProduct_ColorFromExtra(t *testing.T) {
	p := NewProduct{Name: "Hat", Extra: map[string][]string{"color": {"green"}}}
	form := p.fields()
	assert.Equal(t, "green", form.Get("colors"))
	assert.Empty(t, form.Get("color"))
}

func TestDeleteProduct(t *testing.T) {
	var gotPath, gotMethod string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	})
	client, _ := newTestClient(t, mux)

	require.NoError(t, client.DeleteProduct(context.Background(), "abc123"))
	assert.Equal(t, "/api/products/abc123", gotPath)
	assert.Equal(t, http.MethodDelete, gotMethod)

	assert.Error(t, client.DeleteProduct(context.Background(), ""))
}

func TestSiteSettings_Fallbacks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/site-settings", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"contactEmail":"hi@shop.test","phone":"+1 555","address":"Main St 1","instagram":"https://ig/shop"}`))
	})
	client, _ := newTestClient(t, mux)

	settings, err := client.SiteSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hi@shop.test", settings.Email)
	assert.Equal(t, "+1 555", settings.Phone)
	assert.Equal(t, "Main St 1", settings.Location)
	assert.Equal(t, "https://ig/shop", settings.Instagram)
	assert.Empty(t, settings.Facebook)
}

func TestTestimonials_Normalized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/testimonials", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"text":"Lovely","author":"Ann"},{"content":"Soft yarn","username":"bob"},{"message":"Great"}]`))
	})
	client, _ := newTestClient(t, mux)

	items, err := client.Testimonials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Testimonial{
		{Text: "Lovely", Author: "Ann"},
		{Text: "Soft yarn", Author: "bob"},
		{Text: "Great", Author: "Customer"},
	}, items)
}

func TestDashboardStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin-dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalValue":1234.5,"totalProducts":12,"totalChatUsers":4}`))
	})
	client, _ := newTestClient(t, mux)

	stats, err := client.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1234.5", stats.TotalValue.String())
	assert.Equal(t, "12", stats.TotalProducts.String())
	assert.Equal(t, "4", stats.TotalChatUsers.String())
}

func TestSubmitContact(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat-users", func(w http.ResponseWriter, r *http.Request) {
		var req ContactRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ContactRequest{Username: "Ann", Phone: "555", Country: "NZ", Email: "ann@x"}, req)
		w.Write([]byte(`{"message":"We will call you"}`))
	})
	client, _ := newTestClient(t, mux)

	resp, err := client.SubmitContact(context.Background(), ContactRequest{Username: "Ann", Phone: "555", Country: "NZ", Email: "ann@x"})
	require.NoError(t, err)
	assert.Equal(t, "We will call you", resp.Message)
}
