package storefrontapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
)

// Filter narrows the product list on the shop page
type Filter struct {
	Search   string
	Category string
	Color    string
	// Price is a range expression: "N+" or "A-B".
	Price string
}

// Query encodes the filter the way the API expects it
func (f Filter) Query() url.Values {
	q := url.Values{}
	if s := strings.ToLower(f.Search); s != "" {
		q.Set("search", s)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Color != "" {
		q.Set("color", f.Color)
	}

	switch {
	case f.Price == "":
	case strings.Contains(f.Price, "+"):
		q.Set("minPrice", strings.Replace(f.Price, "+", "", 1))
	case strings.Contains(f.Price, "-"):
		parts := strings.Split(f.Price, "-")
		if parts[0] != "" {
			q.Set("minPrice", parts[0])
		}
		if parts[1] != "" {
			q.Set("maxPrice", parts[1])
		}
	}
	return q
}

// ResolveImageURL turns an API image reference into something an <img> can
// load. Absolute, data and bundled image URLs pass through; root-relative
// paths are served by the API origin.
func ResolveImageURL(origin, raw string) string {
	switch {
	case raw == "":
		return DefaultImage
	case strings.HasPrefix(raw, "http"), strings.HasPrefix(raw, "data:"), strings.HasPrefix(raw, "images/"):
		return raw
	case strings.HasPrefix(raw, "/"):
		return origin + raw
	default:
		return raw
	}
}

// ListProducts returns the products matching f
func (c *Client) ListProducts(ctx context.Context, f Filter) ([]Product, error) {
	path := "/products"
	if q := f.Query().Encode(); q != "" {
		path += "?" + q
	}

	body, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return c.decodeProducts(body)
}

// FeaturedProducts returns the products highlighted on the home page
func (c *Client) FeaturedProducts(ctx context.Context) ([]Product, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/products/featured", nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load featured products: %w", err)
	}
	return c.decodeProducts(body)
}

// decodeProducts accepts either a bare array or {"products": [...]}.
func (c *Client) decodeProducts(body []byte) ([]Product, error) {
	var raw []RawProduct

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := decode(trimmed, &raw); err != nil {
			return nil, err
		}
	} else {
		var wrapped struct {
			Products []RawProduct `json:"products"`
		}
		if err := decode(trimmed, &wrapped); err != nil {
			return nil, err
		}
		raw = wrapped.Products
	}

	origin := c.Origin()
	products := make([]Product, 0, len(raw))
	for _, r := range raw {
		products = append(products, r.Normalize(origin))
	}
	return products, nil
}

// ImageUpload is an optional picture attached to a new product
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// NewProduct is the admin "add product" form
type NewProduct struct {
	Name        string
	Price       string
	Category    string
	Description string
	Color       string
	// Extra carries any further form fields verbatim.
	Extra url.Values
	Image *ImageUpload
}

// imageField is the multipart field the API reads uploads from.
const imageField = "image"

func (p NewProduct) fields() url.Values {
	form := url.Values{}
	for k, vs := range p.Extra {
		for _, v := range vs {
			form.Add(k, v)
		}
	}
	set := func(k, v string) {
		if v != "" {
			form.Set(k, v)
		}
	}
	set("name", p.Name)
	set("price", p.Price)
	set("category", p.Category)
	set("description", p.Description)

	// The API stores colors; the form calls it color.
	if color := p.Color; color != "" || form.Get("color") != "" {
		if color == "" {
			color = form.Get("color")
		}
		form.Set("colors", color)
	}
	form.Del("color")
	return form
}

// CreateProduct posts the product as multipart/form-data and returns the
// created record.
func (c *Client) CreateProduct(ctx context.Context, p NewProduct) (*Product, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	form := p.fields()
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range form[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, fmt.Errorf("failed to write form field %s: %w", k, err)
			}
		}
	}

	if p.Image != nil && p.Image.Content != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, imageField, p.Image.Filename))
		contentType := p.Image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := io.Copy(part, p.Image.Content); err != nil {
			return nil, fmt.Errorf("failed to copy image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/products", &buf, w.FormDataContentType())
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	var raw RawProduct
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	created := raw.Normalize(c.Origin())
	return &created, nil
}

// DeleteProduct removes a product by id
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty product id", ErrRequestFailed)
	}
	if _, err := c.doRequest(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, ""); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}
