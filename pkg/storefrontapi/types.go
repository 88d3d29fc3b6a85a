package storefrontapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultImage is shown for products without any image.
const DefaultImage = "images/croshet.jpg"

// ProductImage is one entry of a product's images array
type ProductImage struct {
	URL string `json:"url"`
}

// ID is a record id the API sends either as a string or as a number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// RawProduct is a product record as the API returns it. Depending on the
// endpoint the id arrives as _id or id and the picture as images[0].url or
// image.
type RawProduct struct {
	MongoID     ID              `json:"_id"`
	ID          ID              `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Images      []ProductImage  `json:"images"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Sales       json.Number     `json:"sales"`
}

// Product is the normalized product the storefront works with
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Image       string
	Description string
	Category    string
	Sales       string
}

// Normalize picks the id and image variants and resolves the image URL
// against origin.
func (r RawProduct) Normalize(origin string) Product {
	id := string(r.MongoID)
	if id == "" {
		id = string(r.ID)
	}

	image := r.Image
	if len(r.Images) > 0 && r.Images[0].URL != "" {
		image = r.Images[0].URL
	}

	sales := r.Sales.String()
	if sales == "" {
		sales = "0"
	}

	return Product{
		ID:          id,
		Name:        r.Name,
		Price:       r.Price,
		Image:       ResolveImageURL(origin, image),
		Description: r.Description,
		Category:    r.Category,
		Sales:       sales,
	}
}

// SiteSettings holds the contact details and social links shown in the
// footer and on the contact page
type SiteSettings struct {
	Email     string
	Phone     string
	Location  string
	Instagram string
	Facebook  string
	Pinterest string
}

type rawSiteSettings struct {
	Email        string `json:"email"`
	ContactEmail string `json:"contactEmail"`
	Phone        string `json:"phone"`
	ContactPhone string `json:"contactPhone"`
	Location     string `json:"location"`
	Address      string `json:"address"`
	Instagram    string `json:"instagram"`
	Facebook     string `json:"facebook"`
	Pinterest    string `json:"pinterest"`
}

func (r rawSiteSettings) normalize() *SiteSettings {
	return &SiteSettings{
		Email:     firstNonEmpty(r.Email, r.ContactEmail),
		Phone:     firstNonEmpty(r.Phone, r.ContactPhone),
		Location:  firstNonEmpty(r.Location, r.Address),
		Instagram: r.Instagram,
		Facebook:  r.Facebook,
		Pinterest: r.Pinterest,
	}
}

// Testimonial is one customer quote
type Testimonial struct {
	Text   string
	Author string
}

type rawTestimonial struct {
	Text     string `json:"text"`
	Content  string `json:"content"`
	Message  string `json:"message"`
	Author   string `json:"author"`
	Username string `json:"username"`
}

func (r rawTestimonial) normalize() Testimonial {
	return Testimonial{
		Text:   firstNonEmpty(r.Text, r.Content, r.Message),
		Author: firstNonEmpty(r.Author, r.Username, "Customer"),
	}
}

// DashboardStats are the admin dashboard counters
type DashboardStats struct {
	TotalValue     decimal.Decimal `json:"totalValue"`
	TotalProducts  json.Number     `json:"totalProducts"`
	TotalChatUsers json.Number     `json:"totalChatUsers"`
}

// LoginRequest is the body of POST /admin/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminProfile is what GET /admin/profile reports about the signed-in admin
type AdminProfile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ContactRequest is the body of POST /chat-users
type ContactRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
	Email    string `json:"email"`
}

// ContactResponse is the answer to POST /chat-users
type ContactResponse struct {
	Message string `json:"message"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
