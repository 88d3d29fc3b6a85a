package storefrontapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// SiteSettings loads the contact details and social links
func (c *Client) SiteSettings(ctx context.Context) (*SiteSettings, error) {
	var raw rawSiteSettings
	if err := c.getJSON(ctx, "/site-settings", &raw); err != nil {
		return nil, fmt.Errorf("failed to load site settings: %w", err)
	}
	return raw.normalize(), nil
}

// Testimonials loads the customer quotes. The API may answer with a bare
// array or {"testimonials": [...]}.
func (c *Client) Testimonials(ctx context.Context) ([]Testimonial, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/testimonials", nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load testimonials: %w", err)
	}

	var raw []rawTestimonial
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := decode(trimmed, &raw); err != nil {
			return nil, err
		}
	} else {
		var wrapped struct {
			Testimonials []rawTestimonial `json:"testimonials"`
		}
		if err := decode(trimmed, &wrapped); err != nil {
			return nil, err
		}
		raw = wrapped.Testimonials
	}

	out := make([]Testimonial, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.normalize())
	}
	return out, nil
}
