package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ikkim/storefront/pkg/logger"
	"github.com/ikkim/storefront/pkg/storefrontapi"
)

// CatalogAPI is the read-only part of the storefront API
type CatalogAPI interface {
	ListProducts(ctx context.Context, f storefrontapi.Filter) ([]storefrontapi.Product, error)
	FeaturedProducts(ctx context.Context) ([]storefrontapi.Product, error)
	SiteSettings(ctx context.Context) (*storefrontapi.SiteSettings, error)
	Testimonials(ctx context.Context) ([]storefrontapi.Testimonial, error)
}

type CatalogService interface {
	ListProducts(ctx context.Context, f storefrontapi.Filter) ([]storefrontapi.Product, error)
	FeaturedProducts(ctx context.Context) ([]storefrontapi.Product, error)
	// SiteSettings is nil when the settings cannot be loaded.
	SiteSettings(ctx context.Context) *storefrontapi.SiteSettings
	// Testimonials is empty when they cannot be loaded.
	Testimonials(ctx context.Context) []storefrontapi.Testimonial
	// Refresh reloads the cached home page content.
	Refresh(ctx context.Context) error
}

type cached[T any] struct {
	value     T
	fetchedAt time.Time
	ok        bool
}

func (c cached[T]) fresh(now time.Time, maxAge time.Duration) bool {
	return c.ok && now.Sub(c.fetchedAt) < maxAge
}

type catalogService struct {
	api    CatalogAPI
	maxAge time.Duration
	now    func() time.Time

	mu           sync.RWMutex
	featured     cached[[]storefrontapi.Product]
	settings     cached[*storefrontapi.SiteSettings]
	testimonials cached[[]storefrontapi.Testimonial]
}

// NewCatalogService serves featured products, site settings and testimonials
// from a cache that is considered fresh for maxAge.
func NewCatalogService(api CatalogAPI, maxAge time.Duration) CatalogService {
	return &catalogService{
		api:    api,
		maxAge: maxAge,
		now:    time.Now,
	}
}

func (s *catalogService) ListProducts(ctx context.Context, f storefrontapi.Filter) ([]storefrontapi.Product, error) {
	products, err := s.api.ListProducts(ctx, f)
	if err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"query": f.Query().Encode(),
		})
		return nil, err
	}

	logger.Debug("Products listed", map[string]interface{}{
		"query": f.Query().Encode(),
		"count": len(products),
	})
	return products, nil
}

func (s *catalogService) FeaturedProducts(ctx context.Context) ([]storefrontapi.Product, error) {
	s.mu.RLock()
	entry := s.featured
	s.mu.RUnlock()
	if entry.fresh(s.now(), s.maxAge) {
		return entry.value, nil
	}

	products, err := s.api.FeaturedProducts(ctx)
	if err != nil {
		logger.Error("Failed to load featured products", err, nil)
		return nil, err
	}
	s.mu.Lock()
	s.featured = cached[[]storefrontapi.Product]{value: products, fetchedAt: s.now(), ok: true}
	s.mu.Unlock()
	return products, nil
}

func (s *catalogService) SiteSettings(ctx context.Context) *storefrontapi.SiteSettings {
	s.mu.RLock()
	entry := s.settings
	s.mu.RUnlock()
	if entry.fresh(s.now(), s.maxAge) {
		return entry.value
	}

	settings, err := s.api.SiteSettings(ctx)
	if err != nil {
		logger.Warn("Site settings unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	s.mu.Lock()
	s.settings = cached[*storefrontapi.SiteSettings]{value: settings, fetchedAt: s.now(), ok: true}
	s.mu.Unlock()
	return settings
}

func (s *catalogService) Testimonials(ctx context.Context) []storefrontapi.Testimonial {
	s.mu.RLock()
	entry := s.testimonials
	s.mu.RUnlock()
	if entry.fresh(s.now(), s.maxAge) {
		return entry.value
	}

	items, err := s.api.Testimonials(ctx)
	if err != nil {
		logger.Warn("Testimonials unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return []storefrontapi.Testimonial{}
	}
	s.mu.Lock()
	s.testimonials = cached[[]storefrontapi.Testimonial]{value: items, fetchedAt: s.now(), ok: true}
	s.mu.Unlock()
	return items
}

// Refresh fetches everything the home page shows. Failed parts keep their
// previous cache entry.
func (s *catalogService) Refresh(ctx context.Context) error {
	now := s.now()
	var errs []error

	featured, err := s.api.FeaturedProducts(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	settings, settingsErr := s.api.SiteSettings(ctx)
	if settingsErr != nil {
		errs = append(errs, settingsErr)
	}
	testimonials, testimonialsErr := s.api.Testimonials(ctx)
	if testimonialsErr != nil {
		errs = append(errs, testimonialsErr)
	}

	s.mu.Lock()
	if err == nil {
		s.featured = cached[[]storefrontapi.Product]{value: featured, fetchedAt: now, ok: true}
	}
	if settingsErr == nil {
		s.settings = cached[*storefrontapi.SiteSettings]{value: settings, fetchedAt: now, ok: true}
	}
	if testimonialsErr == nil {
		s.testimonials = cached[[]storefrontapi.Testimonial]{value: testimonials, fetchedAt: now, ok: true}
	}
	s.mu.Unlock()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logger.Info("Catalog content refreshed", map[string]interface{}{
		"featured":     len(featured),
		"testimonials": len(testimonials),
	})
	return nil
}
