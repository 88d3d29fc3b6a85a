package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/storefront/pkg/logger"
	"github.com/ikkim/storefront/pkg/storefrontapi"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrNotAdmin           = errors.New("not signed in as admin")
)

// AdminAPI is the part of the storefront API the admin pages use. Calls run
// with the visitor's cookies.
type AdminAPI interface {
	Login(ctx context.Context, username, password string) error
	Profile(ctx context.Context) (*storefrontapi.AdminProfile, error)
	ListProducts(ctx context.Context, f storefrontapi.Filter) ([]storefrontapi.Product, error)
	CreateProduct(ctx context.Context, p storefrontapi.NewProduct) (*storefrontapi.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	DashboardStats(ctx context.Context) (*storefrontapi.DashboardStats, error)
}

// DashboardStats are the formatted dashboard counters. Zero values are shown
// when the stats cannot be loaded.
type DashboardStats struct {
	TotalValue     string
	TotalProducts  string
	TotalChatUsers string
}

// Dashboard is everything the admin page shows
type Dashboard struct {
	Profile  *storefrontapi.AdminProfile
	Stats    DashboardStats
	Products []storefrontapi.Product
	// ProductsErr is set when the product table could not be loaded.
	ProductsErr error
}

type AdminService interface {
	Login(ctx context.Context, api AdminAPI, username, password string) error
	RequireAdmin(ctx context.Context, api AdminAPI) (*storefrontapi.AdminProfile, error)
	Dashboard(ctx context.Context, api AdminAPI) (*Dashboard, error)
	AddProduct(ctx context.Context, api AdminAPI, p storefrontapi.NewProduct) (*storefrontapi.Product, error)
	RemoveProduct(ctx context.Context, api AdminAPI, productID string) error
}

type adminService struct{}

func NewAdminService() AdminService {
	return &adminService{}
}

func (s *adminService) Login(ctx context.Context, api AdminAPI, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	if err := api.Login(ctx, username, password); err != nil {
		logger.Warn("Admin login failed", map[string]interface{}{
			"username": username,
			"error":    storefrontapi.Message(err),
		})
		return err
	}

	logger.Info("Admin logged in", map[string]interface{}{
		"username": username,
	})
	return nil
}

// RequireAdmin fails with ErrNotAdmin unless the API recognises the visitor.
func (s *adminService) RequireAdmin(ctx context.Context, api AdminAPI) (*storefrontapi.AdminProfile, error) {
	profile, err := api.Profile(ctx)
	if err != nil {
		logger.Debug("Admin profile check failed", map[string]interface{}{
			"error": storefrontapi.Message(err),
		})
		return nil, fmt.Errorf("%w: %v", ErrNotAdmin, err)
	}
	return profile, nil
}

func (s *adminService) Dashboard(ctx context.Context, api AdminAPI) (*Dashboard, error) {
	profile, err := s.RequireAdmin(ctx, api)
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{
		Profile: profile,
		Stats: DashboardStats{
			TotalValue:     "$0.00",
			TotalProducts:  "0",
			TotalChatUsers: "0",
		},
	}

	products, err := api.ListProducts(ctx, storefrontapi.Filter{})
	if err != nil {
		logger.Error("Failed to load admin product table", err, nil)
		dash.ProductsErr = err
	} else {
		dash.Products = products
	}

	stats, err := api.DashboardStats(ctx)
	if err != nil {
		logger.Warn("Dashboard stats unavailable", map[string]interface{}{
			"error": storefrontapi.Message(err),
		})
		return dash, nil
	}
	dash.Stats = formatStats(stats)
	return dash, nil
}

func formatStats(stats *storefrontapi.DashboardStats) DashboardStats {
	count := func(n string) string {
		if n == "" {
			return "0"
		}
		d, err := decimal.NewFromString(n)
		if err != nil {
			return "0"
		}
		return d.String()
	}
	return DashboardStats{
		TotalValue:     "$" + stats.TotalValue.StringFixed(2),
		TotalProducts:  count(stats.TotalProducts.String()),
		TotalChatUsers: count(stats.TotalChatUsers.String()),
	}
}

func (s *adminService) AddProduct(ctx context.Context, api AdminAPI, p storefrontapi.NewProduct) (*storefrontapi.Product, error) {
	created, err := api.CreateProduct(ctx, p)
	if err != nil {
		logger.Error("Failed to add product", err, map[string]interface{}{
			"name": p.Name,
		})
		return nil, err
	}

	logger.Info("Product added", map[string]interface{}{
		"product_id": created.ID,
		"name":       p.Name,
	})
	return created, nil
}

func (s *adminService) RemoveProduct(ctx context.Context, api AdminAPI, productID string) error {
	if err := api.DeleteProduct(ctx, productID); err != nil {
		logger.Error("Failed to remove product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	logger.Info("Product removed", map[string]interface{}{
		"product_id": productID,
	})
	return nil
}
