package storefrontapi

import (
	"context"
	"fmt"
	"net/http"
)

// Login signs the admin in. The API answers with a session cookie that is
// kept in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	req := LoginRequest{Username: username, Password: password}
	if err := c.sendJSON(ctx, http.MethodPost, "/admin/login", req, nil); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	return nil
}

// Profile returns the signed-in admin. Any failure means the visitor is not
// an admin.
func (c *Client) Profile(ctx context.Context) (*AdminProfile, error) {
	var profile AdminProfile
	if err := c.getJSON(ctx, "/admin/profile", &profile); err != nil {
		return nil, fmt.Errorf("failed to load admin profile: %w", err)
	}
	return &profile, nil
}

// DashboardStats returns the admin dashboard counters
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.getJSON(ctx, "/admin-dashboard/stats", &stats); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return &stats, nil
}
