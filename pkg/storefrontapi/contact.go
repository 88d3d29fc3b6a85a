package storefrontapi

import (
	"context"
	"fmt"
	"net/http"
)

// SubmitContact registers a visitor who asked to be contacted
func (c *Client) SubmitContact(ctx context.Context, req ContactRequest) (*ContactResponse, error) {
	var resp ContactResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/chat-users", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to submit contact request: %w", err)
	}
	return &resp, nil
}
