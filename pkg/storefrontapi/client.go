package storefrontapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ikkim/storefront/pkg/logger"
	"github.com/ikkim/storefront/pkg/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Client talks to the remote storefront API. A Client is safe for
// concurrent use; WithJar derives per-visitor clients that share the
// underlying transport.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new storefront API client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// Origin is scheme://host of the API
func (c *Client) Origin() string {
	return c.config.Origin()
}

// WithJar returns a client that sends and stores cookies in jar, the
// server-side stand-in for a browser's credentials: 'include'.
func (c *Client) WithJar(jar http.CookieJar) *Client {
	hc := *c.httpClient
	hc.Jar = jar
	return &Client{config: c.config, httpClient: &hc}
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return decode(body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	body, err := c.doRequest(ctx, method, path, bytes.NewReader(reqBody), "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(body, out)
}

func decode(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// doRequest performs an HTTP request against the API and returns the body
// of a 2xx answer. Any other status becomes an *APIError.
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	url := c.config.endpoint(path)

	route, _, _ := strings.Cut(path, "?")
	ctx, span := tracing.Tracer().Start(ctx, "storefrontapi "+method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", url),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unreachable")
		logger.Warn("Storefront API unreachable", map[string]interface{}{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrNetwork, err)
	}

	logger.Debug("Storefront API request", map[string]interface{}{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		return nil, newAPIError(resp.StatusCode, respBody)
	}
	return respBody, nil
}
