// Package api implements the HTTP client for the IntelliMind backend endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/diogo/intellimind/internal/errors"
)

// Backend endpoint paths
const (
	EndpointChat   = "/chat"
	EndpointClear  = "/clear"
	EndpointHealth = "/health"
)

// StatusSuccess is the envelope status the backend uses for successful calls
const StatusSuccess = "success"

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 4 << 20

// HTTPDoer is the subset of tls_client.HttpClient the client needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ChatClientInterface is the backend surface consumed by the controller and commands
type ChatClientInterface interface {
	Chat(ctx context.Context, message string) (string, error)
	Clear(ctx context.Context) error
	Health(ctx context.Context) (string, error)
}

var _ ChatClientInterface = (*Client)(nil)

// Client talks to the IntelliMind backend
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	timeout    time.Duration
	userAgent  string
	logger     *zap.Logger
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient injects the HTTP transport (used by tests)
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Client for the backend at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("server URL cannot be empty")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("server URL must start with http:// or https://: %s", baseURL)
	}

	client := &Client{
		baseURL:   baseURL,
		timeout:   120 * time.Second,
		userAgent: "intellimind-cli",
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout.Seconds())),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}
		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat sends message to POST /chat and returns the assistant response
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apierrors.ErrEmptyInput
	}

	payload, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	body, err := c.post(ctx, EndpointChat, payload)
	if err != nil {
		return "", err
	}

	response := gjson.GetBytes(body, "response")
	if !response.Exists() || response.Type != gjson.String {
		return "", apierrors.NewParseError("missing response text", "response")
	}
	return response.String(), nil
}

// Clear asks the backend to drop the conversation history via POST /clear
func (c *Client) Clear(ctx context.Context) error {
	_, err := c.post(ctx, EndpointClear, nil)
	return err
}

// Health queries GET /health and returns the reported status
func (c *Client) Health(ctx context.Context) (string, error) {
	body, status, err := c.do(ctx, http.MethodGet, EndpointHealth, nil)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", apierrors.NewAPIError(status, EndpointHealth, "health check failed")
	}
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response is not JSON", "")
	}
	return gjson.GetBytes(body, "status").String(), nil
}

// post issues a POST and validates the {"status": ...} envelope. The returned
// body is only non-nil for a successful envelope.
func (c *Client) post(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	body, status, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		if status < 200 || status >= 300 {
			return nil, apierrors.NewAPIError(status, endpoint, http.StatusText(status))
		}
		return nil, apierrors.NewParseError("response is not JSON", "")
	}

	envelope := gjson.ParseBytes(body)
	if envelope.Get("status").String() != StatusSuccess {
		msg := envelope.Get("error").String()
		if msg == "" {
			msg = "Unknown error occurred"
		}
		return nil, apierrors.NewBackendError(endpoint, status, msg)
	}

	return body, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, int, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, 0, apierrors.NewTimeoutError(fmt.Sprintf("%s after %v", endpoint, c.timeout))
		}
		return nil, 0, apierrors.NewNetworkError(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, apierrors.NewNetworkError(endpoint, fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug("request completed",
		zap.String("endpoint", endpoint),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return body, resp.StatusCode, nil
}
