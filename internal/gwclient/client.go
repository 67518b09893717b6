package gwclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/logging"
	"github.com/muurk/blegw/internal/server"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second

	// DefaultCacheDuration is the default cache validity duration
	DefaultCacheDuration = 30 * time.Second

	configPath = "/ruuvi.json"
	statusPath = "/status"
	checkPath  = "/api/check-mqtt"
	maxBody    = 64 << 10
)

// Client talks to a gateway's configuration endpoint.
type Client struct {
	// BaseURL is the gateway address (e.g., "http://192.168.1.20:8080")
	BaseURL string

	// User and Password are sent as HTTP Basic credentials when User is set
	User     string
	Password string

	// Token is sent as a bearer token and takes precedence over User
	Token string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay caps exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff doubles the delay after every attempt
	UseExponentialBackoff bool

	// CacheDuration is how long a fetched document is reused (0 = no cache)
	CacheDuration time.Duration

	cacheMutex sync.RWMutex
	cached     Document
	cacheTime  time.Time
}

// NewClient creates a client for the gateway at host:port.
func NewClient(host string, port int) *Client {
	return NewClientWithURL("http://" + net.JoinHostPort(host, strconv.Itoa(port)))
}

// NewClientWithURL creates a client for a full base URL.
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:               baseURL,
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
		CacheDuration:         DefaultCacheDuration,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetAuth sets HTTP Basic credentials
func (c *Client) SetAuth(user, password string) {
	c.User = user
	c.Password = password
}

// SetToken sets the bearer token used for API key access
func (c *Client) SetToken(token string) {
	c.Token = token
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// Status fetches the gateway's runtime status.
func (c *Client) Status(ctx context.Context) (*server.Status, error) {
	var st server.Status
	err := c.withRetry(ctx, func() error {
		body, err := c.do(ctx, http.MethodGet, statusPath, nil)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &st); err != nil {
			return newParseError("failed to parse status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Ping reports whether the gateway answers with valid credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, statusPath, nil)
	return err
}

// GetConfiguration fetches the UI document, using the cache when it is fresh.
func (c *Client) GetConfiguration(ctx context.Context) (Document, error) {
	if doc := c.GetCachedConfiguration(); doc != nil {
		return doc, nil
	}

	var doc Document
	err := c.withRetry(ctx, func() error {
		body, err := c.do(ctx, http.MethodGet, configPath, nil)
		if err != nil {
			return err
		}
		doc, err = ParseDocument(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.store(doc)
	return doc.Clone(), nil
}

// RefreshConfiguration fetches the document, bypassing the cache.
func (c *Client) RefreshConfiguration(ctx context.Context) (Document, error) {
	c.InvalidateCache()
	return c.GetConfiguration(ctx)
}

// UpdateConfiguration posts doc and returns the document the gateway now
// holds. Keys absent from doc keep their current values on the gateway.
func (c *Client) UpdateConfiguration(ctx context.Context, doc Document) (Document, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, newParseError("failed to encode document", err)
	}

	var result Document
	err = c.withRetry(ctx, func() error {
		body, err := c.do(ctx, http.MethodPost, configPath, payload)
		if err != nil {
			return err
		}
		result, err = ParseDocument(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.store(result)
	logging.Info("Gateway configuration updated", zap.String("gateway", c.BaseURL), zap.Int("keys", len(doc)))
	return result.Clone(), nil
}

// CheckMQTT asks the gateway to try the broker described by doc over its
// current settings. A nil doc checks the stored settings.
func (c *Client) CheckMQTT(ctx context.Context, doc Document) (*server.CheckResult, error) {
	var payload []byte
	if doc != nil {
		var err error
		if payload, err = json.Marshal(doc); err != nil {
			return nil, newParseError("failed to encode document", err)
		}
	}
	body, err := c.do(ctx, http.MethodPost, checkPath, payload)
	if err != nil {
		return nil, err
	}
	var res server.CheckResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, newParseError("failed to parse check result", err)
	}
	return &res, nil
}

// InvalidateCache drops the cached document.
func (c *Client) InvalidateCache() {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()
	c.cached = nil
	c.cacheTime = time.Time{}
}

// GetCachedConfiguration returns the cached document without a request, or
// nil when there is no fresh copy.
func (c *Client) GetCachedConfiguration() Document {
	c.cacheMutex.RLock()
	defer c.cacheMutex.RUnlock()
	if c.cached != nil && c.CacheDuration > 0 && time.Since(c.cacheTime) < c.CacheDuration {
		return c.cached.Clone()
	}
	return nil
}

func (c *Client) store(doc Document) {
	if c.CacheDuration <= 0 {
		return
	}
	c.cacheMutex.Lock()
	c.cached = doc.Clone()
	c.cacheTime = time.Now()
	c.cacheMutex.Unlock()
}

// withRetry runs attempt until it succeeds, fails with a non-retryable
// error, the retries are used up or ctx ends.
func (c *Client) withRetry(ctx context.Context, attempt func() error) error {
	var lastErr error
	delay := c.RetryDelay

	for i := 0; i <= c.MaxRetries; i++ {
		if i > 0 {
			logging.Debug("Retrying gateway request",
				zap.Int("attempt", i),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(delay):
			}
			if c.UseExponentialBackoff {
				delay *= 2
				if delay > c.MaxRetryDelay {
					delay = c.MaxRetryDelay
				}
			}
		}

		err := attempt()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return err
		}
	}
	return lastErr
}

// do performs one request and returns the body of a 200 response.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, classifyNetworkError("failed to create request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case c.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.Token)
	case c.User != "":
		req.SetBasicAuth(c.User, c.Password)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, classifyNetworkError(fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, classifyNetworkError("failed to read response body", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return data, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, newAuthError(resp.StatusCode)
	}
	var eb struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(data, &eb)
	return nil, newStatusError(resp.StatusCode, eb.Error)
}
