// Package deezer implements catalog.Client against the public Deezer API
// and the gw-light gateway used by the Deezer web player.
package deezer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"retagger/internal/config"
	"retagger/internal/shared"
)

const (
	DefaultAPIURL     = "https://api.deezer.com"
	DefaultGatewayURL = "https://www.deezer.com/ajax/gw-light.php"

	// The public API allows 50 requests every 5 seconds.
	defaultRateLimit  = 100 * time.Millisecond
	defaultBurstLimit = 10

	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 30 * time.Second

	searchLimit = 10

	quotaExceededCode = 4
	dataNotFoundCode  = 800
)

var (
	// ErrNotFound is returned when Deezer has no object with the given id.
	ErrNotFound = errors.New("deezer: no data")
	// ErrGateway is returned when the gw-light gateway rejects a call.
	ErrGateway = errors.New("deezer gateway error")

	errInvalidToken = errors.New("deezer gateway token rejected")
)

// Client talks to Deezer. It is safe for concurrent use.
type Client struct {
	apiURL      string
	gatewayURL  string
	client      *http.Client
	rateLimiter *rate.Limiter
	maxRetries  int
	retryDelay  time.Duration
	debug       bool

	mu       sync.Mutex
	apiToken string
}

// NewClient creates a client. A nil httpClient gets a default one; either
// way the client keeps its own cookie jar for the gateway session.
func NewClient(apiURL, gatewayURL string, httpClient *http.Client) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if gatewayURL == "" {
		gatewayURL = DefaultGatewayURL
	}
	var hc http.Client
	if httpClient != nil {
		hc = *httpClient
	} else {
		hc.Timeout = config.RequestTimeout
	}
	if hc.Jar == nil {
		jar, _ := cookiejar.New(nil)
		hc.Jar = jar
	}
	return &Client{
		apiURL:      strings.TrimSuffix(apiURL, "/"),
		gatewayURL:  gatewayURL,
		client:      &hc,
		rateLimiter: rate.NewLimiter(rate.Every(defaultRateLimit), defaultBurstLimit),
		maxRetries:  config.DefaultMaxRetries,
		retryDelay:  baseRetryDelay,
	}
}

// SetRetryPolicy changes how often retryable failures (429, 5xx, quota
// errors) are attempted and the first backoff delay.
func (c *Client) SetRetryPolicy(maxRetries int, baseDelay time.Duration) {
	c.maxRetries = maxRetries
	c.retryDelay = baseDelay
}

// SetDebug enables request logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetRateLimit replaces the request rate limiter.
func (c *Client) SetRateLimit(every time.Duration, burst int) {
	c.rateLimiter = rate.NewLimiter(rate.Every(every), burst)
}

// ============================================================================
// TRANSPORT
// ============================================================================

// buildURL constructs a URL from a base and query parameters
func buildURL(base, path string, params []shared.QueryParam) (*url.URL, error) {
	fullURL := base
	if path != "" {
		fullURL = fmt.Sprintf("%s/%s", base, strings.TrimPrefix(path, "/"))
	}
	u, err := url.Parse(fullURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing URL: %w", err)
	}
	if len(params) > 0 {
		q := u.Query()
		for _, param := range params {
			q.Set(param.Name, param.Value)
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// do executes one rate-limited request and returns the body of a 200 reply.
func (c *Client) do(ctx context.Context, method, target string, body []byte) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", shared.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	shared.DebugPrint(c.debug, "DEBUG - %s %s\n", method, target)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &shared.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    shared.TruncateString(string(data), 200),
		}
	}
	return data, nil
}

// apiError is the error object the public API returns with a 200 status.
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *apiError) asError() error {
	switch e.Code {
	case quotaExceededCode:
		return &shared.HTTPError{StatusCode: http.StatusTooManyRequests, Status: e.Type, Message: e.Message}
	case dataNotFoundCode:
		return ErrNotFound
	}
	return fmt.Errorf("deezer API error %d (%s): %s", e.Code, e.Type, e.Message)
}

// get fetches a public API resource into out, retrying rate limits and
// server errors.
func (c *Client) get(ctx context.Context, path string, params []shared.QueryParam, out interface{}) error {
	u, err := buildURL(c.apiURL, path, params)
	if err != nil {
		return err
	}
	return shared.RetryWithBackoffForHTTPWithDebug(c.maxRetries, c.retryDelay, maxRetryDelay, func() error {
		body, err := c.do(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return err
		}
		var envelope struct {
			Error *apiError `json:"error"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
			return envelope.Error.asError()
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}, c.debug)
}

// gatewayResponse wraps every gw-light reply. Error is an empty array on
// success and an object keyed by error name otherwise.
type gatewayResponse struct {
	Error   json.RawMessage `json:"error"`
	Results json.RawMessage `json:"results"`
}

func (r *gatewayResponse) err() error {
	var errs map[string]interface{}
	if len(r.Error) == 0 || json.Unmarshal(r.Error, &errs) != nil || len(errs) == 0 {
		return nil
	}
	for name, detail := range errs {
		if name == "VALID_TOKEN_REQUIRED" || name == "GATEWAY_ERROR" {
			return fmt.Errorf("%w: %v", errInvalidToken, detail)
		}
		return fmt.Errorf("%w: %s: %v", ErrGateway, name, detail)
	}
	return nil
}

func (c *Client) callGateway(ctx context.Context, method, token string, payload, out interface{}) error {
	u, err := buildURL(c.gatewayURL, "", []shared.QueryParam{
		{Name: "method", Value: method},
		{Name: "input", Value: "3"},
		{Name: "api_version", Value: "1.0"},
		{Name: "api_token", Value: token},
	})
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", method, err)
	}
	return shared.RetryWithBackoffForHTTPWithDebug(c.maxRetries, c.retryDelay, maxRetryDelay, func() error {
		data, err := c.do(ctx, http.MethodPost, u.String(), body)
		if err != nil {
			return err
		}
		var resp gatewayResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", method, err)
		}
		if err := resp.err(); err != nil {
			return err
		}
		if err := json.Unmarshal(resp.Results, out); err != nil {
			return fmt.Errorf("failed to decode %s results: %w", method, err)
		}
		return nil
	}, c.debug)
}

// token returns the gateway session token, fetching it on first use.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.apiToken != "" {
		return c.apiToken, nil
	}
	var user struct {
		CheckForm string `json:"checkForm"`
	}
	if err := c.callGateway(ctx, "deezer.getUserData", "null", struct{}{}, &user); err != nil {
		return "", fmt.Errorf("failed to open gateway session: %w", err)
	}
	if user.CheckForm == "" {
		return "", fmt.Errorf("%w: empty session token", ErrGateway)
	}
	c.apiToken = user.CheckForm
	return c.apiToken, nil
}

func (c *Client) resetToken() {
	c.mu.Lock()
	c.apiToken = ""
	c.mu.Unlock()
}

// gateway calls a gw-light method, renewing the session once if the token
// was rejected.
func (c *Client) gateway(ctx context.Context, method string, payload, out interface{}) error {
	for attempt := 0; ; attempt++ {
		token, err := c.token(ctx)
		if err != nil {
			return err
		}
		err = c.callGateway(ctx, method, token, payload, out)
		if errors.Is(err, errInvalidToken) && attempt == 0 {
			c.resetToken()
			continue
		}
		return err
	}
}
