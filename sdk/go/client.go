package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the leaderboard HTTP + WebSocket API.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	headers    http.Header
	token      string
}

// NewClient constructs a new SDK client targeting the given baseURL (e.g., http://localhost:8080/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		wsURL:      deriveWSURL(baseURL),
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithAuthToken preloads a bearer token, skipping Login.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithHeader sets an arbitrary header applied to HTTP and WS calls.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

// Register creates an account on the server.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/auth/register",
		map[string]string{"username": username, "password": password}, nil)
}

// Login exchanges credentials for a token and stores it on the client for
// subsequent authenticated calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login",
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return err
	}
	if resp.Token == "" {
		return errors.New("login response missing token")
	}
	c.token = resp.Token
	return nil
}

// Token returns the bearer token currently held by the client.
func (c *Client) Token() string { return c.token }

// SubmitScore records a score for the authenticated user.
func (c *Client) SubmitScore(ctx context.Context, leaderboard string, score float64) (SubmitResult, error) {
	var res SubmitResult
	if err := c.requireAuth(); err != nil {
		return res, err
	}
	if strings.TrimSpace(leaderboard) == "" {
		return res, ErrEmptyLeaderboard
	}
	path := fmt.Sprintf("/v1/leaderboard/%s/score", url.PathEscape(leaderboard))
	err := c.doJSON(ctx, http.MethodPost, path, map[string]float64{"score": score}, &res)
	return res, err
}

// Top fetches the highest-ranked entries. A limit of 0 uses the server default.
func (c *Client) Top(ctx context.Context, leaderboard string, limit int) ([]RankedEntry, error) {
	if strings.TrimSpace(leaderboard) == "" {
		return nil, ErrEmptyLeaderboard
	}
	path := fmt.Sprintf("/v1/leaderboard/%s/top", url.PathEscape(leaderboard))
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var resp struct {
		Scores []RankedEntry `json:"scores"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Scores, nil
}

// Page fetches one pagination window of the leaderboard.
func (c *Client) Page(ctx context.Context, leaderboard string, start, limit int) (Page, error) {
	if strings.TrimSpace(leaderboard) == "" {
		return Page{}, ErrEmptyLeaderboard
	}
	path := fmt.Sprintf("/v1/leaderboard/%s/scores?start=%d&limit=%d", url.PathEscape(leaderboard), start, limit)
	var page Page
	err := c.doJSON(ctx, http.MethodGet, path, nil, &page)
	return page, err
}

// Me fetches the authenticated user's own standing.
func (c *Client) Me(ctx context.Context, leaderboard string) (PlayerStanding, error) {
	var standing PlayerStanding
	if err := c.requireAuth(); err != nil {
		return standing, err
	}
	if strings.TrimSpace(leaderboard) == "" {
		return standing, ErrEmptyLeaderboard
	}
	path := fmt.Sprintf("/v1/leaderboard/%s/me", url.PathEscape(leaderboard))
	err := c.doJSON(ctx, http.MethodGet, path, nil, &standing)
	return standing, err
}

// RemoveMe drops the authenticated user's entry from the leaderboard.
func (c *Client) RemoveMe(ctx context.Context, leaderboard string) (bool, error) {
	if err := c.requireAuth(); err != nil {
		return false, err
	}
	if strings.TrimSpace(leaderboard) == "" {
		return false, ErrEmptyLeaderboard
	}
	path := fmt.Sprintf("/v1/leaderboard/%s/me", url.PathEscape(leaderboard))
	var resp struct {
		Removed bool `json:"removed"`
	}
	err := c.doJSON(ctx, http.MethodDelete, path, nil, &resp)
	return resp.Removed, err
}

// ListLeaderboards fetches the catalog.
func (c *Client) ListLeaderboards(ctx context.Context) ([]LeaderboardInfo, error) {
	var all []LeaderboardInfo
	err := c.doJSON(ctx, http.MethodGet, "/v1/leaderboard", nil, &all)
	return all, err
}

// CreateLeaderboard registers a new board name.
func (c *Client) CreateLeaderboard(ctx context.Context, name string) (LeaderboardInfo, error) {
	var info LeaderboardInfo
	err := c.doJSON(ctx, http.MethodPost, "/v1/leaderboard", map[string]string{"name": name}, &info)
	return info, err
}

// DeleteLeaderboard removes a board and all its scores.
func (c *Client) DeleteLeaderboard(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyLeaderboard
	}
	path := "/v1/leaderboard/" + url.PathEscape(name)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// Health probes /healthz.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var hs HealthStatus
	err := c.doJSON(ctx, http.MethodGet, "/healthz", nil, &hs)
	return hs, err
}

// SubscribeEvents connects to the WebSocket stream and emits Event values.
// The returned channel closes when ctx is done or the connection drops.
func (c *Client) SubscribeEvents(ctx context.Context) (<-chan Event, error) {
	if c.wsURL == "" {
		return nil, errors.New("wsURL is not set; ensure baseURL is http/https")
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, c.wsHeaders())
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 32)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				var evt Event
				if err := conn.ReadJSON(&evt); err != nil {
					return
				}
				select {
				case out <- evt:
				default:
					// drop if consumer is slow
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) requireAuth() error {
	if c.token == "" {
		return ErrNotAuthenticated
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, target any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, target)
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) wsHeaders() http.Header {
	h := make(http.Header)
	for k, vals := range c.headers {
		for _, v := range vals {
			h.Add(k, v)
		}
	}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

func deriveWSURL(httpBase string) string {
	u, err := url.Parse(httpBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		// leave as-is for custom schemes
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
