package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-bridge/sessions"
)

const (
	createSessionMethod  = "com.atproto.server.createSession"
	refreshSessionMethod = "com.atproto.server.refreshSession"

	maxResponseBytes = 1 << 20
)

// Client is an HTTP Provider for XRPC session endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Provider = (*Client)(nil)

type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout of the default http.Client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

type createSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) CreateSession(ctx context.Context, identifier, secret string) (*sessions.Session, error) {
	body, err := json.Marshal(createSessionRequest{Identifier: identifier, Password: secret})
	if err != nil {
		return nil, fmt.Errorf("[CreateSession] %w: %v", ErrUnavailable, err)
	}
	return c.call(ctx, createSessionMethod, "", body)
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*sessions.Session, error) {
	return c.call(ctx, refreshSessionMethod, refreshToken, nil)
}

func (c *Client) call(ctx context.Context, method, bearerToken string, body []byte) (*sessions.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/xrpc/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("[%s] %w: %v", method, ErrUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[%s] %w: %v", method, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("[%s] %w: reading response: %v", method, ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var xe xrpcError
		_ = json.Unmarshal(payload, &xe)
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return nil, fmt.Errorf("[%s] %w: %d %s %s", method, ErrInvalidCredentials, resp.StatusCode, xe.Error, xe.Message)
		default:
			return nil, fmt.Errorf("[%s] %w: %d %s %s", method, ErrUnavailable, resp.StatusCode, xe.Error, xe.Message)
		}
	}

	session, err := sessions.ParseSession(string(payload))
	if err != nil {
		return nil, fmt.Errorf("[%s] %w: %v", method, ErrUnavailable, err)
	}
	if session.Did == "" {
		return nil, fmt.Errorf("[%s] %w: session without did", method, ErrUnavailable)
	}
	return session, nil
}
