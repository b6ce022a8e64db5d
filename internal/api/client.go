// Package api is the REST client for the opswatch backend. Resource methods
// are thin typed wrappers over a shared request path that injects the bearer
// token and tenant header and retries exactly once on 401 after refreshing
// the access token.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/opswatch/console/internal/auth"
)

// Client makes REST calls against one backend.
type Client struct {
	baseURL string
	auth    *auth.Context
	http    *http.Client
	logger  *log.Logger
}

// New creates a client targeting the given base URL (e.g.
// "http://127.0.0.1:8000"). The auth context is shared with the realtime
// components.
func New(baseURL string, authCtx *auth.Context, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: baseURL,
		auth:    authCtx,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger.With("component", "api"),
	}
}

func (c *Client) get(path string, out any) error {
	return c.do(http.MethodGet, path, nil, out)
}

func (c *Client) post(path string, body, out any) error {
	return c.do(http.MethodPost, path, body, out)
}

func (c *Client) put(path string, body, out any) error {
	return c.do(http.MethodPut, path, body, out)
}

func (c *Client) delete(path string) error {
	return c.do(http.MethodDelete, path, nil, nil)
}

func (c *Client) do(method, path string, body, out any) error {
	resp, err := c.send(method, path, body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized && c.auth.RefreshToken() != "" {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if err := c.refreshToken(); err != nil {
			c.auth.Logout()
			return fmt.Errorf("%s %s: token refresh failed: %w", method, path, err)
		}
		resp, err = c.send(method, path, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) send(method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+"/api"+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.auth.Token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
	if id := c.auth.CompanyID(); id != 0 {
		req.Header.Set("X-Company-Id", strconv.Itoa(id))
	}
	return c.http.Do(req)
}

// refreshToken trades the refresh token for a new access token. It bypasses
// do to avoid recursing through the 401 path.
func (c *Client) refreshToken() error {
	data, err := json.Marshal(map[string]string{"refresh_token": c.auth.RefreshToken()})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/auth/refresh", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("refresh: %d", resp.StatusCode)
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	c.logger.Debug("access token refreshed")
	c.auth.SetToken(out.AccessToken)
	return nil
}
