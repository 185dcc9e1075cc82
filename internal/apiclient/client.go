// Package apiclient talks to the blogging backend REST API on behalf of one
// caller. A Client carries that caller's cookie and bearer token and must not
// be shared with another caller; build a new one per call site with
// Factory.New.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Factory holds the process-wide, credential-free settings. The underlying
// http.Client is shared for connection reuse; headers are not.
type Factory struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewFactory(baseURL string, timeout time.Duration) *Factory {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Factory{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// New builds a client for one caller. Empty arguments leave the matching
// header off the request.
func (f *Factory) New(cookie string, bearerToken string) *Client {
	httpClient := f.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(f.BaseURL, "/"),
		httpClient: httpClient,
		cookie:     cookie,
		token:      bearerToken,
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cookie     string
	token      string
}

func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	target := path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, target, nil, "", out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body any, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	if body == nil {
		return c.do(ctx, method, path, nil, "", out)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	return c.do(ctx, method, path, bytes.NewReader(payload), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header = c.headers()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(resp.StatusCode, respBody)
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// headers builds a fresh header set for every request so nothing set for an
// earlier request or another client can leak into this one.
func (c *Client) headers() http.Header {
	h := make(http.Header)
	h.Set("Accept", "application/json")
	if c.cookie != "" {
		h.Set("Cookie", c.cookie)
	}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}
