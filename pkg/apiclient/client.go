// Package apiclient provides a REST API client for centroctl.
package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Request headers understood by the centromed API.
const (
	HeaderCentro       = "X-Centro-Id"
	HeaderMappingToken = "X-Mapping-Token"
)

// Client is the centromed API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	centro     string
}

// New creates a new API client. A trailing slash on baseURL is ignored.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithToken returns a new client with the given token.
func (c *Client) WithToken(token string) *Client {
	return &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		token:      token,
		centro:     c.centro,
	}
}

// WithCentro returns a new client that sends selector as X-Centro-Id.
// Creates require it; reads use it to narrow the view.
func (c *Client) WithCentro(selector string) *Client {
	return &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		token:      c.token,
		centro:     selector,
	}
}

// SetToken sets the authentication token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Centro returns the selector sent with every request, if any.
func (c *Client) Centro() string {
	return c.centro
}

// do performs an HTTP request and decodes the response. Extra headers
// are sent as given; the response headers are returned on success.
func (c *Client) do(method, path string, headers map[string]string, body, result any) (http.Header, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.centro != "" {
		req.Header.Set(HeaderCentro, c.centro)
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.Header, nil
}

// get performs a GET request.
func (c *Client) get(path string, result any) error {
	_, err := c.do(http.MethodGet, path, nil, nil, result)
	return err
}

// post performs a POST request.
func (c *Client) post(path string, body, result any) error {
	_, err := c.do(http.MethodPost, path, nil, body, result)
	return err
}
