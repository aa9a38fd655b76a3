// Package table is the HTTP client for the table server. One client serves
// both the administrative and the token-gated paths.
package table

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/statushub/statushub/internal/model"
	"github.com/statushub/statushub/internal/service"
)

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	client    httpClient
	serverURL url.URL
}

func NewClient(client httpClient, serverURL url.URL) *Client {
	return &Client{
		client:    client,
		serverURL: serverURL,
	}
}

var (
	_ service.TableClient      = (*Client)(nil)
	_ service.AdminTableClient = (*Client)(nil)
)

// ReadEntityAdmin retrieves one entity's properties without a token.
func (c *Client) ReadEntityAdmin(ctx context.Context, table, partition, row string) (model.Properties, error) {
	reqURL := c.serverURL.JoinPath("ReadEntityAdmin", table, partition, row)
	return c.readProperties(ctx, reqURL)
}

// ReadEntityAuth retrieves one entity's properties through the scoped access
// gateway.
func (c *Client) ReadEntityAuth(ctx context.Context, table, token, partition, row string) (model.Properties, error) {
	reqURL := c.serverURL.JoinPath("ReadEntityAuth", table, token, partition, row)
	return c.readProperties(ctx, reqURL)
}

// UpdateEntityAdmin merges props into an entity without a token, creating it
// if absent.
func (c *Client) UpdateEntityAdmin(ctx context.Context, table, partition, row string, props model.Properties) error {
	reqURL := c.serverURL.JoinPath("UpdateEntityAdmin", table, partition, row)
	return c.putProperties(ctx, reqURL, props)
}

// UpdateEntityAuth merges props into an entity through the scoped access
// gateway.
func (c *Client) UpdateEntityAuth(ctx context.Context, table, token, partition, row string, props model.Properties) error {
	reqURL := c.serverURL.JoinPath("UpdateEntityAuth", table, token, partition, row)
	return c.putProperties(ctx, reqURL, props)
}

func (c *Client) readProperties(ctx context.Context, reqURL *url.URL) (model.Properties, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("table server request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	var props model.Properties
	if err := json.NewDecoder(resp.Body).Decode(&props); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return props, nil
}

func (c *Client) putProperties(ctx context.Context, reqURL *url.URL, props model.Properties) error {
	body, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("table server request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode)
	}
	return nil
}

func statusError(code int) error {
	switch code {
	case http.StatusBadRequest:
		return model.ErrBadRequest
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusForbidden:
		return model.ErrForbidden
	case http.StatusNotImplemented:
		return model.ErrNotImplemented
	default:
		return fmt.Errorf("table server returned status %d", code)
	}
}
