// Package auth is the HTTP client for the token-issuing server.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

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

var _ service.AuthClient = (*Client)(nil)

type passwordRequest struct {
	Password string `json:"Password"`
}

type updateDataResponse struct {
	Token         string `json:"token"`
	DataPartition string `json:"DataPartition"`
	DataRow       string `json:"DataRow"`
	TokenExpiry   string `json:"TokenExpiry"`
}

// GetUpdateData exchanges credentials for an update-capable token together
// with the data entity coordinates it is bound to.
func (c *Client) GetUpdateData(ctx context.Context, userID, password string) (service.UpdateData, error) {
	body, err := json.Marshal(passwordRequest{Password: password})
	if err != nil {
		return service.UpdateData{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := c.serverURL.JoinPath("GetUpdateData", userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return service.UpdateData{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return service.UpdateData{}, fmt.Errorf("auth server request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return service.UpdateData{}, statusError(resp.StatusCode)
	}

	var ur updateDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return service.UpdateData{}, fmt.Errorf("failed to decode response: %w", err)
	}

	data := service.UpdateData{
		Token:     ur.Token,
		Partition: ur.DataPartition,
		Row:       ur.DataRow,
	}
	if ur.TokenExpiry != "" {
		expiry, err := time.Parse(time.RFC3339, ur.TokenExpiry)
		if err != nil {
			return service.UpdateData{}, fmt.Errorf("failed to parse token expiry: %w", err)
		}
		data.ExpiresAt = expiry
	}
	return data, nil
}

func statusError(code int) error {
	switch code {
	case http.StatusBadRequest:
		return model.ErrBadRequest
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusForbidden:
		return model.ErrForbidden
	default:
		return fmt.Errorf("auth server returned status %d", code)
	}
}
