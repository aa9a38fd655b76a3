// Package push is the HTTP client for the fan-out server.
package push

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

var _ service.PushClient = (*Client)(nil)

type pushRequest struct {
	Friends string `json:"Friends"`
}

// PushStatus asks the push server to append status to every friend in the
// serialized list. Per-friend outcomes stay on the push server; only
// transport and top-level failures surface here.
func (c *Client) PushStatus(ctx context.Context, partition, row, status, friendList string) error {
	body, err := json.Marshal(pushRequest{Friends: friendList})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := c.serverURL.JoinPath("PushStatus", partition, row, status)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("push server request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusBadRequest {
			return model.ErrBadRequest
		}
		return fmt.Errorf("push server returned status %d", resp.StatusCode)
	}
	return nil
}
