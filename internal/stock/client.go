package stock

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client represents HTTP client for stock-restoration requests
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates new Client instance
func NewClient(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: baseURL,
	}
}

// RestoreStock asks the inventory service to return reserved stock of order.
// The call is idempotent on the inventory side.
func (c *Client) RestoreStock(ctx context.Context, orderID uint64) error {
	// POST /api/stock/restore/{orderID}
	url, err := url.JoinPath(c.baseURL, "api", "stock", "restore", strconv.FormatUint(orderID, 10))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("restore stock for order %d: unexpected status %d", orderID, resp.StatusCode)
	}

	return nil
}
