// Package smartthings lists devices registered with a SmartThings account.
package smartthings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the public SmartThings API endpoint.
const DefaultBaseURL = "https://api.smartthings.com"

// Device is one registered SmartThings device. Capabilities are flattened
// across all of the device's components.
type Device struct {
	DeviceID     string
	Name         string
	Label        string
	Capabilities []string
}

// Client is an authenticated SmartThings API client.
type Client struct {
	base  string
	token string
	httpc *http.Client
}

// NewClient creates a Client using a personal access token. baseURL defaults
// to DefaultBaseURL when empty.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		base:  baseURL,
		token: token,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

type deviceList struct {
	Items []struct {
		DeviceID   string `json:"deviceId"`
		Name       string `json:"name"`
		Label      string `json:"label"`
		Components []struct {
			Capabilities []struct {
				ID string `json:"id"`
			} `json:"capabilities"`
		} `json:"components"`
	} `json:"items"`
}

// Devices returns every device visible to the token.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/devices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list devices: unexpected status %s", resp.Status)
	}

	var list deviceList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode devices: %w", err)
	}

	devices := make([]Device, 0, len(list.Items))
	for _, item := range list.Items {
		d := Device{
			DeviceID: item.DeviceID,
			Name:     item.Name,
			Label:    item.Label,
		}
		for _, comp := range item.Components {
			for _, capability := range comp.Capabilities {
				d.Capabilities = append(d.Capabilities, capability.ID)
			}
		}
		devices = append(devices, d)
	}
	return devices, nil
}
