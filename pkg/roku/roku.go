// Package roku is a client for the Roku External Control Protocol (ECP),
// the plain HTTP interface every Roku device exposes on port 8060.
package roku

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

// ECPPort is the fixed port Roku devices listen on for ECP requests.
const ECPPort = 8060

// App is one installed channel on a Roku device.
type App struct {
	ID   string `xml:"id,attr"`
	Name string `xml:",chardata"`
}

// Client talks to one Roku device.
type Client struct {
	base  string
	httpc *http.Client
}

// NewClient creates a Client for the device at addr. addr may be a bare host
// or host:port; the ECP port is assumed when none is given.
func NewClient(addr string) *Client {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(ECPPort))
	}
	return &Client{
		base:  "http://" + addr,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

// Apps lists the channels installed on the device.
func (c *Client) Apps(ctx context.Context) ([]App, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/query/apps", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query apps: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query apps: unexpected status %s", resp.Status)
	}

	var list struct {
		XMLName xml.Name `xml:"apps"`
		Apps    []App    `xml:"app"`
	}
	if err := xml.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode apps: %w", err)
	}
	return list.Apps, nil
}

// Launch starts the channel with the given app ID.
func (c *Client) Launch(ctx context.Context, appID string) error {
	return c.post(ctx, "/launch/"+appID)
}

// Home navigates the device to the home screen.
func (c *Client) Home(ctx context.Context) error {
	return c.post(ctx, "/keypress/Home")
}

func (c *Client) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("ecp %s: %w", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("ecp %s: unexpected status %s", path, resp.Status)
	}
	return nil
}
