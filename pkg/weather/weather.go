// Package weather resolves the current temperature for wherever the machine
// is: public IP lookup, IP geolocation to a zip code, then a WeatherStack
// current-conditions query.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client chains the three lookup services.
type Client struct {
	ipURL      string
	zipURL     string
	weatherURL string
	accessKey  string
	httpc      *http.Client
}

// NewClient creates a Client. ipURL must return {"ip": ...}; zipURL is an
// ip-api.com style endpoint queried as {zipURL}/{ip}; weatherURL is a
// WeatherStack-compatible base queried at /current with accessKey.
func NewClient(ipURL, zipURL, weatherURL, accessKey string) *Client {
	return &Client{
		ipURL:      ipURL,
		zipURL:     zipURL,
		weatherURL: weatherURL,
		accessKey:  accessKey,
		httpc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Report is the outcome of a full weather lookup.
type Report struct {
	IP           string
	ZipCode      string
	Location     string
	TemperatureF int
}

// Lookup runs the full pipeline: public IP, zip code, temperature.
func (c *Client) Lookup(ctx context.Context) (Report, error) {
	ip, err := c.PublicIP(ctx)
	if err != nil {
		return Report{}, err
	}
	zip, err := c.ZipCode(ctx, ip)
	if err != nil {
		return Report{}, err
	}
	rep, err := c.Current(ctx, zip)
	if err != nil {
		return Report{}, err
	}
	rep.IP = ip
	return rep, nil
}

// PublicIP returns the machine's public IP address.
func (c *Client) PublicIP(ctx context.Context) (string, error) {
	var body struct {
		IP string `json:"ip"`
	}
	if err := c.getJSON(ctx, c.ipURL, &body); err != nil {
		return "", fmt.Errorf("public ip: %w", err)
	}
	if body.IP == "" {
		return "", fmt.Errorf("public ip: no address in response")
	}
	return body.IP, nil
}

// ZipCode geolocates an IP address to a zip code.
func (c *Client) ZipCode(ctx context.Context, ip string) (string, error) {
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Zip     string `json:"zip"`
	}
	if err := c.getJSON(ctx, c.zipURL+"/"+ip, &body); err != nil {
		return "", fmt.Errorf("zip code: %w", err)
	}
	if body.Status == "fail" {
		msg := body.Message
		if msg == "" {
			msg = "unknown error"
		}
		return "", fmt.Errorf("zip code: geolocation failed: %s", msg)
	}
	if body.Zip == "" {
		return "", fmt.Errorf("zip code: no zip in response")
	}
	return body.Zip, nil
}

// Current fetches current conditions for a zip code, in Fahrenheit.
func (c *Client) Current(ctx context.Context, zip string) (Report, error) {
	q := url.Values{}
	q.Set("access_key", c.accessKey)
	q.Set("query", zip)
	q.Set("units", "f")

	var body struct {
		Error *struct {
			Code int    `json:"code"`
			Info string `json:"info"`
		} `json:"error"`
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
		Current struct {
			Temperature int `json:"temperature"`
		} `json:"current"`
	}
	if err := c.getJSON(ctx, c.weatherURL+"/current?"+q.Encode(), &body); err != nil {
		return Report{}, fmt.Errorf("current weather: %w", err)
	}
	if body.Error != nil {
		info := body.Error.Info
		if info == "" {
			info = "unknown error"
		}
		return Report{}, fmt.Errorf("current weather: api error: %s", info)
	}
	return Report{
		ZipCode:      zip,
		Location:     body.Location.Name,
		TemperatureF: body.Current.Temperature,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
