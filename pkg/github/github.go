// Package github is a minimal GitHub REST v3 client covering repository
// lookup and creation.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Repo holds the repository fields the CLI reports.
type Repo struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stargazers  int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	Private     bool   `json:"private"`
	HTMLURL     string `json:"html_url"`
}

// CreateRepoRequest describes a repository to create for the token's user.
type CreateRepoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Private     bool   `json:"private"`
}

// Client is an authenticated GitHub API client.
type Client struct {
	base  string
	token string
	httpc *http.Client
}

// NewClient creates a Client. baseURL defaults to DefaultBaseURL when empty.
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

// RepoInfo fetches metadata for owner/repo.
func (c *Client) RepoInfo(ctx context.Context, owner, repo string) (Repo, error) {
	target := fmt.Sprintf("%s/repos/%s/%s", c.base, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Repo{}, err
	}
	c.setHeaders(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Repo{}, fmt.Errorf("repo info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Repo{}, fmt.Errorf("repo info %s/%s: unexpected status %s", owner, repo, resp.Status)
	}

	var r Repo
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Repo{}, fmt.Errorf("decode repo info: %w", err)
	}
	return r, nil
}

// CreateRepo creates a repository for the authenticated user.
func (c *Client) CreateRepo(ctx context.Context, create CreateRepoRequest) (Repo, error) {
	if create.Name == "" {
		return Repo{}, fmt.Errorf("create repo: name is required")
	}

	body, err := json.Marshal(create)
	if err != nil {
		return Repo{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/user/repos", bytes.NewReader(body))
	if err != nil {
		return Repo{}, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Repo{}, fmt.Errorf("create repo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return Repo{}, fmt.Errorf("create repo %q: unexpected status %s", create.Name, resp.Status)
	}

	var r Repo
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Repo{}, fmt.Errorf("decode created repo: %w", err)
	}
	return r, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}
