// Package jsonplaceholder implements service.PostSource over a JSON REST
// endpoint shaped like https://jsonplaceholder.typicode.com/posts.
package jsonplaceholder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"taskflow/internal/config"
	"taskflow/internal/service"
)

// maxErrorBody limits how much of a failed response is drained.
const maxErrorBody = 4 << 10

// Client fetches posts with a single GET.
type Client struct {
	httpClient *http.Client
	url        string
}

// New creates a client for cfg.PostsURL. When cfg.APIToken is set, requests
// carry it as a bearer token.
//
// The client has no timeout of its own; callers bound requests through ctx.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	url := cfg.PostsURL
	if url == "" {
		url = config.DefaultPostsURL
	}

	httpClient := &http.Client{}
	if cfg.APIToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	return NewWithHTTPClient(httpClient, url), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(httpClient *http.Client, url string) *Client {
	return &Client{httpClient: httpClient, url: url}
}

// URL returns the endpoint.
func (c *Client) URL() string { return c.url }

// FetchPosts implements service.PostSource.
func (c *Client) FetchPosts(ctx context.Context) ([]service.Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &service.FetchError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &service.FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil, &service.FetchError{StatusCode: resp.StatusCode}
	}

	var posts []service.Post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, &service.FetchError{Err: fmt.Errorf("invalid response body: %w", err)}
	}
	if posts == nil {
		posts = []service.Post{}
	}
	return posts, nil
}

var _ service.PostSource = (*Client)(nil)
