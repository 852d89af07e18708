package artifactory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
)

type Client struct {
	baseURL    string
	auth       authn.Authenticator
	httpClient *http.Client

	// Services
	Repositories RepositoriesService
	Tags         TagsService
}

// APIError represents a non-200 response from the Artifactory API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

// Error returns a string representation of the APIError.
func (e *APIError) Error() string {
	return fmt.Sprintf("Artifactory API error (%d): %s -- %s", e.StatusCode, e.Message, string(e.Body))
}

// StatusCode extracts the HTTP status from err, or 0 if err is not an *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Option func(*Client)

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
// It works on a copy, so a client passed to WithHTTPClient is left as is.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithHTTPClient swaps the underlying HTTP client (proxies, custom TLS).
// Apply it before WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client for the Artifactory instance at baseURL,
// authenticating every request with HTTP basic auth.
func NewClient(baseURL string, creds authn.Basic, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.New("invalid Artifactory base URL: " + err.Error())
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, errors.New("Artifactory username and password must be set")
	}

	c := &Client{
		baseURL:    baseURL,
		auth:       &creds,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	// Initialize services
	c.Repositories = &repositoriesService{client: c}
	c.Tags = &tagsService{client: c}

	return c, nil
}

// BaseURL returns the normalized base URL (no trailing slash).
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DoRequest sends an HTTP request to the Artifactory API and returns the response body.
// The 'path' is appended to the base URL verbatim (e.g., "/api/docker/docker-local/v2/_catalog").
// Anything other than 200 OK comes back as *APIError.
func (c *Client) DoRequest(ctx context.Context, method, path string) ([]byte, error) {
	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request [%s %s]: %w", method, fullURL, err)
	}

	cfg, err := c.auth.Authorization()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials: %w", err)
	}
	req.SetBasicAuth(cfg.Username, cfg.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed [%s %s]: %w", method, fullURL, err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       respData,
		}
	}

	return respData, nil
}

// dockerV2Path builds the Registry v2 path under an Artifactory Docker repository.
func dockerV2Path(repoPath, rest string) string {
	return fmt.Sprintf("/api/docker/%s/v2/%s", strings.Trim(repoPath, "/"), rest)
}
