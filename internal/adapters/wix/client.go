// Package wix contains the HTTP adapter for the Wix content API.
package wix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/example/wixport/internal/ports/secondary"
)

// DefaultBaseURL is the production Wix API endpoint.
const DefaultBaseURL = "https://www.wixapis.com"

const (
	// metadataTimeout bounds category and tag requests.
	metadataTimeout = 30 * time.Second
	// postsTimeout is larger because rich-content payloads are heavy.
	postsTimeout = 60 * time.Second
	// maxPageLimit is the provider's per-request maximum for posts.
	maxPageLimit = 100
)

// Client implements secondary.BlogClient against the Wix content API.
// The access token is cached in memory until its declared expiry and
// refreshed transparently.
type Client struct {
	baseURL    string
	httpClient *http.Client

	clientID    string
	token       string
	tokenExpiry time.Time

	now func() time.Time
}

// NewClient creates a client against the production Wix API.
func NewClient() *Client {
	return NewClientWithBaseURL(DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against the given endpoint.
// This variant allows testing against a local server.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		now:        time.Now,
	}
}

type authRequest struct {
	ClientID  string `json:"clientId"`
	GrantType string `json:"grantType"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate obtains an access token for the given application client
// id and caches it until the provider's declared expiry.
func (c *Client) Authenticate(ctx context.Context, clientID string) error {
	if clientID == "" {
		return &AuthError{Reason: "no client id configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	body, err := json.Marshal(authRequest{ClientID: clientID, GrantType: "anonymous"})
	if err != nil {
		return fmt.Errorf("failed to encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth2/token", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}

	var auth authResponse
	if err := json.Unmarshal(respBody, &auth); err != nil || auth.AccessToken == "" {
		return &AuthError{Reason: "no access token received from Wix API"}
	}

	c.clientID = clientID
	c.token = auth.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(auth.ExpiresIn) * time.Second)

	return nil
}

// ensureToken refreshes the cached token when missing or expired.
func (c *Client) ensureToken(ctx context.Context) error {
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return nil
	}
	if c.clientID == "" {
		return &AuthError{Reason: "no access token available, authenticate first"}
	}
	return c.Authenticate(ctx, c.clientID)
}

// FetchCategories fetches one page of blog categories.
func (c *Client) FetchCategories(ctx context.Context, offset, limit int) (*secondary.CategoryPage, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("fieldsets", "URL")
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/blog/v3/categories?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build categories request: %w", err)
	}

	page := &secondary.CategoryPage{}
	if err := c.do(req, "categories", page); err != nil {
		return nil, err
	}

	return page, nil
}

type pagingBlock struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// FetchTags fetches one page of blog tags.
func (c *Client) FetchTags(ctx context.Context, offset, limit int) (*secondary.TagPage, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	body := map[string]any{
		"paging": pagingBlock{Offset: offset, Limit: limit},
	}

	req, err := c.newJSONRequest(ctx, c.baseURL+"/blog/v2/tags/query", body)
	if err != nil {
		return nil, fmt.Errorf("failed to build tags request: %w", err)
	}

	page := &secondary.TagPage{}
	if err := c.do(req, "tags", page); err != nil {
		return nil, err
	}

	return page, nil
}

// FetchPosts fetches one page of blog posts. Rich content is requested
// explicitly and results are sorted by first-published-date descending
// for deterministic paging.
func (c *Client) FetchPosts(ctx context.Context, offset, limit int) (*secondary.PostPage, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, postsTimeout)
	defer cancel()

	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	body := map[string]any{
		"fieldsToInclude": []string{"RICH_CONTENT"},
		"paging":          pagingBlock{Offset: offset, Limit: limit},
		"sort": []map[string]string{
			{"fieldName": "firstPublishedDate", "order": "DESC"},
		},
	}

	req, err := c.newJSONRequest(ctx, c.baseURL+"/blog/v3/posts/query", body)
	if err != nil {
		return nil, fmt.Errorf("failed to build posts request: %w", err)
	}

	page := &secondary.PostPage{}
	if err := c.do(req, "posts", page); err != nil {
		return nil, err
	}

	return page, nil
}

func (c *Client) newJSONRequest(ctx context.Context, url string, body any) (*http.Request, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// do executes an authenticated request and decodes a 200 response into out.
func (c *Client) do(req *http.Request, op string, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}

	return nil
}

var _ secondary.BlogClient = (*Client)(nil)
