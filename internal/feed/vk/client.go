package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAPIBaseURL = "https://api.vk.com/method"
	wallPageSize      = 100
	// VK allows three requests per second per token.
	requestInterval = 350 * time.Millisecond
)

// Post is one wall post reduced to what the import needs.
type Post struct {
	ID   int64
	Date time.Time
	Text string
}

// Client calls the VK API on behalf of one authenticated user.
type Client struct {
	accessToken string
	apiVersion  string
	baseURL     string
	interval    time.Duration
	logger      *zap.Logger
	httpClient  *http.Client
}

type vkResponse struct {
	Response json.RawMessage `json:"response"`
	Error    *vkError        `json:"error"`
}

type vkError struct {
	ErrorCode int    `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

func (e *vkError) Error() string {
	return fmt.Sprintf("VK API error %d: %s", e.ErrorCode, e.ErrorMsg)
}

type vkWallGetResponse struct {
	Count int      `json:"count"`
	Items []vkPost `json:"items"`
}

type vkPost struct {
	ID   int64  `json:"id"`
	Date int64  `json:"date"`
	Text string `json:"text"`
}

// ClientOption tweaks a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRequestInterval overrides the pause between paged requests.
func WithRequestInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.interval = d }
}

// NewClient creates a VK API client for accessToken.
func NewClient(accessToken, apiVersion string, logger *zap.Logger, opts ...ClientOption) (*Client, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("VK access token is required")
	}
	c := &Client{
		accessToken: accessToken,
		apiVersion:  apiVersion,
		baseURL:     defaultAPIBaseURL,
		interval:    requestInterval,
		logger:      logger,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// makeAPIRequest performs a VK API request
func (c *Client) makeAPIRequest(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	// Add common parameters
	params.Set("access_token", c.accessToken)
	params.Set("v", c.apiVersion)

	// Build URL
	apiURL := fmt.Sprintf("%s/%s?%s", c.baseURL, method, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Make request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("VK API returned HTTP %d", resp.StatusCode)
	}

	// Read response
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var vkResp vkResponse
	if err := json.Unmarshal(body, &vkResp); err != nil {
		return nil, fmt.Errorf("failed to parse VK response: %w", err)
	}

	// Check for API error
	if vkResp.Error != nil {
		return nil, vkResp.Error
	}

	return vkResp.Response, nil
}

// WallPosts returns up to limit of the newest posts on ownerID's wall.
func (c *Client) WallPosts(ctx context.Context, ownerID int64, limit int) ([]Post, error) {
	var posts []Post

	for offset := 0; len(posts) < limit; {
		count := min(wallPageSize, limit-len(posts))

		params := url.Values{}
		params.Set("owner_id", strconv.FormatInt(ownerID, 10))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("count", strconv.Itoa(count))
		params.Set("filter", "owner")

		respData, err := c.makeAPIRequest(ctx, "wall.get", params)
		if err != nil {
			return nil, fmt.Errorf("failed to get wall posts: %w", err)
		}

		var page vkWallGetResponse
		if err := json.Unmarshal(respData, &page); err != nil {
			return nil, fmt.Errorf("failed to parse wall.get response: %w", err)
		}

		for _, item := range page.Items {
			posts = append(posts, Post{
				ID:   item.ID,
				Date: time.Unix(item.Date, 0),
				Text: item.Text,
			})
		}

		// Stop on the last page
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.Count {
			break
		}

		// Rate limiting
		if c.interval > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.interval):
			}
		}
	}

	c.logger.Info("Fetched VK wall posts", zap.Int64("owner_id", ownerID), zap.Int("count", len(posts)))
	return posts, nil
}
