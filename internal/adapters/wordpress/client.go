// Package wordpress reads listings from a WordPress site, over the REST API
// or from a WXR export file.
package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"satn_chatbot/internal/adapters/httpretry"
)

const PerPage = 50

type Client struct {
	base string
	user string
	pass string
	http *httpretry.Client
}

// New targets a collection endpoint such as https://site/wp-json/wp/v2/hp_listing.
func New(base, user, pass string, rps int) (*Client, error) {
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("WP_API_URL: %w", err)
	}
	return &Client{base: base, user: user, pass: pass, http: httpretry.New("wordpress", rps, 30*time.Second)}, nil
}

func (c *Client) pageURL(page, perPage int) string {
	u, _ := url.Parse(c.base)
	q := u.Query()
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("_embed", "true")
	q.Set("status", "publish")
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) fetch(ctx context.Context, page, perPage int) ([]map[string]any, int, error) {
	target := c.pageURL(page, perPage)
	resp, err := c.http.Do(ctx, "listings", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		if c.user != "" {
			req.SetBasicAuth(c.user, c.pass)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "satn-etl/1.0")
		return req, nil
	})
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	total, _ := strconv.Atoi(resp.Header.Get("X-WP-TotalPages"))
	if total < 1 {
		total = 1
	}
	var out []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, 0, fmt.Errorf("decode page %d: %w", page, err)
	}
	return out, total, nil
}

// ListListings returns page (1-based) of published posts and the total page count.
func (c *Client) ListListings(ctx context.Context, page int) ([]map[string]any, int, error) {
	return c.fetch(ctx, page, PerPage)
}

// Ping checks the endpoint answers and the credentials are accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.fetch(ctx, 1, 1)
	return err
}
