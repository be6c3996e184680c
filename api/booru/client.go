package booru

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"image_bot/entities"
)

const (
	DefaultHost = "api.rule34.xxx"
	PostHost    = "rule34.xxx"

	userAgent = "image_bot/v1"
	postLimit = 1000
)

type Client struct {
	host   url.URL
	client *http.Client
}

type Option func(*Client)

// WithHost points the client at another dapi endpoint, e.g. a test server.
func WithHost(host string) Option {
	return func(c *Client) {
		u, err := url.Parse(host)
		if err != nil {
			return
		}
		c.host = *u
		if c.host.Path == "" || c.host.Path == "/" {
			c.host.Path = "/index.php"
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		host: url.URL{
			Scheme: "https",
			Host:   DefaultHost,
			Path:   "/index.php",
		},
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Posts searches for posts matching the already escaped tags, joined with '+'.
func (c *Client) Posts(ctx context.Context, tags string) ([]entities.Post, error) {
	query := fmt.Sprintf("page=dapi&s=post&q=index&json=1&limit=%d&tags=%s", postLimit, tags)

	var posts []entities.Post
	if err := c.get(ctx, query, "post", &posts); err != nil {
		return nil, fmt.Errorf("error searching posts: %w", err)
	}
	return posts, nil
}

// Tags returns the tags containing the already escaped pattern, most used first.
func (c *Client) Tags(ctx context.Context, pattern string) ([]entities.Tag, error) {
	query := "page=dapi&s=tag&q=index&json=1&sort=desc&order_by=index_count&name_pattern=%25" + pattern + "%25"

	var tags []entities.Tag
	if err := c.get(ctx, query, "tag", &tags); err != nil {
		return nil, fmt.Errorf("error searching tags: %w", err)
	}
	return tags, nil
}

// get decodes either a bare JSON array or an object holding the array under key.
// An empty body leaves out untouched.
func (c *Client) get(ctx context.Context, rawQuery, key string, out any) error {
	u := c.host
	u.RawQuery = rawQuery

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	request.Header.Set("User-Agent", userAgent)

	response, err := c.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return &StatusError{Status: response.StatusCode}
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}

	switch body[0] {
	case '[':
		return json.Unmarshal(body, out)
	case '{':
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return err
		}
		inner, ok := wrapped[key]
		if !ok {
			return nil
		}
		return json.Unmarshal(inner, out)
	default:
		// bad queries get an xml error document
		return ErrUnexpectedBody
	}
}

var ErrUnexpectedBody = errors.New("unexpected response body")

type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("booru: unexpected status code: %d", e.Status)
}
