package novelai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"image_bot/entities"
)

type Client struct {
	token  token
	host   url.URL
	client *http.Client
}

type Option func(*Client)

// WithHost points the client at another endpoint, e.g. a test server.
func WithHost(host string) Option {
	return func(c *Client) {
		u, err := url.Parse(host)
		if err != nil {
			return
		}
		c.host = *u
		if c.host.Path == "" || c.host.Path == "/" {
			c.host.Path = "/ai/generate-image"
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func NewNovelAIClient(key string, opts ...Option) *Client {
	c := &Client{
		token: token(key),
		host: url.URL{
			Scheme: "https",
			Host:   "image.novelai.net",
			Path:   "/ai/generate-image",
		},
		client: &http.Client{Timeout: 3 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Inference sends the request and returns the first generated PNG.
func (c *Client) Inference(ctx context.Context, request *entities.NovelAIRequest) (*entities.NovelAIResponse, error) {
	if request == nil {
		return nil, errors.New("request is nil")
	}

	body, err := request.Reader()
	if err != nil {
		// rejected before sending, reported the way the endpoint reports a bad request
		return nil, &Error{Status: http.StatusBadRequest, Message: err.Error()}
	}

	files, err := c.POST(ctx, body)
	if err != nil {
		return nil, err
	}

	response := &entities.NovelAIResponse{Images: files}
	if seed, err := ExtractSeed(files[0]); err == nil {
		response.Seed = seed
	} else {
		response.Seed = request.Parameters.Seed
	}
	return response, nil
}

func (c *Client) POST(ctx context.Context, body io.Reader) ([][]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host.String(), body)
	if err != nil {
		return nil, err
	}

	request.Header.Set("Content-Type", "application/json; charset=UTF-8")
	c.token.setAuth(request.Header)

	response, err := c.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, newError(response)
	}

	contentType := response.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/zip"),
		strings.HasPrefix(contentType, "application/x-zip-compressed"),
		strings.HasPrefix(contentType, "binary/octet-stream"),
		strings.HasPrefix(contentType, "application/octet-stream"):
		return Unzip(response.Body)
	default:
		return nil, fmt.Errorf("unexpected content type: %s", contentType)
	}
}

// Error is a non-200 answer from the image endpoint.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("novelai: unexpected status code: %d", e.Status)
	}
	return fmt.Sprintf("novelai: unexpected status code: %d: %s", e.Status, e.Message)
}

func newError(response *http.Response) *Error {
	e := &Error{Status: response.StatusCode}

	body, _ := io.ReadAll(io.LimitReader(response.Body, 64<<10))
	if len(body) == 0 {
		return e
	}

	var payload struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		e.Message = payload.Message
		return e
	}
	e.Message = strings.TrimSpace(string(body))
	return e
}

type token string

func (t token) String() string {
	return fmt.Sprintf("Bearer %s", string(t))
}

func (t token) setAuth(header http.Header) {
	header.Set("Authorization", t.String())
}
