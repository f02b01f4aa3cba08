package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/notionblog/internal/config"
	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
	"git.home.luguber.info/inful/notionblog/internal/logfields"
	"git.home.luguber.info/inful/notionblog/internal/metrics"
	"git.home.luguber.info/inful/notionblog/internal/retry"
)

const (
	DefaultAPIURL  = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"
	MaxPageSize    = 100

	userAgent = "notionblog/1.0"
)

// Client issues authenticated requests against the content API. Each call is
// wrapped in the retry policy; client errors (4xx) are never retried.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	version    string
	pageSize   int
	policy     retry.Policy
	recorder   metrics.Recorder
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (timeouts, test transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPolicy replaces the retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) { c.recorder = metrics.OrNoop(r) }
}

// NewClient builds a Client from configuration.
func NewClient(cfg config.NotionConfig, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		apiURL:     cfg.APIURL,
		token:      cfg.Token,
		version:    cfg.Version,
		pageSize:   cfg.PageSize,
		policy:     retry.DefaultPolicy(),
		recorder:   metrics.NoopRecorder{},
	}
	if c.apiURL == "" {
		c.apiURL = DefaultAPIURL
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.pageSize <= 0 || c.pageSize > MaxPageSize {
		c.pageSize = MaxPageSize
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryDatabase returns one page of database rows matching q.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, q DatabaseQuery, cursor string) (*List[Page], error) {
	q.StartCursor = cursor
	q.PageSize = c.pageSize

	var out List[Page]
	endpoint := "databases/" + url.PathEscape(databaseID) + "/query"
	if err := c.call(ctx, "databases.query", http.MethodPost, endpoint, nil, q, &out); err != nil {
		return nil, withID(err, "database_id", databaseID)
	}
	return &out, nil
}

// ListBlockChildren returns one page of a block's children.
func (c *Client) ListBlockChildren(ctx context.Context, blockID, cursor string) (*List[Block], error) {
	query := url.Values{}
	query.Set("page_size", strconv.Itoa(c.pageSize))
	if cursor != "" {
		query.Set("start_cursor", cursor)
	}

	var out List[Block]
	endpoint := "blocks/" + url.PathEscape(blockID) + "/children"
	if err := c.call(ctx, "blocks.children", http.MethodGet, endpoint, query, nil, &out); err != nil {
		return nil, withID(err, "block_id", blockID)
	}
	return &out, nil
}

// RetrieveBlock fetches a single block.
func (c *Client) RetrieveBlock(ctx context.Context, blockID string) (*Block, error) {
	var out Block
	if err := c.call(ctx, "blocks.retrieve", http.MethodGet, "blocks/"+url.PathEscape(blockID), nil, nil, &out); err != nil {
		return nil, withID(err, "block_id", blockID)
	}
	return &out, nil
}

// RetrieveDatabase fetches collection metadata.
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var out Database
	if err := c.call(ctx, "databases.retrieve", http.MethodGet, "databases/"+url.PathEscape(databaseID), nil, nil, &out); err != nil {
		return nil, withID(err, "database_id", databaseID)
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, label, method, endpoint string, query url.Values, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.InternalError("failed to marshal request body").WithCause(err).Build()
		}
	}

	hooks := retry.Hooks{
		OnRetry: func(attempt int, delay time.Duration, err error) {
			c.recorder.IncAPIRetry(label)
			slog.Warn("Retrying content API request",
				slog.String("endpoint", label),
				logfields.Attempt(attempt),
				logfields.DurationMS(float64(delay.Milliseconds())),
				logfields.Error(err))
		},
		OnExhausted: func(attempts int, err error) {
			c.recorder.IncAPIRetryExhausted(label)
			slog.Error("Content API request failed after retries",
				slog.String("endpoint", label),
				logfields.Attempt(attempts),
				logfields.Error(err))
		},
	}

	return retry.Do(ctx, c.policy, hooks, func(ctx context.Context) error {
		req, err := c.newRequest(ctx, method, endpoint, query, payload)
		if err != nil {
			return err
		}
		return c.doRequest(req, label, result)
	})
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, payload []byte) (*http.Request, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, errors.ConfigError("failed to parse API URL").
			WithCause(err).
			WithContext("api_url", c.apiURL).
			Build()
	}
	// Preserve a base path such as /v1.
	u.Path = path.Join(strings.TrimSuffix(u.Path, "/"), endpoint)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var bodyReader io.Reader = http.NoBody
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, errors.InternalError("failed to create request").
			WithCause(err).
			WithContext("method", method).
			WithContext("url", u.String()).
			Build()
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func (c *Client) doRequest(req *http.Request, label string, result any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recorder.ObserveAPIRequest(label, time.Since(start), 0)
		return errors.NetworkError("failed to execute content API request").
			WithCause(err).
			WithContext("method", req.Method).
			WithContext("url", req.URL.String()).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()
	c.recorder.ObserveAPIRequest(label, time.Since(start), resp.StatusCode)

	if resp.StatusCode >= 400 {
		return statusError(req, resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return errors.NotionError("failed to decode response").
				WithCause(err).
				WithContext("url", req.URL.String()).
				Permanent().
				Build()
		}
	}
	return nil
}

// statusError classifies a non-2xx response. Every 4xx is permanent, 429 included;
// 5xx responses are retried with backoff.
func statusError(req *http.Request, resp *http.Response) error {
	limited, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := resp.Status
	var apiErr APIError
	if json.Unmarshal(limited, &apiErr) == nil && apiErr.Message != "" {
		message = fmt.Sprintf("%s: %s", resp.Status, apiErr.Message)
	}

	var b *errors.ErrorBuilder
	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		b = errors.AuthError("content API rejected credentials: " + message)
	case code == http.StatusNotFound:
		b = errors.NotFoundError("content API object not found: " + message)
	case code == http.StatusTooManyRequests:
		b = errors.NewError(errors.CategoryRateLimited, "content API rate limit exceeded: "+message)
	case code < 500:
		b = errors.ValidationError("content API rejected request: " + message)
	default:
		b = errors.NotionError("content API error: " + message)
	}
	if resp.StatusCode < 500 {
		b = b.Permanent()
	}

	b = b.WithContext("status", resp.Status).
		WithContext("code", resp.StatusCode).
		WithContext("url", req.URL.String())
	if apiErr.Code != "" {
		b = b.WithContext("api_code", apiErr.Code)
	}
	return b.Build()
}

// withID attaches the object identifier to a classified error so CLI output can name it.
func withID(err error, key, id string) error {
	if ce, ok := errors.AsClassified(err); ok {
		ce.Annotate(key, id)
		return err
	}
	return errors.WrapError(err, errors.CategoryNotion, "content API call failed").
		WithContext(key, id).
		Build()
}
