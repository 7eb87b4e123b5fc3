package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookvideolink/internal/config"
	"bookvideolink/internal/domain"
	"bookvideolink/internal/metrics"
	"bookvideolink/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const maxErrorBody = 4 << 10

// Error is a non 2xx answer from an upstream API.
type Error struct {
	API    string
	Method string
	Path   string
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s %s: http %d", e.API, e.Method, e.Path, e.Status)
}

// Is maps an upstream 404 to domain.ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == domain.ErrNotFound && e.Status == http.StatusNotFound
}

// Client is the JSON over HTTP plumbing shared by every upstream API.
type Client struct {
	api        string
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client for one upstream API. The response timeout bounds the wait for
// response headers and the deadline bounds the whole exchange.
func NewClient(api string, cfg config.APIEndpoint, logger *zerolog.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout.Response

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "upstream").Str("api", api).Logger()

	return &Client{
		api:     api,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout.Deadline,
		},
		logger: &l,
	}
}

// UseRedisCache configures optional Redis caching for reference data GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) cacheKey(path string, query url.Values) string {
	key := c.api + ":" + path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	return key
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(val, out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *Client) get(ctx context.Context, user *models.User, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, user, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

// getCached serves reference data from Redis when present and fills the cache on a miss.
func (c *Client) getCached(ctx context.Context, user *models.User, path string, query url.Values, out any) error {
	key := c.cacheKey(path, query)
	if c.readCache(ctx, key, out) {
		return nil
	}
	if err := c.get(ctx, user, path, query, out); err != nil {
		return err
	}
	c.writeCache(ctx, key, out)
	return nil
}

func (c *Client) post(ctx context.Context, user *models.User, path string, query url.Values, body, out any) error {
	return c.send(ctx, user, http.MethodPost, path, query, body, out)
}

func (c *Client) put(ctx context.Context, user *models.User, path string, body, out any) error {
	return c.send(ctx, user, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, user *models.User, path string) error {
	req, err := c.newRequest(ctx, user, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, nil)
}

func (c *Client) send(ctx context.Context, user *models.User, method, path string, query url.Values, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", path, err)
	}
	req, err := c.newRequest(ctx, user, method, path, query, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

// stream copies a successful response body to w unmodified.
func (c *Client) stream(ctx context.Context, user *models.User, path string, query url.Values, w io.Writer) error {
	req, err := c.newRequest(ctx, user, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	resp, err := c.roundTrip(req, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("stream %s: %w", path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, user *models.User, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if user != nil && user.Token != "" {
		req.Header.Set("Authorization", "Bearer "+user.Token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, path string, out any) error {
	resp, err := c.roundTrip(req, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", c.api, path, err)
	}
	return nil
}

// roundTrip performs the call and turns non 2xx answers into *Error. The caller closes the body.
func (c *Client) roundTrip(req *http.Request, path string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(c.api, req.Method, 0, time.Since(start))
		c.logger.Error().Err(err).Str("method", req.Method).Str("path", path).Msg("upstream call failed")
		return nil, fmt.Errorf("%s %s %s: %w", c.api, req.Method, path, err)
	}
	metrics.ObserveUpstream(c.api, req.Method, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		upErr := &Error{API: c.api, Method: req.Method, Path: path, Status: resp.StatusCode, Body: string(body)}
		level := c.logger.Warn()
		if resp.StatusCode >= 500 {
			level = c.logger.Error()
		}
		level.Int("status", resp.StatusCode).Str("method", req.Method).Str("path", path).Msg("upstream error response")
		return nil, upErr
	}
	return resp, nil
}
