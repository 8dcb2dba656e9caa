// Package backend is the HTTP client for a venue booking backend: either this
// module's own API (used by the bot) or the upstream system the forward
// worker delivers bookings to.
package backend

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

	"venuebook/internal/config"
	"venuebook/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const cachePrefix = "venuebook:backend:"

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode  int
	Message     string
	ContactHost bool
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// StatusCode extracts the HTTP status of a StatusError, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

type Client struct {
	baseURL    string
	apiKey     string
	apiExtra   string
	httpClient *http.Client
	logger     zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

func NewClient(cfg config.BackendConfig, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "backend").Logger()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		apiExtra:   cfg.APIExtra,
		httpClient: &http.Client{Timeout: timeout},
		logger:     l,
	}
}

// UseRedisCache enables caching of venue lookups.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

func (c *Client) ListVenues(ctx context.Context, venueType string) ([]*models.Venue, error) {
	endpoint := c.baseURL + "/api/v1/venues"
	if venueType != "" {
		endpoint += "?type=" + url.QueryEscape(venueType)
	}
	cacheKey := cachePrefix + "venues:" + venueType

	var wrap struct {
		Venues []*models.Venue `json:"venues"`
	}
	if c.readCache(ctx, cacheKey, &wrap) {
		return wrap.Venues, nil
	}
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, wrap)
	return wrap.Venues, nil
}

func (c *Client) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	endpoint := fmt.Sprintf("%s/api/v1/venues/%s", c.baseURL, url.PathEscape(id))
	cacheKey := cachePrefix + "venue:" + id

	var venue models.Venue
	if c.readCache(ctx, cacheKey, &venue) {
		return &venue, nil
	}
	if err := c.doGet(ctx, endpoint, &venue); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, venue)
	return &venue, nil
}

func (c *Client) Quote(ctx context.Context, venueID string, req models.BookingRequest) (*models.Quote, error) {
	endpoint := fmt.Sprintf("%s/api/v1/venues/%s/quote", c.baseURL, url.PathEscape(venueID))
	body := models.DetailsFromRequest(venueID, req)

	var q models.Quote
	if err := c.doPost(ctx, endpoint, body, &q, nil); err != nil {
		return nil, err
	}
	return &q, nil
}

// SubmitBooking posts a finalized payload. The reference, when set, is sent
// as the idempotency key.
func (c *Client) SubmitBooking(ctx context.Context, payload *models.BookingDetails) (*models.BookingDetails, error) {
	if payload == nil {
		return nil, errors.New("nil booking payload")
	}
	endpoint := fmt.Sprintf("%s/api/v1/venues/%s/bookings", c.baseURL, url.PathEscape(payload.VenueID))

	headers := map[string]string{}
	if payload.Reference != "" {
		headers["Idempotency-Key"] = payload.Reference
	}

	var out models.BookingDetails
	if err := c.doPost(ctx, endpoint, payload, &out, headers); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ContactHost(ctx context.Context, venueID string, userID int64, message string) error {
	endpoint := fmt.Sprintf("%s/api/v1/venues/%s/contact", c.baseURL, url.PathEscape(venueID))
	body := map[string]any{"user_id": userID, "message": message}
	return c.doPost(ctx, endpoint, body, nil, nil)
}

// ExportBookings downloads the xlsx export of booking requests.
func (c *Client) ExportBookings(ctx context.Context, venueID string, from, to time.Time) ([]byte, error) {
	q := url.Values{}
	if venueID != "" {
		q.Set("venue_id", venueID)
	}
	if !from.IsZero() {
		q.Set("from", models.FormatDate(from))
	}
	if !to.IsZero() {
		q.Set("to", models.FormatDate(to))
	}
	endpoint := c.baseURL + "/api/v1/host/bookings/export"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.addHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}
	return io.ReadAll(resp.Body)
}

// InvalidateVenues drops cached venue lookups.
func (c *Client) InvalidateVenues(ctx context.Context) {
	if c.redis == nil {
		return
	}
	iter := c.redis.Scan(ctx, 0, cachePrefix+"venue*", 100).Iterator()
	for iter.Next(ctx) {
		_ = c.redis.Del(ctx, iter.Val()).Err()
	}
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
		c.logger.Warn().Err(err).Str("key", key).Msg("drop corrupt cache entry")
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

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) doPost(ctx context.Context, endpoint string, body, out any, headers map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}
	var body struct {
		Error       string `json:"error"`
		ContactHost bool   `json:"contact_host"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		se.Message = body.Error
		se.ContactHost = body.ContactHost
	}
	return se
}

func (c *Client) addHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if c.apiExtra != "" {
		req.Header.Set("x-api-extra", c.apiExtra)
	}
}
