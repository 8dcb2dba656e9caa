package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"venuebook/internal/availability"
	"venuebook/internal/config"
	"venuebook/internal/database"
	"venuebook/internal/events"
	"venuebook/internal/models"
	"venuebook/internal/pricing"
	"venuebook/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type testStack struct {
	db       *database.DB
	bus      *events.EventBus
	venues   *service.VenueService
	bookings *service.BookingService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	seed := []models.Venue{
		{
			ID: "hall", HostID: "host-1", Name: "Garden Hall", VenueType: "hall", Capacity: 50,
			PriceModel: models.PriceModelHourly, PricePerHour: 100, MinBookingDurationHours: 2,
			Availability: models.AvailabilityRules{
				UnavailableDates: []time.Time{date(2025, 11, 20)},
				Timezone:         "Africa/Accra",
			},
		},
		{ID: "loft", HostID: "host-2", Name: "Sky Loft", VenueType: "loft", PriceModel: models.PriceModelQuoteOnly},
		{ID: "barn", HostID: "host-3", Name: "Old Barn", VenueType: "hall", PriceModel: models.PriceModelFixed, FixedPrice: 1000},
	}
	require.NoError(t, db.SyncVenues(ctx, seed))

	clock := availability.FixedClock{At: testNow}
	bus := events.NewEventBus()
	return &testStack{
		db:     db,
		bus:    bus,
		venues: service.NewVenueService(db, clock, &logger),
		bookings: service.NewBookingService(db, db, nil, bus, service.BookingOptions{
			Fees:  pricing.DefaultFees(),
			Clock: clock,
		}, &logger),
	}
}

func (s *testStack) deps() Deps {
	return Deps{Venues: s.venues, Bookings: s.bookings}
}

func newTestHTTPServer(t *testing.T, cfg config.APIConfig, deps Deps) *httptest.Server {
	t.Helper()
	logger := zerolog.New(io.Discard)
	srv := NewHTTPServer(&cfg, deps, &logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func openConfig() config.APIConfig {
	return config.APIConfig{Enabled: true, HTTP: config.APIHTTPConfig{Enabled: true}}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getURL(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func booking(start, end, from, to string, attendees int) models.BookingDetails {
	return models.BookingDetails{StartDate: start, EndDate: end, StartTime: from, EndTime: to, Attendees: attendees, UserID: 42}
}

func TestHTTPVenues(t *testing.T) {
	st := newTestStack(t)
	ts := newTestHTTPServer(t, openConfig(), st.deps())

	resp := getURL(t, ts.URL+"/api/v1/venues?type=hall")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Venues []models.Venue `json:"venues"`
	}
	decode(t, resp, &list)
	require.Len(t, list.Venues, 2)
	assert.Equal(t, "Garden Hall", list.Venues[0].Name)
	assert.Equal(t, "Old Barn", list.Venues[1].Name)

	resp = getURL(t, ts.URL+"/api/v1/venues/hall")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v models.Venue
	decode(t, resp, &v)
	assert.Equal(t, "Africa/Accra", v.Availability.Timezone)

	resp = getURL(t, ts.URL+"/api/v1/venues/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPCalendar(t *testing.T) {
	st := newTestStack(t)
	ts := newTestHTTPServer(t, openConfig(), st.deps())

	resp := getURL(t, ts.URL+"/api/v1/venues/hall/calendar?month=2025-11")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var m availability.Month
	decode(t, resp, &m)
	assert.Equal(t, 5, m.Offset)
	require.Len(t, m.Days, 30)
	assert.Equal(t, availability.DayPast, m.Days[0].Status)
	assert.Equal(t, availability.DayBlocked, m.Days[19].Status)

	resp = getURL(t, ts.URL+"/api/v1/venues/hall/calendar?month=11-2025")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPQuote(t *testing.T) {
	st := newTestStack(t)
	ts := newTestHTTPServer(t, openConfig(), st.deps())

	resp := postJSON(t, ts.URL+"/api/v1/venues/hall/quote", booking("2025-11-12", "2025-11-12", "14:00", "17:00", 10))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var q models.Quote
	decode(t, resp, &q)
	assert.True(t, q.Valid)
	require.NotNil(t, q.Breakdown)
	assert.InDelta(t, 380.0, q.Breakdown.Total, 1e-9)

	resp = postJSON(t, ts.URL+"/api/v1/venues/loft/quote", booking("2025-11-12", "2025-11-12", "14:00", "17:00", 10))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	q = models.Quote{}
	decode(t, resp, &q)
	assert.True(t, q.QuoteOnly)
	assert.Nil(t, q.Breakdown)

	resp = postJSON(t, ts.URL+"/api/v1/venues/hall/quote", booking("12/11/2025", "", "", "", 0))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPSubmit(t *testing.T) {
	st := newTestStack(t)
	var requested int
	st.bus.Subscribe(events.EventBookingRequested, func(*events.Event) error {
		requested++
		return nil
	})
	ts := newTestHTTPServer(t, openConfig(), st.deps())

	resp := postJSON(t, ts.URL+"/api/v1/venues/hall/bookings", booking("2025-11-12", "2025-11-12", "14:00", "17:00", 10))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var details models.BookingDetails
	decode(t, resp, &details)
	assert.NotEmpty(t, details.Reference)
	assert.Equal(t, int64(42), details.UserID)
	assert.InDelta(t, 380.0, details.TotalCost, 1e-9)
	assert.Equal(t, 1, requested)

	stored, err := st.db.GetBookingRequest(context.Background(), details.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRequested, stored.Status)

	cases := []struct {
		name        string
		venue       string
		body        any
		status      int
		contactHost bool
	}{
		{"QuoteOnly", "loft", booking("2025-11-12", "2025-11-12", "14:00", "17:00", 10), http.StatusConflict, true},
		{"Blocked", "hall", booking("2025-11-19", "2025-11-21", "10:00", "12:00", 10), http.StatusConflict, false},
		{"Past", "hall", booking("2025-11-01", "2025-11-01", "10:00", "12:00", 10), http.StatusConflict, false},
		{"TooShort", "hall", booking("2025-11-12", "2025-11-12", "14:00", "15:00", 10), http.StatusUnprocessableEntity, false},
		{"TooFar", "hall", booking("2027-01-05", "2027-01-05", "14:00", "17:00", 10), http.StatusUnprocessableEntity, false},
		{"Incomplete", "hall", booking("2025-11-12", "", "", "", 10), http.StatusUnprocessableEntity, false},
		{"BadTime", "hall", booking("2025-11-12", "2025-11-12", "25:00", "17:00", 10), http.StatusBadRequest, false},
		{"UnknownVenue", "nope", booking("2025-11-12", "2025-11-12", "14:00", "17:00", 10), http.StatusNotFound, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/v1/venues/"+tc.venue+"/bookings", tc.body)
			require.Equal(t, tc.status, resp.StatusCode)
			var body errorBody
			decode(t, resp, &body)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tc.contactHost, body.ContactHost)
		})
	}

	resp, err = http.Post(ts.URL+"/api/v1/venues/hall/bookings", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPContact(t *testing.T) {
	st := newTestStack(t)
	var got events.ContactHostPayload
	st.bus.Subscribe(events.EventContactHostRequested, func(e *events.Event) error {
		return e.Decode(&got)
	})
	ts := newTestHTTPServer(t, openConfig(), st.deps())

	resp := postJSON(t, ts.URL+"/api/v1/venues/loft/contact", map[string]any{"user_id": 7, "message": "wedding for 200"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "host-2", body["host_id"])
	assert.Equal(t, "wedding for 200", got.Message)
	assert.Equal(t, int64(7), got.UserID)
}

func TestHTTPExport(t *testing.T) {
	st := newTestStack(t)
	deps := st.deps()
	deps.ExportsPath = filepath.Join(t.TempDir(), "exports")
	ts := newTestHTTPServer(t, openConfig(), deps)

	resp := postJSON(t, ts.URL+"/api/v1/venues/hall/bookings", booking("2025-11-12", "2025-11-12", "14:00", "17:00", 10))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = getURL(t, ts.URL+"/api/v1/host/bookings/export?venue_id=hall&from=2025-11-01&to=2025-11-30")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "bookings_2025-11-01_to_2025-11-30.xlsx")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	saved, err := os.ReadFile(filepath.Join(deps.ExportsPath, "bookings_2025-11-01_to_2025-11-30.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, data, saved)

	resp = getURL(t, ts.URL+"/api/v1/host/bookings/export?from=2025-11-30&to=2025-11-01")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = getURL(t, ts.URL+"/api/v1/host/bookings/export?from=yesterday")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPProbes(t *testing.T) {
	st := newTestStack(t)
	deps := st.deps()
	deps.Checks = map[string]ReadinessCheck{
		"database": st.db.Ping,
	}
	ts := newTestHTTPServer(t, openConfig(), deps)

	resp := getURL(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = getURL(t, ts.URL+"/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	deps.Checks["redis"] = func(context.Context) error { return errors.New("connection refused") }
	ts = newTestHTTPServer(t, openConfig(), deps)
	resp = getURL(t, ts.URL+"/readyz")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
	assert.Equal(t, "connection refused", body.Checks["redis"])
}

func TestHTTPAuth(t *testing.T) {
	st := newTestStack(t)
	cfg := openConfig()
	cfg.Auth = config.APIAuthConfig{
		Enabled: true,
		APIKeys: []config.APIClientKey{
			{Key: "bot", Extra: "secret"},
			{Key: "viewer", Extra: "secret", Permissions: []string{permReadVenues}},
		},
	}
	ts := newTestHTTPServer(t, cfg, st.deps())

	do := func(method, path, key, extra string) int {
		req, err := http.NewRequest(method, ts.URL+path, bytes.NewReader([]byte(`{}`)))
		require.NoError(t, err)
		if key != "" {
			req.Header.Set("x-api-key", key)
			req.Header.Set("x-api-extra", extra)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/api/v1/venues", "", ""))
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/api/v1/venues", "bot", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/api/v1/venues", "other", "secret"))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/v1/venues", "bot", "secret"))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/v1/venues", "viewer", "secret"))
	assert.Equal(t, http.StatusForbidden, do(http.MethodPost, "/api/v1/venues/hall/contact", "viewer", "secret"))
	assert.Equal(t, http.StatusForbidden, do(http.MethodGet, "/api/v1/host/bookings/export", "viewer", "secret"))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/healthz", "", ""))
}

func TestHTTPRateLimit(t *testing.T) {
	st := newTestStack(t)
	cfg := openConfig()
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 0.001, Burst: 1}
	ts := newTestHTTPServer(t, cfg, st.deps())

	assert.Equal(t, http.StatusOK, getURL(t, ts.URL+"/api/v1/venues").StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, getURL(t, ts.URL+"/api/v1/venues").StatusCode)
}

func TestRequiredPermissionHTTP(t *testing.T) {
	cases := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/api/v1/venues", permReadVenues},
		{http.MethodGet, "/api/v1/venues/hall/calendar", permReadVenues},
		{http.MethodPost, "/api/v1/venues/hall/quote", permReadQuotes},
		{http.MethodPost, "/api/v1/venues/hall/bookings", permWriteBookings},
		{http.MethodGet, "/api/v1/host/bookings/export", permExportBookings},
		{http.MethodGet, "/metrics", ""},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(tc.method, tc.path, nil)
		assert.Equal(t, tc.want, requiredPermissionHTTP(r), fmt.Sprintf("%s %s", tc.method, tc.path))
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{database.ErrVenueNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", database.ErrBookingNotFound), http.StatusNotFound},
		{service.ErrQuoteOnly, http.StatusConflict},
		{service.ErrPastDate, http.StatusConflict},
		{fmt.Errorf("%w: 2025-11-20", service.ErrDateUnavailable), http.StatusConflict},
		{service.ErrDateTooFar, http.StatusUnprocessableEntity},
		{service.ErrInvalidBooking, http.StatusUnprocessableEntity},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, body := httpStatus(tc.err)
		assert.Equal(t, tc.status, code, tc.err.Error())
		assert.NotEmpty(t, body.Error)
	}

	_, body := httpStatus(errors.New("disk full"))
	assert.Equal(t, "internal error", body.Error)
}
