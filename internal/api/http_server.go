package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"venuebook/internal/availability"
	"venuebook/internal/config"
	"venuebook/internal/logging"
	"venuebook/internal/metrics"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
)

// VenueReader is the read side used by the HTTP and gRPC surfaces.
type VenueReader interface {
	ListVenues(ctx context.Context, venueType string) ([]*models.Venue, error)
	GetVenue(ctx context.Context, id string) (*models.Venue, error)
	MonthCalendar(ctx context.Context, id string, year int, month time.Month) (*availability.Month, error)
}

// BookingFlow prices and accepts booking requests.
type BookingFlow interface {
	Quote(ctx context.Context, venueID string, req models.BookingRequest) (*models.Quote, error)
	Submit(ctx context.Context, venueID string, userID int64, req models.BookingRequest) (*models.BookingDetails, error)
	ContactHost(ctx context.Context, venueID string, userID int64, message string) (*models.Venue, error)
	ListBookings(ctx context.Context, venueID string, from, to time.Time) ([]*models.BookingDetails, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Deps struct {
	Venues   VenueReader
	Bookings BookingFlow
	Checks   map[string]ReadinessCheck
	// ExportsPath, when set, keeps a copy of every generated export.
	ExportsPath string
}

// HTTPServer exposes the booking API over JSON.
type HTTPServer struct {
	cfg    *config.APIConfig
	deps   Deps
	server *http.Server
	auth   *HTTPAuth
	logger zerolog.Logger
}

func NewHTTPServer(cfg *config.APIConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:    cfg,
		deps:   deps,
		auth:   NewHTTPAuth(cfg),
		logger: logging.Component(logger, "http"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", srv.handleHealth)
	mux.HandleFunc("GET /readyz", srv.handleReady)

	mux.Handle("GET /api/v1/venues", srv.route("list_venues", srv.handleListVenues))
	mux.Handle("GET /api/v1/venues/{id}", srv.route("get_venue", srv.handleGetVenue))
	mux.Handle("GET /api/v1/venues/{id}/calendar", srv.route("calendar", srv.handleCalendar))
	mux.Handle("POST /api/v1/venues/{id}/quote", srv.route("quote", srv.handleQuote))
	mux.Handle("POST /api/v1/venues/{id}/bookings", srv.route("submit_booking", srv.handleSubmit))
	mux.Handle("POST /api/v1/venues/{id}/contact", srv.route("contact_host", srv.handleContact))
	mux.Handle("GET /api/v1/host/bookings/export", srv.route("export_bookings", srv.handleExport))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.loggingMiddleware(srv.auth.Wrap(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the root handler, middleware included.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) route(name string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP(name)
		h(w, r)
	})
}

// HTTPAuth provides API-key auth and per-key rate limiting for HTTP endpoints.
type HTTPAuth struct {
	cfg     *config.APIConfig
	clients map[string]config.APIClientKey
	limiter *rateLimiter
}

func NewHTTPAuth(cfg *config.APIConfig) *HTTPAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}
	return &HTTPAuth{cfg: cfg, clients: m, limiter: newRateLimiter(cfg)}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.cfg.Enabled || !a.cfg.HTTP.Enabled || isProbe(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(r); err != nil {
				statusCode := http.StatusUnauthorized
				if errors.Is(err, errPermissionDenied) {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, err.Error())
				return
			}
		}

		if !a.limiter.allow(a.clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

var errPermissionDenied = errors.New("permission denied")

func isProbe(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

func (a *HTTPAuth) headerNames() (apiKey, extra string) {
	apiKey = strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if apiKey == "" {
		apiKey = apiKeyHeaderDefault
	}
	extra = strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderExtra))
	if extra == "" {
		extra = apiExtraHeaderDefault
	}
	return apiKey, extra
}

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKeyHeader, extraHeader := a.headerNames()

	apiKey := strings.TrimSpace(r.Header.Get(apiKeyHeader))
	extra := strings.TrimSpace(r.Header.Get(extraHeader))
	if apiKey == "" || extra == "" {
		return errors.New("missing api key headers")
	}

	client, ok := a.clients[apiKey]
	if !ok {
		return errors.New("invalid api key")
	}
	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return errors.New("invalid extra header")
	}

	if !hasPermission(client, requiredPermissionHTTP(r)) {
		return errPermissionDenied
	}
	return nil
}

func requiredPermissionHTTP(r *http.Request) string {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/v1/host/"):
		return permExportBookings
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/quote"):
		return permReadQuotes
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/api/v1/venues/"):
		return permWriteBookings
	case strings.HasPrefix(path, "/api/v1/venues"):
		return permReadVenues
	}
	return ""
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	apiKeyHeader, _ := a.headerNames()
	if apiKey := strings.TrimSpace(r.Header.Get(apiKeyHeader)); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log, requestID := logging.WithRequestID(s.logger, r.Header.Get("X-Request-ID"))
		w.Header().Set("X-Request-ID", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorBody{Error: message})
}

func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code, body := httpStatus(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, code, body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
