package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"venuebook/internal/config"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

var errTLSConfig = errors.New("invalid grpc tls config")

// GRPCServer serves QuoteService and the standard health service. Health
// follows the same readiness checks as the HTTP /readyz endpoint.
type GRPCServer struct {
	server   *grpc.Server
	health   *health.Server
	checks   map[string]ReadinessCheck
	listener net.Listener
	log      zerolog.Logger
}

func NewGRPCServer(cfg *config.APIConfig, deps Deps, logger *zerolog.Logger) (*GRPCServer, error) {
	addr := fmt.Sprintf(":%d", cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc listen %s: %w", addr, err)
	}

	srv, err := newGRPCServer(cfg, deps, logger, lis)
	if err != nil {
		_ = lis.Close()
		return nil, err
	}
	return srv, nil
}

func newGRPCServer(cfg *config.APIConfig, deps Deps, logger *zerolog.Logger, lis net.Listener) (*GRPCServer, error) {
	opts := []grpc.ServerOption{grpc.UnaryInterceptor(ChainUnaryInterceptors(
		LoggingUnaryInterceptor(logger),
		RecoveryUnaryInterceptor(logger),
		NewAuthInterceptor(cfg).Unary(),
	))}

	if cfg.GRPC.TLS.Enabled {
		tlsCfg, err := serverTLSConfig(cfg.GRPC.TLS)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsCfg)))
	}

	s := &GRPCServer{
		server:   grpc.NewServer(opts...),
		health:   health.NewServer(),
		checks:   deps.Checks,
		listener: lis,
		log:      zerolog.Nop(),
	}
	if logger != nil {
		s.log = logger.With().Str("component", "grpc").Logger()
	}

	RegisterQuoteServiceServer(s.server, NewQuoteService(deps.Venues, deps.Bookings))
	healthpb.RegisterHealthServer(s.server, s.health)
	if cfg.GRPC.Reflection {
		reflection.Register(s.server)
	}

	s.setServing(healthpb.HealthCheckResponse_SERVING)
	return s, nil
}

// serverTLSConfig loads the server keypair and, when client certificates are
// required, the CA pool they must chain to.
func serverTLSConfig(cfg config.APITLSConfig) (*tls.Config, error) {
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, fmt.Errorf("%w: cert_file and key_file are required", errTLSConfig)
	}
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load grpc tls keypair: %w", err)
	}
	tlsCfg := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	if !cfg.RequireClientCert {
		return tlsCfg, nil
	}

	if cfg.ClientCAFile == "" {
		return nil, fmt.Errorf("%w: require_client_cert needs client_ca_file", errTLSConfig)
	}
	caPEM, err := os.ReadFile(cfg.ClientCAFile)
	if err != nil {
		return nil, fmt.Errorf("read client_ca_file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("%w: client_ca_file has no PEM certificates", errTLSConfig)
	}
	tlsCfg.ClientAuth = tls.RequireAndVerifyClientCert
	tlsCfg.ClientCAs = pool
	return tlsCfg, nil
}

func (s *GRPCServer) setServing(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(quoteServiceName, st)
}

// refreshHealth runs the readiness checks once and publishes the result.
func (s *GRPCServer) refreshHealth(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	for name, check := range s.checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := check(checkCtx)
		cancel()
		if err != nil {
			s.log.Warn().Err(err).Str("check", name).Msg("readiness check failed")
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.setServing(st)
}

// WatchReadiness refreshes the health status every interval until ctx ends.
func (s *GRPCServer) WatchReadiness(ctx context.Context, interval time.Duration) {
	if len(s.checks) == 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.refreshHealth(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshHealth(ctx)
		}
	}
}

func (s *GRPCServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *GRPCServer) Serve() error {
	s.log.Info().Str("addr", s.Addr()).Msg("gRPC API listening")
	return s.server.Serve(s.listener)
}

// Shutdown marks the services as not serving and stops gracefully, forcing a
// stop when ctx ends first.
func (s *GRPCServer) Shutdown(ctx context.Context) {
	if s.server == nil {
		return
	}
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn().Msg("gRPC graceful shutdown timed out; forcing stop")
		s.server.Stop()
	}
}
