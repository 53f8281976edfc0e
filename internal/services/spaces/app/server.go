// Package server wires the spaces runtime and gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/campuscommons/campuscommons/internal/audit"
	"github.com/campuscommons/campuscommons/internal/platform/config"
	"github.com/campuscommons/campuscommons/internal/services/spaces/moderation"
	spacessqlite "github.com/campuscommons/campuscommons/internal/services/spaces/storage/sqlite"
	"github.com/campuscommons/campuscommons/internal/services/spaces/visibility"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type serverEnv struct {
	DBPath string `env:"CAMPUS_COMMONS_SPACES_DB_PATH"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "spaces.db")
	}
	return cfg
}

// Server hosts the spaces runtime and storage lifecycle.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *spacessqlite.Store
	moderation *moderation.Service
	visibility *visibility.Service
}

// New creates a configured spaces server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured spaces server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	env := loadServerEnv()
	store, err := openSpacesStore(env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	moderationService := moderation.NewService(moderation.Stores{
		Spaces:      store,
		Memberships: store,
	}, audit.NewEmitter(store))
	visibilityService := visibility.NewService(store)

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		moderation: moderationService,
		visibility: visibilityService,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Moderation returns the moderation command set backed by this server's store.
func (s *Server) Moderation() *moderation.Service {
	if s == nil {
		return nil
	}
	return s.moderation
}

// Visibility returns the visibility resolver backed by this server's store.
func (s *Server) Visibility() *visibility.Service {
	if s == nil {
		return nil
	}
	return s.visibility
}

// Run creates and serves a spaces server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the gRPC server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("spaces server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// Close releases spaces server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close spaces store: %v", err)
		}
	}
}

func openSpacesStore(path string) (*spacessqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := spacessqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spaces sqlite store: %w", err)
	}
	return store, nil
}
