package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	apperrors "github.com/pscheid92/nano/internal/errors"
	goredis "github.com/redis/go-redis/v9"
)

// redisHealthChecker is a minimal interface for Redis health checks
type redisHealthChecker interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

// gatewayChecker reports whether the Discord session is usable
type gatewayChecker interface {
	Ready() bool
}

type Server struct {
	echo      *echo.Echo
	port      string
	redis     redisHealthChecker
	gateway   gatewayChecker
	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(port string, redis redisHealthChecker, gateway gatewayChecker, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.DebugContext(c.Request().Context(), "Ops request",
				"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		port:      port,
		redis:     redis,
		gateway:   gateway,
		clock:     clock,
		startTime: clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

// Start blocks serving until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("Starting ops server", "port", s.port)
	err := s.echo.Start(fmt.Sprintf(":%s", s.port))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
