package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/nano/internal/platform/version"
)

var errGatewayNotReady = errors.New("discord gateway not ready")

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"redis", s.checkRedis},
		{"discord", s.checkGateway},
	}

	for _, check := range checks {
		if err := check.fn(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":       "unhealthy",
				"failed_check": check.name,
				"error":        err.Error(),
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) checkRedis(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *Server) checkGateway(context.Context) error {
	if !s.gateway.Ready() {
		return errGatewayNotReady
	}
	return nil
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, version.Get())
}
