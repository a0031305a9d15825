// Package server implements the operations HTTP server using Echo framework.
//
// Routes: /health/live (process up), /health/ready (Redis reachable and the
// Discord gateway session ready), /metrics (Prometheus), /version (build info).
// The bot itself talks to Discord over the gateway; nothing user-facing is
// served here.
package server
