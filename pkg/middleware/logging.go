// Package middleware carries the HTTP middleware chain: request ids,
// structured request logging, panic recovery and rate limiting.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per request with duration, status and sizes.
func RequestLogging(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			logger.Info("request started", appendLoggerFields(req.Context(),
				"method", req.Method,
				"path", req.URL.Path,
				"remote", c.RealIP(),
			)...)

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
				logger.Error("request failed", appendLoggerFields(req.Context(),
					"method", req.Method,
					"path", req.URL.Path,
					"status", status,
					"duration_ms", duration.Milliseconds(),
					"error", err,
				)...)
				return err
			}

			logger.Info("request completed", appendLoggerFields(req.Context(),
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"duration_ms", duration.Milliseconds(),
				"response_size_bytes", c.Response().Size,
			)...)
			return nil
		}
	}
}

func appendLoggerFields(ctx context.Context, base ...any) []any {
	if requestID, ok := RequestIDFromContext(ctx); ok && requestID != "" {
		base = append(base, "request_id", requestID)
	}
	return base
}
