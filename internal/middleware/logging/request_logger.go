package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_quiz/internal/logging"
)

func levelFor(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case strings.HasPrefix(path, "/health/"):
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// RequestLogger puts a per-request logger into the request context, renders
// handler errors, and writes one "http_request" line per request.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With("request_id", rid, "method", req.Method, "route", c.Path())
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			// auth middleware may have enriched the logger with the caller
			l = logging.FromContext(c.Request().Context())
			status := c.Response().Status
			attrs := []any{
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", c.Response().Size,
				"remote_ip", c.RealIP(),
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}
			l.Log(req.Context(), levelFor(c.Path(), status), "http_request", attrs...)
			return nil
		}
	}
}
