package bridge

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/pinegrove/cloudcore/internal/metrics"
)

// RequestLogger returns middleware that logs requests using zerolog and
// updates the counter registry.
func RequestLogger(reg *metrics.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := req.Header.Get("X-Request-ID")
			if rid == "" {
				rid = uuid.NewString()
				c.Response().Header().Set("X-Request-ID", rid)
			}

			logger := log.With().
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", c.RealIP()).
				Logger()

			ctx := logger.WithContext(req.Context())
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			status := c.Response().Status
			duration := time.Since(start)

			if reg != nil {
				reg.Inc(req.Context(), "http_requests_total", map[string]string{
					"method": req.Method,
					"path":   req.URL.Path,
					"status": statusClass(status),
				}, 1)
			}

			if status >= 500 || err != nil {
				logger.Error().Err(err).Int("status", status).Dur("duration", duration).
					Msg("http request failed")
			} else {
				logger.Debug().Int("status", status).Dur("duration", duration).
					Msg("http request served")
			}

			return err
		}
	}
}

func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "0"
	}
}
