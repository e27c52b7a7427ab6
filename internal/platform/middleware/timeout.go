package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// TimeoutConfig configures RequestTimeoutWithConfig.
type TimeoutConfig struct {
	Timeout time.Duration
	// Skipper exempts requests such as streamed CSV exports, whose length
	// grows with the size of the clinic's records.
	Skipper echomw.Skipper
}

// RequestTimeout puts a deadline on every request's context.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return RequestTimeoutWithConfig(TimeoutConfig{Timeout: timeout})
}

// RequestTimeoutWithConfig puts a deadline on each request's context. A
// handler still running when it passes is abandoned and the client gets 504.
// A zero Timeout disables the middleware.
func RequestTimeoutWithConfig(cfg TimeoutConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = echomw.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Timeout <= 0 || cfg.Skipper(c) {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.Timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() { done <- next(c) }()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					return echo.NewHTTPError(http.StatusGatewayTimeout, "request took longer than "+cfg.Timeout.String())
				}
				return ctx.Err()
			}
		}
	}
}
