package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	apiCSP = "default-src 'none'; frame-ancestors 'none'"
	// The API docs page loads Swagger UI from unpkg.
	docsCSP = "default-src 'none'; script-src 'unsafe-inline' https://unpkg.com; " +
		"style-src 'unsafe-inline' https://unpkg.com; img-src 'self' data:; connect-src 'self'; frame-ancestors 'none'"
)

// SecurityHeaders sets the response headers a JSON API serving patient
// records should carry. Requests whose path ends in one of docsSuffixes get
// a content policy that lets the HTML docs page run.
func SecurityHeaders(docsSuffixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			// Invoices and patient lists must not linger in shared caches.
			h.Set("Cache-Control", "no-store")

			csp := apiCSP
			for _, s := range docsSuffixes {
				if strings.HasSuffix(c.Request().URL.Path, s) {
					csp = docsCSP
					break
				}
			}
			h.Set("Content-Security-Policy", csp)

			if c.IsTLS() {
				h.Set("Strict-Transport-Security", "max-age=31536000")
			}
			return next(c)
		}
	}
}
