package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *pgxpool.Pool; wrap (*sqlx.DB).PingContext in PingFunc.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	Dialect         Dialect `json:"dialect"`
	TotalConns      int32   `json:"total_conns"`
	IdleConns       int32   `json:"idle_conns"`
	AcquiredConns   int32   `json:"acquired_conns"`
	MaxConns        int32   `json:"max_conns"`
	AcquireCount    int64   `json:"acquire_count"`
	AcquireDuration string  `json:"acquire_duration"`
	Healthy         bool    `json:"healthy"`
}

// GetPoolStats returns connection pool statistics for a pgx pool.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		Dialect:         Postgres,
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

// HealthHandler returns a handler for the database health check endpoint.
// stats may be nil when the backend has no pool statistics to report.
func HealthHandler(p Pinger, stats func() *PoolStats) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		err := p.Ping(ctx)
		body := map[string]interface{}{"status": "healthy"}
		var ps *PoolStats
		if stats != nil {
			if ps = stats(); ps != nil {
				body["pool"] = ps
			}
		}

		if err != nil {
			if ps != nil {
				ps.Healthy = false
			}
			body["status"] = "unhealthy"
			body["error"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, body)
		}

		return c.JSON(http.StatusOK, body)
	}
}
