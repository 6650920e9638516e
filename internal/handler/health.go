package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/service"
)

// Health reports whether the database answers a ping. Load balancers hit it
// without credentials.
func Health(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return respond(c, service.Result{Message: "database unavailable", StatusCode: http.StatusServiceUnavailable})
		}
		return respond(c, service.Result{Success: true, Message: "ok", StatusCode: http.StatusOK})
	}
}
