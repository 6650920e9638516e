// Package handler adapts HTTP requests to the booking services. Handlers
// only bind input and write the service envelope; the HTTP status always
// equals the envelope's status_code.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/middleware"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/service"
)

const defaultTimeout = 5 * time.Second

func respond(c echo.Context, r service.Result) error {
	return c.JSON(r.StatusCode, r)
}

func badRequest(c echo.Context, field, msg string) error {
	return respond(c, service.Result{
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Errors:     map[string]string{field: msg},
		Kind:       service.KindValidation,
	})
}

// bind decodes the JSON body into v. When it reports false the 400
// envelope has already been written and the handler must return err.
func bind(c echo.Context, v any) (bool, error) {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return false, badRequest(c, "body", "malformed JSON body")
	}
	return true, nil
}

// actor returns the caller stored by JWTAuth. Routes using it are always
// behind that middleware.
func actor(c echo.Context) model.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

type base struct {
	timeout time.Duration
}

func newBase(timeout time.Duration) base {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return base{timeout: timeout}
}

func (b base) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), b.timeout)
}
