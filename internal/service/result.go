// Package service implements the booking use cases: authentication,
// registration, the user/role/flight directories and reservations. Every
// operation except authentication reports its outcome as a Result envelope.
package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/policy"
)

// Kind classifies a failed Result.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindDenied
	KindConflict
	KindNotFound
	KindInternal
)

// ErrInvalidCredentials is the single authentication failure; it never says
// whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Result is the uniform response envelope.
type Result struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       any               `json:"data,omitempty"`
	StatusCode int               `json:"status_code"`
	Errors     map[string]string `json:"errors,omitempty"`
	Kind       Kind              `json:"-"`
}

func ok(msg string, data any) Result {
	return Result{Success: true, Message: msg, Data: data, StatusCode: http.StatusOK}
}

func created(msg string, data any) Result {
	return Result{Success: true, Message: msg, Data: data, StatusCode: http.StatusCreated}
}

func invalid(fields map[string]string) Result {
	return Result{Message: "validation failed", StatusCode: http.StatusBadRequest, Errors: fields, Kind: KindValidation}
}

func invalidField(field, msg string) Result {
	return invalid(map[string]string{field: msg})
}

func denied(reason string) Result {
	return Result{Message: reason, StatusCode: http.StatusForbidden, Kind: KindDenied}
}

func conflict(msg string) Result {
	return Result{Message: msg, StatusCode: http.StatusConflict, Kind: KindConflict}
}

func notFound(msg string) Result {
	return Result{Message: msg, StatusCode: http.StatusNotFound, Kind: KindNotFound}
}

// internal logs err with the operation name and hides it from the caller.
func internal(ctx context.Context, log logger.Logger, op string, err error) Result {
	if log == nil {
		log = logger.FromContext(ctx)
	}
	log.Error("operation failed", "op", op, "error", err)
	return Result{Message: "internal error", StatusCode: http.StatusInternalServerError, Kind: KindInternal}
}

// authorize returns a denial Result when the actor may not perform action.
func authorize(actor model.Identity, action policy.Action, target model.RoleName) (Result, bool) {
	d := policy.Decide(actor.Role, action, target)
	if !d.Allowed {
		return denied(d.Reason), false
	}
	return Result{}, true
}
