package middleware

// identity.go stores the caller decoded by JWTAuth on the echo context and
// reads it back for handlers, the policy gate and the rate limiter.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/service"
)

const identityKey = "identity"

// SetIdentity attaches id to the request.
func SetIdentity(c echo.Context, id model.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the caller placed by JWTAuth, if any.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok
}

// currentUserID is the rate-limit subject: the user id, or "anon".
func currentUserID(c echo.Context) string {
	if id, ok := IdentityFrom(c); ok && id.UserID != 0 {
		return strconv.FormatUint(id.UserID, 10)
	}
	return "anon"
}

// abort writes a failure envelope and stops the chain.
func abort(c echo.Context, status int, msg string) error {
	return c.JSON(status, service.Result{Message: msg, StatusCode: status})
}
