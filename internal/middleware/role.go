package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/policy"
)

// RequireAction rejects callers whose role may not perform action. It must
// run after JWTAuth. Services repeat the check; this gate only stops denied
// requests before the body is decoded.
func RequireAction(action policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return Unauthorized(c, "missing bearer token")
			}
			if d := policy.Can(id.Role, action); !d.Allowed {
				return abort(c, http.StatusForbidden, d.Reason)
			}
			return next(c)
		}
	}
}
