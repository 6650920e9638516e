package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/utils"
)

// Unauthorized answers 401 with a Bearer challenge.
func Unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return abort(c, http.StatusUnauthorized, msg)
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// JWTAuth validates the bearer access token with codec and stores the caller
// identity on the context. The request logger is tagged with the user id.
func JWTAuth(codec *utils.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return Unauthorized(c, "missing bearer token")
			}
			claims, err := codec.Decode(raw)
			switch {
			case errors.Is(err, utils.ErrTokenExpired):
				return Unauthorized(c, "token expired")
			case err != nil:
				return Unauthorized(c, "invalid token")
			}
			id := claims.Identity()
			if !id.Role.Valid() || id.UserID == 0 {
				return Unauthorized(c, "invalid token")
			}
			SetIdentity(c, id)

			req := c.Request()
			log := logger.FromContext(req.Context()).With("user_id", id.UserID, "role", id.Role)
			c.SetRequest(req.WithContext(logger.ContextWithLogger(req.Context(), log)))
			return next(c)
		}
	}
}
