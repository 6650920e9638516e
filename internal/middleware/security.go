package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/airline-reservation/internal/logger"
)

// SecurityHeaders sets the browser hardening headers on every response.
func SecurityHeaders() echo.MiddlewareFunc {
	secure := echomw.SecureWithConfig(echomw.SecureConfig{
		XSSProtection:      "0",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := secure(next)
		return func(c echo.Context) error {
			c.Response().Header().Set("Permissions-Policy", "geolocation=()")
			return h(c)
		}
	}
}

// CORS allows any origin, method and header.
func CORS() echo.MiddlewareFunc {
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"*"},
	})
}

// RequestLogger puts a request-scoped logger (tagged with the request id)
// into the request context and logs one line per completed request.
func RequestLogger(log logger.Logger) echo.MiddlewareFunc {
	access := echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			kv := []any{
				"method", v.Method, "uri", v.URI, "status", v.Status,
				"latency", v.Latency.String(), "ip", v.RemoteIP, "request_id", v.RequestID,
			}
			if id, ok := IdentityFrom(c); ok {
				kv = append(kv, "user_id", id.UserID)
			}
			switch {
			case v.Error != nil:
				log.Error("request", append(kv, "error", v.Error)...)
			case v.Status >= 500:
				log.Error("request", kv...)
			default:
				log.Info("request", kv...)
			}
			return nil
		},
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return access(func(c echo.Context) error {
			req := c.Request()
			reqLog := log.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			c.SetRequest(req.WithContext(logger.ContextWithLogger(req.Context(), reqLog)))
			return next(c)
		})
	}
}
