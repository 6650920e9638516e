// Package router builds the echo instance: global middleware, the public
// catalogue and the bearer-protected API under /v1.
package router

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/airline-reservation/internal/config"
	"github.com/iliyamo/airline-reservation/internal/handler"
	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/middleware"
	"github.com/iliyamo/airline-reservation/internal/policy"
	"github.com/iliyamo/airline-reservation/internal/service"
	"github.com/iliyamo/airline-reservation/internal/utils"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Auth         *service.AuthService
	Registration *service.RegistrationService
	Users        *service.UserService
	Roles        *service.RoleService
	Flights      *service.FlightService
	Reservations *service.ReservationService
}

// Deps is everything New needs. Redis may be nil, which disables rate
// limiting and caching.
type Deps struct {
	DB        *sql.DB
	Codec     *utils.Codec
	Services  Services
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Timeout   time.Duration
	Log       logger.Logger
}

// New returns a fully wired echo instance.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(d.Log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.CORS())
	e.Use(echomw.BodyLimit("1M"))

	e.GET("/healthz", handler.Health(d.DB))

	auth := middleware.JWTAuth(d.Codec)
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)
	cache := middleware.NewRedisCache(d.Cache, d.Redis, d.Log)
	invalidate := middleware.InvalidateCache(d.Cache, d.Redis, d.Log)

	registerAuth(e, handler.NewAuthHandler(d.Services.Auth, d.Services.Registration, d.Timeout), auth, limit)
	registerFlights(e, handler.NewFlightHandler(d.Services.Flights, d.Timeout), auth, limit, cache, invalidate)

	v1 := e.Group("/v1", auth, limit)
	registerUsers(v1, handler.NewUserHandler(d.Services.Users, d.Services.Registration, d.Timeout))
	registerRoles(v1, handler.NewRoleHandler(d.Services.Roles, d.Timeout))
	registerReservations(v1, handler.NewReservationHandler(d.Services.Reservations, d.Timeout))
	return e
}

func registerAuth(e *echo.Echo, h *handler.AuthHandler, auth, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/login", h.Login)
	g.POST("/register", h.Register)
	g.POST("/logout", h.Logout, auth)
	g.GET("/me", h.Me, auth)
}

// Catalogue reads are public and cached; writes need staff tokens and drop
// the cached reads.
func registerFlights(e *echo.Echo, h *handler.FlightHandler, auth, limit, cache, invalidate echo.MiddlewareFunc) {
	g := e.Group("/v1/flights", limit)
	g.GET("", h.List, cache)
	g.GET("/:id", h.Get, cache)
	g.GET("/:id/seats", h.Seats)
	g.POST("", h.Create, auth, middleware.RequireAction(policy.FlightCreate), invalidate)
	g.PATCH("/:id", h.Update, auth, middleware.RequireAction(policy.FlightUpdate), invalidate)
	g.DELETE("/:id", h.Delete, auth, middleware.RequireAction(policy.FlightDelete), invalidate)
}

func registerUsers(v1 *echo.Group, h *handler.UserHandler) {
	// target-role checks for account creation happen in the service
	v1.POST("/users/clients", h.AddClient)
	v1.POST("/users/employees", h.AddEmployee)
	v1.GET("/users", h.List, middleware.RequireAction(policy.UserList))
	v1.GET("/users/:dpi", h.Find, middleware.RequireAction(policy.UserFind))
	v1.PATCH("/users/:dpi", h.Update, middleware.RequireAction(policy.UserUpdate))
	v1.DELETE("/users/:dpi", h.Delete, middleware.RequireAction(policy.UserDelete))
}

func registerRoles(v1 *echo.Group, h *handler.RoleHandler) {
	v1.POST("/roles", h.Add, middleware.RequireAction(policy.RoleAdd))
	v1.GET("/roles", h.List, middleware.RequireAction(policy.RoleList))
	v1.PATCH("/roles/:id", h.Rename, middleware.RequireAction(policy.RoleUpdate))
	v1.DELETE("/roles/:id", h.Delete, middleware.RequireAction(policy.RoleDelete))
}

func registerReservations(v1 *echo.Group, h *handler.ReservationHandler) {
	v1.POST("/reservations", h.Create, middleware.RequireAction(policy.ReservationCreate))
	v1.GET("/my-reservations", h.ListMine, middleware.RequireAction(policy.ReservationListOwn))
	v1.DELETE("/reservations/:id", h.Cancel, middleware.RequireAction(policy.ReservationCancel))
}

// errorHandler renders echo errors (unknown routes, body limit, panics) as
// envelopes.
func errorHandler(log logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := http.StatusInternalServerError, "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
		} else {
			log.Error("unhandled error", "error", err, "path", c.Request().URL.Path)
		}
		if status == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}
		res := service.Result{Message: msg, StatusCode: status}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, res)
	}
}
