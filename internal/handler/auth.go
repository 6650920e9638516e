package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/middleware"
	"github.com/iliyamo/airline-reservation/internal/service"
)

// AuthHandler serves login, self-registration and the session endpoints.
type AuthHandler struct {
	base
	auth         *service.AuthService
	registration *service.RegistrationService
}

func NewAuthHandler(auth *service.AuthService, registration *service.RegistrationService, timeout time.Duration) *AuthHandler {
	return &AuthHandler{base: newBase(timeout), auth: auth, registration: registration}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. Every credential failure
// is the same 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return middleware.Unauthorized(c, service.ErrInvalidCredentials.Error())
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	out, err := h.auth.Login(ctx, req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return middleware.Unauthorized(c, err.Error())
	}
	if err != nil {
		logger.FromContext(ctx).Error("login failed", "error", err)
		return respond(c, service.Result{Message: "internal error", StatusCode: http.StatusInternalServerError, Kind: service.KindInternal})
	}
	return respond(c, service.Result{Success: true, Message: "login successful", Data: out, StatusCode: http.StatusOK})
}

// Register is public client self-registration.
func (h *AuthHandler) Register(c echo.Context) error {
	var in service.ClientInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.registration.RegisterClient(ctx, in))
}

func (h *AuthHandler) Logout(c echo.Context) error {
	return respond(c, h.auth.Logout(c.Request().Context(), actor(c)))
}

func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.auth.Me(ctx, actor(c)))
}
