package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/service"
)

// UserHandler is the staff user directory plus privileged account creation.
type UserHandler struct {
	base
	users        *service.UserService
	registration *service.RegistrationService
}

func NewUserHandler(users *service.UserService, registration *service.RegistrationService, timeout time.Duration) *UserHandler {
	return &UserHandler{base: newBase(timeout), users: users, registration: registration}
}

func (h *UserHandler) AddClient(c echo.Context) error {
	var in service.ClientInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.registration.AddClient(ctx, actor(c), in))
}

func (h *UserHandler) AddEmployee(c echo.Context) error {
	var in service.EmployeeInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.registration.AddEmployee(ctx, actor(c), in))
}

// List accepts optional ?status= and ?role= filters.
func (h *UserHandler) List(c echo.Context) error {
	f := repository.UserFilter{
		Status: model.Status(c.QueryParam("status")),
		Role:   c.QueryParam("role"),
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.users.List(ctx, actor(c), f))
}

func (h *UserHandler) Find(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.users.FindByDPI(ctx, actor(c), c.Param("dpi")))
}

func (h *UserHandler) Update(c echo.Context) error {
	var patch service.UserPatch
	if ok, err := bind(c, &patch); !ok {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.users.UpdateByDPI(ctx, actor(c), c.Param("dpi"), patch))
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.users.DeleteByDPI(ctx, actor(c), c.Param("dpi")))
}
