package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/service"
)

type RoleHandler struct {
	base
	roles *service.RoleService
}

func NewRoleHandler(roles *service.RoleService, timeout time.Duration) *RoleHandler {
	return &RoleHandler{base: newBase(timeout), roles: roles}
}

func (h *RoleHandler) Add(c echo.Context) error {
	var req service.RoleInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.roles.Add(ctx, actor(c), req.Name))
}

func (h *RoleHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.roles.ListActive(ctx, actor(c)))
}

func (h *RoleHandler) Rename(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "must be a positive integer")
	}
	var req service.RoleInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.roles.Rename(ctx, actor(c), id, req.Name))
}

func (h *RoleHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "must be a positive integer")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	return respond(c, h.roles.Delete(ctx, actor(c), id))
}
