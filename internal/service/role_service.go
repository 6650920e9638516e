package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/policy"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/validation"
)

// RoleService manages the roles table. Only Administrador may use it.
type RoleService struct {
	roles    *repository.RoleRepo
	validate *validator.Validate
	log      logger.Logger
}

// RoleInput is the body of role creation and renaming.
type RoleInput struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

func NewRoleService(roles *repository.RoleRepo, log logger.Logger) *RoleService {
	return &RoleService{roles: roles, validate: validation.New(), log: log}
}

func (s *RoleService) cleanName(name string) (string, *Result) {
	in := RoleInput{Name: strings.TrimSpace(name)}
	if err := s.validate.Struct(in); err != nil {
		r := invalid(validation.Fields(err))
		return "", &r
	}
	return in.Name, nil
}

func (s *RoleService) Add(ctx context.Context, actor model.Identity, name string) Result {
	if res, allowed := authorize(actor, policy.RoleAdd, ""); !allowed {
		return res
	}
	name, bad := s.cleanName(name)
	if bad != nil {
		return *bad
	}
	taken, err := s.roles.ActiveNameTaken(ctx, name, 0)
	if err != nil {
		return internal(ctx, s.log, "roles.add", err)
	}
	if taken {
		return conflict(fmt.Sprintf("role %q already exists", name))
	}
	role, err := s.roles.Create(ctx, name)
	if errors.Is(err, repository.ErrDuplicate) {
		return conflict(fmt.Sprintf("role %q already exists", name))
	}
	if err != nil {
		return internal(ctx, s.log, "roles.add", err)
	}
	return created("role created", role)
}

// ListActive returns active roles as an id to name map.
func (s *RoleService) ListActive(ctx context.Context, actor model.Identity) Result {
	if res, allowed := authorize(actor, policy.RoleList, ""); !allowed {
		return res
	}
	roles, err := s.roles.ListActive(ctx)
	if err != nil {
		return internal(ctx, s.log, "roles.list", err)
	}
	out := make(map[uint64]string, len(roles))
	for _, r := range roles {
		out[r.ID] = r.Name
	}
	return ok("active roles", out)
}

func (s *RoleService) Rename(ctx context.Context, actor model.Identity, id uint64, name string) Result {
	if res, allowed := authorize(actor, policy.RoleUpdate, ""); !allowed {
		return res
	}
	name, bad := s.cleanName(name)
	if bad != nil {
		return *bad
	}
	role, err := s.roles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRoleNotFound) {
		return notFound(fmt.Sprintf("role %d does not exist", id))
	}
	if err != nil {
		return internal(ctx, s.log, "roles.rename", err)
	}
	taken, err := s.roles.ActiveNameTaken(ctx, name, id)
	if err != nil {
		return internal(ctx, s.log, "roles.rename", err)
	}
	if taken {
		return conflict(fmt.Sprintf("role %q already exists", name))
	}
	if err := s.roles.Rename(ctx, id, name); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return conflict(fmt.Sprintf("role %q already exists", name))
		}
		return internal(ctx, s.log, "roles.rename", err)
	}
	role.Name = name
	return ok("role updated", role)
}

// Delete soft-deletes a role. Deleting an inactive role succeeds unchanged.
func (s *RoleService) Delete(ctx context.Context, actor model.Identity, id uint64) Result {
	if res, allowed := authorize(actor, policy.RoleDelete, ""); !allowed {
		return res
	}
	role, err := s.roles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRoleNotFound) {
		return notFound(fmt.Sprintf("role %d does not exist", id))
	}
	if err != nil {
		return internal(ctx, s.log, "roles.delete", err)
	}
	if role.Status == model.StatusInactive {
		return ok("role already inactive", nil)
	}
	if err := s.roles.SetStatus(ctx, id, model.StatusInactive); err != nil {
		return internal(ctx, s.log, "roles.delete", err)
	}
	s.log.Info("role deactivated", "role_id", id, "by", actor.UserID)
	return ok("role deleted", nil)
}
