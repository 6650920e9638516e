package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/policy"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/validation"
)

// UserPatch carries the optional fields of a user update. Nil means "leave
// unchanged". Address, nationality and emergency phone exist only on
// client profiles.
type UserPatch struct {
	Email          *string `json:"email" validate:"omitnil,email,max=255"`
	FirstName      *string `json:"first_name" validate:"omitnil,min=2,max=100"`
	LastName       *string `json:"last_name" validate:"omitnil,min=2,max=100"`
	Phone          *string `json:"phone" validate:"omitnil,len=8,number"`
	Address        *string `json:"address" validate:"omitnil,min=5,max=500"`
	Nationality    *string `json:"nationality" validate:"omitnil,min=3,max=100"`
	EmergencyPhone *string `json:"emergency_phone" validate:"omitnil,len=8,number"`
}

func (p UserPatch) empty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil && p.Phone == nil &&
		p.Address == nil && p.Nationality == nil && p.EmergencyPhone == nil
}

// UserService is the staff-facing user directory.
type UserService struct {
	db       *sql.DB
	users    *repository.UserRepo
	profiles *repository.ProfileRepo
	validate *validator.Validate
	log      logger.Logger
}

func NewUserService(users *repository.UserRepo, profiles *repository.ProfileRepo, log logger.Logger) *UserService {
	return &UserService{db: users.DB(), users: users, profiles: profiles, validate: validation.New(), log: log}
}

// List returns every account, optionally filtered by status or role name.
func (s *UserService) List(ctx context.Context, actor model.Identity, f repository.UserFilter) Result {
	if res, allowed := authorize(actor, policy.UserList, ""); !allowed {
		return res
	}
	if f.Status != "" && !f.Status.Valid() {
		return invalidField("status", "must be one of: active inactive")
	}
	users, err := s.users.List(ctx, f)
	if err != nil {
		return internal(ctx, s.log, "users.list", err)
	}
	if users == nil {
		users = []model.UserSummary{}
	}
	return ok("users", users)
}

// lookup resolves a DPI to a profile, trying clients before employees.
func (s *UserService) lookup(ctx context.Context, dpi string) (*model.UserProfile, error) {
	p := &model.UserProfile{}
	var userID uint64
	c, err := s.profiles.ClientByDPI(ctx, dpi)
	switch {
	case err == nil:
		p.Client, userID = c, c.UserID
	case errors.Is(err, repository.ErrClientNotFound):
		e, err := s.profiles.EmployeeByDPI(ctx, dpi)
		if err != nil {
			return nil, err
		}
		p.Employee, userID = e, e.UserID
	default:
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.User = *u
	if name, ok := model.RoleNameForID(u.RoleID); ok {
		p.Role = string(name)
	}
	return p, nil
}

func isProfileMissing(err error) bool {
	return errors.Is(err, repository.ErrEmployeeNotFound) || errors.Is(err, repository.ErrUserNotFound)
}

func validDPI(dpi string) bool {
	if len(dpi) != 13 {
		return false
	}
	for _, r := range dpi {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FindByDPI returns the account and profile owning dpi.
func (s *UserService) FindByDPI(ctx context.Context, actor model.Identity, dpi string) Result {
	if res, allowed := authorize(actor, policy.UserFind, ""); !allowed {
		return res
	}
	if !validDPI(dpi) {
		return invalidField("dpi", "must be exactly 13 digits")
	}
	p, err := s.lookup(ctx, dpi)
	if isProfileMissing(err) {
		return notFound("no user with DPI " + dpi)
	}
	if err != nil {
		return internal(ctx, s.log, "users.find", err)
	}
	return ok("user found", p)
}

// DeleteByDPI deactivates the account owning dpi. Deleting an inactive
// account succeeds without changes.
func (s *UserService) DeleteByDPI(ctx context.Context, actor model.Identity, dpi string) Result {
	if res, allowed := authorize(actor, policy.UserDelete, ""); !allowed {
		return res
	}
	if !validDPI(dpi) {
		return invalidField("dpi", "must be exactly 13 digits")
	}
	p, err := s.lookup(ctx, dpi)
	if isProfileMissing(err) {
		return notFound("no user with DPI " + dpi)
	}
	if err != nil {
		return internal(ctx, s.log, "users.delete", err)
	}
	if p.User.Status == model.StatusInactive {
		return ok("user already inactive", nil)
	}
	if err := s.users.SetStatus(ctx, p.User.ID, model.StatusInactive); err != nil {
		return internal(ctx, s.log, "users.delete", err)
	}
	s.log.Info("user deactivated", "user_id", p.User.ID, "by", actor.UserID)
	return ok("user deleted", nil)
}

// UpdateByDPI applies patch to the account and profile owning dpi.
func (s *UserService) UpdateByDPI(ctx context.Context, actor model.Identity, dpi string, patch UserPatch) Result {
	if res, allowed := authorize(actor, policy.UserUpdate, ""); !allowed {
		return res
	}
	if !validDPI(dpi) {
		return invalidField("dpi", "must be exactly 13 digits")
	}
	if patch.empty() {
		return invalidField("_", "no fields to update")
	}
	if err := s.validate.Struct(patch); err != nil {
		return invalid(validation.Fields(err))
	}
	p, err := s.lookup(ctx, dpi)
	if isProfileMissing(err) {
		return notFound("no user with DPI " + dpi)
	}
	if err != nil {
		return internal(ctx, s.log, "users.update", err)
	}

	table, profileID, set := "clients", uint64(0), map[string]any{}
	putIf := func(col string, v *string) {
		if v != nil {
			set[col] = *v
		}
	}
	putIf("first_name", patch.FirstName)
	putIf("last_name", patch.LastName)
	putIf("phone", patch.Phone)
	if p.Client != nil {
		profileID = p.Client.ID
		putIf("address", patch.Address)
		putIf("nationality", patch.Nationality)
		putIf("emergency_phone", patch.EmergencyPhone)
	} else {
		table, profileID = "employees", p.Employee.ID
		fields := map[string]string{}
		for name, v := range map[string]*string{"address": patch.Address, "nationality": patch.Nationality, "emergency_phone": patch.EmergencyPhone} {
			if v != nil {
				fields[name] = "applies to client accounts only"
			}
		}
		if len(fields) > 0 {
			return invalid(fields)
		}
	}

	if patch.Email != nil {
		taken, err := s.users.EmailTaken(ctx, s.db, *patch.Email, p.User.ID)
		if err != nil {
			return internal(ctx, s.log, "users.update", err)
		}
		if taken {
			return conflict(msgEmailTaken)
		}
	}

	err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if patch.Email != nil {
			if err := s.users.UpdateEmailTx(ctx, tx, p.User.ID, *patch.Email); err != nil {
				return err
			}
		}
		return s.profiles.UpdateTx(ctx, tx, table, profileID, set)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return conflict(msgEmailTaken)
	}
	if err != nil {
		return internal(ctx, s.log, "users.update", err)
	}
	updated, err := s.lookup(ctx, dpi)
	if err != nil {
		return internal(ctx, s.log, "users.update", err)
	}
	return ok("user updated", updated)
}
