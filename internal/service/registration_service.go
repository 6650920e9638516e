package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/policy"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/utils"
	"github.com/iliyamo/airline-reservation/internal/validation"
)

const (
	msgEmailTaken = "email already registered"
	msgDPITaken   = "DPI already registered"
	msgNITTaken   = "NIT already registered"
	msgRegistered = "user registered successfully"
)

type ClientInput struct {
	Email          string `json:"email" validate:"required,email,max=255"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	DPI            string `json:"dpi" validate:"required,len=13,number"`
	FirstName      string `json:"first_name" validate:"required,min=2,max=100"`
	LastName       string `json:"last_name" validate:"required,min=2,max=100"`
	Phone          string `json:"phone" validate:"required,len=8,number"`
	Address        string `json:"address" validate:"required,min=5,max=500"`
	BirthDate      string `json:"birth_date" validate:"required,ymd"`
	Nationality    string `json:"nationality" validate:"required,min=3,max=100"`
	EmergencyPhone string `json:"emergency_phone" validate:"required,len=8,number"`
}

type EmployeeInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	DPI       string `json:"dpi" validate:"required,len=13,number"`
	NIT       string `json:"nit" validate:"required,len=13,number"`
	Phone     string `json:"phone" validate:"required,len=8,number"`
	Age       int    `json:"age" validate:"required,gte=18,lte=120"`
	Role      string `json:"role" validate:"required,oneof=Administrador Agente"`
}

// Registered is the payload returned after a successful registration.
type Registered struct {
	UserID   uint64          `json:"user_id"`
	Email    string          `json:"email"`
	Role     model.RoleName  `json:"role"`
	Client   *model.Client   `json:"client,omitempty"`
	Employee *model.Employee `json:"employee,omitempty"`
}

// RegistrationService creates accounts together with their profile in a
// single transaction.
type RegistrationService struct {
	db         *sql.DB
	users      *repository.UserRepo
	profiles   *repository.ProfileRepo
	validate   *validator.Validate
	bcryptCost int
	now        func() time.Time
	log        logger.Logger
}

func NewRegistrationService(users *repository.UserRepo, profiles *repository.ProfileRepo, bcryptCost int, log logger.Logger) *RegistrationService {
	return &RegistrationService{
		db:         users.DB(),
		users:      users,
		profiles:   profiles,
		validate:   validation.New(),
		bcryptCost: bcryptCost,
		now:        time.Now,
		log:        log,
	}
}

// WithClock overrides the time used to compute ages.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	s.now = now
	return s
}

func (s *RegistrationService) birthDate(raw string) (model.Date, *Result) {
	d, err := model.ParseDate(raw)
	if err != nil {
		r := invalidField("birth_date", "must be a date in YYYY-MM-DD format")
		return model.Date{}, &r
	}
	if d.After(s.now()) {
		r := invalidField("birth_date", "must not be in the future")
		return model.Date{}, &r
	}
	return d, nil
}

// duplicateConflict names the unique key a concurrent registration hit
// between the pre-checks and the insert.
func duplicateConflict(err error) Result {
	key := strings.ToLower(repository.DuplicateKey(err))
	switch {
	case strings.Contains(key, "email"):
		return conflict(msgEmailTaken)
	case strings.Contains(key, "dpi"):
		return conflict(msgDPITaken)
	case strings.Contains(key, "nit"):
		return conflict(msgNITTaken)
	}
	return conflict("account already registered")
}

// checkUnique runs the email, DPI and (for employees) NIT checks in that
// order and returns the first conflict.
func (s *RegistrationService) checkUnique(ctx context.Context, email, dpi, nit string) (*Result, error) {
	taken, err := s.users.EmailTaken(ctx, s.db, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		r := conflict(msgEmailTaken)
		return &r, nil
	}
	if taken, err = s.profiles.DPITaken(ctx, s.db, dpi); err != nil {
		return nil, err
	}
	if taken {
		r := conflict(msgDPITaken)
		return &r, nil
	}
	if nit == "" {
		return nil, nil
	}
	if taken, err = s.profiles.NITTaken(ctx, s.db, nit); err != nil {
		return nil, err
	}
	if taken {
		r := conflict(msgNITTaken)
		return &r, nil
	}
	return nil, nil
}

// RegisterClient is public self-registration; the account always gets the
// Cliente role.
func (s *RegistrationService) RegisterClient(ctx context.Context, in ClientInput) Result {
	if err := s.validate.Struct(in); err != nil {
		return invalid(validation.Fields(err))
	}
	birth, bad := s.birthDate(in.BirthDate)
	if bad != nil {
		return *bad
	}
	if res, err := s.checkUnique(ctx, in.Email, in.DPI, ""); err != nil {
		return internal(ctx, s.log, "registration.client", err)
	} else if res != nil {
		return *res
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return internal(ctx, s.log, "registration.client", err)
	}

	client := &model.Client{
		DPI:            in.DPI,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Phone:          in.Phone,
		Address:        in.Address,
		BirthDate:      birth,
		Nationality:    in.Nationality,
		Age:            model.AgeAt(birth, s.now()),
		EmergencyPhone: in.EmergencyPhone,
	}
	userID, err := s.persistClient(ctx, in.Email, hash, client)
	if errors.Is(err, repository.ErrDuplicate) {
		return duplicateConflict(err)
	}
	if err != nil {
		return internal(ctx, s.log, "registration.client", err)
	}
	s.log.Info("client registered", "user_id", userID, "client_id", client.ID)
	return created(msgRegistered, Registered{
		UserID: userID, Email: repository.NormalizeEmail(in.Email), Role: model.RoleCliente, Client: client,
	})
}

func (s *RegistrationService) persistClient(ctx context.Context, email, hash string, c *model.Client) (uint64, error) {
	var userID uint64
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		id, err := s.users.CreateTx(ctx, tx, email, hash, model.RoleIDCliente)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		c.UserID = id
		if err := s.profiles.CreateClientTx(ctx, tx, c); err != nil {
			return fmt.Errorf("create client: %w", err)
		}
		userID = id
		return nil
	})
	return userID, err
}

// RegisterEmployee creates an Administrador (role id 1) or Agente (role id
// 3) account. Any other role label is rejected before touching storage.
func (s *RegistrationService) RegisterEmployee(ctx context.Context, in EmployeeInput) Result {
	if err := s.validate.Struct(in); err != nil {
		return invalid(validation.Fields(err))
	}
	role, err := model.EmployeeRole(in.Role)
	if err != nil {
		return invalidField("role", err.Error())
	}
	roleID, _ := role.RoleID()
	if res, err := s.checkUnique(ctx, in.Email, in.DPI, in.NIT); err != nil {
		return internal(ctx, s.log, "registration.employee", err)
	} else if res != nil {
		return *res
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return internal(ctx, s.log, "registration.employee", err)
	}

	emp := &model.Employee{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		DPI:       in.DPI,
		NIT:       in.NIT,
		Phone:     in.Phone,
		Age:       in.Age,
	}
	var userID uint64
	err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		id, err := s.users.CreateTx(ctx, tx, in.Email, hash, roleID)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		emp.UserID = id
		if err := s.profiles.CreateEmployeeTx(ctx, tx, emp); err != nil {
			return fmt.Errorf("create employee: %w", err)
		}
		userID = id
		return nil
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return duplicateConflict(err)
	}
	if err != nil {
		return internal(ctx, s.log, "registration.employee", err)
	}
	s.log.Info("employee registered", "user_id", userID, "role", role)
	return created(msgRegistered, Registered{
		UserID: userID, Email: repository.NormalizeEmail(in.Email), Role: role, Employee: emp,
	})
}

// AddClient is the privileged path used by staff to create a Cliente account.
func (s *RegistrationService) AddClient(ctx context.Context, actor model.Identity, in ClientInput) Result {
	if res, allowed := authorize(actor, policy.UserAdd, model.RoleCliente); !allowed {
		return res
	}
	return s.RegisterClient(ctx, in)
}

// AddEmployee is the privileged path for staff accounts; the target role in
// the input decides who may call it. Callers who may not create any staff
// account are denied before the input is looked at.
func (s *RegistrationService) AddEmployee(ctx context.Context, actor model.Identity, in EmployeeInput) Result {
	if !mayAddStaff(actor.Role) {
		return denied(fmt.Sprintf("role %s cannot create employee accounts", actor.Role))
	}
	role, err := model.EmployeeRole(in.Role)
	if err != nil {
		return invalidField("role", err.Error())
	}
	if res, allowed := authorize(actor, policy.UserAdd, role); !allowed {
		return res
	}
	return s.RegisterEmployee(ctx, in)
}

func mayAddStaff(actor model.RoleName) bool {
	for _, target := range []model.RoleName{model.RoleAdministrador, model.RoleAgente} {
		if policy.Decide(actor, policy.UserAdd, target).Allowed {
			return true
		}
	}
	return false
}
