package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/testutil"
	"github.com/iliyamo/airline-reservation/internal/utils"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type env struct {
	db  *sql.DB
	cat testutil.Catalog

	users        *repository.UserRepo
	profiles     *repository.ProfileRepo
	roles        *repository.RoleRepo
	flights      *repository.FlightRepo
	seats        *repository.SeatRepo
	airplanes    *repository.AirplaneRepo
	reservations *repository.ReservationRepo

	codec        *utils.Codec
	auth         *AuthService
	registration *RegistrationService
	userSvc      *UserService
	roleSvc      *RoleService
	flightSvc    *FlightService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.NewForTests()
	e := &env{
		db:           db,
		cat:          testutil.SeedCatalog(t, db),
		users:        repository.NewUserRepo(db),
		profiles:     repository.NewProfileRepo(db),
		roles:        repository.NewRoleRepo(db),
		flights:      repository.NewFlightRepo(db),
		seats:        repository.NewSeatRepo(db),
		airplanes:    repository.NewAirplaneRepo(db),
		reservations: repository.NewReservationRepo(db),
		codec:        utils.NewCodec("test-secret", 15*time.Minute),
	}
	e.auth = NewAuthService(e.users, e.profiles, e.codec, 30*time.Minute, log)
	e.registration = NewRegistrationService(e.users, e.profiles, bcrypt.MinCost, log).
		WithClock(func() time.Time { return fixedNow })
	e.userSvc = NewUserService(e.users, e.profiles, log)
	e.roleSvc = NewRoleService(e.roles, log)
	e.flightSvc = NewFlightService(e.flights, e.airplanes, e.seats, log)
	return e
}

func (e *env) reservationService(pub queue.Publisher) *ReservationService {
	return NewReservationService(e.reservations, e.flights, e.seats, e.profiles, pub, logger.NewForTests())
}

const testPassword = "s3cret-pass"

func clientInput(email, dpi string) ClientInput {
	return ClientInput{
		Email:          email,
		Password:       testPassword,
		DPI:            dpi,
		FirstName:      "Ana",
		LastName:       "Lopez",
		Phone:          "55512345",
		Address:        "Zona 10, Ciudad de Guatemala",
		BirthDate:      "1990-05-20",
		Nationality:    "Guatemalteca",
		EmergencyPhone: "55598765",
	}
}

func employeeInput(email, dpi, nit, role string) EmployeeInput {
	return EmployeeInput{
		Email:     email,
		Password:  testPassword,
		FirstName: "Carlos",
		LastName:  "Perez",
		DPI:       dpi,
		NIT:       nit,
		Phone:     "44412345",
		Age:       39,
		Role:      role,
	}
}

// registerClient creates a Cliente account and returns the identity a token
// for it would carry.
func (e *env) registerClient(t *testing.T, email, dpi string) model.Identity {
	t.Helper()
	res := e.registration.RegisterClient(context.Background(), clientInput(email, dpi))
	require.True(t, res.Success, res.Message)
	reg := res.Data.(Registered)
	return model.Identity{UserID: reg.UserID, Email: reg.Email, Role: model.RoleCliente}
}

func (e *env) registerEmployee(t *testing.T, email, dpi, nit string, role model.RoleName) model.Identity {
	t.Helper()
	res := e.registration.RegisterEmployee(context.Background(), employeeInput(email, dpi, nit, string(role)))
	require.True(t, res.Success, res.Message)
	reg := res.Data.(Registered)
	return model.Identity{UserID: reg.UserID, Email: reg.Email, Role: role}
}

var (
	admin = model.Identity{UserID: 900, Email: "admin@airline.test", Role: model.RoleAdministrador}
	agent = model.Identity{UserID: 901, Email: "agent@airline.test", Role: model.RoleAgente}
	stray = model.Identity{UserID: 902, Email: "nobody@airline.test", Role: model.RoleCliente}
	ctxBg = context.Background()
)
