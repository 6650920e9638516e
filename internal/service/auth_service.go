package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/utils"
)

// AuthService verifies credentials and issues session tokens.
type AuthService struct {
	users     *repository.UserRepo
	profiles  *repository.ProfileRepo
	codec     *utils.Codec
	accessTTL time.Duration
	log       logger.Logger
}

func NewAuthService(users *repository.UserRepo, profiles *repository.ProfileRepo, codec *utils.Codec, accessTTL time.Duration, log logger.Logger) *AuthService {
	return &AuthService{users: users, profiles: profiles, codec: codec, accessTTL: accessTTL, log: log}
}

// Authenticate returns the active account matching email and password.
// Unknown emails, inactive accounts and wrong passwords all produce
// ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		utils.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) || u.Status != model.StatusActive {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        string    `json:"role"`
}

// Login authenticates and issues a session token enriched with the caller's
// profile fields.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.log.Warn("login rejected", "email", repository.NormalizeEmail(email))
		}
		return LoginResult{}, err
	}
	role, ok := model.RoleNameForID(u.RoleID)
	if !ok {
		return LoginResult{}, fmt.Errorf("user %d has unsupported role id %d", u.ID, u.RoleID)
	}

	claims := utils.Claims{UserID: u.ID, Role: string(role)}
	claims.Subject = u.Email
	if err := s.enrich(ctx, &claims, u, role); err != nil {
		return LoginResult{}, err
	}
	tok, err := s.codec.Issue(claims, s.accessTTL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("login succeeded", "user_id", u.ID, "role", role)
	return LoginResult{AccessToken: tok.Token, TokenType: "bearer", ExpiresAt: tok.Exp, Role: string(role)}, nil
}

func (s *AuthService) enrich(ctx context.Context, c *utils.Claims, u *model.User, role model.RoleName) error {
	if role == model.RoleCliente {
		cl, err := s.profiles.ClientByUserID(ctx, s.users.DB(), u.ID)
		if errors.Is(err, repository.ErrClientNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load client profile: %w", err)
		}
		c.Name, c.Surname, c.DPI, c.Phone = cl.FirstName, cl.LastName, cl.DPI, cl.Phone
		return nil
	}
	e, err := s.profiles.EmployeeByUserID(ctx, u.ID)
	if errors.Is(err, repository.ErrEmployeeNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load employee profile: %w", err)
	}
	c.Name, c.Surname, c.DPI, c.Phone = e.FirstName, e.LastName, e.DPI, e.Phone
	return nil
}

// Me returns the account and profile behind the caller's token.
func (s *AuthService) Me(ctx context.Context, actor model.Identity) Result {
	u, err := s.users.GetByID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return notFound("user does not exist")
	}
	if err != nil {
		return internal(ctx, s.log, "auth.me", err)
	}
	p := model.UserProfile{User: *u, Role: string(actor.Role)}
	if actor.Role == model.RoleCliente {
		if c, err := s.profiles.ClientByUserID(ctx, s.users.DB(), u.ID); err == nil {
			p.Client = c
		} else if !errors.Is(err, repository.ErrClientNotFound) {
			return internal(ctx, s.log, "auth.me", err)
		}
	} else {
		if e, err := s.profiles.EmployeeByUserID(ctx, u.ID); err == nil {
			p.Employee = e
		} else if !errors.Is(err, repository.ErrEmployeeNotFound) {
			return internal(ctx, s.log, "auth.me", err)
		}
	}
	return ok("current user", p)
}

// Logout is stateless: tokens simply expire.
func (s *AuthService) Logout(_ context.Context, actor model.Identity) Result {
	s.log.Info("logout", "user_id", actor.UserID)
	return ok("session closed", nil)
}
