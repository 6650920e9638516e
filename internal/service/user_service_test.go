package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestUserDirectory(t *testing.T) {
	t.Run("Should list accounts and filter by role", func(t *testing.T) {
		e := newEnv(t)
		e.registerClient(t, "ana@example.com", "1234567890123")
		e.registerEmployee(t, "agent@airline.test", "1111111111111", "9999999999991", model.RoleAgente)

		res := e.userSvc.List(ctxBg, agent, repository.UserFilter{})
		require.True(t, res.Success, res.Message)
		assert.Len(t, res.Data.([]model.UserSummary), 2)

		res = e.userSvc.List(ctxBg, agent, repository.UserFilter{Role: "Cliente"})
		list := res.Data.([]model.UserSummary)
		require.Len(t, list, 1)
		assert.Equal(t, "ana@example.com", list[0].Email)

		res = e.userSvc.List(ctxBg, admin, repository.UserFilter{Status: "archived"})
		assert.Equal(t, KindValidation, res.Kind)
	})

	t.Run("Should deny clients", func(t *testing.T) {
		e := newEnv(t)
		assert.Equal(t, KindDenied, e.userSvc.List(ctxBg, stray, repository.UserFilter{}).Kind)
		assert.Equal(t, KindDenied, e.userSvc.FindByDPI(ctxBg, stray, "1234567890123").Kind)
	})

	t.Run("Should find clients before employees by DPI", func(t *testing.T) {
		e := newEnv(t)
		e.registerClient(t, "ana@example.com", "1234567890123")
		e.registerEmployee(t, "agent@airline.test", "1111111111111", "9999999999991", model.RoleAgente)

		res := e.userSvc.FindByDPI(ctxBg, admin, "1234567890123")
		require.True(t, res.Success, res.Message)
		p := res.Data.(*model.UserProfile)
		assert.Equal(t, "Cliente", p.Role)
		assert.NotNil(t, p.Client)

		res = e.userSvc.FindByDPI(ctxBg, admin, "1111111111111")
		p = res.Data.(*model.UserProfile)
		assert.Equal(t, "Agente", p.Role)
		assert.NotNil(t, p.Employee)

		assert.Equal(t, KindNotFound, e.userSvc.FindByDPI(ctxBg, admin, "5555555555555").Kind)
		assert.Equal(t, KindValidation, e.userSvc.FindByDPI(ctxBg, admin, "12ab").Kind)
	})

	t.Run("Should update only supplied fields", func(t *testing.T) {
		e := newEnv(t)
		e.registerClient(t, "ana@example.com", "1234567890123")

		res := e.userSvc.UpdateByDPI(ctxBg, agent, "1234567890123", UserPatch{
			Phone: strPtr("55599999"),
			Email: strPtr("Ana.Lopez@example.com"),
		})
		require.True(t, res.Success, res.Message)
		p := res.Data.(*model.UserProfile)
		assert.Equal(t, "55599999", p.Client.Phone)
		assert.Equal(t, "Lopez", p.Client.LastName)
		assert.Equal(t, "ana.lopez@example.com", p.User.Email)
	})

	t.Run("Should reject client-only fields on employees", func(t *testing.T) {
		e := newEnv(t)
		e.registerEmployee(t, "agent@airline.test", "1111111111111", "9999999999991", model.RoleAgente)
		res := e.userSvc.UpdateByDPI(ctxBg, admin, "1111111111111", UserPatch{Address: strPtr("Zona 4, Mixco")})
		assert.Equal(t, KindValidation, res.Kind)
		assert.Contains(t, res.Errors, "address")
	})

	t.Run("Should reject an email owned by someone else", func(t *testing.T) {
		e := newEnv(t)
		e.registerClient(t, "ana@example.com", "1234567890123")
		e.registerClient(t, "eva@example.com", "3210987654321")
		res := e.userSvc.UpdateByDPI(ctxBg, admin, "3210987654321", UserPatch{Email: strPtr("ana@example.com")})
		assert.Equal(t, KindConflict, res.Kind)
	})

	t.Run("Should soft delete idempotently and block login", func(t *testing.T) {
		e := newEnv(t)
		who := e.registerClient(t, "ana@example.com", "1234567890123")

		assert.Equal(t, KindDenied, e.userSvc.DeleteByDPI(ctxBg, agent, "1234567890123").Kind)

		res := e.userSvc.DeleteByDPI(ctxBg, admin, "1234567890123")
		require.True(t, res.Success, res.Message)
		u, err := e.users.GetByID(ctxBg, who.UserID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusInactive, u.Status)

		res = e.userSvc.DeleteByDPI(ctxBg, admin, "1234567890123")
		assert.True(t, res.Success)
		assert.Equal(t, "user already inactive", res.Message)

		_, err = e.auth.Login(ctxBg, "ana@example.com", testPassword)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
