package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/model"
)

func TestRoleService(t *testing.T) {
	t.Run("Should list the seeded roles", func(t *testing.T) {
		e := newEnv(t)
		res := e.roleSvc.ListActive(ctxBg, admin)
		require.True(t, res.Success, res.Message)
		assert.Equal(t, map[uint64]string{1: "Administrador", 2: "Cliente", 3: "Agente"}, res.Data)
	})

	t.Run("Should add, rename and soft delete a role", func(t *testing.T) {
		e := newEnv(t)
		res := e.roleSvc.Add(ctxBg, admin, "  Supervisor ")
		require.True(t, res.Success, res.Message)
		role := res.Data.(*model.Role)
		assert.Equal(t, "Supervisor", role.Name)

		assert.Equal(t, KindConflict, e.roleSvc.Add(ctxBg, admin, "Supervisor").Kind)

		res = e.roleSvc.Rename(ctxBg, admin, role.ID, "Auditor")
		require.True(t, res.Success, res.Message)
		assert.Equal(t, "Auditor", res.Data.(*model.Role).Name)
		assert.Equal(t, KindConflict, e.roleSvc.Rename(ctxBg, admin, role.ID, "Cliente").Kind)

		res = e.roleSvc.Delete(ctxBg, admin, role.ID)
		require.True(t, res.Success, res.Message)
		list := e.roleSvc.ListActive(ctxBg, admin).Data.(map[uint64]string)
		assert.NotContains(t, list, role.ID)

		res = e.roleSvc.Delete(ctxBg, admin, role.ID)
		assert.True(t, res.Success)
		assert.Equal(t, "role already inactive", res.Message)

		// the name is free again once the old role is inactive
		assert.True(t, e.roleSvc.Add(ctxBg, admin, "Auditor").Success)
	})

	t.Run("Should report unknown ids and bad names", func(t *testing.T) {
		e := newEnv(t)
		assert.Equal(t, KindNotFound, e.roleSvc.Delete(ctxBg, admin, 999).Kind)
		assert.Equal(t, KindNotFound, e.roleSvc.Rename(ctxBg, admin, 999, "Auditor").Kind)
		res := e.roleSvc.Add(ctxBg, admin, "  x  ")
		assert.Equal(t, KindValidation, res.Kind)
		assert.Equal(t, "must be at least 2 characters", res.Errors["name"])
		assert.Equal(t, KindValidation, e.roleSvc.Add(ctxBg, admin, strings.Repeat("a", 101)).Kind)
		assert.True(t, e.roleSvc.Add(ctxBg, admin, "Ñu").Success)
	})

	t.Run("Should allow only Administrador", func(t *testing.T) {
		e := newEnv(t)
		assert.Equal(t, KindDenied, e.roleSvc.Add(ctxBg, agent, "Auditor").Kind)
		assert.Equal(t, KindDenied, e.roleSvc.ListActive(ctxBg, stray).Kind)
		assert.Equal(t, KindDenied, e.roleSvc.Delete(ctxBg, agent, 2).Kind)
	})
}
