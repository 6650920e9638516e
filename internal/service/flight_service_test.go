package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/testutil"
)

func flightInput(c testutil.Catalog, date string) FlightInput {
	return FlightInput{
		Date:          date,
		DepartureTime: "14:00:00",
		ArrivalTime:   "16:45:00",
		DestinationID: c.DestinationID,
		AirplaneID:    c.AirplaneID,
	}
}

func TestFlightCreate(t *testing.T) {
	t.Run("Should create an active flight", func(t *testing.T) {
		e := newEnv(t)
		res := e.flightSvc.Create(ctxBg, agent, flightInput(e.cat, "2025-03-11"))
		require.True(t, res.Success, res.Message)
		f := res.Data.(*model.Flight)
		assert.NotZero(t, f.ID)
		assert.Equal(t, model.StatusActive, f.Status)
		assert.Equal(t, model.ClockTime{Hour: 16, Minute: 45}, f.ArrivalTime)
	})

	t.Run("Should reject the same date, destination and airplane", func(t *testing.T) {
		e := newEnv(t)
		res := e.flightSvc.Create(ctxBg, admin, flightInput(e.cat, "2025-03-10"))
		assert.Equal(t, KindConflict, res.Kind)
		assert.Equal(t, msgScheduleTaken, res.Message)
		assert.Equal(t, 1, testutil.Count(t, e.db, "flights"))
	})

	t.Run("Should allow the triple again once the old flight is inactive", func(t *testing.T) {
		e := newEnv(t)
		testutil.SetStatus(t, e.db, "flights", e.cat.FlightID, model.StatusInactive)
		res := e.flightSvc.Create(ctxBg, admin, flightInput(e.cat, "2025-03-10"))
		assert.True(t, res.Success, res.Message)
	})

	t.Run("Should validate time fields", func(t *testing.T) {
		e := newEnv(t)
		in := flightInput(e.cat, "2025-03-11")
		in.DepartureTime = "24:00:00"
		in.ArrivalTime = "10:60"
		res := e.flightSvc.Create(ctxBg, admin, in)
		assert.Equal(t, KindValidation, res.Kind)
		assert.Contains(t, res.Errors, "departure_time")
		assert.Contains(t, res.Errors, "arrival_time")
	})

	t.Run("Should reject unknown references", func(t *testing.T) {
		e := newEnv(t)
		in := flightInput(e.cat, "2025-03-11")
		in.AirplaneID = 999
		res := e.flightSvc.Create(ctxBg, admin, in)
		assert.Equal(t, KindNotFound, res.Kind)
		assert.Equal(t, "airplane 999 does not exist", res.Message)
	})

	t.Run("Should deny clients", func(t *testing.T) {
		e := newEnv(t)
		assert.Equal(t, KindDenied, e.flightSvc.Create(ctxBg, stray, flightInput(e.cat, "2025-03-11")).Kind)
	})
}

func TestFlightUpdate(t *testing.T) {
	t.Run("Should write only supplied fields", func(t *testing.T) {
		e := newEnv(t)
		dep := "09:15:00"
		res := e.flightSvc.Update(ctxBg, admin, e.cat.FlightID, FlightPatch{DepartureTime: &dep})
		require.True(t, res.Success, res.Message)

		f, err := e.flights.GetByID(ctxBg, e.cat.FlightID)
		require.NoError(t, err)
		assert.Equal(t, model.ClockTime{Hour: 9, Minute: 15}, f.DepartureTime)
		assert.Equal(t, model.ClockTime{Hour: 10, Minute: 30}, f.ArrivalTime)
		assert.Equal(t, "2025-03-10", f.Date.Format("2006-01-02"))
	})

	t.Run("Should reject moving onto another flight's triple", func(t *testing.T) {
		e := newEnv(t)
		res := e.flightSvc.Create(ctxBg, admin, flightInput(e.cat, "2025-03-11"))
		require.True(t, res.Success, res.Message)
		other := res.Data.(*model.Flight)

		date := "2025-03-10"
		res = e.flightSvc.Update(ctxBg, admin, other.ID, FlightPatch{Date: &date})
		assert.Equal(t, KindConflict, res.Kind)
	})

	t.Run("Should reject an empty patch and bad times", func(t *testing.T) {
		e := newEnv(t)
		assert.Equal(t, KindValidation, e.flightSvc.Update(ctxBg, admin, e.cat.FlightID, FlightPatch{}).Kind)
		bad := "7:00"
		assert.Equal(t, KindValidation, e.flightSvc.Update(ctxBg, admin, e.cat.FlightID, FlightPatch{ArrivalTime: &bad}).Kind)
	})

	t.Run("Should report unknown flights", func(t *testing.T) {
		e := newEnv(t)
		dep := "09:15:00"
		assert.Equal(t, KindNotFound, e.flightSvc.Update(ctxBg, admin, 999, FlightPatch{DepartureTime: &dep}).Kind)
	})
}

func TestFlightDeleteAndRead(t *testing.T) {
	e := newEnv(t)

	res := e.flightSvc.List(ctxBg, repository.FlightFilter{DestinationID: e.cat.DestinationID})
	require.True(t, res.Success)
	assert.Len(t, res.Data.([]model.Flight), 1)
	assert.True(t, e.flightSvc.Get(ctxBg, e.cat.FlightID).Success)

	res = e.flightSvc.Delete(ctxBg, agent, e.cat.FlightID)
	require.True(t, res.Success, res.Message)
	res = e.flightSvc.Delete(ctxBg, agent, e.cat.FlightID)
	assert.True(t, res.Success)
	assert.Equal(t, "flight already inactive", res.Message)

	assert.Equal(t, KindNotFound, e.flightSvc.Get(ctxBg, e.cat.FlightID).Kind)
	assert.Equal(t, KindNotFound, e.flightSvc.Seats(ctxBg, e.cat.FlightID).Kind)
	assert.Empty(t, e.flightSvc.List(ctxBg, repository.FlightFilter{}).Data)
	assert.Equal(t, KindNotFound, e.flightSvc.Delete(ctxBg, agent, 999).Kind)
}
