package caravan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caravan-bot/internal/entity"
)

var (
	clock  = entity.Waypoint{Name: "City Clock", Location: "47.0,12.0"}
	mill   = entity.Waypoint{Name: "Old Mill", Location: "47.1,12.1"}
	harbor = entity.Waypoint{Name: "Harbor", Location: "47.2,12.2"}
	market = entity.Waypoint{Name: "Market", Location: "47.3,12.3"}

	alice = entity.User{ID: 1, DisplayName: "Alice"}
	bob   = entity.User{ID: 2, DisplayName: "Bob"}
)

func strPtr(s string) *string { return &s }

func newTestModel(t *testing.T) *Model {
	t.Helper()
	return NewModel("chan-1", "weekend-caravan", DefaultMaxGuests)
}

func newActiveModel(t *testing.T, route ...entity.Waypoint) *Model {
	t.Helper()
	m := newTestModel(t)
	_, err := m.SetRoute(route)
	require.NoError(t, err)
	_, err = m.Start()
	require.NoError(t, err)
	return m
}

func TestSetRoute(t *testing.T) {
	m := newTestModel(t)

	receipt, err := m.SetRoute([]entity.Waypoint{clock, mill})
	require.NoError(t, err)

	assert.Equal(t, []entity.Waypoint{clock, mill}, receipt.PlacesAdded)
	assert.Empty(t, receipt.PlacesRemoved)
	assert.Empty(t, receipt.OldRoute)
	assert.Equal(t, []entity.Waypoint{clock, mill}, receipt.NewRoute)
	require.NotNil(t, receipt.NextPlace)
	assert.Equal(t, clock, *receipt.NextPlace)
	assert.Equal(t, "weekend-caravan", receipt.ChannelName())
}

func TestSetRouteEmpty(t *testing.T) {
	m := newTestModel(t)

	_, err := m.SetRoute(nil)
	assert.ErrorIs(t, err, ErrEmptyRoute)
}

func TestSetRouteDuplicates(t *testing.T) {
	m := newTestModel(t)

	_, err := m.SetRoute([]entity.Waypoint{clock, mill, clock})
	var dupErr *DuplicatePlacesError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, []entity.Waypoint{clock}, dupErr.Places)
	assert.Empty(t, m.Route(), "failed update leaves the route untouched")
}

func TestSetRouteUnchanged(t *testing.T) {
	m := newTestModel(t)
	_, err := m.SetRoute([]entity.Waypoint{clock, mill})
	require.NoError(t, err)

	_, err = m.SetRoute([]entity.Waypoint{clock, mill})
	assert.ErrorIs(t, err, ErrRouteNotChanged)
}

func TestSetRoutePreservesVisitState(t *testing.T) {
	m := newActiveModel(t, clock, mill)
	_, err := m.Advance(nil)
	require.NoError(t, err)

	receipt, err := m.SetRoute([]entity.Waypoint{mill, clock, harbor})
	require.NoError(t, err)

	route := m.Route()
	require.Len(t, route, 3)
	assert.False(t, route[0].Visited, "mill was never visited")
	assert.True(t, route[1].Visited, "clock keeps its visited flag across the reorder")
	assert.False(t, route[2].Visited)

	assert.Equal(t, []entity.Waypoint{harbor}, receipt.PlacesAdded)
	assert.False(t, receipt.IsReorderOnly())
}

func TestSetRouteReorderOnly(t *testing.T) {
	m := newTestModel(t)
	_, err := m.SetRoute([]entity.Waypoint{clock, mill})
	require.NoError(t, err)

	receipt, err := m.SetRoute([]entity.Waypoint{mill, clock})
	require.NoError(t, err)
	assert.True(t, receipt.IsReorderOnly())
}

func TestAddStopsAtEnd(t *testing.T) {
	m := newTestModel(t)
	_, err := m.SetRoute([]entity.Waypoint{clock})
	require.NoError(t, err)

	receipt, err := m.AddStops([]entity.Waypoint{mill}, true)
	require.NoError(t, err)

	assert.Equal(t, []entity.Waypoint{clock, mill}, receipt.NewRoute)
	require.NotNil(t, receipt.Appended)
	assert.True(t, *receipt.Appended)
}

func TestAddStopsBeforeNextUnvisited(t *testing.T) {
	m := newActiveModel(t, clock, mill)
	_, err := m.Advance(nil)
	require.NoError(t, err)

	receipt, err := m.AddStops([]entity.Waypoint{harbor}, false)
	require.NoError(t, err)

	assert.Equal(t, []entity.Waypoint{clock, harbor, mill}, receipt.NewRoute,
		"new stop slots in before the first unvisited stop")
	require.NotNil(t, receipt.Appended)
	assert.False(t, *receipt.Appended)
	require.NotNil(t, receipt.NextPlace)
	assert.Equal(t, harbor, *receipt.NextPlace)
}

func TestAddStopsDuplicateOfExisting(t *testing.T) {
	m := newTestModel(t)
	_, err := m.SetRoute([]entity.Waypoint{clock})
	require.NoError(t, err)

	_, err = m.AddStops([]entity.Waypoint{clock}, true)
	var dupErr *DuplicatePlacesError
	require.ErrorAs(t, err, &dupErr)
	assert.Len(t, m.Route(), 1)
}

func TestRemoveStops(t *testing.T) {
	m := newTestModel(t)
	_, err := m.SetRoute([]entity.Waypoint{clock, mill, harbor})
	require.NoError(t, err)

	receipt, err := m.RemoveStops([]entity.Waypoint{mill})
	require.NoError(t, err)

	assert.Equal(t, []entity.Waypoint{mill}, receipt.PlacesRemoved)
	assert.Equal(t, []entity.Waypoint{clock, harbor}, receipt.NewRoute)
}

func TestRemoveStopsAllOrNothing(t *testing.T) {
	m := newTestModel(t)
	_, err := m.SetRoute([]entity.Waypoint{clock, mill})
	require.NoError(t, err)

	_, err = m.RemoveStops([]entity.Waypoint{mill, market})
	var missingErr *MissingPlacesError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, []entity.Waypoint{market}, missingErr.Places)
	assert.Len(t, m.Route(), 2, "nothing is removed when any requested place is missing")
}

func TestRemoveStopsEmpty(t *testing.T) {
	m := newTestModel(t)
	_, err := m.RemoveStops(nil)
	assert.ErrorIs(t, err, ErrRouteNotChanged)
}

func TestModeTransitions(t *testing.T) {
	m := newTestModel(t)
	_, err := m.SetRoute([]entity.Waypoint{clock})
	require.NoError(t, err)

	_, err = m.Stop()
	assert.ErrorIs(t, err, ErrModeNotChanged, "planning cannot jump straight to completed")

	receipt, err := m.Start()
	require.NoError(t, err)
	assert.Equal(t, entity.ModePlanning, receipt.OldMode)
	assert.Equal(t, entity.ModeActive, receipt.NewMode)
	assert.Nil(t, receipt.Statistics)

	_, err = m.Start()
	assert.ErrorIs(t, err, ErrModeNotChanged)

	stopReceipt, err := m.Stop()
	require.NoError(t, err)
	assert.Equal(t, entity.ModeCompleted, stopReceipt.NewMode)
	require.NotNil(t, stopReceipt.Statistics, "completion reports trip statistics")
}

func TestStopStatistics(t *testing.T) {
	m := newActiveModel(t, clock, mill, harbor)

	_, err := m.Advance(nil)
	require.NoError(t, err)
	_, err = m.Advance(strPtr("flooded"))
	require.NoError(t, err)

	receipt, err := m.Stop()
	require.NoError(t, err)
	require.NotNil(t, receipt.Statistics)
	assert.Equal(t, Statistics{Visited: 1, Skipped: 1, Remaining: 1}, *receipt.Statistics)
}

func TestResetClearsVisitState(t *testing.T) {
	m := newActiveModel(t, clock, mill)
	_, err := m.Advance(strPtr(""))
	require.NoError(t, err)

	_, err = m.Reset()
	require.NoError(t, err)

	assert.Equal(t, entity.ModePlanning, m.Mode())
	for _, stop := range m.Route() {
		assert.False(t, stop.Visited)
		assert.Nil(t, stop.SkipReason)
	}
}

func TestAdvance(t *testing.T) {
	m := newActiveModel(t, clock, mill)

	receipt, err := m.Advance(nil)
	require.NoError(t, err)
	assert.Equal(t, clock, receipt.Visited)
	assert.Nil(t, receipt.SkipReason)
	require.NotNil(t, receipt.NextPlace)
	assert.Equal(t, mill, *receipt.NextPlace)

	receipt, err = m.Advance(strPtr("closed"))
	require.NoError(t, err)
	assert.Equal(t, mill, receipt.Visited)
	require.NotNil(t, receipt.SkipReason)
	assert.Equal(t, "closed", *receipt.SkipReason)
	assert.Nil(t, receipt.NextPlace)

	_, err = m.Advance(nil)
	assert.ErrorIs(t, err, ErrRouteExhausted)
}

func TestAdvanceRequiresActiveMode(t *testing.T) {
	m := newTestModel(t)
	_, err := m.SetRoute([]entity.Waypoint{clock})
	require.NoError(t, err)

	_, err = m.Advance(nil)
	assert.ErrorIs(t, err, ErrRouteNotActive)
}

func TestSetLeaders(t *testing.T) {
	m := newTestModel(t)

	receipt, err := m.SetLeaders([]entity.User{alice})
	require.NoError(t, err)
	assert.Equal(t, []Member{{User: alice}}, receipt.LeadersAdded)
	assert.Empty(t, receipt.LeadersRemoved)
	assert.Equal(t, []entity.User{alice}, receipt.NewLeaders)

	assert.True(t, m.IsMember(alice.ID), "new leaders become members")

	_, err = m.SetLeaders([]entity.User{alice})
	assert.ErrorIs(t, err, ErrLeadersNotChanged)

	receipt, err = m.SetLeaders([]entity.User{bob})
	require.NoError(t, err)
	assert.Equal(t, []Member{{User: bob}}, receipt.LeadersAdded)
	assert.Equal(t, []Member{{User: alice}}, receipt.LeadersRemoved)

	assert.True(t, m.IsMember(alice.ID), "demoted leaders stay members")
	assert.False(t, m.IsLeader(alice.ID))
}

func TestMemberJoin(t *testing.T) {
	m := newTestModel(t)

	receipt, err := m.MemberJoin(alice, 2)
	require.NoError(t, err)
	assert.True(t, receipt.IsNewUser)
	assert.Equal(t, 2, receipt.Guests)
	assert.Equal(t, 2, receipt.GuestsDelta)
	assert.Equal(t, 3, m.TotalMembers())

	receipt, err = m.MemberJoin(alice, 4)
	require.NoError(t, err)
	assert.False(t, receipt.IsNewUser)
	assert.Equal(t, 2, receipt.GuestsDelta)
	assert.Equal(t, 5, m.TotalMembers())

	_, err = m.MemberJoin(alice, 4)
	assert.ErrorIs(t, err, ErrMembersNotChanged)
}

func TestMemberJoinTooManyGuests(t *testing.T) {
	m := NewModel("chan-1", "weekend-caravan", 3)

	_, err := m.MemberJoin(alice, 4)
	var guestsErr *TooManyGuestsError
	require.ErrorAs(t, err, &guestsErr)
	assert.Equal(t, 4, guestsErr.Guests)
	assert.Equal(t, 3, guestsErr.MaxGuests)
	assert.False(t, m.IsMember(alice.ID))
}

func TestMemberLeave(t *testing.T) {
	m := newTestModel(t)
	_, err := m.MemberJoin(alice, 2)
	require.NoError(t, err)
	_, err = m.SetLeaders([]entity.User{alice})
	require.NoError(t, err)

	receipt, err := m.MemberLeave(alice)
	require.NoError(t, err)
	assert.Equal(t, 2, receipt.Guests)
	assert.Equal(t, -2, receipt.GuestsDelta)
	assert.True(t, receipt.WasLeader)
	assert.False(t, m.IsLeader(alice.ID))
	assert.Equal(t, 0, m.TotalMembers())

	_, err = m.MemberLeave(alice)
	assert.ErrorIs(t, err, ErrMembersNotChanged)
}

func TestReceiptsAreDistinct(t *testing.T) {
	m := newTestModel(t)

	first, err := m.SetRoute([]entity.Waypoint{clock})
	require.NoError(t, err)
	second, err := m.SetRoute([]entity.Waypoint{mill})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "ROUTE_UPDATED", first.EventType())
	assert.False(t, errors.Is(ErrEmptyRoute, ErrRouteNotChanged), "sentinels stay distinct")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(DefaultMaxGuests)

	assert.Nil(t, r.Get("chan-1"))

	m := r.GetOrCreate("chan-1", "weekend-caravan")
	require.NotNil(t, m)
	assert.Same(t, m, r.GetOrCreate("chan-1", "renamed"), "channel ID is the identity")
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Delete("chan-1"))
	assert.False(t, r.Delete("chan-1"))
	assert.Equal(t, 0, r.Len())
}
