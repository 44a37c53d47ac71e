package caravan

import (
	"errors"
	"fmt"

	"caravan-bot/internal/entity"
	"caravan-bot/pkg/routetext"
)

// No-change conditions are part of the normal control-flow vocabulary of the
// state machine, not unexpected failures; callers branch on them with
// errors.Is.
var (
	ErrEmptyRoute        = errors.New("route must contain at least one stop")
	ErrRouteNotChanged   = errors.New("route is unchanged")
	ErrLeadersNotChanged = errors.New("leaders are unchanged")
	ErrMembersNotChanged = errors.New("members are unchanged")
	ErrModeNotChanged    = errors.New("caravan mode is unchanged")
	ErrRouteNotActive    = errors.New("caravan is not active")
	ErrRouteExhausted    = errors.New("no unvisited stops remain")
)

// DuplicatePlacesError reports a route that names the same waypoint more
// than once, either within itself or against the existing route.
type DuplicatePlacesError struct {
	Places []entity.Waypoint
}

func (e *DuplicatePlacesError) Error() string {
	return fmt.Sprintf("duplicate route stops: %s", routetext.Join(waypointNames(e.Places)))
}

// MissingPlacesError reports removal requests naming waypoints that are not
// on the route. The removal is rejected as a whole.
type MissingPlacesError struct {
	Places []entity.Waypoint
}

func (e *MissingPlacesError) Error() string {
	return fmt.Sprintf("stops not on the route: %s", routetext.Join(waypointNames(e.Places)))
}

// TooManyGuestsError reports a guest count above the configured threshold.
type TooManyGuestsError struct {
	Guests    int
	MaxGuests int
}

func (e *TooManyGuestsError) Error() string {
	return fmt.Sprintf("%d guests is more than the allowed %d", e.Guests, e.MaxGuests)
}

func waypointNames(places []entity.Waypoint) []string {
	names := make([]string, len(places))
	for i, p := range places {
		names[i] = p.Name
	}
	return names
}
