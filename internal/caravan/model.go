// Package caravan owns the authoritative per-channel caravan state: route,
// membership, leadership, and lifecycle mode. Every mutation either succeeds
// and returns an immutable receipt describing exactly what changed, or fails
// with a named condition and leaves the aggregate untouched.
package caravan

import (
	"sort"

	"caravan-bot/internal/entity"
)

// DefaultMaxGuests is the sane upper bound on guests one member may bring.
const DefaultMaxGuests = 10

// Member is one caravan participant and the guests they bring along.
type Member struct {
	User   entity.User
	Guests int
}

// Model is the mutable caravan aggregate for one channel. It is not
// goroutine-safe: the surrounding event layer serializes access per channel.
type Model struct {
	channelID   string
	channelName string
	maxGuests   int

	mode    entity.Mode
	route   []entity.CaravanStop
	leaders map[entity.UserID]entity.User
	members map[entity.UserID]Member
}

// NewModel creates an empty caravan in planning mode. A maxGuests of zero or
// less falls back to DefaultMaxGuests.
func NewModel(channelID, channelName string, maxGuests int) *Model {
	if maxGuests <= 0 {
		maxGuests = DefaultMaxGuests
	}
	return &Model{
		channelID:   channelID,
		channelName: channelName,
		maxGuests:   maxGuests,
		mode:        entity.ModePlanning,
		leaders:     make(map[entity.UserID]entity.User),
		members:     make(map[entity.UserID]Member),
	}
}

func (m *Model) ChannelID() string   { return m.channelID }
func (m *Model) ChannelName() string { return m.channelName }
func (m *Model) Mode() entity.Mode   { return m.mode }

// Route returns a copy of the current route.
func (m *Model) Route() []entity.CaravanStop {
	return append([]entity.CaravanStop(nil), m.route...)
}

// Leaders returns the current leaders, sorted by user ID.
func (m *Model) Leaders() []entity.User {
	leaders := make([]entity.User, 0, len(m.leaders))
	for _, u := range m.leaders {
		leaders = append(leaders, u)
	}
	sort.Slice(leaders, func(i, j int) bool { return leaders[i].ID < leaders[j].ID })
	return leaders
}

// Members returns the current members, sorted by user ID.
func (m *Model) Members() []Member {
	members := make([]Member, 0, len(m.members))
	for _, mem := range m.members {
		members = append(members, mem)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].User.ID < members[j].User.ID })
	return members
}

// IsLeader reports whether the user currently leads the caravan.
func (m *Model) IsLeader(id entity.UserID) bool {
	_, ok := m.leaders[id]
	return ok
}

// IsMember reports whether the user is currently a member.
func (m *Model) IsMember(id entity.UserID) bool {
	_, ok := m.members[id]
	return ok
}

// TotalMembers returns the member count including guests.
func (m *Model) TotalMembers() int {
	total := len(m.members)
	for _, mem := range m.members {
		total += mem.Guests
	}
	return total
}

// NextUnvisited returns the first unvisited waypoint, or nil when all stops
// are visited (or the route is empty).
func (m *Model) NextUnvisited() *entity.Waypoint {
	return nextUnvisited(m.route)
}

// Statistics summarizes visit progress over the current route.
func (m *Model) Statistics() Statistics {
	return StatisticsFromRoute(m.route)
}

// SetRoute replaces the route wholesale. Stops present in both the old and
// the new route keep their visited/skip state, matched by waypoint identity;
// genuinely new stops start unvisited.
func (m *Model) SetRoute(newRoute []entity.Waypoint) (*RouteUpdateReceipt, error) {
	if len(newRoute) == 0 {
		return nil, ErrEmptyRoute
	}
	if dups := duplicateWaypoints(newRoute); len(dups) > 0 {
		return nil, &DuplicatePlacesError{Places: dups}
	}

	oldRoute := routeWaypoints(m.route)
	if equalWaypoints(newRoute, oldRoute) {
		return nil, ErrRouteNotChanged
	}

	oldStops := make(map[entity.Waypoint]entity.CaravanStop, len(m.route))
	for _, s := range m.route {
		oldStops[s.Waypoint] = s
	}

	route := make([]entity.CaravanStop, len(newRoute))
	for i, w := range newRoute {
		if s, ok := oldStops[w]; ok {
			route[i] = s
		} else {
			route[i] = entity.CaravanStop{Waypoint: w}
		}
	}
	m.route = route

	receipt := &RouteUpdateReceipt{
		receiptBase:   m.newReceiptBase(),
		PlacesAdded:   subtractWaypoints(newRoute, oldRoute),
		PlacesRemoved: subtractWaypoints(oldRoute, newRoute),
		OldRoute:      oldRoute,
		NewRoute:      newRoute,
		Mode:          m.mode,
		NextPlace:     nextUnvisited(m.route),
	}
	return receipt, nil
}

// AddStops inserts stops at the end of the route (appendEnd) or immediately
// before the first unvisited stop ("visit these next").
func (m *Model) AddStops(stops []entity.Waypoint, appendEnd bool) (*RouteUpdateReceipt, error) {
	if len(stops) == 0 {
		return nil, ErrEmptyRoute
	}

	oldRoute := routeWaypoints(m.route)
	combined := append(append([]entity.Waypoint(nil), oldRoute...), stops...)
	if dups := duplicateWaypoints(combined); len(dups) > 0 {
		return nil, &DuplicatePlacesError{Places: dups}
	}

	insertAt := len(m.route)
	if !appendEnd {
		insertAt = firstUnvisitedIndex(m.route)
	}
	appended := insertAt >= len(m.route)

	route := make([]entity.CaravanStop, 0, len(m.route)+len(stops))
	route = append(route, m.route[:insertAt]...)
	for _, w := range stops {
		route = append(route, entity.CaravanStop{Waypoint: w})
	}
	route = append(route, m.route[insertAt:]...)
	m.route = route

	receipt := &RouteUpdateReceipt{
		receiptBase: m.newReceiptBase(),
		PlacesAdded: append([]entity.Waypoint(nil), stops...),
		OldRoute:    oldRoute,
		NewRoute:    routeWaypoints(m.route),
		Mode:        m.mode,
		NextPlace:   nextUnvisited(m.route),
		Appended:    &appended,
	}
	return receipt, nil
}

// RemoveStops removes all named waypoints from the route. Either every
// requested waypoint is removed or none are.
func (m *Model) RemoveStops(places []entity.Waypoint) (*RouteUpdateReceipt, error) {
	if len(places) == 0 {
		return nil, ErrRouteNotChanged
	}

	toRemove := make(map[entity.Waypoint]bool, len(places))
	for _, p := range places {
		toRemove[p] = true
	}

	onRoute := make(map[entity.Waypoint]bool, len(m.route))
	for _, s := range m.route {
		onRoute[s.Waypoint] = true
	}

	var missing []entity.Waypoint
	removed := make([]entity.Waypoint, 0, len(toRemove))
	for _, p := range places {
		if !toRemove[p] {
			continue // duplicate request entry, already handled
		}
		toRemove[p] = false
		if onRoute[p] {
			removed = append(removed, p)
		} else {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingPlacesError{Places: missing}
	}

	removedSet := make(map[entity.Waypoint]bool, len(removed))
	for _, p := range removed {
		removedSet[p] = true
	}

	oldRoute := routeWaypoints(m.route)
	route := m.route[:0:0]
	for _, s := range m.route {
		if !removedSet[s.Waypoint] {
			route = append(route, s)
		}
	}
	m.route = route

	receipt := &RouteUpdateReceipt{
		receiptBase:   m.newReceiptBase(),
		PlacesRemoved: removed,
		OldRoute:      oldRoute,
		NewRoute:      routeWaypoints(m.route),
		Mode:          m.mode,
		NextPlace:     nextUnvisited(m.route),
	}
	return receipt, nil
}

// Start puts the caravan into active mode.
func (m *Model) Start() (*ModeUpdateReceipt, error) {
	return m.changeMode(entity.ModeActive)
}

// Stop completes an active caravan. A caravan still in planning cannot be
// completed directly.
func (m *Model) Stop() (*ModeUpdateReceipt, error) {
	return m.changeMode(entity.ModeCompleted)
}

// Reset puts the caravan back into planning mode and clears every stop's
// visited/skip state.
func (m *Model) Reset() (*ModeUpdateReceipt, error) {
	receipt, err := m.changeMode(entity.ModePlanning)
	if err != nil {
		return nil, err
	}
	for i, s := range m.route {
		m.route[i] = s.Reset()
	}
	receipt.NextPlace = nextUnvisited(m.route)
	return receipt, nil
}

func (m *Model) changeMode(mode entity.Mode) (*ModeUpdateReceipt, error) {
	if m.mode == mode {
		return nil, ErrModeNotChanged
	}
	if m.mode == entity.ModePlanning && mode == entity.ModeCompleted {
		return nil, ErrModeNotChanged
	}

	receipt := &ModeUpdateReceipt{
		receiptBase: m.newReceiptBase(),
		OldMode:     m.mode,
		NewMode:     mode,
		NextPlace:   nextUnvisited(m.route),
	}
	if mode == entity.ModeCompleted {
		stats := StatisticsFromRoute(m.route)
		receipt.Statistics = &stats
	}

	m.mode = mode
	return receipt, nil
}

// Advance marks the first unvisited stop as visited. A non-nil skipReason
// records the stop as skipped instead (empty string: skipped, no reason
// given).
func (m *Model) Advance(skipReason *string) (*RouteAdvancedReceipt, error) {
	if m.mode != entity.ModeActive {
		return nil, ErrRouteNotActive
	}

	idx := firstUnvisitedIndex(m.route)
	if idx >= len(m.route) {
		return nil, ErrRouteExhausted
	}

	visited := m.route[idx]
	m.route[idx] = visited.Visit(skipReason)

	receipt := &RouteAdvancedReceipt{
		receiptBase: m.newReceiptBase(),
		Visited:     visited.Waypoint,
		SkipReason:  skipReason,
		NextPlace:   nextUnvisited(m.route),
	}
	return receipt, nil
}

// SetLeaders replaces the leader set. New leaders who were not members yet
// are added as members with no guests; removed leaders stay members.
func (m *Model) SetLeaders(leaders []entity.User) (*LeaderUpdateReceipt, error) {
	newLeaders := make(map[entity.UserID]entity.User, len(leaders))
	for _, u := range leaders {
		newLeaders[u.ID] = u
	}

	if len(newLeaders) == len(m.leaders) {
		same := true
		for id := range newLeaders {
			if _, ok := m.leaders[id]; !ok {
				same = false
				break
			}
		}
		if same {
			return nil, ErrLeadersNotChanged
		}
	}

	var added, removed []Member
	for id, u := range newLeaders {
		if _, ok := m.leaders[id]; !ok {
			guests := m.members[id].Guests
			added = append(added, Member{User: u, Guests: guests})
		}
	}
	for id, u := range m.leaders {
		if _, ok := newLeaders[id]; !ok {
			removed = append(removed, Member{User: u, Guests: m.members[id].Guests})
		}
	}
	sortMembers(added)
	sortMembers(removed)

	receipt := &LeaderUpdateReceipt{
		receiptBase:    m.newReceiptBase(),
		LeadersAdded:   added,
		LeadersRemoved: removed,
		OldLeaders:     m.Leaders(),
	}

	for _, mem := range added {
		if _, ok := m.members[mem.User.ID]; !ok {
			m.members[mem.User.ID] = Member{User: mem.User}
		}
	}
	m.leaders = newLeaders

	receipt.NewLeaders = m.Leaders()
	return receipt, nil
}

// MemberJoin adds a member, or updates an existing member's guest count.
func (m *Model) MemberJoin(user entity.User, guests int) (*MemberJoinReceipt, error) {
	if guests > m.maxGuests {
		return nil, &TooManyGuestsError{Guests: guests, MaxGuests: m.maxGuests}
	}

	existing, isExisting := m.members[user.ID]
	if isExisting && existing.Guests == guests {
		return nil, ErrMembersNotChanged
	}

	m.members[user.ID] = Member{User: user, Guests: guests}

	receipt := &MemberJoinReceipt{
		receiptBase: m.newReceiptBase(),
		User:        user,
		Guests:      guests,
		GuestsDelta: guests - existing.Guests,
		IsNewUser:   !isExisting,
	}
	return receipt, nil
}

// MemberLeave removes a member along with their guests. Leaders who leave
// lose leadership.
func (m *Model) MemberLeave(user entity.User) (*MemberLeaveReceipt, error) {
	existing, ok := m.members[user.ID]
	if !ok {
		return nil, ErrMembersNotChanged
	}

	_, wasLeader := m.leaders[user.ID]
	delete(m.members, user.ID)
	delete(m.leaders, user.ID)

	receipt := &MemberLeaveReceipt{
		receiptBase: m.newReceiptBase(),
		User:        user,
		Guests:      existing.Guests,
		GuestsDelta: -existing.Guests,
		WasLeader:   wasLeader,
	}
	return receipt, nil
}

// Statistics summarizes visit progress: skipped stops are visited stops
// with a skip reason.
type Statistics struct {
	Visited   int
	Skipped   int
	Remaining int
}

// StatisticsFromRoute tallies the visit state of every stop.
func StatisticsFromRoute(route []entity.CaravanStop) Statistics {
	var stats Statistics
	for _, s := range route {
		switch {
		case s.Visited && s.SkipReason == nil:
			stats.Visited++
		case s.Visited:
			stats.Skipped++
		default:
			stats.Remaining++
		}
	}
	return stats
}

//
// Helpers
//

func routeWaypoints(route []entity.CaravanStop) []entity.Waypoint {
	waypoints := make([]entity.Waypoint, len(route))
	for i, s := range route {
		waypoints[i] = s.Waypoint
	}
	return waypoints
}

func equalWaypoints(a, b []entity.Waypoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// duplicateWaypoints returns every waypoint appearing more than once, in
// first-appearance order.
func duplicateWaypoints(waypoints []entity.Waypoint) []entity.Waypoint {
	counts := make(map[entity.Waypoint]int, len(waypoints))
	for _, w := range waypoints {
		counts[w]++
	}

	var dups []entity.Waypoint
	for _, w := range waypoints {
		if counts[w] > 1 {
			dups = append(dups, w)
			counts[w] = 0 // report once
		}
	}
	return dups
}

// subtractWaypoints returns the waypoints of a not present in b, in a's
// order.
func subtractWaypoints(a, b []entity.Waypoint) []entity.Waypoint {
	inB := make(map[entity.Waypoint]bool, len(b))
	for _, w := range b {
		inB[w] = true
	}

	var out []entity.Waypoint
	for _, w := range a {
		if !inB[w] {
			out = append(out, w)
		}
	}
	return out
}

func firstUnvisitedIndex(route []entity.CaravanStop) int {
	for i, s := range route {
		if !s.Visited {
			return i
		}
	}
	return len(route)
}

func nextUnvisited(route []entity.CaravanStop) *entity.Waypoint {
	for _, s := range route {
		if !s.Visited {
			w := s.Waypoint
			return &w
		}
	}
	return nil
}

func sortMembers(members []Member) {
	sort.Slice(members, func(i, j int) bool { return members[i].User.ID < members[j].User.ID })
}
