package caravan

import (
	"time"

	"github.com/google/uuid"

	"caravan-bot/internal/entity"
	"caravan-bot/pkg/events"
)

// Receipt is an immutable description of one successfully applied state
// change, carrying everything a notifier needs without exposing the
// aggregate. The set of implementations is closed: consumers switch on the
// concrete type.
type Receipt interface {
	events.Event

	// ChannelName identifies which caravan channel changed.
	ChannelName() string

	isReceipt()
}

// receiptBase carries the fields common to every receipt.
type receiptBase struct {
	ID         uuid.UUID
	Channel    string
	OccurredAt time.Time
}

func (m *Model) newReceiptBase() receiptBase {
	return receiptBase{
		ID:         uuid.New(),
		Channel:    m.channelName,
		OccurredAt: time.Now().UTC(),
	}
}

func (r receiptBase) ChannelName() string  { return r.Channel }
func (r receiptBase) Timestamp() time.Time { return r.OccurredAt }
func (r receiptBase) isReceipt()           {}

// RouteUpdateReceipt describes a wholesale route change: set, add, or
// remove.
type RouteUpdateReceipt struct {
	receiptBase

	PlacesAdded   []entity.Waypoint
	PlacesRemoved []entity.Waypoint
	OldRoute      []entity.Waypoint
	NewRoute      []entity.Waypoint
	Mode          entity.Mode
	NextPlace     *entity.Waypoint

	// Appended is set only by AddStops: true when the stops went to the
	// end, false when they were inserted before the first unvisited stop.
	Appended *bool
}

// IsReorderOnly reports whether the update changed order but neither added
// nor removed stops.
func (r *RouteUpdateReceipt) IsReorderOnly() bool {
	return len(r.PlacesAdded) == 0 && len(r.PlacesRemoved) == 0
}

func (r *RouteUpdateReceipt) EventType() string { return "ROUTE_UPDATED" }

func (r *RouteUpdateReceipt) Payload() map[string]interface{} {
	return map[string]interface{}{
		"places_added":   waypointNames(r.PlacesAdded),
		"places_removed": waypointNames(r.PlacesRemoved),
		"old_route":      waypointNames(r.OldRoute),
		"new_route":      waypointNames(r.NewRoute),
		"mode":           r.Mode.String(),
		"next_place":     waypointNameOrNil(r.NextPlace),
	}
}

// RouteAdvancedReceipt describes one stop being visited or skipped.
type RouteAdvancedReceipt struct {
	receiptBase

	Visited    entity.Waypoint
	SkipReason *string
	NextPlace  *entity.Waypoint
}

func (r *RouteAdvancedReceipt) EventType() string { return "ROUTE_ADVANCED" }

func (r *RouteAdvancedReceipt) Payload() map[string]interface{} {
	return map[string]interface{}{
		"visited":     r.Visited.Name,
		"skip_reason": r.SkipReason,
		"next_place":  waypointNameOrNil(r.NextPlace),
	}
}

// ModeUpdateReceipt describes a lifecycle transition. Statistics are only
// present when the caravan completed.
type ModeUpdateReceipt struct {
	receiptBase

	OldMode    entity.Mode
	NewMode    entity.Mode
	NextPlace  *entity.Waypoint
	Statistics *Statistics
}

func (r *ModeUpdateReceipt) EventType() string { return "MODE_UPDATED" }

func (r *ModeUpdateReceipt) Payload() map[string]interface{} {
	payload := map[string]interface{}{
		"old_mode":   r.OldMode.String(),
		"new_mode":   r.NewMode.String(),
		"next_place": waypointNameOrNil(r.NextPlace),
	}
	if r.Statistics != nil {
		payload["statistics"] = map[string]interface{}{
			"visited":   r.Statistics.Visited,
			"skipped":   r.Statistics.Skipped,
			"remaining": r.Statistics.Remaining,
		}
	}
	return payload
}

// LeaderUpdateReceipt describes a change of the leader set. Added leaders
// come with the guest counts they already had as members (zero for brand-new
// members).
type LeaderUpdateReceipt struct {
	receiptBase

	LeadersAdded   []Member
	LeadersRemoved []Member
	OldLeaders     []entity.User
	NewLeaders     []entity.User
}

func (r *LeaderUpdateReceipt) EventType() string { return "LEADERS_UPDATED" }

func (r *LeaderUpdateReceipt) Payload() map[string]interface{} {
	return map[string]interface{}{
		"leaders_added":   memberNames(r.LeadersAdded),
		"leaders_removed": memberNames(r.LeadersRemoved),
		"old_leaders":     userNames(r.OldLeaders),
		"new_leaders":     userNames(r.NewLeaders),
	}
}

// MemberJoinReceipt describes a member joining or updating their guest
// count.
type MemberJoinReceipt struct {
	receiptBase

	User        entity.User
	Guests      int
	GuestsDelta int
	IsNewUser   bool
}

func (r *MemberJoinReceipt) EventType() string { return "MEMBER_JOINED" }

func (r *MemberJoinReceipt) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user":         r.User.DisplayName,
		"user_id":      int64(r.User.ID),
		"guests":       r.Guests,
		"guests_delta": r.GuestsDelta,
		"is_new_user":  r.IsNewUser,
	}
}

// MemberLeaveReceipt describes a member leaving, along with whatever guests
// they had invited.
type MemberLeaveReceipt struct {
	receiptBase

	User        entity.User
	Guests      int
	GuestsDelta int
	WasLeader   bool
}

func (r *MemberLeaveReceipt) EventType() string { return "MEMBER_LEFT" }

func (r *MemberLeaveReceipt) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user":         r.User.DisplayName,
		"user_id":      int64(r.User.ID),
		"guests":       r.Guests,
		"guests_delta": r.GuestsDelta,
		"was_leader":   r.WasLeader,
	}
}

func waypointNameOrNil(w *entity.Waypoint) interface{} {
	if w == nil {
		return nil
	}
	return w.Name
}

func userNames(users []entity.User) []string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.DisplayName
	}
	return names
}

func memberNames(members []Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.User.DisplayName
	}
	return names
}
