package entity

// UserID is a chat-platform user identifier (a numeric snowflake).
type UserID int64

// User is the slice of a chat-platform account this core cares about. The
// surrounding chat layer owns the full account object.
type User struct {
	ID          UserID
	DisplayName string
}
