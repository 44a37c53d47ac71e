package entity

// Mode is the lifecycle phase of a caravan.
type Mode int

const (
	ModePlanning Mode = iota
	ModeActive
	ModeCompleted
)

func (m Mode) String() string {
	switch m {
	case ModePlanning:
		return "planning"
	case ModeActive:
		return "active"
	case ModeCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
