package entity

// StopIntent is one line of user-submitted route text: the free-text stop
// name plus any annotations the user attached to it. SkipReason is nil when
// the stop was not marked skipped; the empty string means "skipped, no
// reason given".
type StopIntent struct {
	Name       string
	Visited    bool
	SkipReason *string
}

// CaravanStop is one resolved stop on a caravan route.
type CaravanStop struct {
	Waypoint   Waypoint
	Visited    bool
	SkipReason *string
}

// Reset returns the stop with its visited/skip state cleared.
func (s CaravanStop) Reset() CaravanStop {
	return CaravanStop{Waypoint: s.Waypoint}
}

// Visit returns the stop marked visited, optionally with a skip reason. A
// nil skipReason means genuinely visited rather than skipped.
func (s CaravanStop) Visit(skipReason *string) CaravanStop {
	return CaravanStop{
		Waypoint:   s.Waypoint,
		Visited:    true,
		SkipReason: skipReason,
	}
}

// Skipped reports whether the stop was passed over rather than visited.
func (s CaravanStop) Skipped() bool {
	return s.Visited && s.SkipReason != nil
}
