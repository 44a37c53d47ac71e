package placegraph

// NoPathError reports that no variant of the candidate graph admits a route
// using each waypoint at most once. The caller should ask the user to
// disambiguate their stop names.
type NoPathError struct{}

func (e *NoPathError) Error() string {
	return "no path through the candidate graph; stop names may be too ambiguous"
}
