package catalog

import "fmt"

// NotFoundError reports a name that matched no waypoint, exactly or within
// the fuzzy score cutoff.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("place %q not found", e.Name)
}
