package service

import (
	"fmt"

	"caravan-bot/pkg/routetext"
)

// UnknownPlaceNamesError reports every stop name that matched nothing in the
// place catalog, so the caller sees all problems at once.
type UnknownPlaceNamesError struct {
	Names []string
}

func (e *UnknownPlaceNamesError) Error() string {
	return fmt.Sprintf("unknown place names: %s", routetext.Join(e.Names))
}
