package routetext

import (
	"fmt"
	"strings"

	"caravan-bot/internal/entity"
)

// FormatStop renders one stop back to its route-line form, the inverse of
// ParseRoute: visited stops are struck through, skipped stops carry the
// italic annotation.
func FormatStop(stop entity.CaravanStop) string {
	strike := ""
	if stop.Visited {
		strike = "~~"
	}

	skip := ""
	if stop.SkipReason != nil {
		if *stop.SkipReason == "" {
			skip = " — _skipped_"
		} else {
			skip = fmt.Sprintf(" — _skipped: %q_", *stop.SkipReason)
		}
	}

	return strike + stop.Waypoint.Name + strike + skip
}

// FormatRoute renders a whole route as a markdown bullet list.
func FormatRoute(route []entity.CaravanStop) string {
	lines := make([]string, len(route))
	for i, stop := range route {
		lines[i] = "- " + FormatStop(stop)
	}
	return strings.Join(lines, "\n")
}

// Join renders a list of items the way a person would write it:
// "a", "a and b", "a, b, and c".
func Join(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
