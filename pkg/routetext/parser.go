// Package routetext converts raw chat message bodies to and from the
// structured route lines the caravan core works with.
package routetext

import (
	"regexp"
	"strconv"
	"strings"

	"caravan-bot/internal/entity"
)

var (
	// A route line is a markdown list item: "- Name", "1. Name", "2) Name".
	listItemPattern = regexp.MustCompile(`^\s*(?:-|\d+[.)]?)\s*(.*?)\s*$`)

	// A visited stop is rendered with markdown strikethrough.
	struckPattern = regexp.MustCompile(`^~~(.*)~~$`)

	// Trailing "— skipped" / "— _skipped: "reason"_" annotation. The em-dash
	// is required; the markdown italic underscores are optional.
	skippedPattern = regexp.MustCompile(`(?i)\s*—\s*_?skipped(?::\s*"(.*?)")?_?\s*$`)

	// Trailing parenthetical aside, e.g. "City Clock (meet at the steps)".
	parenPattern = regexp.MustCompile(`\s*\([^()]*\)\s*$`)

	mentionPattern = regexp.MustCompile(`<@!?(\d+)>`)

	guestsPattern = regexp.MustCompile(`^\+[ \t]*(\d+)$`)
)

// stripCutset covers plain and typographic quotes users paste from phones.
const stripCutset = "'\"“‟‘‛”’❛❜❝❞ \t\r\n"

// ParseRoute parses a raw multi-line message body into stop intents, in
// input order. Lines that are not list items, and list items that normalize
// to an empty name, are dropped. Parsing is pure: the same text always
// yields the same intents.
func ParseRoute(content string) []entity.StopIntent {
	var intents []entity.StopIntent

	for _, line := range strings.Split(content, "\n") {
		if intent, ok := parseLine(line); ok {
			intents = append(intents, intent)
		}
	}

	return intents
}

func parseLine(line string) (entity.StopIntent, bool) {
	body, ok := listItemBody(line)
	if !ok {
		return entity.StopIntent{}, false
	}

	body, skipReason := stripSkipAnnotation(body)

	visited := false
	if m := struckPattern.FindStringSubmatch(body); m != nil {
		visited = true
		body = strings.TrimSpace(m[1])
		if skipReason == nil {
			// The annotation may sit inside the strikethrough.
			body, skipReason = stripSkipAnnotation(body)
		}
	}

	body = parenPattern.ReplaceAllString(body, "")
	body = strings.Trim(body, stripCutset)

	if body == "" {
		return entity.StopIntent{}, false
	}

	return entity.StopIntent{
		Name:       body,
		Visited:    visited,
		SkipReason: skipReason,
	}, true
}

// listItemBody strips the leading bullet or number marker. A line consisting
// of a strikethrough span also counts as a list item.
func listItemBody(line string) (string, bool) {
	if m := listItemPattern.FindStringSubmatch(line); m != nil {
		body := strings.TrimSpace(m[1])
		return body, body != ""
	}

	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "~~") && strings.Count(trimmed, "~~") >= 2 {
		return trimmed, true
	}

	return "", false
}

// stripSkipAnnotation removes a trailing skip annotation and returns the
// parsed reason. The reason is nil when no annotation was present and the
// empty string when the annotation carried no quoted reason.
func stripSkipAnnotation(body string) (string, *string) {
	loc := skippedPattern.FindStringSubmatchIndex(body)
	if loc == nil {
		return body, nil
	}

	reason := ""
	if loc[2] >= 0 {
		reason = body[loc[2]:loc[3]]
	}

	return strings.TrimSpace(body[:loc[0]]), &reason
}

// UserIDs extracts the numeric IDs of all user-mention tokens ("<@123>" or
// "<@!123>") in order of appearance. Duplicates are retained.
func UserIDs(content string) []entity.UserID {
	var ids []entity.UserID

	for _, m := range mentionPattern.FindAllStringSubmatch(content, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue // longer than int64; not a real snowflake
		}
		ids = append(ids, entity.UserID(id))
	}

	return ids
}

// GuestCount parses a "+N" guest suffix. Empty input means no guests.
func GuestCount(content string) (int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, nil
	}

	m := guestsPattern.FindStringSubmatch(content)
	if m == nil {
		return 0, &InvalidGuestFormatError{Input: content}
	}

	guests, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &InvalidGuestFormatError{Input: content}
	}

	return guests, nil
}
