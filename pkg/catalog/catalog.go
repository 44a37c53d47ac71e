// Package catalog holds the closed set of known waypoints and answers
// exact-name and fuzzy-name lookups against it. A catalog is built once at
// startup and is read-only afterwards, so lookups are safe to share.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	gocache "github.com/patrickmn/go-cache"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"caravan-bot/internal/entity"
)

// RawPlace is one waypoint entry in the catalog configuration file.
type RawPlace struct {
	Location string   `json:"location" validate:"required"`
	Aliases  []string `json:"aliases" validate:"omitempty,dive,required"`
}

// Catalog maps canonical waypoint names and their aliases to waypoints.
type Catalog struct {
	places  map[string]entity.Waypoint // canonical name -> waypoint
	aliases map[string]string          // alias -> canonical name
	choices []string                   // names + aliases, stable order
	queries *gocache.Cache             // fuzzy query memo; safe: catalog is immutable
}

// LoadFile builds a catalog from a JSON file mapping waypoint names to
// {location, aliases}.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var raw map[string]RawPlace
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	return FromRaw(raw)
}

// FromRaw builds a catalog from already-decoded configuration. Malformed
// entries (missing or unparseable locations, blank aliases) are configuration
// errors and fail construction. Alias collisions resolve last-write-wins,
// with canonical names shadowing aliases on lookup.
func FromRaw(raw map[string]RawPlace) (*Catalog, error) {
	validate := validator.New()

	c := &Catalog{
		places:  make(map[string]entity.Waypoint, len(raw)),
		aliases: make(map[string]string),
		queries: gocache.New(gocache.NoExpiration, 0),
	}

	for name, place := range raw {
		if name == "" {
			return nil, fmt.Errorf("catalog entry with empty name")
		}
		if err := validate.Struct(place); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", name, err)
		}
		if _, err := entity.ParseLatLng(place.Location); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", name, err)
		}

		c.places[name] = entity.Waypoint{Name: name, Location: place.Location}
		for _, alias := range place.Aliases {
			c.aliases[alias] = name
		}
	}

	for name := range c.places {
		c.choices = append(c.choices, name)
	}
	for alias := range c.aliases {
		if _, shadowed := c.places[alias]; !shadowed {
			c.choices = append(c.choices, alias)
		}
	}
	sort.Strings(c.choices)

	return c, nil
}

// Len returns the number of canonical waypoints.
func (c *Catalog) Len() int {
	return len(c.places)
}

// GetExact looks a name up as a canonical name or alias, verbatim.
func (c *Catalog) GetExact(name string) (entity.Waypoint, error) {
	if place, ok := c.places[name]; ok {
		return place, nil
	}
	if canonical, ok := c.aliases[name]; ok {
		return c.places[canonical], nil
	}
	return entity.Waypoint{}, &NotFoundError{Name: name}
}

// GetFuzzy matches the query against the union of canonical names and
// aliases with a 0-100 similarity score. Alias matches fold to their
// canonical waypoint, each waypoint keeping only its best score. Results
// below scoreCutoff are dropped; the rest are sorted by descending score.
// About softLimit results are returned, but a tie at the boundary is never
// split: results keep coming until the score strictly drops.
func (c *Catalog) GetFuzzy(query string, scoreCutoff, softLimit int) ([]entity.FuzzyWaypoint, error) {
	cacheKey := fmt.Sprintf("%d|%d|%s", scoreCutoff, softLimit, query)
	if hit, ok := c.queries.Get(cacheKey); ok {
		return hit.([]entity.FuzzyWaypoint), nil
	}

	best := make(map[string]int) // canonical name -> best score

	for _, choice := range c.choices {
		score := fuzzy.WRatio(query, choice)
		if score < scoreCutoff {
			continue
		}

		canonical := choice
		if target, ok := c.aliases[choice]; ok {
			if _, isCanonical := c.places[choice]; !isCanonical {
				canonical = target
			}
		}

		if prev, ok := best[canonical]; !ok || score > prev {
			best[canonical] = score
		}
	}

	if len(best) == 0 {
		return nil, &NotFoundError{Name: query}
	}

	type scored struct {
		name  string
		score int
	}
	ranked := make([]scored, 0, len(best))
	for name, score := range best {
		ranked = append(ranked, scored{name: name, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].name < ranked[j].name
	})

	cut := softLimit
	if cut < 1 {
		cut = 1
	}
	if cut > len(ranked) {
		cut = len(ranked)
	}
	for cut < len(ranked) && ranked[cut].score == ranked[cut-1].score {
		cut++
	}

	results := make([]entity.FuzzyWaypoint, cut)
	for i, r := range ranked[:cut] {
		results[i] = entity.FuzzyWaypoint{
			Waypoint:  c.places[r.name],
			Certainty: float64(r.score) / 100.0,
		}
	}

	c.queries.Set(cacheKey, results, gocache.NoExpiration)

	return results, nil
}
