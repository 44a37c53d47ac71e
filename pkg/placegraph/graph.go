// Package placegraph resolves an ordered list of fuzzy waypoint candidates
// to the single best assignment of one waypoint per stop. Candidates form a
// layered graph (one row per requested stop, edges only between consecutive
// rows); the engine picks the minimum-cost root-to-last-row path, where edge
// cost is great-circle distance weighted by match certainty. A waypoint may
// be used at most once across the whole route, which is enforced by
// enumerating deduplicated graph variants rather than by constraining the
// search itself.
package placegraph

import (
	"math"
	"sort"

	"caravan-bot/internal/entity"
)

// Row is the candidate set for one requested stop.
type Row []entity.FuzzyWaypoint

// Graph is an ordered sequence of candidate rows.
type Graph []Row

// Path is an ordered sequence of resolved waypoints.
type Path []entity.Waypoint

// DefaultVariantLimit caps how many deduplicated graph variants are explored
// before settling for the best result seen so far. The limit bounds the
// combinatorial blowup on pathological inputs; common inputs with few
// duplicates are resolved exactly.
const DefaultVariantLimit = 200

// Options tunes a resolution run.
type Options struct {
	// VariantLimit overrides DefaultVariantLimit when positive.
	VariantLimit int
}

// rootNode is the synthetic start node preceding row 0. Edges leaving it
// cost nothing by definition.
var rootNode = entity.FuzzyWaypoint{Certainty: 1}

// ShortestPath returns the best assignment of one waypoint per row. It
// returns a *NoPathError when the graph, once deduplicated, admits no
// assignment that uses each waypoint at most once.
func ShortestPath(graph Graph, opts Options) (Path, error) {
	if len(graph) == 0 {
		return Path{}, nil
	}

	if len(graph) == 1 {
		if len(graph[0]) == 0 {
			return nil, &NoPathError{}
		}
		best := graph[0][0]
		for _, f := range graph[0][1:] {
			if f.Certainty > best.Certainty {
				best = f
			}
		}
		return Path{best.Waypoint}, nil
	}

	limit := opts.VariantLimit
	if limit <= 0 {
		limit = DefaultVariantLimit
	}

	costs := newEdgeCache()

	var bestPath Path
	bestCost := math.Inf(1)
	found := false

	for _, variant := range generateVariants(graph, limit) {
		path, cost, ok := dijkstra(variant, costs)
		if !ok {
			continue
		}
		if !found || cost < bestCost {
			found = true
			bestCost = cost
			bestPath = path
		}
	}

	if !found {
		return nil, &NoPathError{}
	}

	return bestPath, nil
}

// generateVariants yields restrictions of the graph in which every
// duplicated waypoint is kept by exactly one row. Without duplicates the
// original graph is the only variant. The root row is prepended here so that
// downstream search can treat row 0 as the start.
func generateVariants(graph Graph, limit int) []Graph {
	full := make(Graph, 0, len(graph)+1)
	full = append(full, Row{rootNode})
	full = append(full, graph...)

	counts := make(map[entity.Waypoint]int)
	for _, row := range full {
		for _, f := range row {
			counts[f.Waypoint]++
		}
	}
	duplicated := make(map[entity.Waypoint]bool)
	for w, n := range counts {
		if n > 1 {
			duplicated[w] = true
		}
	}

	if len(duplicated) == 0 {
		return []Graph{full}
	}

	rows := make([]*variantRow, len(full))
	for i, row := range full {
		rows[i] = newVariantRow(i, row, duplicated)
	}

	// Most constrained rows first: fewest unique fallbacks, then fewest
	// duplicates. Assigning them early prunes wasted enumeration.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].uniqueCount != rows[j].uniqueCount {
			return rows[i].uniqueCount < rows[j].uniqueCount
		}
		return len(rows[i].duplicates) < len(rows[j].duplicates)
	})

	choices := make([][]entity.Waypoint, len(rows))
	for i, r := range rows {
		choices[i] = r.duplicateChoices()
	}

	var variants []Graph
	UniqueProduct(choices, entity.Waypoint.IsZero, func(assignment []entity.Waypoint) bool {
		variant := make(Graph, len(rows))
		for i, r := range rows {
			variant[r.index] = r.restrict(assignment[i])
		}
		variants = append(variants, variant)
		return len(variants) < limit
	})

	return variants
}

// variantRow is one graph row annotated for duplicate-ownership assignment.
type variantRow struct {
	index       int
	fuzzies     Row // sorted by certainty, highest first
	duplicates  map[entity.Waypoint]bool
	uniqueCount int // distinct waypoints in this row nobody else wants
}

func newVariantRow(index int, row Row, duplicated map[entity.Waypoint]bool) *variantRow {
	fuzzies := append(Row(nil), row...)
	// Highest certainty first, so more confident assignments are
	// enumerated before less confident ones.
	sort.SliceStable(fuzzies, func(i, j int) bool {
		return fuzzies[i].Certainty > fuzzies[j].Certainty
	})

	dups := make(map[entity.Waypoint]bool)
	unique := make(map[entity.Waypoint]bool)
	for _, f := range fuzzies {
		if duplicated[f.Waypoint] {
			dups[f.Waypoint] = true
		} else {
			unique[f.Waypoint] = true
		}
	}

	return &variantRow{
		index:       index,
		fuzzies:     fuzzies,
		duplicates:  dups,
		uniqueCount: len(unique),
	}
}

// duplicateChoices lists the duplicated waypoints this row could claim, best
// certainty first, followed by a zero-waypoint placeholder when the row has
// unique candidates to fall back on ("give it up" instead of claiming).
func (r *variantRow) duplicateChoices() []entity.Waypoint {
	var out []entity.Waypoint
	for _, f := range r.fuzzies {
		if r.duplicates[f.Waypoint] {
			out = append(out, f.Waypoint)
		}
	}
	if r.uniqueCount != 0 {
		out = append(out, entity.Waypoint{})
	}
	return out
}

// restrict returns the row's candidates with every duplicated waypoint
// removed except the one it was assigned to keep.
func (r *variantRow) restrict(keep entity.Waypoint) Row {
	var out Row
	for _, f := range r.fuzzies {
		if f.Waypoint == keep || !r.duplicates[f.Waypoint] {
			out = append(out, f)
		}
	}
	return out
}
