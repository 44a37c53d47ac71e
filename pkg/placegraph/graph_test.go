package placegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caravan-bot/internal/entity"
)

func fw(name, location string, certainty float64) entity.FuzzyWaypoint {
	return entity.FuzzyWaypoint{
		Waypoint:  entity.Waypoint{Name: name, Location: location},
		Certainty: certainty,
	}
}

func pathNames(path Path) []string {
	names := make([]string, len(path))
	for i, w := range path {
		names[i] = w.Name
	}
	return names
}

func TestShortestPathEmptyGraph(t *testing.T) {
	path, err := ShortestPath(Graph{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestShortestPathSingleRow(t *testing.T) {
	graph := Graph{
		{fw("low", "0,0", 0.6), fw("high", "0,1", 0.9), fw("mid", "0,2", 0.8)},
	}

	path, err := ShortestPath(graph, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"high"}, pathNames(path), "single row picks the most certain candidate")
}

func TestShortestPathSingleEmptyRow(t *testing.T) {
	_, err := ShortestPath(Graph{{}}, Options{})
	var noPath *NoPathError
	assert.ErrorAs(t, err, &noPath)
}

func TestShortestPathPrefersLowerWeightedDistance(t *testing.T) {
	// The near candidate's poor certainty makes its edge more expensive
	// than the far but certain one: 111km/0.1 > 556km/1.0.
	graph := Graph{
		{fw("start", "0,0", 1.0)},
		{fw("near", "0,1", 0.1), fw("far", "0,5", 1.0)},
	}

	path, err := ShortestPath(graph, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "far"}, pathNames(path))
}

func TestShortestPathPrefersCloserAtEqualCertainty(t *testing.T) {
	graph := Graph{
		{fw("start", "0,0", 1.0)},
		{fw("far", "0,5", 0.9), fw("near", "0,1", 0.9)},
	}

	path, err := ShortestPath(graph, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "near"}, pathNames(path))
}

func TestShortestPathMultiRowChain(t *testing.T) {
	graph := Graph{
		{fw("a", "0,0", 1.0)},
		{fw("b1", "0,1", 1.0), fw("b2", "0,4", 1.0)},
		{fw("c", "0,2", 1.0)},
	}

	path, err := ShortestPath(graph, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b1", "c"}, pathNames(path), "detour through b2 costs more overall")
}

func TestShortestPathDuplicateOwnedByOneRow(t *testing.T) {
	shared := fw("shared", "5,5", 0.9)
	graph := Graph{
		{fw("x", "0,0", 1.0), shared},
		{shared, fw("y", "0,1", 1.0)},
	}

	path, err := ShortestPath(graph, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, pathNames(path),
		"the shared candidate is assigned to at most one row, and the cheap pair wins")
}

func TestShortestPathDuplicateRequiredByBothRows(t *testing.T) {
	only := fw("only", "5,5", 1.0)
	graph := Graph{
		{only},
		{only},
	}

	_, err := ShortestPath(graph, Options{})
	var noPath *NoPathError
	assert.ErrorAs(t, err, &noPath, "one waypoint cannot serve two stops")
}

func TestShortestPathDuplicateSandwich(t *testing.T) {
	a := fw("a", "0,0", 1.0)
	graph := Graph{
		{a},
		{fw("b", "0,1", 1.0)},
		{a},
	}

	_, err := ShortestPath(graph, Options{})
	var noPath *NoPathError
	assert.ErrorAs(t, err, &noPath)
}

func TestShortestPathZeroCertaintyIsUnroutable(t *testing.T) {
	graph := Graph{
		{fw("a", "0,0", 1.0)},
		{fw("b", "0,1", 0.0)},
	}

	_, err := ShortestPath(graph, Options{})
	var noPath *NoPathError
	assert.ErrorAs(t, err, &noPath)
}

func TestShortestPathVariantLimitOne(t *testing.T) {
	// The most preferred variant already contains the best path, so a
	// limit of one variant does not change the answer here.
	shared := fw("shared", "5,5", 0.9)
	graph := Graph{
		{fw("x", "0,0", 1.0), shared},
		{shared, fw("y", "0,1", 1.0)},
	}

	path, err := ShortestPath(graph, Options{VariantLimit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, pathNames(path))
}

func TestUniqueProductPermutations(t *testing.T) {
	choices := [][]int{{1, 2, 3}, {1, 2, 3}, {1, 2, 3}}

	var got [][]int
	UniqueProduct(choices, nil, func(combo []int) bool {
		got = append(got, combo)
		return true
	})

	want := [][]int{
		{1, 2, 3}, {1, 3, 2},
		{2, 1, 3}, {2, 3, 1},
		{3, 1, 2}, {3, 2, 1},
	}
	assert.Equal(t, want, got)
}

func TestUniqueProductSkipValuesRepeat(t *testing.T) {
	choices := [][]int{{1, 0}, {1, 0}}
	skip := func(v int) bool { return v == 0 }

	var got [][]int
	UniqueProduct(choices, skip, func(combo []int) bool {
		got = append(got, combo)
		return true
	})

	assert.Equal(t, [][]int{{1, 0}, {0, 1}, {0, 0}}, got)
}

func TestUniqueProductEarlyStop(t *testing.T) {
	choices := [][]int{{1, 2}, {1, 2}}

	var got [][]int
	UniqueProduct(choices, nil, func(combo []int) bool {
		got = append(got, combo)
		return false
	})

	assert.Equal(t, [][]int{{1, 2}}, got)
}

func TestDistanceKm(t *testing.T) {
	a := entity.Waypoint{Name: "a", Location: "0,0"}
	b := entity.Waypoint{Name: "b", Location: "0,1"}

	// One degree of longitude at the equator is about 111.2 km.
	assert.InDelta(t, 111.2, distanceKm(a, b), 0.5)
	assert.Equal(t, 0.0, distanceKm(a, a))

	bad := entity.Waypoint{Name: "bad", Location: "nowhere"}
	assert.True(t, distanceKm(a, bad) > 1e18, "unparseable location degrades to infinity")
}
