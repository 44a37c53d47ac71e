package placegraph

import (
	"container/heap"
	"math"

	"caravan-bot/internal/entity"
)

// node addresses one candidate in a variant graph. Row 0 is the synthetic
// root.
type node struct {
	row int
	col int
}

// dijkstra finds the minimum-cost path from the root row to the best node in
// the last row. It reports ok=false when any row is empty or the last row is
// unreachable (every way in runs through an infinite-cost edge), leaving the
// caller to try the next variant.
func dijkstra(graph Graph, costs *edgeCache) (Path, float64, bool) {
	for _, row := range graph {
		if len(row) == 0 {
			return nil, 0, false
		}
	}

	dist := make(map[node]float64)
	prev := make(map[node]node)
	visited := make(map[node]bool)

	pq := newNodeQueue()
	pq.push(node{row: 0, col: 0}, 0)

	for pq.Len() > 0 {
		current, cost := pq.pop()
		if visited[current] {
			continue
		}
		visited[current] = true

		nextRow := current.row + 1
		if nextRow >= len(graph) {
			continue
		}

		src := graph[current.row][current.col]
		for col, dst := range graph[nextRow] {
			edge := costs.cost(current.row == 0, src, dst)
			if math.IsInf(edge, 1) {
				continue // a zero-confidence match is never taken
			}

			neighbor := node{row: nextRow, col: col}
			total := cost + edge
			if known, ok := dist[neighbor]; !ok || total < known {
				dist[neighbor] = total
				prev[neighbor] = current
				pq.push(neighbor, total)
			}
		}
	}

	last := len(graph) - 1
	var best node
	bestCost := math.Inf(1)
	found := false
	for col := range graph[last] {
		n := node{row: last, col: col}
		if d, ok := dist[n]; ok && (!found || d < bestCost) {
			best = n
			bestCost = d
			found = true
		}
	}
	if !found {
		return nil, 0, false
	}

	// Walk back to the root, then reverse.
	path := make(Path, 0, last)
	for n := best; n.row > 0; n = prev[n] {
		path = append(path, graph[n.row][n.col].Waypoint)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, bestCost, true
}

// edgeCache memoizes pairwise edge costs for the lifetime of one resolution
// call. It must not outlive the call: costs depend on candidate identity,
// not on any state that survives it.
type edgeCache struct {
	memo map[edgeKey]float64
}

type edgeKey struct {
	src entity.FuzzyWaypoint
	dst entity.FuzzyWaypoint
}

func newEdgeCache() *edgeCache {
	return &edgeCache{memo: make(map[edgeKey]float64)}
}

func (c *edgeCache) cost(srcIsRoot bool, src, dst entity.FuzzyWaypoint) float64 {
	if srcIsRoot {
		return 0
	}

	key := edgeKey{src: src, dst: dst}
	if v, ok := c.memo[key]; ok {
		return v
	}

	v := edgeCost(src, dst)
	c.memo[key] = v
	return v
}

// edgeCost balances physical distance against how certain both endpoint
// matches are. A zero-certainty endpoint makes the edge unusable.
func edgeCost(src, dst entity.FuzzyWaypoint) float64 {
	certainty := src.Certainty * dst.Certainty
	if certainty == 0 {
		return math.Inf(1)
	}
	return distanceKm(src.Waypoint, dst.Waypoint) / certainty
}

// nodeQueue is a cost-ordered priority queue with an insertion counter to
// break cost ties deterministically.
type nodeQueue struct {
	items []*queueItem
	seq   int
}

type queueItem struct {
	node node
	cost float64
	seq  int
}

func newNodeQueue() *nodeQueue {
	q := &nodeQueue{}
	heap.Init(q)
	return q
}

func (q *nodeQueue) push(n node, cost float64) {
	q.seq++
	heap.Push(q, &queueItem{node: n, cost: cost, seq: q.seq})
}

func (q *nodeQueue) pop() (node, float64) {
	item := heap.Pop(q).(*queueItem)
	return item.node, item.cost
}

func (q *nodeQueue) Len() int { return len(q.items) }

func (q *nodeQueue) Less(i, j int) bool {
	if q.items[i].cost != q.items[j].cost {
		return q.items[i].cost < q.items[j].cost
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *nodeQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *nodeQueue) Push(x any) { q.items = append(q.items, x.(*queueItem)) }

func (q *nodeQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return item
}
