package cluster

import (
	"math/rand"
	"sort"
)

// newTestNode builds a Node with a deterministic random source, so that
// probabilistic self-promotion (tryToBecomeRep) is reproducible across
// test runs given the same seed.
func newTestNode(id Identifier, value Value, seed int64) *Node {
	return NewNode(id, value, rand.New(rand.NewSource(seed)), NopSink{})
}

// gossipRound delivers one fresh Snapshot from every node in nodes to each
// of its neighbors listed in edges, in ascending id order so test results
// do not depend on Go's map iteration order.
func gossipRound(nodes map[Identifier]*Node, edges map[Identifier][]Identifier) {
	for _, from := range sortedIDs(nodes) {
		msg := nodes[from].Snapshot()
		for _, to := range edges[from] {
			nodes[to].Receive(from, msg)
		}
	}
}

// converge runs gossipRound rounds times, the fixed-point iteration the
// protocol relies on to stabilize a static topology.
func converge(nodes map[Identifier]*Node, edges map[Identifier][]Identifier, rounds int) {
	for i := 0; i < rounds; i++ {
		gossipRound(nodes, edges)
	}
}

func sortedIDs(nodes map[Identifier]*Node) []Identifier {
	ids := make([]Identifier, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// newLine builds an undirected edge list over ids 1..n arranged in a
// simple path (line): 1-2, 2-3, ..., (n-1)-n.
func newLine(n int) map[Identifier][]Identifier {
	edges := make(map[Identifier][]Identifier)
	for i := 1; i <= n; i++ {
		id := Identifier(i)
		if i > 1 {
			edges[id] = append(edges[id], Identifier(i-1))
		}
		if i < n {
			edges[id] = append(edges[id], Identifier(i+1))
		}
	}
	return edges
}

// newClique builds an undirected edge list over ids 1..n where every pair
// is directly connected.
func newClique(n int) map[Identifier][]Identifier {
	edges := make(map[Identifier][]Identifier)
	for i := 1; i <= n; i++ {
		for j := 1; j <= n; j++ {
			if i != j {
				edges[Identifier(i)] = append(edges[Identifier(i)], Identifier(j))
			}
		}
	}
	return edges
}
