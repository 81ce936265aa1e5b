// Package cluster implements the per-node state machine of a gossip-driven
// hierarchical clustering protocol over a connected peer-to-peer graph.
//
// The protocol builds a tower of Luby-style maximal independent set (MIS)
// elections, one per level. At level 0 every node represents only itself.
// At each level n >= 1, a subset of level n-1 representatives elect
// themselves as level-n representatives; every other level n-1
// representative follows one such rep, forming a level-n group. Each group
// carries an aggregate Value: the median of the values reported by its
// level n-1 members.
//
// This package handles the core reconciliation logic and the wire codec,
// leaving node discovery and transport to the client. A good way to
// understand it is to read types.go and node.go for the data model, then
// dispatch.go for the fixed sequence Receive runs on every inbound message.
//
// Configuring and launching a node
//
// A client assigns each node a unique, nonzero Identifier and an initial
// Value, then calls NewNode with a *rand.Rand (used only for the
// probabilistic self-promotion step) and an EventSink (used to observe
// elections, trims, and level changes). The returned Node starts at level
// 0 only, already its own level-0 representative.
//
// Message transmission, marshaling
//
// This package performs no I/O. The client calls Snapshot to capture a
// Node's current level stack as a Message and Encode to serialize that
// Message into bytes ready for gossip, and calls
// Receive with a decoded Message whenever one arrives from a neighbor. See
// the transport package for a UDP-based client of this API.
//
// Protocol operation
//
// Receive performs, in order: topology reconciliation per level
// (processTopologyChanges, possibly extending the level stack via
// tryToStartNewLevel), representative election per level
// (handleRepElection), trimming of state the sender no longer carries
// (trimVacatedLeadersAndPeers), propagation of peer aggregate values
// (updatePeerValues), recomputation of this node's own group medians
// (recalculateLevelValues), and finally a lazy, randomized attempt to
// promote this node to a new level (tryToBecomeRep). The struct-level
// invariants documented on Level and PeerEntry hold before and after every
// call to Receive.
//
// Concurrency control
//
// A Node is not safe for concurrent use. Receive and Snapshot must run in a
// single goroutine per node, or the caller must serialize access with its
// own lock; see Node's doc comment for the reasoning.
package cluster
