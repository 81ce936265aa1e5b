package cluster

// Identifier is a 32-bit value unique per node in the graph. Zero is
// reserved to mean "none" and is never a valid node identifier.
type Identifier uint32

// Value is the per-node quantity whose per-group median the protocol
// maintains. It is drawn from the uniform [0,1] distribution at node
// initialization and never changes thereafter; what changes is which
// group's median it feeds into as the hierarchy reshapes itself.
type Value float64

// PeerEntry summarizes a neighboring group known at some level: a group
// this node is not a member of, but has learned about via gossip through
// one or more intermediate hops.
type PeerEntry struct {
	Degree  uint32     // observed size of that group
	Value   Value      // most recent aggregate value reported for that group
	NextHop Identifier // neighbor through which this entry was learned
	Dist    uint32     // hop count from this node to the group's rep, >= 1
}

// Level holds one tier of the clustering hierarchy. Level 0 always
// represents this node by itself: Rep equals the owning Node's own
// identifier, RepNextHop equals Rep, and RepDist is 0. At level n >= 1, Rep
// is either zero (this node currently follows no level-n representative)
// or the identifier of a level n-1 representative or peer that this node
// has adopted as its level-n leader.
//
// Peers is keyed by representative identifier and must never contain this
// node's own id (a node cannot be its own out-of-group peer).
type Level struct {
	Num        uint32 // the level number: 0, 1, 2, ...
	Rep        Identifier
	RepNextHop Identifier // neighbor to forward toward Rep; own id if Rep == self
	RepDist    uint32     // hop distance to Rep; 0 if Rep == self
	RepValue   Value      // aggregate value of this node's group at this level
	Peers      map[Identifier]*PeerEntry
}

func newLevel(num uint32) *Level {
	return &Level{Num: num, Peers: make(map[Identifier]*PeerEntry)}
}

// MaxPeerDistance returns the hop budget for peer routes at level n:
// MaxPeerDistance(0) == 1, MaxPeerDistance(n) == 3*2^(n-1) for n >= 1. It
// bounds how far a route to a peer group may be rediscovered through
// before the route is treated as a loop and discarded.
func MaxPeerDistance(level uint32) uint32 {
	if level == 0 {
		return 1
	}
	return 3 * (1 << (level - 1))
}

// ResetPeers drops every peer entry at this level.
func (l *Level) ResetPeers() {
	l.Peers = make(map[Identifier]*PeerEntry)
}

// ResetRep clears this level's representative fields. It does not touch
// Peers; callers that need both call ResetPeers separately.
func (l *Level) ResetRep() {
	l.Rep = 0
	l.RepNextHop = 0
	l.RepDist = 0
	l.RepValue = 0
}

func (l *Level) clone() *Level {
	out := &Level{
		Num:        l.Num,
		Rep:        l.Rep,
		RepNextHop: l.RepNextHop,
		RepDist:    l.RepDist,
		RepValue:   l.RepValue,
		Peers:      make(map[Identifier]*PeerEntry, len(l.Peers)),
	}
	for k, v := range l.Peers {
		cp := *v
		out.Peers[k] = &cp
	}
	return out
}

// Message is the decoded form of one node's gossiped level stack, as
// produced by Decode and consumed by Node.Receive. Sender is the
// originating node's own identifier (its level-0 rep); Levels holds one
// entry per level the sender currently maintains, in ascending order.
//
// A Message's Levels share the Level/PeerEntry types used by Node's own
// state, but RepNextHop on a decoded Level is always zero: next-hop
// routing is purely local bookkeeping and is never put on the wire.
type Message struct {
	Sender Identifier
	Levels []*Level
}
