package cluster

// Receive processes a decoded Message from sender, running the fixed
// reconciliation sequence the protocol defines for every inbound gossip
// message: per-level topology reconciliation and representative election,
// then trimming of levels the sender no longer carries, then peer value
// propagation, group median recalculation, and finally a lazy attempt to
// promote this node to a new level.
//
// Receive never suspends partway through: it consumes msg fully and
// returns only once every invariant in the Level/PeerEntry doc comments
// holds again. Applying the same Message twice in immediate succession
// (with no other event interleaved) leaves the Node in the same state as
// applying it once.
func (n *Node) Receive(sender Identifier, msg *Message) {
	for lvl := uint32(0); int(lvl) < len(msg.Levels) && int(lvl) < len(n.levels); lvl++ {
		n.processTopologyChanges(sender, msg, lvl)
		n.tryToStartNewLevel()
		if int(lvl) < len(msg.Levels) && int(lvl) < len(n.levels) {
			n.handleRepElection(sender, msg, lvl)
		}
	}

	n.trimVacatedLeadersAndPeers(sender, msg)
	n.updatePeerValues(sender, msg)
	n.recalculateLevelValues()
	n.tryToBecomeRep()
}

// tryToStartNewLevel appends a new, empty Level once the current highest
// level has both a representative and at least one peer (invariant 5). It
// is the only way the level stack grows.
func (n *Node) tryToStartNewLevel() {
	top := n.levels[len(n.levels)-1]
	if top.Rep != 0 && len(top.Peers) > 0 {
		n.levels = append(n.levels, newLevel(top.Num+1))
	}
}
