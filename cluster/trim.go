package cluster

// trimVacatedLeadersAndPeers handles the levels sender used to carry but
// no longer does: msg only lists levels 0..len(msg.Levels)-1, so anything
// at or above that index that sender previously reported must now be
// reconciled against its absence. If our route to that level's
// representative went through sender, the representative is unelected;
// otherwise any peers routed through sender at that level are dropped.
func (n *Node) trimVacatedLeadersAndPeers(sender Identifier, msg *Message) {
	for lvl := uint32(len(msg.Levels)); int(lvl) < len(n.levels); lvl++ {
		cur := n.levels[lvl]
		if cur.Rep != 0 && cur.RepNextHop == sender {
			cur.ResetRep()
			n.SetMaxLevel(lvl)
			cur.ResetPeers()
			n.events.Unelect(lvl)
			continue
		}
		removed := false
		for key, p := range cur.Peers {
			if p.NextHop == sender {
				delete(cur.Peers, key)
				removed = true
			}
		}
		if removed {
			n.SetMaxLevel(lvl)
		}
	}
}
