package cluster

import "sort"

// updatePeerValues absorbs the representative and peer values sender just
// reported, at every level sender and we both carry. It never changes
// membership or routing - only the Value fields PeerEntry and Level carry
// for downstream aggregation.
func (n *Node) updatePeerValues(sender Identifier, msg *Message) {
	for lvl := 0; lvl < len(msg.Levels) && lvl < len(n.levels); lvl++ {
		cur := n.levels[lvl]
		msgLvl := msg.Levels[lvl]

		if cur.Rep != 0 && cur.Rep == msgLvl.Rep && cur.RepNextHop == sender {
			cur.RepValue = msgLvl.RepValue
		}

		for key, p := range cur.Peers {
			if p.NextHop != sender {
				continue
			}
			if cur.Rep == msgLvl.Rep {
				if senderPeer, ok := msgLvl.Peers[key]; ok {
					p.Value = senderPeer.Value
				}
			} else {
				p.Value = msgLvl.RepValue
			}
		}
	}
}

// recalculateLevelValues recomputes, for every level this node represents,
// the median of the level-below representative's value together with all
// of that level's peer values. Levels this node does not
// represent are left untouched - their RepValue arrives from elsewhere via
// updatePeerValues.
func (n *Node) recalculateLevelValues() {
	for lvl := 1; lvl < len(n.levels); lvl++ {
		cur := n.levels[lvl]
		if cur.Rep != n.id {
			continue
		}
		below := n.levels[lvl-1]

		values := make([]Value, 0, len(below.Peers)+1)
		values = append(values, below.RepValue)
		for _, p := range below.Peers {
			values = append(values, p.Value)
		}
		cur.RepValue = median(values)
	}
}

// median returns the median of vs, sorted ascending; it averages the two
// central values when vs has an even length. vs must be non-empty.
func median(vs []Value) Value {
	sorted := make([]Value, len(vs))
	copy(sorted, vs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
