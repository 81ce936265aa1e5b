package cluster

// processTopologyChanges maintains peer-set membership, degrees, and route
// distances at level lvl, given a just-received Message from sender.
//
// Level 0 is a special case: sender is a direct graph neighbor, so
// membership there tracks the transport's own neighbor list rather than a
// multi-hop route. Levels 1 and up reconcile against whichever of the four
// relationships holds between our level-lvl representative and the
// sender's: no rep of ours, no rep of the sender's, the sender is a fellow
// member of our group, or the sender belongs to one of our peer groups.
func (n *Node) processTopologyChanges(sender Identifier, msg *Message, lvl uint32) {
	if lvl == 0 {
		n.processLevel0(sender, msg)
		return
	}

	cur := n.levels[lvl]
	msgLvl := msg.Levels[lvl]

	if cur.Rep == 0 {
		// No representative means no peers to maintain (invariant 3).
		return
	}

	if msgLvl.Rep == 0 {
		n.removePeersFrom(cur, sender)
		return
	}

	switch {
	case cur.Rep == msgLvl.Rep:
		n.reconcileGroupMember(lvl, cur, msgLvl, sender)
	default:
		n.reconcilePeerGroup(lvl, cur, msgLvl, sender)
	}

	if len(cur.Peers) == 0 && uint32(len(n.levels))-1 > lvl {
		n.events.Warn("level %d has no peers left; dropping levels above it", lvl)
		n.SetMaxLevel(lvl)
	}
	if cur.Rep == n.id && len(n.levels[lvl-1].Peers) == 0 {
		n.events.Warn("level %d rep has no level %d peers left; dropping the level", lvl, lvl-1)
		n.SetMaxLevel(lvl - 1)
	}
}

func (n *Node) processLevel0(sender Identifier, msg *Message) {
	lev0 := n.levels[0]
	degree := uint32(len(msg.Levels[0].Peers))
	if p, ok := lev0.Peers[sender]; !ok {
		lev0.Peers[sender] = &PeerEntry{Degree: degree, NextHop: sender, Dist: 1}
		n.SetMaxLevel(0)
	} else if p.Degree != degree {
		p.Degree = degree
		n.SetMaxLevel(0)
	}
}

// removePeersFrom drops every peer at cur whose route goes through sender,
// used when the sender no longer claims a representative at this level.
func (n *Node) removePeersFrom(cur *Level, sender Identifier) {
	removed := false
	for key, p := range cur.Peers {
		if p.NextHop == sender {
			delete(cur.Peers, key)
			removed = true
		}
	}
	if removed {
		n.SetMaxLevel(cur.Num)
	}
}

// reconcileGroupMember handles a sender that belongs to our own level-lvl
// group: its peer map should agree with ours, modulo routes learned
// through it.
func (n *Node) reconcileGroupMember(lvl uint32, cur, msgLvl *Level, sender Identifier) {
	removed := false
	for key, p := range cur.Peers {
		switch {
		case key == sender:
			// A fellow group member cannot also be an out-group peer.
			delete(cur.Peers, key)
			removed = true
		case p.NextHop != sender:
			// not routed through sender; untouched here
		case msgLvl.Peers[key] == nil:
			delete(cur.Peers, key)
			removed = true
		case msgLvl.Peers[key].NextHop == n.id:
			// split horizon: sender's route to this peer goes back through us
			delete(cur.Peers, key)
			removed = true
		case p.Dist == 1:
			// sender must have since joined our group
			delete(cur.Peers, key)
			removed = true
		case msgLvl.Peers[key].Dist+1 > MaxPeerDistance(lvl):
			delete(cur.Peers, key)
			removed = true
		default:
			senderEntry := msgLvl.Peers[key]
			if senderEntry.Degree != p.Degree {
				p.Degree = senderEntry.Degree
			}
			p.Dist = senderEntry.Dist + 1
		}
	}
	if removed {
		n.SetMaxLevel(lvl)
	}

	// Any peer we already know, regardless of current next-hop, switches
	// onto sender's route if it is strictly shorter than ours.
	for key, p := range cur.Peers {
		if senderEntry, ok := msgLvl.Peers[key]; ok && senderEntry.Dist+1 < p.Dist {
			p.NextHop = sender
			p.Dist = senderEntry.Dist + 1
			if senderEntry.Degree != p.Degree {
				p.Degree = senderEntry.Degree
			}
		}
	}

	for key, senderEntry := range msgLvl.Peers {
		if key == n.id || senderEntry.NextHop == n.id {
			continue
		}
		if _, known := cur.Peers[key]; known {
			continue
		}
		if senderEntry.Dist+1 > MaxPeerDistance(lvl) {
			continue
		}
		cur.Peers[key] = &PeerEntry{
			Degree:  senderEntry.Degree,
			Value:   senderEntry.Value,
			NextHop: sender,
			Dist:    senderEntry.Dist + 1,
		}
		n.SetMaxLevel(lvl)
	}
}

// reconcilePeerGroup handles a sender that belongs to one of our level-lvl
// peer groups (not our own group).
func (n *Node) reconcilePeerGroup(lvl uint32, cur, msgLvl *Level, sender Identifier) {
	rep := msgLvl.Rep
	degree := uint32(len(msgLvl.Peers))

	changed := false
	for key, p := range cur.Peers {
		switch {
		case key == rep && p.Dist > 1:
			delete(cur.Peers, key)
			changed = true
		case p.NextHop == sender && key != rep:
			delete(cur.Peers, key)
			changed = true
		case p.NextHop == sender && p.Degree != degree:
			if degree > 0 {
				p.Degree = degree
			} else {
				delete(cur.Peers, key)
				changed = true
			}
		}
	}
	if changed {
		n.SetMaxLevel(lvl)
	}

	if rep != 0 && rep != n.id {
		if _, known := cur.Peers[rep]; !known {
			cur.Peers[rep] = &PeerEntry{Degree: degree, NextHop: sender, Dist: 1}
			n.SetMaxLevel(lvl)
		}
	}
	if rep != 0 {
		if p, known := cur.Peers[rep]; known {
			p.Dist = 1
		}
	}
}
