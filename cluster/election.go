package cluster

// handleRepElection maintains this node's representative, next hop, and
// hop distance at level lvl (lvl >= 1; level 0 is always self-represented
// and is never touched here). It runs in three phases: invalidating a rep
// that is no longer consistent with what sender reports, electing a new
// rep when sender offers an eligible, preferable candidate, and otherwise
// shortening the route to an unchanged rep.
func (n *Node) handleRepElection(sender Identifier, msg *Message, lvl uint32) {
	if lvl == 0 {
		return
	}
	cur := n.levels[lvl]
	prev := n.levels[lvl-1]
	msgLvl := msg.Levels[lvl]

	invalid := cur.Rep != 0 && cur.Rep != prev.Rep && prev.Peers[cur.Rep] == nil
	noLongerAdvertised := cur.RepNextHop == sender && cur.Rep != msgLvl.Rep
	senderDroppedSelf := cur.Rep == sender && msgLvl.Rep != sender
	senderHasNoRep := msgLvl.Rep == 0 && cur.RepNextHop == sender

	if invalid || noLongerAdvertised || senderDroppedSelf || senderHasNoRep {
		cur.ResetRep()
		n.SetMaxLevel(lvl)
		cur.ResetPeers()
		n.events.Unelect(lvl)
	}

	if msgLvl.Rep != 0 && msgLvl.Rep != cur.Rep {
		_, candidateIsOurRep := prev.Peers[msgLvl.Rep]
		eligible := msgLvl.Rep == prev.Rep || candidateIsOurRep
		if eligible && n.prefersCandidate(cur, prev, msgLvl) {
			cur.Rep = msgLvl.Rep
			cur.RepNextHop = sender
			cur.RepDist = msgLvl.RepDist + 1
			n.SetMaxLevel(lvl)
			cur.ResetPeers()
			n.events.Elect(lvl, cur.Rep)
		}
	}

	if cur.Rep != 0 && cur.Rep == msgLvl.Rep && msgLvl.RepDist+1 < cur.RepDist {
		cur.RepNextHop = sender
		cur.RepDist = msgLvl.RepDist + 1
	}
}

// prefersCandidate decides whether the candidate rep advertised in msgLvl
// (already known eligible and different from cur.Rep) should replace
// cur.Rep, by the priority rules below; the first rule that fires wins.
// Every degree comparison guards against a missing peer entry on either
// side - an absent entry never makes a rule fire.
func (n *Node) prefersCandidate(cur, prev, msgLvl *Level) bool {
	r := msgLvl.Rep

	// 1. We have no rep yet: anything eligible beats nothing.
	if cur.Rep == 0 {
		return true
	}

	ourGroupSize := uint32(len(prev.Peers))

	// 2. Our rep is one of our level n-1 peers, and the sender's candidate
	// is our own level n-1 rep: prefer switching to our own group when
	// it is at least as large, breaking ties on the lower id.
	if curRepEntry, ok := prev.Peers[cur.Rep]; ok && r == prev.Rep {
		if ourGroupSize > curRepEntry.Degree {
			return true
		}
		if ourGroupSize == curRepEntry.Degree && r < cur.Rep {
			return true
		}
	}

	// 3. Our rep is our own level n-1 rep, but the candidate belongs to a
	// different level n-1 group than ours and that group outweighs ours.
	if cur.Rep == prev.Rep && prev.Rep != msgLvl.Rep {
		if candEntry, ok := prev.Peers[r]; ok {
			if candEntry.Degree > ourGroupSize {
				return true
			}
			if candEntry.Degree == ourGroupSize && r < cur.Rep {
				return true
			}
		}
	}

	// 4. Our rep is a level n-1 peer group, and the candidate belongs to
	// yet another peer group that outweighs our current choice.
	if prev.Rep != msgLvl.Rep && cur.Rep != prev.Rep {
		candEntry, candOK := prev.Peers[r]
		curEntry, curOK := prev.Peers[cur.Rep]
		if candOK && curOK {
			if candEntry.Degree > curEntry.Degree {
				return true
			}
			if candEntry.Degree == curEntry.Degree && r < cur.Rep {
				return true
			}
		}
	}

	return false
}

// tryToBecomeRep lazily promotes this node to representative of a new
// level. It fires only when this node is already the rep of the level
// directly below the current top level, that level has at least one peer,
// and the top level has no rep yet; the promotion itself is a coin flip
// weighted by the size of the level-below peer group, the standard
// Luby-MIS self-selection rule generalized to hop-bounded groups.
func (n *Node) tryToBecomeRep() {
	top := n.levels[len(n.levels)-1]
	if top.Rep != 0 || top.Num == 0 {
		return
	}
	below := n.levels[top.Num-1]
	if below.Rep != n.id || len(below.Peers) == 0 {
		return
	}

	k := len(below.Peers)
	if n.rand.Float64() < 1.0/(2.0*float64(k)) {
		top.Rep = n.id
		top.RepNextHop = n.id
		top.RepDist = 0
		top.ResetPeers()
		n.events.Elect(top.Num, n.id)
	}
}
