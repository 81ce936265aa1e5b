package cluster

import "testing"

func setupElectionNode(t *testing.T) (*Node, *Level, *Level) {
	t.Helper()
	n := newTestNode(1, 0, 1)
	prev := n.levels[0] // level 0
	cur := newLevel(1)
	n.levels = append(n.levels, cur)
	return n, cur, prev
}

func TestPrefersCandidateNoCurrentRep(t *testing.T) {
	n, cur, prev := setupElectionNode(t)
	msgLvl := &Level{Rep: 9}
	if !n.prefersCandidate(cur, prev, msgLvl) {
		t.Fatal("a node with no rep must prefer any eligible candidate")
	}
}

func TestPrefersCandidateOwnGroupLargerWins(t *testing.T) {
	n, cur, prev := setupElectionNode(t)
	cur.Rep = 50 // currently following a level-0 peer
	prev.Rep = 7
	prev.Peers[50] = &PeerEntry{Degree: 1}
	prev.Peers[8] = &PeerEntry{Degree: 1} // gives len(prev.Peers) == 2, strictly above 1

	msgLvl := &Level{Rep: prev.Rep} // R == our own level 0 rep

	if !n.prefersCandidate(cur, prev, msgLvl) {
		t.Fatal("a strictly larger own group should switch to following it")
	}
}

func TestPrefersCandidateTieBreaksOnLowerID(t *testing.T) {
	n, cur, prev := setupElectionNode(t)
	cur.Rep = 50
	prev.Rep = 7
	prev.Peers[50] = &PeerEntry{Degree: 1}

	msgLvl := &Level{Rep: prev.Rep}

	// len(prev.Peers) == 1 == prev.Peers[50].Degree: a tie, decided by id.
	if prev.Rep >= cur.Rep {
		t.Fatalf("test setup invalid: need prev.Rep(%d) < cur.Rep(%d)", prev.Rep, cur.Rep)
	}
	if !n.prefersCandidate(cur, prev, msgLvl) {
		t.Fatal("expected the lower-id candidate to win the tie")
	}
}

func TestPrefersCandidateMissingPeerEntryNeverFires(t *testing.T) {
	n, cur, prev := setupElectionNode(t)
	cur.Rep = 50 // not a known level-0 peer: prev.Peers[50] is absent
	prev.Rep = 7

	msgLvl := &Level{Rep: prev.Rep}
	if n.prefersCandidate(cur, prev, msgLvl) {
		t.Fatal("a missing peer entry must never make a preference rule fire")
	}
}

func TestHandleRepElectionInvalidatesOnInvariantViolation(t *testing.T) {
	n, cur, prev := setupElectionNode(t)
	prev.Rep = 7
	cur.Rep = 99 // not prev.Rep and not a known level-0 peer: invariant 2 broken
	cur.RepNextHop = 3
	cur.Peers[123] = &PeerEntry{Degree: 1, NextHop: 3, Dist: 1}

	sink := &RecordingSink{}
	n.events = sink

	msg := &Message{Sender: 3, Levels: []*Level{{Num: 0}, {Num: 1}}}
	n.handleRepElection(3, msg, 1)

	if cur.Rep != 0 {
		t.Fatalf("expected the invalid rep to be cleared, got %d", cur.Rep)
	}
	if len(cur.Peers) != 0 {
		t.Fatal("expected ResetPeers to have cleared the peer set")
	}
	foundUnelect := false
	for _, e := range sink.Events {
		if e.Kind == "unelect" {
			foundUnelect = true
		}
	}
	if !foundUnelect {
		t.Fatal("expected an unelect event")
	}
}

func TestHandleRepElectionAdoptsEligibleCandidate(t *testing.T) {
	n, cur, prev := setupElectionNode(t)
	// No current rep: any eligible candidate is adopted.
	prev.Rep = 7
	msg := &Message{Sender: 3, Levels: []*Level{
		{Num: 0},
		{Num: 1, Rep: 7, RepDist: 0},
	}}

	n.handleRepElection(3, msg, 1)

	if cur.Rep != 7 || cur.RepNextHop != 3 || cur.RepDist != 1 {
		t.Fatalf("got Rep=%d RepNextHop=%d RepDist=%d", cur.Rep, cur.RepNextHop, cur.RepDist)
	}
}

func TestHandleRepElectionShortensRouteWithoutReelecting(t *testing.T) {
	n, cur, prev := setupElectionNode(t)
	prev.Rep = 7
	cur.Rep = 7
	cur.RepNextHop = 4
	cur.RepDist = 5
	cur.Peers[1] = &PeerEntry{Degree: 1, NextHop: 4, Dist: 1}

	msg := &Message{Sender: 3, Levels: []*Level{
		{Num: 0},
		{Num: 1, Rep: 7, RepDist: 1},
	}}

	n.handleRepElection(3, msg, 1)

	if cur.RepNextHop != 3 || cur.RepDist != 2 {
		t.Fatalf("expected the shorter route to be adopted, got NextHop=%d Dist=%d", cur.RepNextHop, cur.RepDist)
	}
	if _, ok := cur.Peers[1]; !ok {
		t.Fatal("route shortening must not reset the peer set")
	}
}

func TestTryToBecomeRepRequiresNonEmptyLowerGroup(t *testing.T) {
	n := newTestNode(1, 0, 1)
	n.levels = append(n.levels, newLevel(1))
	n.levels[0].Rep = n.id // we represent level 0, but have no peers there

	n.tryToBecomeRep()

	if n.levels[1].Rep != 0 {
		t.Fatal("must not self-promote without at least one peer at the level below")
	}
}

func TestTryToBecomeRepRequiresBeingTheLowerRep(t *testing.T) {
	n := newTestNode(1, 0, 1)
	n.levels = append(n.levels, newLevel(1))
	n.levels[0].Rep = 2 // someone else represents us at level 0
	n.levels[0].Peers[3] = &PeerEntry{Degree: 1, NextHop: 3, Dist: 1}

	n.tryToBecomeRep()

	if n.levels[1].Rep != 0 {
		t.Fatal("must not self-promote when this node is not the level-below rep")
	}
}
