package cluster

import "testing"

func TestMedianOdd(t *testing.T) {
	got := median([]Value{0.5, 0.1, 0.9})
	if got != 0.5 {
		t.Fatalf("median(odd) = %v, want 0.5", got)
	}
}

func TestMedianEvenAverages(t *testing.T) {
	got := median([]Value{0.1, 0.3, 0.5, 0.7})
	want := Value(0.4)
	if got != want {
		t.Fatalf("median(even) = %v, want %v", got, want)
	}
}

func TestMedianSingleValue(t *testing.T) {
	if got := median([]Value{0.42}); got != 0.42 {
		t.Fatalf("median(single) = %v, want 0.42", got)
	}
}

func TestRecalculateLevelValuesTakesMedianOfGroup(t *testing.T) {
	n := newTestNode(1, 0.5, 1)
	n.levels = append(n.levels, newLevel(1))

	// Node 1 represents level 1, elected over a level-0 group of itself
	// plus two peers.
	below := n.levels[0]
	below.RepValue = 0.2
	below.Peers[2] = &PeerEntry{Degree: 1, Value: 0.4, NextHop: 2, Dist: 1}
	below.Peers[3] = &PeerEntry{Degree: 1, Value: 0.6, NextHop: 3, Dist: 1}

	top := n.levels[1]
	top.Rep = n.id

	n.recalculateLevelValues()

	want := median([]Value{0.2, 0.4, 0.6})
	if top.RepValue != want {
		t.Fatalf("RepValue = %v, want %v", top.RepValue, want)
	}
}

func TestRecalculateLevelValuesSkipsLevelsNotRepresented(t *testing.T) {
	n := newTestNode(1, 0.5, 1)
	n.levels = append(n.levels, newLevel(1))
	n.levels[1].Rep = 9 // someone else's group
	n.levels[1].RepValue = 0.77

	n.recalculateLevelValues()

	if n.levels[1].RepValue != 0.77 {
		t.Fatalf("RepValue changed for a level this node does not represent: %v", n.levels[1].RepValue)
	}
}

func TestUpdatePeerValuesAdoptsRepValueFromOwnGroup(t *testing.T) {
	n := newTestNode(1, 0.1, 1)
	n.levels[0].Peers[2] = &PeerEntry{Degree: 1, NextHop: 2, Dist: 1}
	n.levels = append(n.levels, newLevel(1))
	n.levels[1].Rep = 1
	n.levels[1].RepNextHop = 2

	msgLvl0 := newLevel(0)
	msgLvl0.Rep, msgLvl0.RepValue = 2, 0.2
	msgLvl1 := newLevel(1)
	msgLvl1.Rep, msgLvl1.RepValue = 1, 0.55

	n.updatePeerValues(2, &Message{Sender: 2, Levels: []*Level{msgLvl0, msgLvl1}})

	if n.levels[1].RepValue != 0.55 {
		t.Fatalf("RepValue = %v, want 0.55", n.levels[1].RepValue)
	}
}

func TestUpdatePeerValuesCopiesPeerEntryWithinGroup(t *testing.T) {
	n := newTestNode(1, 0.1, 1)
	n.levels[0].Rep = 1
	n.levels[0].Peers[2] = &PeerEntry{Degree: 1, NextHop: 2, Dist: 1}
	n.levels[0].Peers[3] = &PeerEntry{Degree: 1, Value: 0, NextHop: 2, Dist: 2}

	msgLvl0 := newLevel(0)
	msgLvl0.Rep = 1
	msgLvl0.Peers[3] = &PeerEntry{Degree: 1, Value: 0.42, NextHop: 0, Dist: 1}

	n.updatePeerValues(2, &Message{Sender: 2, Levels: []*Level{msgLvl0}})

	if n.levels[0].Peers[3].Value != 0.42 {
		t.Fatalf("Value = %v, want 0.42", n.levels[0].Peers[3].Value)
	}
}

func TestUpdatePeerValuesUsesSenderRepValueAcrossGroups(t *testing.T) {
	n := newTestNode(1, 0.1, 1)
	n.levels[0].Rep = 1
	n.levels[0].Peers[5] = &PeerEntry{Degree: 2, NextHop: 2, Dist: 1}

	msgLvl0 := newLevel(0)
	msgLvl0.Rep, msgLvl0.RepValue = 5, 0.33

	n.updatePeerValues(2, &Message{Sender: 2, Levels: []*Level{msgLvl0}})

	if n.levels[0].Peers[5].Value != 0.33 {
		t.Fatalf("Value = %v, want 0.33", n.levels[0].Peers[5].Value)
	}
}
