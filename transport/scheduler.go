package transport

import (
	"context"
	"math/rand"
	"time"

	"github.com/dedis/hlevel/cluster"
)

// Scheduler drives a Node's outbound gossip: repeatedly wait a random
// interval in [0, MaxInterval), pick one peer at random, and send it a
// fresh Snapshot. This is a direct translation of the original
// ScheduleTransmit/Send pair, which rescheduled itself with
// MilliSeconds(rand() % 100) after every send; MaxInterval generalizes the
// original's hardcoded 100ms ceiling into a configurable field.
type Scheduler struct {
	Node        *cluster.Node
	Transport   *Transport
	Rand        *rand.Rand
	MaxInterval time.Duration

	// OnSend, if set, is called after each successful send with the peer
	// that was chosen; it exists for tests and for the D3-style event log
	// the original emitted on every send.
	OnSend func(peer Peer)
}

// Run sends gossip until ctx is canceled, then returns ctx.Err(). A send
// error is non-fatal: the original prototype never treated a single
// dropped UDP datagram as a reason to stop gossiping, so this loop logs
// nothing and simply tries again next interval. Callers that want send
// failures surfaced should wrap Transport.Send or inspect OnSend.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		wait := time.Duration(s.Rand.Int63n(int64(s.MaxInterval)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		peer := s.Transport.RandomPeer(s.Rand)
		msg := s.Node.Snapshot()
		if err := s.Transport.Send(peer.Addr, msg); err == nil && s.OnSend != nil {
			s.OnSend(peer)
		}
	}
}
