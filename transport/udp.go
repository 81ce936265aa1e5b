// Package transport carries cluster.Message datagrams over UDP and drives
// the periodic randomized gossip schedule the protocol relies on: each
// node wakes at a random interval, picks one neighbor, and sends it a
// fresh Snapshot. This replaces the ns-3 simulated sockets and
// Simulator::Schedule event loop the protocol was originally prototyped
// against with real net.UDPConn sockets and Go timers; the logic each
// drives (randomized interval, random peer choice, continuous rescheduling
// after send) is otherwise unchanged.
package transport

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dedis/hlevel/cluster"
)

// Peer is one gossip neighbor this node may send to.
type Peer struct {
	ID   cluster.Identifier
	Addr string // host:port, resolved fresh on every send
}

// Transport sends and receives cluster.Message datagrams over UDP.
type Transport struct {
	conn  *net.UDPConn
	peers []Peer

	mu       sync.Mutex
	addrToID map[string]cluster.Identifier
}

// Listen binds a UDP socket at listenAddr (host:port) and registers peers
// as gossip neighbors. The returned Transport must be closed when done.
func Listen(listenAddr string, peers []Peer) (*Transport, error) {
	addr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: resolving %s: %w", listenAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listening on %s: %w", listenAddr, err)
	}

	addrToID := make(map[string]cluster.Identifier, len(peers))
	for _, p := range peers {
		addrToID[p.Addr] = p.ID
	}

	return &Transport{conn: conn, peers: peers, addrToID: addrToID}, nil
}

// Close releases the underlying socket.
func (t *Transport) Close() error { return t.conn.Close() }

// Send encodes msg and writes it to the peer identified by peerAddr.
func (t *Transport) Send(peerAddr string, msg *cluster.Message) error {
	addr, err := net.ResolveUDPAddr("udp", peerAddr)
	if err != nil {
		return fmt.Errorf("transport: resolving peer %s: %w", peerAddr, err)
	}
	buf := cluster.Encode(msg)
	_, err = t.conn.WriteToUDP(buf, addr)
	return err
}

// maxDatagramSize bounds a single read; a level stack deep enough to
// exceed this would already have blown well past any reasonable gossip
// fan-out, so a larger incoming datagram is treated as noise.
const maxDatagramSize = 64 * 1024

// Receive blocks until one datagram arrives, decodes it, and reports which
// registered peer it came from. An unrecognized source address (one not in
// the peer list passed to Listen) is reported with id 0; callers typically
// drop such messages.
func (t *Transport) Receive() (sender cluster.Identifier, msg *cluster.Message, err error) {
	buf := make([]byte, maxDatagramSize)
	n, from, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		return 0, nil, err
	}

	msg, err = cluster.Decode(buf[:n])
	if err != nil {
		return 0, nil, fmt.Errorf("transport: decoding datagram from %s: %w", from, err)
	}

	t.mu.Lock()
	id := t.addrToID[from.String()]
	t.mu.Unlock()
	return id, msg, nil
}

// ServeReceive runs Receive in a loop, invoking handle for every decoded
// message, until ctx is canceled or Receive returns an error. A datagram
// that fails to decode (including an oversized one cut short by the read
// buffer) is dropped and the loop goes on. It is meant to run as one arm of an
// errgroup.Group alongside a Scheduler's Run, so a failure in either stops
// both.
func (t *Transport) ServeReceive(ctx context.Context, handle func(sender cluster.Identifier, msg *cluster.Message)) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sender, msg, err := t.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, cluster.ErrTruncated) {
				continue // malformed or oversized datagram: drop it
			}
			return err
		}
		if sender == 0 {
			continue // datagram from an address we don't recognize as a peer
		}
		handle(sender, msg)
	}
}

// RunWithScheduler wires a Transport's receive loop and a Scheduler's send
// loop together under one errgroup, so an error or cancellation on either
// side tears down both.
func RunWithScheduler(ctx context.Context, t *Transport, sched *Scheduler, handle func(sender cluster.Identifier, msg *cluster.Message)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return t.ServeReceive(ctx, handle) })
	g.Go(func() error { return sched.Run(ctx) })
	return g.Wait()
}

// RandomPeer picks one peer uniformly at random using rnd. It panics if no
// peers are registered, matching the original prototype's assumption that
// a gossip node always has somewhere to send.
func (t *Transport) RandomPeer(rnd *rand.Rand) Peer {
	if len(t.peers) == 0 {
		panic("transport: no peers registered")
	}
	return t.peers[rnd.Intn(len(t.peers))]
}
