package cluster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrTruncated is returned by Decode when the buffer ends in the middle of
// a field or record. The original ns-3 prototype this protocol is modeled
// on tolerated truncated input by returning whatever prefix parsed
// cleanly; this implementation instead reports the failure so the caller
// can drop the datagram, per the recommendation in the protocol notes.
var ErrTruncated = errors.New("cluster: truncated message")

const (
	headerSize    = 4 + 4          // sender, num_levels
	levelHeadSize = 4 + 4 + 4 + 8 + 4 // level, rep, rep_dist, rep_value, num_peers
	peerRecSize   = 4 + 4 + 8 + 4 + 4 // peer_key, degree, value, dist, next_hop
)

// EncodedSize returns the number of bytes Encode(msg) will produce. It is a
// pure function of msg's shape and must always equal len(Encode(msg)).
func EncodedSize(msg *Message) int {
	sz := headerSize
	for _, lvl := range msg.Levels {
		sz += levelHeadSize + len(lvl.Peers)*peerRecSize
	}
	return sz
}

// Encode serializes msg into a self-delimiting little-endian byte buffer.
// Peer entries within a level are written in ascending key order, which
// keeps the encoding deterministic for tests even though the wire format
// does not require any particular order (Decode never depends on it).
func Encode(msg *Message) []byte {
	buf := make([]byte, EncodedSize(msg))
	off := 0

	binary.LittleEndian.PutUint32(buf[off:], uint32(msg.Sender))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(msg.Levels)))
	off += 4

	for _, lvl := range msg.Levels {
		binary.LittleEndian.PutUint32(buf[off:], lvl.Num)
		off += 4
		binary.LittleEndian.PutUint32(buf[off:], uint32(lvl.Rep))
		off += 4
		binary.LittleEndian.PutUint32(buf[off:], lvl.RepDist)
		off += 4
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(float64(lvl.RepValue)))
		off += 8
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(lvl.Peers)))
		off += 4

		keys := make([]Identifier, 0, len(lvl.Peers))
		for k := range lvl.Peers {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

		for _, key := range keys {
			p := lvl.Peers[key]
			binary.LittleEndian.PutUint32(buf[off:], uint32(key))
			off += 4
			binary.LittleEndian.PutUint32(buf[off:], p.Degree)
			off += 4
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(float64(p.Value)))
			off += 8
			binary.LittleEndian.PutUint32(buf[off:], p.Dist)
			off += 4
			binary.LittleEndian.PutUint32(buf[off:], uint32(p.NextHop))
			off += 4
		}
	}
	return buf
}

// Decode parses a buffer produced by Encode back into a Message. It
// returns ErrTruncated if the buffer ends before a complete record can be
// read, and never returns a partially-populated Message alongside an
// error: a malformed datagram is dropped wholesale, preserving the
// invariant that a node never partially applies an undecoded message.
func Decode(buf []byte) (*Message, error) {
	if len(buf) < headerSize {
		return nil, ErrTruncated
	}
	off := 0
	sender := Identifier(binary.LittleEndian.Uint32(buf[off:]))
	off += 4
	numLevels := binary.LittleEndian.Uint32(buf[off:])
	off += 4

	levels := make([]*Level, 0, numLevels)
	for i := uint32(0); i < numLevels; i++ {
		if len(buf)-off < levelHeadSize {
			return nil, ErrTruncated
		}
		lvl := newLevel(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
		lvl.Rep = Identifier(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
		lvl.RepDist = binary.LittleEndian.Uint32(buf[off:])
		off += 4
		lvl.RepValue = Value(math.Float64frombits(binary.LittleEndian.Uint64(buf[off:])))
		off += 8
		numPeers := binary.LittleEndian.Uint32(buf[off:])
		off += 4

		for j := uint32(0); j < numPeers; j++ {
			if len(buf)-off < peerRecSize {
				return nil, ErrTruncated
			}
			key := Identifier(binary.LittleEndian.Uint32(buf[off:]))
			off += 4
			p := &PeerEntry{}
			p.Degree = binary.LittleEndian.Uint32(buf[off:])
			off += 4
			p.Value = Value(math.Float64frombits(binary.LittleEndian.Uint64(buf[off:])))
			off += 8
			p.Dist = binary.LittleEndian.Uint32(buf[off:])
			off += 4
			p.NextHop = Identifier(binary.LittleEndian.Uint32(buf[off:]))
			off += 4
			lvl.Peers[key] = p
		}
		levels = append(levels, lvl)
	}

	if off != len(buf) {
		return nil, fmt.Errorf("cluster: %w: %d trailing bytes", ErrTruncated, len(buf)-off)
	}
	return &Message{Sender: sender, Levels: levels}, nil
}

// Snapshot captures the sendable form of a Node's current level stack, for
// handing to Encode. The returned Message must not be mutated by the
// caller: it shares no state with the Node, but downstream code (e.g. a
// transport retrying a send) may reasonably assume it is immutable.
func (n *Node) Snapshot() *Message {
	levels := make([]*Level, len(n.levels))
	for i, lvl := range n.levels {
		levels[i] = lvl.clone()
	}
	return &Message{Sender: n.id, Levels: levels}
}
