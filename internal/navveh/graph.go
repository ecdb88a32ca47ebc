// Package navveh implements the directed vehicle navigation graph: its
// on-disk binary format, the per-node reservation table vehicles use to
// negotiate right of way, and the planner that walks the graph ahead of
// each vehicle.
package navveh

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// VehMagic identifies a vehicle graph file.
const VehMagic = "NAV_VEH_GRAPH"

// Sign is the kind of traffic control painted on one side of a node.
type Sign uint8

const (
	SignNone Sign = iota
	SignSpawn
	SignYield
	SignStop
	SignSemaphore
	SignSpeed
)

// Route selects which outgoing edge a vehicle takes leaving a node.
type Route uint8

const (
	RouteNone Route = iota
	RouteLeft
	RouteRight
	RouteAny
)

// Side bundles the sign and routing rule attached to one direction of
// travel through a node.
type Side struct {
	Sign  Sign
	Route Route
}

// Node is one point in the vehicle graph. Node 0 is a reserved sentinel:
// it is never a real spawn or destination, only a placeholder for
// "no edge".
type Node struct {
	From      [2]Side
	Semaphore uint8 // semaphore index when From[*].Sign == SignSemaphore, or the km/h limit when SignSpeed
	Margin    uint8
	Prev      [2]uint32
	Next      [2]uint32
	X, Y, Z   float32
}

// Graph is an immutable, loaded vehicle navigation graph.
type Graph struct {
	Nodes     []Node
	NumSpawns uint32
}

// RespawnNode returns the spawn-region node for the given spawn index,
// wrapping modulo the number of spawn points. Node 0 is always skipped.
func (g *Graph) RespawnNode(indexSpawn uint32) *Node {
	return &g.Nodes[1+indexSpawn%g.NumSpawns]
}

type rawHeader struct {
	Magic    [16]byte
	NumNodes uint32
	NumSpawn uint32
	Padding  [2]uint32
}

type rawNode struct {
	From0     byte
	From1     byte
	Semaphore byte
	Margin    byte
	Prev      [2]uint32
	Next      [2]uint32
	X, Y, Z   float32
}

func sideFromByte(b byte) Side {
	return Side{Sign: Sign(b & 0x0F), Route: Route(b >> 4)}
}

func sideToByte(s Side) byte {
	return byte(s.Sign&0x0F) | byte(s.Route<<4)
}

// Load reads a vehicle graph from its 32-byte-header / 32-byte-record
// binary format. Endianness is host-native; cross-endian loads are not
// supported.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("navveh: open %q: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a vehicle graph from r, which must yield the same bytes
// Load would read from a file.
func Decode(r io.Reader) (*Graph, error) {
	var hdr rawHeader
	if err := binary.Read(r, binary.NativeEndian, &hdr); err != nil {
		return nil, fmt.Errorf("navveh: read header: %w", err)
	}
	magic := string(bytes.TrimRight(hdr.Magic[:], "\x00"))
	if magic != VehMagic {
		return nil, fmt.Errorf("navveh: bad magic %q", magic)
	}

	nodes := make([]Node, hdr.NumNodes)
	for i := range nodes {
		var rn rawNode
		if err := binary.Read(r, binary.NativeEndian, &rn); err != nil {
			return nil, fmt.Errorf("navveh: read node %d: %w", i, err)
		}
		nodes[i] = Node{
			From:      [2]Side{sideFromByte(rn.From0), sideFromByte(rn.From1)},
			Semaphore: rn.Semaphore,
			Margin:    rn.Margin,
			Prev:      rn.Prev,
			Next:      rn.Next,
			X:         rn.X, Y: rn.Y, Z: rn.Z,
		}
	}
	return &Graph{Nodes: nodes, NumSpawns: hdr.NumSpawn}, nil
}

// Encode writes g in the same binary format Load reads, for round-trip
// testing and for host tools that build graphs in memory.
func Encode(w io.Writer, g *Graph) error {
	var hdr rawHeader
	copy(hdr.Magic[:], VehMagic)
	hdr.NumNodes = uint32(len(g.Nodes))
	hdr.NumSpawn = g.NumSpawns
	if err := binary.Write(w, binary.NativeEndian, &hdr); err != nil {
		return fmt.Errorf("navveh: write header: %w", err)
	}
	for i, n := range g.Nodes {
		rn := rawNode{
			From0:     sideToByte(n.From[0]),
			From1:     sideToByte(n.From[1]),
			Semaphore: n.Semaphore,
			Margin:    n.Margin,
			Prev:      n.Prev,
			Next:      n.Next,
			X:         n.X, Y: n.Y, Z: n.Z,
		}
		if err := binary.Write(w, binary.NativeEndian, &rn); err != nil {
			return fmt.Errorf("navveh: write node %d: %w", i, err)
		}
	}
	return nil
}
