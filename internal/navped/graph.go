// Package navped implements the undirected pedestrian navigation graph:
// its on-disk binary format and the angle-biased planner pedestrians use
// to wander between graph nodes.
package navped

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// PedMagic identifies a pedestrian graph file.
const PedMagic = "NAV_PED_GRAPH"

// Sign is the kind of pedestrian-facing control painted on a node.
type Sign uint8

const (
	SignNone Sign = iota
	SignSpawn
	SignSemaphore
)

// Neighbor is one of a node's up to four adjacent nodes, with the
// quantized outgoing angle (0..255 for 0..2π) from this node toward it;
// a pedestrian whose heading equals that angle is walking straight at it.
type Neighbor struct {
	Angle uint8
	Next  uint32
}

// Node is one point in the pedestrian graph. Node 0 is a reserved
// sentinel, as in navveh.
type Node struct {
	Sign      Sign
	Semaphore uint8
	Count     uint8
	Neighbors [4]Neighbor
	X, Y, Z   float32
}

// Graph is an immutable, loaded pedestrian navigation graph.
type Graph struct {
	Nodes     []Node
	NumSpawns uint32
}

// RespawnNode returns the spawn-region node for the given spawn index.
func (g *Graph) RespawnNode(indexSpawn uint32) *Node {
	return &g.Nodes[1+indexSpawn%g.NumSpawns]
}

type rawHeader struct {
	Magic    [16]byte
	NumNodes uint32
	NumSpawn uint32
	Padding  [2]uint32
}

// rawNode is one on-disk node record; each Neighbors entry packs
// {ang:8, next:24} into one little-/native-endian uint32.
type rawNode struct {
	Sign      byte
	Semaphore byte
	_         byte
	Count     byte
	Neighbors [4]uint32
	X, Y, Z   float32
}

func neighborFromRaw(v uint32) Neighbor {
	return Neighbor{Angle: uint8(v & 0xFF), Next: v >> 8}
}

func neighborToRaw(n Neighbor) uint32 {
	return uint32(n.Angle) | (n.Next << 8)
}

// Load reads a pedestrian graph from its binary format.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("navped: open %q: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a pedestrian graph from r.
func Decode(r io.Reader) (*Graph, error) {
	var hdr rawHeader
	if err := binary.Read(r, binary.NativeEndian, &hdr); err != nil {
		return nil, fmt.Errorf("navped: read header: %w", err)
	}
	magic := string(bytes.TrimRight(hdr.Magic[:], "\x00"))
	if magic != PedMagic {
		return nil, fmt.Errorf("navped: bad magic %q", magic)
	}

	nodes := make([]Node, hdr.NumNodes)
	for i := range nodes {
		var rn rawNode
		if err := binary.Read(r, binary.NativeEndian, &rn); err != nil {
			return nil, fmt.Errorf("navped: read node %d: %w", i, err)
		}
		n := Node{
			Sign:      Sign(rn.Sign),
			Semaphore: rn.Semaphore,
			Count:     rn.Count,
			X:         rn.X, Y: rn.Y, Z: rn.Z,
		}
		for j, raw := range rn.Neighbors {
			n.Neighbors[j] = neighborFromRaw(raw)
		}
		nodes[i] = n
	}
	return &Graph{Nodes: nodes, NumSpawns: hdr.NumSpawn}, nil
}

// Encode writes g in the same binary format Load reads.
func Encode(w io.Writer, g *Graph) error {
	var hdr rawHeader
	copy(hdr.Magic[:], PedMagic)
	hdr.NumNodes = uint32(len(g.Nodes))
	hdr.NumSpawn = g.NumSpawns
	if err := binary.Write(w, binary.NativeEndian, &hdr); err != nil {
		return fmt.Errorf("navped: write header: %w", err)
	}
	for i, n := range g.Nodes {
		rn := rawNode{
			Sign:      byte(n.Sign),
			Semaphore: n.Semaphore,
			Count:     n.Count,
			X:         n.X, Y: n.Y, Z: n.Z,
		}
		for j, nb := range n.Neighbors {
			rn.Neighbors[j] = neighborToRaw(nb)
		}
		if err := binary.Write(w, binary.NativeEndian, &rn); err != nil {
			return fmt.Errorf("navped: write node %d: %w", i, err)
		}
	}
	return nil
}
