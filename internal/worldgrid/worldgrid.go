// Package worldgrid implements the uniform spatial hash that lets every
// moving entity in the city (bus, vehicles, pedestrians) find what is
// near it without scanning the whole world.
package worldgrid

import "math"

// CellSize is the edge length (in world units) of one grid cell.
const CellSize = 8.0
const cellSizeInv = 1.0 / CellSize

// cellBias shifts cell coordinates so that (0,0) is never a valid,
// inserted cell index; it marks "not currently inserted" on Entity.
const cellBias = 0x7FFF

// EntityKind tags an Entity for downcasting by callers, mirroring the
// handful of concrete kinds the simulation ever spawns.
type EntityKind uint8

const (
	KindNone EntityKind = iota
	KindBus
	KindVehicle
	KindPedestrian
	KindObject
)

// Entity is the intrusive node every world-tracked object embeds. It
// carries its own linked-list forward pointer so a cell's occupants form
// a singly-linked list with no extra allocation per insert, plus the
// exact (X, Y) it was last inserted at so a caller walking a Query or
// QueryRadius iterator can recover precise position straight off the
// returned Entity rather than maintaining its own lookup back to owner.
type Entity struct {
	Kind EntityKind
	X, Y float64

	cellX, cellY uint16
	next         *Entity
}

// NewEntity returns an Entity of the given kind, not yet inserted.
func NewEntity(kind EntityKind) *Entity {
	return &Entity{Kind: kind}
}

// Inserted reports whether the entity currently belongs to a cell.
func (e *Entity) Inserted() bool {
	return e.cellX != 0 || e.cellY != 0
}

func cellFromFloat(v float64) uint16 {
	return uint16(int64(cellBias) + int64(math.Floor(v*cellSizeInv)))
}

func cellKey(cx, cy uint16) uint32 {
	return uint32(cy)<<16 | uint32(cx)
}

// Hash is the spatial hash itself: a map from packed cell key to the
// head of that cell's entity list, plus a side FIFO queue for entities
// temporarily detached from the grid (e.g. while awaiting respawn).
type Hash struct {
	cells map[uint32]*Entity

	queueHead, queueTail *Entity
}

// New returns an empty spatial hash.
func New() *Hash {
	return &Hash{cells: make(map[uint32]*Entity)}
}

// InsertOrMove places e at (x,y), moving it out of its previous cell
// first if it was already inserted elsewhere. The entity becomes the new
// head of its cell's list, so iteration visits entities in reverse
// insertion order (most recent first).
func (h *Hash) InsertOrMove(e *Entity, x, y float64) {
	cx := cellFromFloat(x)
	cy := cellFromFloat(y)
	e.X, e.Y = x, y
	if e.Inserted() && cx == e.cellX && cy == e.cellY {
		return
	}
	if e.Inserted() {
		h.Remove(e)
	}
	key := cellKey(cx, cy)
	e.cellX, e.cellY = cx, cy
	e.next = h.cells[key]
	h.cells[key] = e
}

// Remove takes e out of the grid. It is a programmer error to remove an
// entity that is not currently inserted.
func (h *Hash) Remove(e *Entity) {
	if !e.Inserted() {
		panic("worldgrid: Remove of an entity that is not inserted")
	}
	key := cellKey(e.cellX, e.cellY)
	head := h.cells[key]
	if head == e {
		if e.next != nil {
			h.cells[key] = e.next
		} else {
			delete(h.cells, key)
		}
	} else {
		prev := head
		for prev != nil && prev.next != e {
			prev = prev.next
		}
		if prev == nil {
			panic("worldgrid: entity not found in its own cell")
		}
		prev.next = e.next
	}
	e.cellX, e.cellY = 0, 0
	e.next = nil
}

// RectF is an axis-aligned bounding box in world units.
type RectF struct {
	MinX, MinY, MaxX, MaxY float64
}

// Query returns a restartable iterator over every entity whose cell
// overlaps r. Entities whose precise (X, Y) falls outside r may still be
// returned, since cells are coarser than r; callers filter against each
// returned Entity's X, Y if exact containment matters.
func (h *Hash) Query(r RectF) *Iterator {
	it := &Iterator{
		h:    h,
		minX: cellFromFloat(r.MinX), minY: cellFromFloat(r.MinY),
		maxX: cellFromFloat(r.MaxX), maxY: cellFromFloat(r.MaxY),
	}
	it.Reset()
	return it
}

// QueryRadius is equivalent to Query over the square [x-r,y-r, x+r,y+r].
func (h *Hash) QueryRadius(x, y, radius float64) *Iterator {
	return h.Query(RectF{MinX: x - radius, MinY: y - radius, MaxX: x + radius, MaxY: y + radius})
}

// Iterator walks every entity in a cell range. Do not insert, move, or
// remove entities while an Iterator over the same Hash is in use; the
// linked lists it walks are not safe for concurrent mutation.
type Iterator struct {
	h                      *Hash
	minX, minY, maxX, maxY uint16
	curX, curY             uint16
	ent                    *Entity
}

// Reset rewinds the iterator to the start of its cell range.
func (it *Iterator) Reset() {
	it.curX = it.minX - 1
	it.curY = it.minY
	it.ent = nil
}

// Next returns the next entity in the range, or nil once exhausted.
func (it *Iterator) Next() *Entity {
	if it.ent != nil {
		it.ent = it.ent.next
	}
	for it.ent == nil {
		if it.curX < it.maxX {
			it.curX++
		} else if it.curY < it.maxY {
			it.curX = it.minX
			it.curY++
		} else {
			return nil
		}
		it.ent = it.h.cells[cellKey(it.curX, it.curY)]
	}
	return it.ent
}

// QueuePushBack appends an entity to the side FIFO. Entities in the
// queue are not part of the grid and are not found by Query.
func (h *Hash) QueuePushBack(e *Entity) {
	e.next = nil
	if h.queueTail != nil {
		h.queueTail.next = e
	} else {
		h.queueHead = e
	}
	h.queueTail = e
}

// QueuePopFront removes and returns the oldest queued entity, or nil if
// the queue is empty.
func (h *Hash) QueuePopFront() *Entity {
	e := h.queueHead
	if e == nil {
		return nil
	}
	h.queueHead = e.next
	if h.queueHead == nil {
		h.queueTail = nil
	}
	e.next = nil
	return e
}
