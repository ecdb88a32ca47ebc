package worldgrid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(it *Iterator) []*Entity {
	var out []*Entity
	for e := it.Next(); e != nil; e = it.Next() {
		out = append(out, e)
	}
	return out
}

func TestInsertAndQueryFindsEntity(t *testing.T) {
	h := New()
	e := NewEntity(KindVehicle)
	h.InsertOrMove(e, 10, 10)

	found := collect(h.QueryRadius(10, 10, 1))
	require.Contains(t, found, e)
}

func TestQueryRadiusExcludesFarEntities(t *testing.T) {
	h := New()
	near := NewEntity(KindPedestrian)
	far := NewEntity(KindPedestrian)
	h.InsertOrMove(near, 0, 0)
	h.InsertOrMove(far, 500, 500)

	found := collect(h.QueryRadius(0, 0, 1))
	require.Contains(t, found, near)
	require.NotContains(t, found, far)
}

func TestMostRecentFirstOrdering(t *testing.T) {
	h := New()
	first := NewEntity(KindObject)
	second := NewEntity(KindObject)
	third := NewEntity(KindObject)
	h.InsertOrMove(first, 1, 1)
	h.InsertOrMove(second, 1, 1)
	h.InsertOrMove(third, 1, 1)

	it := h.Query(RectF{MinX: 0, MinY: 0, MaxX: 2, MaxY: 2})
	require.Equal(t, third, it.Next())
	require.Equal(t, second, it.Next())
	require.Equal(t, first, it.Next())
	require.Nil(t, it.Next())
}

func TestMoveUpdatesCell(t *testing.T) {
	h := New()
	e := NewEntity(KindVehicle)
	h.InsertOrMove(e, 0, 0)
	h.InsertOrMove(e, 1000, 1000)

	require.NotContains(t, collect(h.QueryRadius(0, 0, 1)), e)
	require.Contains(t, collect(h.QueryRadius(1000, 1000, 1)), e)
}

func TestRemoveTakesEntityOutOfGrid(t *testing.T) {
	h := New()
	e := NewEntity(KindVehicle)
	h.InsertOrMove(e, 5, 5)
	h.Remove(e)

	require.False(t, e.Inserted())
	require.NotContains(t, collect(h.QueryRadius(5, 5, 1)), e)
}

func TestRemoveUninsertedPanics(t *testing.T) {
	h := New()
	e := NewEntity(KindVehicle)
	require.Panics(t, func() { h.Remove(e) })
}

func TestIteratorIsRestartable(t *testing.T) {
	h := New()
	e := NewEntity(KindVehicle)
	h.InsertOrMove(e, 3, 3)

	it := h.QueryRadius(3, 3, 1)
	first := collect(it)
	it.Reset()
	second := collect(it)
	require.Equal(t, first, second)
}

func TestInsertOrMoveStoresExactPosition(t *testing.T) {
	h := New()
	e := NewEntity(KindPedestrian)
	h.InsertOrMove(e, 12.5, -3.25)

	require.Equal(t, 12.5, e.X)
	require.Equal(t, -3.25, e.Y)

	h.InsertOrMove(e, 13.0, -3.0)
	require.Equal(t, 13.0, e.X)
	require.Equal(t, -3.0, e.Y)
}

func TestQueueFIFOOrder(t *testing.T) {
	h := New()
	a := NewEntity(KindObject)
	b := NewEntity(KindObject)
	h.QueuePushBack(a)
	h.QueuePushBack(b)

	require.Equal(t, a, h.QueuePopFront())
	require.Equal(t, b, h.QueuePopFront())
	require.Nil(t, h.QueuePopFront())
}
