package epimesh

import (
	"github.com/emirpasic/gods/trees/redblacktree"
)

// idArena hands out the slot ids of one element table.
//
// Removed ids are retired, not freed: they are only moved onto the free
// list by release, which [Mesh.Reindex] calls. Until then a retired id is
// never handed out again. The free list is ordered so that the smallest
// free id is reused first.
type idArena struct {
	next    int
	retired []int
	free    *redblacktree.Tree
}

func newIDArena() idArena {
	return idArena{free: redblacktree.NewWithIntComparator()}
}

// alloc returns a fresh id and whether it reuses a released slot.
func (a *idArena) alloc() (int, bool) {
	if n := a.free.Left(); n != nil {
		id := n.Key.(int)
		a.free.Remove(id)
		return id, true
	}
	id := a.next
	a.next++
	return id, false
}

func (a *idArena) retire(id int) {
	a.retired = append(a.retired, id)
}

// release makes every retired id available to alloc and returns how many
// there were.
func (a *idArena) release() int {
	n := len(a.retired)
	for _, id := range a.retired {
		a.free.Put(id, struct{}{})
	}
	a.retired = a.retired[:0]
	return n
}

func (a *idArena) clone() idArena {
	b := idArena{
		next:    a.next,
		retired: append([]int(nil), a.retired...),
		free:    redblacktree.NewWithIntComparator(),
	}
	for _, k := range a.free.Keys() {
		b.free.Put(k, struct{}{})
	}
	return b
}
