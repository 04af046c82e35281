package legend

import (
	"fmt"

	"github.com/zjrosen/legend/internal/log"
)

// HandleTable maps live handles to their nodes and remembers retired handles.
// Every node reachable from the root has exactly one entry and vice versa;
// Tree keeps that true by editing the table in the same critical section as
// the structure. The table is not safe for concurrent use on its own.
type HandleTable struct {
	live    map[Handle]*node
	retired map[Handle]struct{}
}

// NewHandleTable creates an empty table.
func NewHandleTable() *HandleTable {
	return &HandleTable{
		live:    make(map[Handle]*node),
		retired: make(map[Handle]struct{}),
	}
}

// Resolve returns the current location of h.
func (t *HandleTable) Resolve(h Handle) (Location, bool) {
	n, ok := t.live[h]
	if !ok {
		return Location{Group: NoHandle, Index: -1}, false
	}
	return n.location(), true
}

// Len returns the number of live handles.
func (t *HandleTable) Len() int { return len(t.live) }

// IsRetired reports whether h was registered and later retired.
func (t *HandleTable) IsRetired(h Handle) bool {
	_, ok := t.retired[h]
	return ok
}

func (t *HandleTable) lookup(h Handle) (*node, bool) {
	n, ok := t.live[h]
	return n, ok
}

// canRegister validates h without touching the table.
func (t *HandleTable) canRegister(h Handle) error {
	if !h.Valid() {
		return fmt.Errorf("register %d: %w", h, ErrInvalidHandle)
	}
	if _, ok := t.live[h]; ok {
		return fmt.Errorf("register %d: %w", h, ErrDuplicateHandle)
	}
	if _, ok := t.retired[h]; ok {
		return fmt.Errorf("register %d: %w", h, ErrRetiredHandle)
	}
	return nil
}

func (t *HandleTable) register(n *node) error {
	if err := t.canRegister(n.handle); err != nil {
		log.Warn(log.CatHandles, "Registration rejected", "handle", n.handle, "error", err)
		return err
	}
	t.live[n.handle] = n
	return nil
}

// Retire removes h from the table. A retired handle never resolves again.
func (t *HandleTable) Retire(h Handle) bool {
	if _, ok := t.live[h]; !ok {
		return false
	}
	delete(t.live, h)
	t.retired[h] = struct{}{}
	return true
}

// reset forgets every handle, live or retired.
func (t *HandleTable) reset() {
	clear(t.live)
	clear(t.retired)
}
