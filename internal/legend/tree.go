package legend

import (
	"context"
	"fmt"
	"sync"

	"github.com/zjrosen/legend/internal/log"
	"github.com/zjrosen/legend/internal/pubsub"
)

// Change describes one structural edit, published after it is applied.
type Change struct {
	Handle     Handle
	Kind       Kind
	From       Location // zero for created entries
	To         Location // zero for removed entries
	Retired    int      // handles retired by a removal (subtree size)
	Generation uint64
}

// Option configures a Tree.
type Option func(*Tree)

// WithStrictViews makes ItemByHandle return nil for handles that were never
// registered. Retired handles still produce a stale view.
func WithStrictViews(strict bool) Option {
	return func(t *Tree) { t.strictViews = strict }
}

// WithEventBuffer sets the per-subscriber buffer of the change broker.
func WithEventBuffer(size int) Option {
	return func(t *Tree) { t.broker = pubsub.NewBrokerWithBuffer[Change](size) }
}

// Tree is the legend hierarchy: a root group whose ordered children are layers
// and nested groups. One mutex covers every resolve+edit sequence so a handle
// cannot be retired between being resolved and being used.
type Tree struct {
	mu          sync.RWMutex
	root        *node
	table       *HandleTable
	generation  uint64
	strictViews bool
	broker      *pubsub.Broker[Change]
}

// NewTree creates a tree whose root group is registered under rootHandle.
func NewTree(rootHandle Handle, opts ...Option) (*Tree, error) {
	t := &Tree{table: NewHandleTable()}
	for _, opt := range opts {
		opt(t)
	}
	if t.broker == nil {
		t.broker = pubsub.NewBroker[Change]()
	}
	t.root = &node{handle: rootHandle, kind: KindGroup}
	if err := t.table.register(t.root); err != nil {
		return nil, fmt.Errorf("root group: %w", err)
	}
	return t, nil
}

// Root returns the handle of the root group.
func (t *Tree) Root() Handle { return t.root.handle }

// Generation increases with every applied structural change.
func (t *Tree) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.generation
}

// Subscribe streams structural changes until ctx is cancelled or the tree is closed.
func (t *Tree) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return t.broker.Subscribe(ctx)
}

// Close releases the change broker. The tree stays readable.
func (t *Tree) Close() {
	t.broker.Close()
}

// OnEntityCreated registers a new layer or group reported by the rendering engine
// and inserts it into parent at position (clamped into range).
func (t *Tree) OnEntityCreated(h Handle, kind Kind, parent Handle, position int) error {
	if kind != KindLayer && kind != KindGroup {
		return fmt.Errorf("create %d: unknown kind %v", h, kind)
	}

	t.mu.Lock()
	p, ok := t.table.lookup(parent)
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("create %d: %w", h, &NotFoundError{Kind: "parent group", Handle: parent})
	}
	if p.kind != KindGroup {
		t.mu.Unlock()
		return fmt.Errorf("create %d under %d: %w", h, parent, ErrNotAGroup)
	}
	n := &node{handle: h, kind: kind}
	if err := t.table.register(n); err != nil {
		t.mu.Unlock()
		return err
	}
	p.insertChild(n, position)
	t.generation++
	change := Change{Handle: h, Kind: kind, To: n.location(), Generation: t.generation}
	t.mu.Unlock()

	log.Debug(log.CatTree, "Entry created", "handle", h, "kind", kind, "group", parent, "index", change.To.Index)
	t.broker.Publish(pubsub.CreatedEvent, change)
	return nil
}

// OnEntityRemoved detaches h and retires it. Removing a group retires its whole
// subtree. Returns false when h does not resolve or names the root.
func (t *Tree) OnEntityRemoved(h Handle) bool {
	t.mu.Lock()
	n, ok := t.table.lookup(h)
	if !ok {
		t.mu.Unlock()
		log.Debug(log.CatTree, "Remove ignored, handle not found", "handle", h)
		return false
	}
	if n == t.root {
		t.mu.Unlock()
		log.Warn(log.CatTree, "Remove rejected", "handle", h, "error", ErrRootImmutable)
		return false
	}
	from := n.location()
	n.parent.removeChild(n)
	retired := 0
	walkNodes(n, func(x *node) bool {
		if t.table.Retire(x.handle) {
			retired++
		}
		return true
	})
	t.generation++
	change := Change{Handle: h, Kind: n.kind, From: from, Retired: retired, Generation: t.generation}
	t.mu.Unlock()

	log.Debug(log.CatTree, "Entry removed", "handle", h, "retired", retired)
	t.broker.Publish(pubsub.RemovedEvent, change)
	return true
}

// Reset drops every entry except the root and forgets retired handles,
// so handles may be registered again.
func (t *Tree) Reset() {
	t.mu.Lock()
	t.root.children = nil
	t.table.reset()
	t.table.live[t.root.handle] = t.root
	t.generation++
	change := Change{Handle: t.root.handle, Kind: KindGroup, Generation: t.generation}
	t.mu.Unlock()

	log.Info(log.CatTree, "Tree reset", "root", change.Handle)
	t.broker.Publish(pubsub.ResetEvent, change)
}

// Resolve returns the current location of h.
func (t *Tree) Resolve(h Handle) (Location, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.table.Resolve(h)
}

// Contains reports whether h currently resolves.
func (t *Tree) Contains(h Handle) bool {
	_, ok := t.Resolve(h)
	return ok
}

// Entry returns a snapshot of h.
func (t *Tree) Entry(h Handle) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.table.lookup(h)
	if !ok {
		return Entry{}, false
	}
	return n.entry(), true
}

// ItemAt returns the child at position inside group. Out-of-range positions,
// unknown groups and layer handles all report false.
func (t *Tree) ItemAt(group Handle, position int) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	g, ok := t.table.lookup(group)
	if !ok || g.kind != KindGroup {
		return Entry{}, false
	}
	if position < 0 || position >= len(g.children) {
		return Entry{}, false
	}
	return g.children[position].entry(), true
}

// Count returns the number of children of group, or -1 when group is not a live group.
func (t *Tree) Count(group Handle) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	g, ok := t.table.lookup(group)
	if !ok || g.kind != KindGroup {
		return -1
	}
	return len(g.children)
}

// Children returns the handles inside group in display order.
func (t *Tree) Children(group Handle) ([]Handle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	g, ok := t.table.lookup(group)
	if !ok || g.kind != KindGroup {
		return nil, false
	}
	out := make([]Handle, len(g.children))
	for i, c := range g.children {
		out[i] = c.handle
	}
	return out, true
}

// PositionInGroup returns the index of h within its parent group, or -1 when h
// does not resolve or is the root.
func (t *Tree) PositionInGroup(h Handle) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.table.lookup(h)
	if !ok || n.parent == nil {
		return -1
	}
	return n.index
}

// GroupOf returns the handle of the group containing h, or NoHandle when h does
// not resolve or is the root.
func (t *Tree) GroupOf(h Handle) Handle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.table.lookup(h)
	if !ok || n.parent == nil {
		return NoHandle
	}
	return n.parent.handle
}

// ItemByHandle returns a weak view of h without checking that it resolves.
// Operations on the view fail with ErrStaleHandle once h is gone. With strict
// views enabled, handles never registered in this tree yield nil.
func (t *Tree) ItemByHandle(h Handle) *Ref {
	if t.strictViews {
		t.mu.RLock()
		_, live := t.table.lookup(h)
		retired := t.table.IsRetired(h)
		t.mu.RUnlock()
		if !live && !retired {
			return nil
		}
	}
	return &Ref{tree: t, handle: h}
}

// Entries returns a depth-first, pre-order snapshot of the whole tree, root first.
func (t *Tree) Entries() []Entry {
	var out []Entry
	t.Walk(func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Walk visits every entry depth-first in display order, root first. Returning
// false from fn skips the entry's children. fn runs under the read lock and
// must not call back into the tree's mutating methods.
func (t *Tree) Walk(fn func(Entry) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	walkNodes(t.root, func(n *node) bool { return fn(n.entry()) })
}

// Layers returns the handles of every layer in depth-first display order.
func (t *Tree) Layers() []Handle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Handle
	walkNodes(t.root, func(n *node) bool {
		if n.kind == KindLayer {
			out = append(out, n.handle)
		}
		return true
	})
	return out
}

// Check verifies that the table and the structure agree: every reachable node is
// registered exactly once, indexes and parent links are consistent, and no group
// is reachable twice.
func (t *Tree) Check() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[*node]bool, t.table.Len())
	var err error
	walkNodes(t.root, func(n *node) bool {
		if err != nil {
			return false
		}
		if seen[n] {
			err = fmt.Errorf("handle %d reachable twice: %w", n.handle, ErrCycleDetected)
			return false
		}
		seen[n] = true
		if reg, ok := t.table.lookup(n.handle); !ok || reg != n {
			err = fmt.Errorf("handle %d reachable but not registered", n.handle)
			return false
		}
		if n.kind == KindLayer && len(n.children) > 0 {
			err = fmt.Errorf("layer %d has children", n.handle)
			return false
		}
		for i, c := range n.children {
			if c.index != i || c.parent != n {
				err = fmt.Errorf("handle %d has index %d under %d, want %d", c.handle, c.index, n.handle, i)
				return false
			}
		}
		return true
	})
	if err != nil {
		return err
	}
	if len(seen) != t.table.Len() {
		return fmt.Errorf("table tracks %d handles but %d are reachable", t.table.Len(), len(seen))
	}
	return nil
}

func walkNodes(n *node, fn func(*node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		walkNodes(c, fn)
	}
}
