package legend

import (
	"errors"
	"fmt"

	"github.com/zjrosen/legend/internal/log"
	"github.com/zjrosen/legend/internal/pubsub"
)

// Move relocates h into target at position. The position is clamped into
// [0, count(target)], where the count excludes h itself when it already lives in
// target. Nothing changes when an error is returned:
//   - ErrNotFound when h or target does not resolve
//   - ErrNotAGroup when target is a layer
//   - ErrRootImmutable when h is the root group
//   - ErrCycleDetected when target is h or one of its descendants
func (t *Tree) Move(h, target Handle, position int) error {
	t.mu.Lock()
	n, ok := t.table.lookup(h)
	if !ok {
		t.mu.Unlock()
		return &NotFoundError{Kind: "entry", Handle: h}
	}
	g, ok := t.table.lookup(target)
	if !ok {
		t.mu.Unlock()
		return &NotFoundError{Kind: "target group", Handle: target}
	}
	if g.kind != KindGroup {
		t.mu.Unlock()
		return fmt.Errorf("move %d into %d: %w", h, target, ErrNotAGroup)
	}
	if n == t.root {
		t.mu.Unlock()
		return fmt.Errorf("move %d: %w", h, ErrRootImmutable)
	}
	if n.kind == KindGroup && n.isAncestorOf(g) {
		t.mu.Unlock()
		return fmt.Errorf("move %d into %d: %w", h, target, ErrCycleDetected)
	}

	limit := len(g.children)
	if n.parent == g {
		limit--
	}
	position = clamp(position, 0, limit)
	if n.parent == g && n.index == position {
		t.mu.Unlock()
		return nil
	}

	from := n.location()
	n.parent.removeChild(n)
	g.insertChild(n, position)
	t.generation++
	change := Change{Handle: h, Kind: n.kind, From: from, To: n.location(), Generation: t.generation}
	t.mu.Unlock()

	log.Debug(log.CatMove, "Entry moved",
		"handle", h,
		"fromGroup", from.Group, "fromIndex", from.Index,
		"toGroup", change.To.Group, "toIndex", change.To.Index)
	t.broker.Publish(pubsub.MovedEvent, change)
	return nil
}

// MoveEntry is the lenient form of Move used by polling UI code: it reports
// success as a bool and treats every rejection as a soft failure.
func (t *Tree) MoveEntry(h, target Handle, position int) bool {
	err := t.Move(h, target, position)
	if err == nil {
		return true
	}
	if errors.Is(err, ErrNotFound) {
		log.Debug(log.CatMove, "Move ignored", "handle", h, "target", target, "error", err)
	} else {
		log.Warn(log.CatMove, "Move rejected", "handle", h, "target", target, "error", err)
	}
	return false
}
