package legend

import "errors"

// Ref is a weak reference to an entry: a handle plus the tree to resolve it in.
// Building a Ref never validates the handle; every method re-resolves it and
// fails with a *StaleHandleError when the entry is gone.
type Ref struct {
	tree   *Tree
	handle Handle
}

// Handle returns the referenced handle.
func (r *Ref) Handle() Handle { return r.handle }

// Alive reports whether the handle currently resolves.
func (r *Ref) Alive() bool { return r.tree.Contains(r.handle) }

// Entry returns a fresh snapshot of the referenced entry.
func (r *Ref) Entry() (Entry, error) {
	e, ok := r.tree.Entry(r.handle)
	if !ok {
		return Entry{}, r.stale()
	}
	return e, nil
}

// Kind returns whether the entry is a layer or a group.
func (r *Ref) Kind() (Kind, error) {
	e, err := r.Entry()
	if err != nil {
		return 0, err
	}
	return e.Kind, nil
}

// Position returns the index of the entry within its group.
func (r *Ref) Position() (int, error) {
	e, err := r.Entry()
	if err != nil {
		return -1, err
	}
	return e.Position, nil
}

// Group returns the handle of the containing group (NoHandle for the root).
func (r *Ref) Group() (Handle, error) {
	e, err := r.Entry()
	if err != nil {
		return NoHandle, err
	}
	return e.Parent, nil
}

// Children returns the child handles of a group entry.
func (r *Ref) Children() ([]Handle, error) {
	e, err := r.Entry()
	if err != nil {
		return nil, err
	}
	if !e.IsGroup() {
		return nil, ErrNotAGroup
	}
	out, ok := r.tree.Children(r.handle)
	if !ok {
		return nil, r.stale()
	}
	return out, nil
}

// MoveTo moves the entry into target at position. A missing entry is reported
// as stale; other rejections are returned as Tree.Move reports them.
func (r *Ref) MoveTo(target Handle, position int) error {
	err := r.tree.Move(r.handle, target, position)
	var nf *NotFoundError
	if errors.As(err, &nf) && nf.Handle == r.handle && nf.Kind == "entry" {
		return r.stale()
	}
	return err
}

func (r *Ref) stale() error {
	r.tree.mu.RLock()
	retired := r.tree.table.IsRetired(r.handle)
	r.tree.mu.RUnlock()
	return &StaleHandleError{Handle: r.handle, Retired: retired}
}
