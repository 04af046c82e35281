// Package legend maintains the ordered hierarchy of map layers and groups shown in a
// map legend, addressed by stable integer handles rather than tree positions.
//
// The rendering engine collaborator reports entries through Tree.OnEntityCreated and
// Tree.OnEntityRemoved. UI-facing callers query and rearrange the hierarchy through
// Tree and the layers-only LayerCollection facade. Absence is reported with sentinel
// values (NoHandle, nil, false); only contract violations are returned as errors.
package legend

import "fmt"

// Handle identifies one layer or group for the lifetime of that entry.
// Layers and groups share a single handle namespace.
type Handle int

// NoHandle is the "not found" sentinel. It is never assigned to an entry.
const NoHandle Handle = -1

// Valid reports whether h can name a real entry.
func (h Handle) Valid() bool { return h >= 0 }

// Kind distinguishes layers from groups.
type Kind int

const (
	KindLayer Kind = iota + 1
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindLayer:
		return "layer"
	case KindGroup:
		return "group"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps "layer"/"group" onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "layer":
		return KindLayer, nil
	case "group":
		return KindGroup, nil
	default:
		return 0, fmt.Errorf("unknown entry kind %q", s)
	}
}

// Location is where a handle currently sits: its parent group and index within it.
// The root group reports Group == NoHandle.
type Location struct {
	Group Handle
	Index int
}

// Entry is a read-only snapshot of one node in the hierarchy.
type Entry struct {
	Handle   Handle
	Kind     Kind
	Parent   Handle // NoHandle for the root group
	Position int    // index within Parent
	Depth    int    // root is 0
	Children int    // always 0 for layers
}

// IsGroup reports whether the entry is a group.
func (e Entry) IsGroup() bool { return e.Kind == KindGroup }

// node is a tree member. Groups own the ordered membership of their children;
// payloads live with the rendering engine.
type node struct {
	handle   Handle
	kind     Kind
	parent   *node
	index    int
	children []*node
}

func (n *node) location() Location {
	if n.parent == nil {
		return Location{Group: NoHandle}
	}
	return Location{Group: n.parent.handle, Index: n.index}
}

func (n *node) depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

func (n *node) entry() Entry {
	loc := n.location()
	return Entry{
		Handle:   n.handle,
		Kind:     n.kind,
		Parent:   loc.Group,
		Position: loc.Index,
		Depth:    n.depth(),
		Children: len(n.children),
	}
}

// isAncestorOf reports whether n is other or one of its ancestors.
func (n *node) isAncestorOf(other *node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// insertChild places c at position (clamped) and reindexes the shifted siblings.
func (n *node) insertChild(c *node, position int) int {
	position = clamp(position, 0, len(n.children))
	n.children = append(n.children, nil)
	copy(n.children[position+1:], n.children[position:])
	n.children[position] = c
	c.parent = n
	n.reindexFrom(position)
	return position
}

// removeChild detaches c and reindexes the siblings after it.
func (n *node) removeChild(c *node) {
	i := c.index
	n.children = append(n.children[:i], n.children[i+1:]...)
	c.parent = nil
	c.index = 0
	n.reindexFrom(i)
}

func (n *node) reindexFrom(i int) {
	for ; i < len(n.children); i++ {
		n.children[i].index = i
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
