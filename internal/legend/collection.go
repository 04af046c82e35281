package legend

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/zjrosen/legend/internal/cachemanager"
	"github.com/zjrosen/legend/internal/log"
)

// CollectionOption configures a LayerCollection.
type CollectionOption func(*LayerCollection)

// WithIndexCache memoizes the flattened layer index per tree generation.
func WithIndexCache(cache cachemanager.CacheManager[string, []Handle], ttl time.Duration) CollectionOption {
	return func(c *LayerCollection) {
		c.cache = cache
		c.ttl = ttl
	}
}

// LayerCollection is the layers-only facade over a Tree: a flattened,
// depth-first, index-addressable list of layers. Groups are skipped.
type LayerCollection struct {
	engine Engine
	tree   *Tree
	cache  cachemanager.CacheManager[string, []Handle]
	ttl    time.Duration
	index  *cachemanager.ReadThroughCache[string, []Handle, uint64]
}

// NewLayerCollection builds the facade. Both collaborators are required.
func NewLayerCollection(engine Engine, tree *Tree, opts ...CollectionOption) (*LayerCollection, error) {
	if engine == nil {
		return nil, fmt.Errorf("layer collection engine: %w", ErrInvalidCollaborator)
	}
	if tree == nil {
		return nil, fmt.Errorf("layer collection tree: %w", ErrInvalidCollaborator)
	}
	c := &LayerCollection{engine: engine, tree: tree}
	for _, opt := range opts {
		opt(c)
	}
	c.index = cachemanager.NewReadThroughCache[string, []Handle, uint64](c.cache,
		func(gen uint64) string { return "layers:" + strconv.FormatUint(gen, 10) },
		func(context.Context, uint64) ([]Handle, error) {
			return c.tree.Layers(), nil
		}, c.ttl)
	return c, nil
}

// CacheStats reports layer index cache hits and misses.
func (c *LayerCollection) CacheStats() cachemanager.Stats {
	return c.index.Stats()
}

// Tree returns the underlying hierarchy.
func (c *LayerCollection) Tree() *Tree { return c.tree }

// Handles returns the flattened layer handles in display order.
func (c *LayerCollection) Handles() []Handle {
	return slices.Clone(c.layerIndex())
}

func (c *LayerCollection) layerIndex() []Handle {
	handles, err := c.index.Get(context.Background(), c.tree.Generation())
	if err != nil {
		log.ErrorErr(log.CatCache, "Layer index load failed", err)
		return c.tree.Layers()
	}
	return handles
}

// Count returns the number of layers in the flattened view.
func (c *LayerCollection) Count() int {
	return len(c.layerIndex())
}

// At returns the layer at position in the flattened view, or nil when the
// position is out of range or no longer names a live layer.
func (c *LayerCollection) At(position int) *Layer {
	handles := c.layerIndex()
	if position < 0 || position >= len(handles) {
		return nil
	}
	h := handles[position]
	if h == NoHandle {
		return nil
	}
	if e, ok := c.tree.Entry(h); !ok || e.Kind != KindLayer {
		return nil
	}
	return &Layer{Ref: Ref{tree: c.tree, handle: h}, engine: c.engine}
}

// IndexOf returns the flattened position of h, or -1.
func (c *LayerCollection) IndexOf(h Handle) int {
	return slices.Index(c.layerIndex(), h)
}

// ItemByHandle returns a layer view without validating h. See Tree.ItemByHandle.
func (c *LayerCollection) ItemByHandle(h Handle) *Layer {
	ref := c.tree.ItemByHandle(h)
	if ref == nil {
		return nil
	}
	return &Layer{Ref: *ref, engine: c.engine}
}

// PositionInGroup returns the index of h within its group, -1 on failure.
func (c *LayerCollection) PositionInGroup(h Handle) int {
	return c.tree.PositionInGroup(h)
}

// GroupOf returns the handle of the group containing h, NoHandle on failure.
func (c *LayerCollection) GroupOf(h Handle) Handle {
	return c.tree.GroupOf(h)
}

// MoveLayer moves h to position within targetGroup. Returns false on failure.
func (c *LayerCollection) MoveLayer(h, targetGroup Handle, position int) bool {
	return c.tree.MoveEntry(h, targetGroup, position)
}
