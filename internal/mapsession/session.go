// Package mapsession owns one legend for the lifetime of a map: its tree, the
// engine collaborator that populates it and the layers-only facade.
package mapsession

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/legend/internal/cachemanager"
	"github.com/zjrosen/legend/internal/config"
	"github.com/zjrosen/legend/internal/engine"
	"github.com/zjrosen/legend/internal/flags"
	"github.com/zjrosen/legend/internal/legend"
	"github.com/zjrosen/legend/internal/log"
)

// Options configures a Session.
type Options struct {
	RootHandle  legend.Handle
	EventBuffer int
	Flags       *flags.Registry

	// CacheExpiration enables the flattened layer index cache when positive.
	CacheExpiration      time.Duration
	CacheCleanupInterval time.Duration
}

// OptionsFromConfig maps the app config onto session options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		RootHandle:           legend.Handle(cfg.Legend.RootHandle),
		EventBuffer:          cfg.Legend.EventBuffer,
		Flags:                flags.New(cfg.Flags),
		CacheExpiration:      cfg.Cache.Expiration,
		CacheCleanupInterval: cfg.Cache.CleanupInterval,
	}
}

// Session is one map's legend. It is passed explicitly; there is no global tree.
type Session struct {
	ID     string
	Tree   *legend.Tree
	Engine *engine.Memory
	Layers *legend.LayerCollection

	cache cachemanager.CacheManager[string, []legend.Handle]
}

// New creates an empty legend holding only the root group.
func New(opts Options) (*Session, error) {
	treeOpts := []legend.Option{
		legend.WithStrictViews(opts.Flags.Enabled(flags.FlagStrictHandleViews)),
	}
	if opts.EventBuffer > 0 {
		treeOpts = append(treeOpts, legend.WithEventBuffer(opts.EventBuffer))
	}
	tree, err := legend.NewTree(opts.RootHandle, treeOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating legend tree: %w", err)
	}

	eng, err := engine.NewMemory(tree, opts.RootHandle+1)
	if err != nil {
		tree.Close()
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	s := &Session{ID: uuid.New().String(), Tree: tree, Engine: eng}

	var collOpts []legend.CollectionOption
	if opts.CacheExpiration > 0 {
		s.cache = cachemanager.NewInMemoryCacheManager[string, []legend.Handle](
			"layer-index:"+s.ID, opts.CacheExpiration, opts.CacheCleanupInterval)
		collOpts = append(collOpts, legend.WithIndexCache(s.cache, opts.CacheExpiration))
	}
	s.Layers, err = legend.NewLayerCollection(eng, tree, collOpts...)
	if err != nil {
		tree.Close()
		return nil, fmt.Errorf("creating layer collection: %w", err)
	}

	log.Info(log.CatTree, "Map session opened", "session", s.ID, "root", opts.RootHandle, "cached", s.cache != nil)
	return s, nil
}

// Cached reports whether the flattened layer index is cached.
func (s *Session) Cached() bool { return s.cache != nil }

// Close ends the session: change subscribers are released and the cache emptied.
func (s *Session) Close() {
	s.Tree.Close()
	if s.cache != nil {
		_ = s.cache.Flush(context.Background())
	}
	log.Info(log.CatTree, "Map session closed", "session", s.ID)
}
