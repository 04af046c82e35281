// Package engine provides an in-memory rendering engine collaborator for the legend.
//
// The real map control owns layer payloads and assigns handles; Memory stands in for
// it in the CLI and in tests. It keeps names, sources and visibility, assigns handles
// that are never reused, and reports every creation and removal to its Listener.
package engine

import (
	"fmt"
	"sync"

	"github.com/zjrosen/legend/internal/legend"
	"github.com/zjrosen/legend/internal/log"
)

// Listener receives entity lifecycle notifications. *legend.Tree implements it.
type Listener interface {
	OnEntityCreated(h legend.Handle, kind legend.Kind, parent legend.Handle, position int) error
	OnEntityRemoved(h legend.Handle) bool
	Contains(h legend.Handle) bool
	Reset()
}

var _ Listener = (*legend.Tree)(nil)

type payload struct {
	kind    legend.Kind
	name    string
	source  string
	visible bool
}

// Memory is an in-memory engine. It is safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	listener Listener
	entries  map[legend.Handle]*payload
	next     legend.Handle
}

var _ legend.Engine = (*Memory)(nil)

// NewMemory creates an engine reporting to listener. Automatically assigned
// handles start after firstFree.
func NewMemory(listener Listener, firstFree legend.Handle) (*Memory, error) {
	if listener == nil {
		return nil, fmt.Errorf("engine listener: %w", legend.ErrInvalidCollaborator)
	}
	return &Memory{
		listener: listener,
		entries:  make(map[legend.Handle]*payload),
		next:     max(firstFree, 0),
	}, nil
}

// AddLayer creates a visible layer with an engine-assigned handle.
func (m *Memory) AddLayer(name, source string, parent legend.Handle, position int) (legend.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.next
	if err := m.add(h, &payload{kind: legend.KindLayer, name: name, source: source, visible: true}, parent, position); err != nil {
		return legend.NoHandle, err
	}
	return h, nil
}

// AddLayerWithHandle creates a visible layer under an externally chosen handle.
func (m *Memory) AddLayerWithHandle(h legend.Handle, name, source string, parent legend.Handle, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(h, &payload{kind: legend.KindLayer, name: name, source: source, visible: true}, parent, position)
}

// AddGroup creates a group with an engine-assigned handle.
func (m *Memory) AddGroup(name string, parent legend.Handle, position int) (legend.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.next
	if err := m.add(h, &payload{kind: legend.KindGroup, name: name, visible: true}, parent, position); err != nil {
		return legend.NoHandle, err
	}
	return h, nil
}

// AddGroupWithHandle creates a group under an externally chosen handle.
func (m *Memory) AddGroupWithHandle(h legend.Handle, name string, parent legend.Handle, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(h, &payload{kind: legend.KindGroup, name: name, visible: true}, parent, position)
}

// add reports the entity first and stores its payload only once the legend accepted it.
func (m *Memory) add(h legend.Handle, p *payload, parent legend.Handle, position int) error {
	if err := m.listener.OnEntityCreated(h, p.kind, parent, position); err != nil {
		log.ErrorErr(log.CatEngine, "Legend rejected entity", err, "handle", h, "kind", p.kind)
		return err
	}
	m.entries[h] = p
	if h >= m.next {
		m.next = h + 1
	}
	log.Debug(log.CatEngine, "Entity added", "handle", h, "kind", p.kind, "name", p.name)
	return nil
}

// Remove drops an entity. Removing a group also drops the payloads of everything
// the legend retired with it.
func (m *Memory) Remove(h legend.Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.listener.OnEntityRemoved(h) {
		return false
	}
	dropped := 0
	for k := range m.entries {
		if !m.listener.Contains(k) {
			delete(m.entries, k)
			dropped++
		}
	}
	log.Debug(log.CatEngine, "Entity removed", "handle", h, "dropped", dropped)
	return true
}

// Clear drops every payload and resets the legend. Handle assignment continues
// from where it stopped, so cleared handles are not handed out again.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener.Reset()
	clear(m.entries)
	log.Info(log.CatEngine, "Engine cleared", "next", m.next)
}

// SetVisible toggles layer visibility.
func (m *Memory) SetVisible(h legend.Handle, visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.entries[h]
	if !ok || p.kind != legend.KindLayer {
		return &legend.NotFoundError{Kind: "layer", Handle: h}
	}
	p.visible = visible
	return nil
}

// Rename changes the display name of a layer or group.
func (m *Memory) Rename(h legend.Handle, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.entries[h]
	if !ok {
		return &legend.NotFoundError{Handle: h}
	}
	p.name = name
	return nil
}

// LayerInfo implements legend.Engine.
func (m *Memory) LayerInfo(h legend.Handle) (legend.LayerInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.entries[h]
	if !ok || p.kind != legend.KindLayer {
		return legend.LayerInfo{}, false
	}
	return legend.LayerInfo{Name: p.name, Source: p.source, Visible: p.visible}, true
}

// Name returns the display name of any entity the engine knows.
func (m *Memory) Name(h legend.Handle) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.entries[h]
	if !ok {
		return "", false
	}
	return p.name, true
}

// Len returns the number of payloads held.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
