package testutil

import "github.com/zjrosen/legend/internal/legend"

// entryData holds one entity to be reported through the engine.
type entryData struct {
	handle   legend.Handle
	kind     legend.Kind
	name     string
	source   string
	parent   legend.Handle
	position int
	hidden   bool
}

// EntryOption configures an entry during builder setup.
type EntryOption func(*entryData)

// Source sets the data source of a layer.
func Source(s string) EntryOption {
	return func(e *entryData) { e.source = s }
}

// Hidden creates the layer switched off.
func Hidden() EntryOption {
	return func(e *entryData) { e.hidden = true }
}

// At inserts the entry at position instead of appending it.
func At(position int) EntryOption {
	return func(e *entryData) { e.position = position }
}
