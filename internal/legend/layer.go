package legend

// LayerInfo is the engine-owned payload of a layer.
type LayerInfo struct {
	Name    string
	Source  string
	Visible bool
}

// Engine is the rendering engine collaborator as seen by the legend. It owns
// layer payloads; the legend only owns their ordering.
type Engine interface {
	LayerInfo(h Handle) (LayerInfo, bool)
}

// Layer is a weak view of a layer entry combined with its engine payload.
type Layer struct {
	Ref
	engine Engine
}

// Info returns the engine payload. It fails with a *StaleHandleError when the
// handle no longer resolves or the engine has dropped the layer, and with a
// *NotFoundError of kind "layer" when the handle names a group.
func (l *Layer) Info() (LayerInfo, error) {
	e, err := l.Entry()
	if err != nil {
		return LayerInfo{}, err
	}
	if e.Kind != KindLayer {
		return LayerInfo{}, &NotFoundError{Kind: "layer", Handle: l.handle}
	}
	info, ok := l.engine.LayerInfo(l.handle)
	if !ok {
		return LayerInfo{}, l.stale()
	}
	return info, nil
}

// Name returns the layer's display name.
func (l *Layer) Name() (string, error) {
	info, err := l.Info()
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

// Visible reports whether the engine currently draws the layer.
func (l *Layer) Visible() (bool, error) {
	info, err := l.Info()
	if err != nil {
		return false, err
	}
	return info.Visible, nil
}
