// Package scenario loads YAML scripts of engine events and replays them
// against a map session. Scenarios drive the CLI and serve as fixtures.
//
//	name: reorder cadastre
//	steps:
//	  - op: add-layer
//	    handle: 10
//	    name: Roads
//	  - op: add-group
//	    handle: 20
//	    name: Cadastre
//	  - op: move
//	    handle: 10
//	    target: 20
//	    position: 0
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Op names a step kind.
type Op string

const (
	OpAddLayer Op = "add-layer"
	OpAddGroup Op = "add-group"
	OpRemove   Op = "remove"
	OpMove     Op = "move"
	OpVisible  Op = "visible"
	OpRename   Op = "rename"
	OpReset    Op = "reset"
)

// Expect values for Step.Expect.
const (
	ExpectAny      = ""
	ExpectOK       = "ok"
	ExpectRejected = "rejected"
)

// Scenario is a named list of steps.
type Scenario struct {
	Name  string `yaml:"name"`
	Root  *int   `yaml:"root"` // overrides legend.root_handle
	Steps []Step `yaml:"steps"`
}

// Step is one engine event. Pointer fields distinguish "absent" from zero.
type Step struct {
	Op       Op     `yaml:"op"`
	Handle   *int   `yaml:"handle"`
	Name     string `yaml:"name"`
	Source   string `yaml:"source"`
	Parent   *int   `yaml:"parent"`   // defaults to the root group
	Target   *int   `yaml:"target"`   // move destination group
	Position *int   `yaml:"position"` // defaults to append for adds
	Visible  *bool  `yaml:"visible"`
	Hidden   bool   `yaml:"hidden"` // add-layer only
	Expect   string `yaml:"expect"`
}

// ErrInvalidScenario wraps every validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied scenario path
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario. Unknown keys are rejected so typos
// do not silently change a step.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every step carries the fields its op needs.
func (s *Scenario) Validate() error {
	if s.Root != nil && *s.Root < 0 {
		return fmt.Errorf("%w: root must be >= 0, got %d", ErrInvalidScenario, *s.Root)
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("%w: step %d (%s): %v", ErrInvalidScenario, i, st.Op, err)
		}
	}
	return nil
}

func (st Step) validate() error {
	switch st.Expect {
	case ExpectAny, ExpectOK, ExpectRejected:
	default:
		return fmt.Errorf("expect must be %q or %q, got %q", ExpectOK, ExpectRejected, st.Expect)
	}

	switch st.Op {
	case OpAddLayer, OpAddGroup:
		if st.Name == "" {
			return fmt.Errorf("name is required")
		}
		if st.Hidden && st.Op == OpAddGroup {
			return fmt.Errorf("hidden applies to layers only")
		}
	case OpRemove:
		return requireHandle(st)
	case OpMove:
		if err := requireHandle(st); err != nil {
			return err
		}
		if st.Target == nil {
			return fmt.Errorf("target is required")
		}
		if st.Position == nil {
			return fmt.Errorf("position is required")
		}
	case OpVisible:
		if err := requireHandle(st); err != nil {
			return err
		}
		if st.Visible == nil {
			return fmt.Errorf("visible is required")
		}
	case OpRename:
		if err := requireHandle(st); err != nil {
			return err
		}
		if st.Name == "" {
			return fmt.Errorf("name is required")
		}
	case OpReset:
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op")
	}
	return nil
}

func requireHandle(st Step) error {
	if st.Handle == nil {
		return fmt.Errorf("handle is required")
	}
	return nil
}
