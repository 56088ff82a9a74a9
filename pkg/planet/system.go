package planet

import (
	"bytes"
	"encoding/json"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/forest"
	"github.com/matzehuels/orrery/pkg/orbit"
)

// Mode identifies how a system was placed.
type Mode string

const (
	ModeRadial Mode = "radial"
	ModeJitter Mode = "jitter"
)

// Emitted attribute keys.
const (
	KeyRadius = "r"
	KeyTheta0 = "theta0"
	KeyDepth  = "depth"
	KeyOmega  = "omega"
	KeyMass   = "mass"
	KeySize   = "size"
	KeyX      = "x"
	KeyY      = "y"
	KeyZ      = "z"
)

// Planet is one laid-out body.
type Planet struct {
	ID     string
	Parent string

	// Radial mode.
	Radius float64
	Theta0 float64
	Depth  int
	Omega  float64

	// Jitter mode.
	Position orbit.Point
	Size     float64

	Mass float64

	// Attrs holds the passthrough attributes as read from the input.
	Attrs *Attrs
}

// System is a laid-out collection, in input order.
type System struct {
	Mode    Mode
	Planets []Planet

	index map[string]int
}

// Metrics carries the per-node results of the layout stages, indexed by
// forest index. Layout and Omega are set for radial systems, Positions for
// jitter systems. Masses is always required.
type Metrics struct {
	Layout    orbit.Layout
	Omega     []float64
	Positions []orbit.Point
	Masses    []int
}

// AssembleOptions configures [Assemble].
type AssembleOptions struct {
	// KeepInputMass emits a numeric input "mass" attribute instead of the
	// computed hierarchical mass when one is present.
	KeepInputMass bool
}

// Assemble merges m into c. The forest f must have been built from c.
func Assemble(c *Collection, f *forest.Forest, m Metrics, opts AssembleOptions) (*System, error) {
	mode := ModeRadial
	if m.Positions != nil {
		mode = ModeJitter
	}
	if err := m.check(f.Len(), mode); err != nil {
		return nil, err
	}

	sys := &System{Mode: mode, Planets: make([]Planet, 0, c.Len())}
	for _, b := range c.Bodies() {
		i, ok := f.Index(b.ID)
		if !ok {
			return nil, orerrors.NewNodes(orerrors.ErrCodeInternal, []string{b.ID},
				"node %q missing from forest", b.ID)
		}

		p := Planet{
			ID:     b.ID,
			Parent: f.ParentID(b.ID),
			Mass:   float64(m.Masses[i]),
			Attrs:  b.Attrs,
		}
		if opts.KeepInputMass {
			if v, ok := b.Attrs.Get(KeyMass); ok {
				if n, ok := number(v); ok {
					p.Mass = n
				}
			}
		}

		switch mode {
		case ModeRadial:
			pl := m.Layout.Placements[i]
			p.Radius, p.Theta0, p.Depth, p.Omega = pl.Radius, pl.Theta0, pl.Depth, m.Omega[i]
		case ModeJitter:
			p.Position = m.Positions[i]
			p.Size = orbit.BodySize(m.Masses[i])
		}
		sys.Planets = append(sys.Planets, p)
	}
	sys.reindex()
	return sys, nil
}

func (m Metrics) check(n int, mode Mode) error {
	bad := len(m.Masses) != n
	switch mode {
	case ModeRadial:
		bad = bad || len(m.Layout.Placements) != n || len(m.Omega) != n
	case ModeJitter:
		bad = bad || len(m.Positions) != n
	}
	if bad {
		return orerrors.New(orerrors.ErrCodeInvalidInput, "layout metrics do not cover all %d nodes", n)
	}
	return nil
}

// Record returns the emitted attribute record of p: the passthrough
// attributes with the computed fields set. In radial mode x, y and z are
// removed.
func (s *System) Record(p Planet) *Attrs {
	rec := cloneAttrs(p.Attrs)
	switch s.Mode {
	case ModeJitter:
		rec.Set(KeyX, p.Position.X)
		rec.Set(KeyY, p.Position.Y)
		rec.Set(KeyZ, p.Position.Z)
		rec.Set(KeyMass, p.Mass)
		rec.Set(KeySize, p.Size)
	default:
		rec.Delete(KeyX)
		rec.Delete(KeyY)
		rec.Delete(KeyZ)
		rec.Set(KeyRadius, p.Radius)
		rec.Set(KeyTheta0, p.Theta0)
		rec.Set(KeyDepth, p.Depth)
		rec.Set(KeyOmega, p.Omega)
		rec.Set(KeyMass, p.Mass)
	}
	return rec
}

// Get returns the planet with the given id.
func (s *System) Get(id string) (Planet, bool) {
	i, ok := s.index[id]
	if !ok || i >= len(s.Planets) || s.Planets[i].ID != id {
		// Planets was edited after assembly.
		s.reindex()
		if i, ok = s.index[id]; !ok {
			return Planet{}, false
		}
	}
	return s.Planets[i], true
}

func (s *System) reindex() {
	s.index = make(map[string]int, len(s.Planets))
	for i, p := range s.Planets {
		s.index[p.ID] = i
	}
}

// MarshalJSON encodes the system as an id → record object in input order.
func (s *System) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, *Attrs](orderedmap.WithCapacity[string, *Attrs](len(s.Planets)))
	for _, p := range s.Planets {
		om.Set(p.ID, s.Record(p))
	}
	return json.Marshal(om)
}

// UnmarshalJSON decodes the output of [System.MarshalJSON] in the mode
// already set on s, radial when unset. Records carry no mode of their own,
// so callers that persist systems must persist the mode alongside.
func (s *System) UnmarshalJSON(data []byte) error {
	mode := s.Mode
	if mode == "" {
		mode = ModeRadial
	}
	sys, err := DecodeSystem(data, mode)
	if err != nil {
		return err
	}
	*s = *sys
	return nil
}

// DecodeSystem decodes an encoded system that was laid out in mode.
func DecodeSystem(data []byte, mode Mode) (*System, error) {
	if mode != ModeRadial && mode != ModeJitter {
		return nil, orerrors.New(orerrors.ErrCodeInvalidFormat, "unknown layout mode %q", mode)
	}
	c, err := DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	s := &System{Mode: mode, Planets: make([]Planet, 0, c.Len())}
	for _, b := range c.Bodies() {
		parent, err := parentOf(b)
		if err != nil {
			return nil, err
		}
		p := Planet{ID: b.ID, Parent: parent, Attrs: b.Attrs}
		p.Mass = numAttr(b.Attrs, KeyMass)
		if mode == ModeJitter {
			p.Position = orbit.Point{X: numAttr(b.Attrs, KeyX), Y: numAttr(b.Attrs, KeyY), Z: numAttr(b.Attrs, KeyZ)}
			p.Size = numAttr(b.Attrs, KeySize)
		} else {
			p.Radius = numAttr(b.Attrs, KeyRadius)
			p.Theta0 = numAttr(b.Attrs, KeyTheta0)
			p.Depth = int(numAttr(b.Attrs, KeyDepth))
			p.Omega = numAttr(b.Attrs, KeyOmega)
		}
		s.Planets = append(s.Planets, p)
	}
	s.reindex()
	return s, nil
}

// Encode writes s as indented JSON.
func (s *System) Encode(w io.Writer) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func numAttr(a *Attrs, key string) float64 {
	v, _ := a.Get(key)
	n, _ := number(v)
	return n
}
