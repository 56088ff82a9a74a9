package planet

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/forest"
)

// ParentKey is the attribute naming a node's parent.
const ParentKey = "parent"

// Attrs is an insertion-ordered attribute record.
type Attrs = orderedmap.OrderedMap[string, any]

// NewAttrs returns an empty attribute record.
func NewAttrs() *Attrs { return orderedmap.New[string, any]() }

// Body is one entry of a [Collection].
type Body struct {
	ID    string
	Attrs *Attrs
}

// Collection is an ordered mapping from node id to attribute record.
// The zero value is not usable; create one with [NewCollection] or a decoder.
type Collection struct {
	bodies []Body
	index  map[string]int
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{index: make(map[string]int)}
}

// Add appends a body. It fails with DUPLICATE_NODE if id is already present.
// A nil attrs is stored as an empty record.
func (c *Collection) Add(id string, attrs *Attrs) error {
	if _, ok := c.index[id]; ok {
		return orerrors.NewNodes(orerrors.ErrCodeDuplicateNode, []string{id},
			"node %q appears more than once", id)
	}
	if attrs == nil {
		attrs = NewAttrs()
	}
	c.index[id] = len(c.bodies)
	c.bodies = append(c.bodies, Body{ID: id, Attrs: attrs})
	return nil
}

// Len returns the number of bodies.
func (c *Collection) Len() int { return len(c.bodies) }

// Bodies returns the bodies in input order. The slice must not be modified.
func (c *Collection) Bodies() []Body { return c.bodies }

// Get returns the attributes of id.
func (c *Collection) Get(id string) (*Attrs, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.bodies[i].Attrs, true
}

// IDs returns the node ids in input order.
func (c *Collection) IDs() []string {
	ids := make([]string, len(c.bodies))
	for i, b := range c.bodies {
		ids[i] = b.ID
	}
	return ids
}

// Entries extracts the parent relation in input order. A parent that is
// neither a string nor null is a SCHEMA error naming the node.
func (c *Collection) Entries() ([]forest.Entry, error) {
	entries := make([]forest.Entry, len(c.bodies))
	for i, b := range c.bodies {
		parent, err := parentOf(b)
		if err != nil {
			return nil, err
		}
		entries[i] = forest.Entry{ID: b.ID, Parent: parent}
	}
	return entries, nil
}

func parentOf(b Body) (string, error) {
	v, ok := b.Attrs.Get(ParentKey)
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", orerrors.NewNodes(orerrors.ErrCodeSchema, []string{b.ID},
			"node %q: parent must be a string or null, got %T", b.ID, v)
	}
	return s, nil
}

// MarshalJSON encodes the collection as an object in input order.
func (c *Collection) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, *Attrs](orderedmap.WithCapacity[string, *Attrs](len(c.bodies)))
	for _, b := range c.bodies {
		om.Set(b.ID, b.Attrs)
	}
	return json.Marshal(om)
}

// cloneAttrs returns a shallow copy of a in the same order.
func cloneAttrs(a *Attrs) *Attrs {
	out := orderedmap.New[string, any](orderedmap.WithCapacity[string, any](a.Len()))
	for p := a.Oldest(); p != nil; p = p.Next() {
		out.Set(p.Key, p.Value)
	}
	return out
}

// number converts a decoded JSON or TOML numeric value to float64.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
