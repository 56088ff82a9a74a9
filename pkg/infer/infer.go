// Package infer guesses parent links for a flat list of names.
//
// The heuristic is containment: a name's parent is the first other name, in
// list order, that occurs inside it. "Rock" becomes the parent of
// "Baroque Rock", but also of anything else that merely contains those four
// letters, so the output is a starting point for manual curation and never
// trusted input for the layout itself.
package infer

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/planet"
)

// NameKey is the attribute holding a record's name in list input.
const NameKey = "name"

// Parents returns, for every name, the first other name that is a substring
// of it, or "" when there is none.
func Parents(names []string) []string {
	parents := make([]string, len(names))
	for i, name := range names {
		for _, candidate := range names {
			if candidate != name && strings.Contains(name, candidate) {
				parents[i] = candidate
				break
			}
		}
	}
	return parents
}

// DecodeList reads a JSON array of objects, each carrying a string "name".
func DecodeList(r io.Reader) ([]*planet.Attrs, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, orerrors.Wrap(orerrors.ErrCodeSchema, err, "input must be a JSON array of objects")
	}

	records := make([]*planet.Attrs, len(raw))
	for i, item := range raw {
		if item = bytes.TrimSpace(item); len(item) == 0 || item[0] != '{' {
			return nil, orerrors.New(orerrors.ErrCodeSchema, "item %d is not an object", i)
		}
		rec := planet.NewAttrs()
		if err := rec.UnmarshalJSON(item); err != nil {
			return nil, orerrors.Wrap(orerrors.ErrCodeSchema, err, "item %d", i)
		}
		if _, err := nameOf(rec, i); err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}

// Collection converts named records into an id-keyed collection with an
// inferred "parent" attribute (null for roots). The "name" attribute
// becomes the id and is dropped, as is any stale "children" list.
func Collection(records []*planet.Attrs) (*planet.Collection, error) {
	names := make([]string, len(records))
	for i, rec := range records {
		name, err := nameOf(rec, i)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}

	parents := Parents(names)
	c := planet.NewCollection()
	for i, rec := range records {
		attrs := planet.NewAttrs()
		for p := rec.Oldest(); p != nil; p = p.Next() {
			switch p.Key {
			case NameKey, "children":
				continue
			}
			attrs.Set(p.Key, p.Value)
		}
		if parents[i] == "" {
			attrs.Set(planet.ParentKey, nil)
		} else {
			attrs.Set(planet.ParentKey, parents[i])
		}
		if err := c.Add(names[i], attrs); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func nameOf(rec *planet.Attrs, i int) (string, error) {
	v, _ := rec.Get(NameKey)
	name, ok := v.(string)
	if !ok || name == "" {
		return "", orerrors.New(orerrors.ErrCodeSchema, "item %d has no string %q field", i, NameKey)
	}
	return name, nil
}
