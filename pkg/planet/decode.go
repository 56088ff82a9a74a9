package planet

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
)

// Format identifies an input encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatTOML:
		return f, nil
	default:
		return "", orerrors.New(orerrors.ErrCodeInvalidFormat, "unknown input format %q (want json or toml)", s)
	}
}

// Decode reads a collection in the given format.
func Decode(r io.Reader, format Format) (*Collection, error) {
	switch format {
	case FormatTOML:
		return DecodeTOML(r)
	case FormatJSON, "":
		return DecodeJSON(r)
	default:
		return nil, orerrors.New(orerrors.ErrCodeInvalidFormat, "unknown input format %q", format)
	}
}

// ReadFile decodes the collection stored at path, choosing the format from
// its extension.
func ReadFile(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, orerrors.Wrap(orerrors.ErrCodeFileNotFound, err, "input file %s not found", path)
		}
		return nil, orerrors.Wrap(orerrors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Decode(f, FormatFromPath(path))
}

// DecodeJSON reads a JSON object of objects, preserving key order.
func DecodeJSON(r io.Reader) (*Collection, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err == io.EOF {
		return nil, orerrors.New(orerrors.ErrCodeSchema, "input is empty, want a JSON object")
	}
	if err != nil {
		return nil, orerrors.Wrap(orerrors.ErrCodeSchema, err, "invalid JSON")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, orerrors.New(orerrors.ErrCodeSchema,
			"input must be a JSON object mapping node ids to attribute records, got %s", describe(tok))
	}

	c := NewCollection()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, orerrors.Wrap(orerrors.ErrCodeSchema, err, "invalid JSON")
		}
		id, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, orerrors.Wrap(orerrors.ErrCodeSchema, err, "invalid JSON value for node %q", id)
		}
		attrs, err := decodeRecord(id, raw)
		if err != nil {
			return nil, err
		}
		if err := c.Add(id, attrs); err != nil {
			return nil, err
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, orerrors.Wrap(orerrors.ErrCodeSchema, err, "invalid JSON")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, orerrors.New(orerrors.ErrCodeSchema, "unexpected data after the top-level object")
	}
	return c, nil
}

func decodeRecord(id string, raw json.RawMessage) (*Attrs, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		var v any
		_ = json.Unmarshal(trimmed, &v)
		return nil, orerrors.NewNodes(orerrors.ErrCodeSchema, []string{id},
			"node %q: attribute record must be an object, got %s", id, describe(v))
	}
	attrs := NewAttrs()
	if err := attrs.UnmarshalJSON(trimmed); err != nil {
		return nil, orerrors.Wrap(orerrors.ErrCodeSchema, err, "node %q: invalid attribute record", id)
	}
	return attrs, nil
}

// DecodeTOML reads one table per node. Attribute order follows the document;
// keys that the decoder metadata does not report are appended sorted.
//
//	[Rock]
//	color = "#c0392b"
//
//	[Punk]
//	parent = "Rock"
func DecodeTOML(r io.Reader) (*Collection, error) {
	var raw map[string]any
	md, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, orerrors.Wrap(orerrors.ErrCodeSchema, err, "invalid TOML")
	}

	var order []string
	fields := make(map[string][]string)
	for _, key := range md.Keys() {
		switch len(key) {
		case 1:
			order = append(order, key[0])
		case 2:
			fields[key[0]] = append(fields[key[0]], key[1])
		}
	}

	c := NewCollection()
	for _, id := range order {
		table, ok := raw[id].(map[string]any)
		if !ok {
			return nil, orerrors.NewNodes(orerrors.ErrCodeSchema, []string{id},
				"node %q: attribute record must be a table, got %s", id, describe(raw[id]))
		}
		attrs := NewAttrs()
		for _, k := range fields[id] {
			if v, ok := table[k]; ok {
				attrs.Set(k, v)
			}
		}
		for _, k := range slices.Sorted(maps.Keys(table)) {
			if _, ok := attrs.Get(k); !ok {
				attrs.Set(k, table[k])
			}
		}
		if err := c.Add(id, attrs); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case json.Delim:
		if t == '[' {
			return "array"
		}
		return "object"
	case []any, []map[string]any:
		return "array"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int64, json.Number:
		return "number"
	default:
		return "value"
	}
}
