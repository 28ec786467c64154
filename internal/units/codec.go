package units

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformed wraps every decode failure.
var ErrMalformed = errors.New("malformed units payload")

// Decode parses a GET /api/units payload. The order of the fields inside
// each "state" object becomes the attribute order.
func Decode(data []byte) ([]Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrMalformed, root.Type)
	}

	out := make([]Snapshot, 0)
	var decErr error
	index := 0
	root.ForEach(func(_, item gjson.Result) bool {
		snap, err := decodeSnapshot(item)
		if err != nil {
			decErr = fmt.Errorf("%w: unit %d: %v", ErrMalformed, index, err)
			return false
		}
		out = append(out, snap)
		index++
		return true
	})
	if decErr != nil {
		return nil, decErr
	}
	return out, nil
}

func decodeSnapshot(item gjson.Result) (Snapshot, error) {
	if !item.IsObject() {
		return Snapshot{}, fmt.Errorf("expected object")
	}
	name := item.Get("name")
	if name.Type != gjson.String || name.Str == "" {
		return Snapshot{}, fmt.Errorf("name must be a non-empty string")
	}
	state := item.Get("state")
	if !state.IsObject() {
		return Snapshot{}, fmt.Errorf("state must be an object")
	}

	var (
		attrs  Attributes
		valErr error
	)
	state.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.String:
			attrs.Set(key.Str, String(value.Str))
		case gjson.Number:
			attrs.Set(key.Str, Number(value.Num))
		default:
			valErr = fmt.Errorf("state.%s: unsupported value type %s", key.Str, value.Type)
			return false
		}
		return true
	})
	if valErr != nil {
		return Snapshot{}, valErr
	}

	return Snapshot{Name: name.Str, Attributes: attrs}, nil
}

// MarshalJSON encodes the snapshot in the wire shape, keeping attribute order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"name":`)
	if err := writeJSON(&buf, s.Name); err != nil {
		return nil, err
	}
	buf.WriteString(`,"state":`)
	if err := s.Attributes.writeTo(&buf); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the attributes as an object with keys in order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.writeTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a Attributes) writeTo(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, e := range a.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(buf, e.Key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeJSON(buf, e.Value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

func writeJSON(buf *bytes.Buffer, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %T: %w", value, err)
	}
	buf.Write(data)
	return nil
}

// Encode renders a snapshot list as a GET /api/units payload. A nil slice
// encodes as an empty array.
func Encode(snapshots []Snapshot) ([]byte, error) {
	if snapshots == nil {
		snapshots = []Snapshot{}
	}
	return json.Marshal(snapshots)
}
