package units

import (
	"iter"
	"strconv"
)

// Kind tags the dynamic type carried by a Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
)

// Value is an attribute value as reported by the data source: a string or a number.
type Value struct {
	kind Kind
	str  string
	num  float64
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Num returns the numeric value and whether the value is a number.
func (v Value) Num() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// String renders the value for display. Numbers drop trailing zeros.
func (v Value) String() string {
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// Attribute is one named entry of a unit's state.
type Attribute struct {
	Key   string
	Value Value
}

// Attributes is an insertion-ordered mapping from attribute name to value.
// Setting an existing key replaces its value in place and keeps its position.
type Attributes struct {
	entries []Attribute
}

func NewAttributes(entries ...Attribute) Attributes {
	var a Attributes
	for _, e := range entries {
		a.Set(e.Key, e.Value)
	}
	return a
}

func (a *Attributes) Set(key string, value Value) {
	for i := range a.entries {
		if a.entries[i].Key == key {
			a.entries[i].Value = value
			return
		}
	}
	a.entries = append(a.entries, Attribute{Key: key, Value: value})
}

func (a Attributes) Get(key string) (Value, bool) {
	for _, e := range a.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

func (a Attributes) Len() int {
	return len(a.entries)
}

func (a Attributes) At(i int) Attribute {
	return a.entries[i]
}

func (a Attributes) Keys() []string {
	keys := make([]string, len(a.entries))
	for i, e := range a.entries {
		keys[i] = e.Key
	}
	return keys
}

// All iterates the attributes in insertion order.
func (a Attributes) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, e := range a.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

func (a Attributes) clone() Attributes {
	return Attributes{entries: append([]Attribute(nil), a.entries...)}
}

// Snapshot is the last known state of one unit at fetch time.
type Snapshot struct {
	Name       string
	Attributes Attributes
}

// Collection is the result of a successful fetch, or the not-loaded sentinel.
// The zero value is the sentinel.
type Collection struct {
	units  []Snapshot
	loaded bool
}

// NotLoaded returns the sentinel meaning no fetch has succeeded yet.
func NotLoaded() Collection {
	return Collection{}
}

// Loaded wraps a fetched sequence of snapshots. A nil or empty slice is a
// loaded collection of zero units, not the sentinel.
func Loaded(snapshots []Snapshot) Collection {
	out := make([]Snapshot, len(snapshots))
	for i, s := range snapshots {
		out[i] = Snapshot{Name: s.Name, Attributes: s.Attributes.clone()}
	}
	return Collection{units: out, loaded: true}
}

func (c Collection) IsLoaded() bool {
	return c.loaded
}

func (c Collection) Len() int {
	return len(c.units)
}

// Units returns a deep copy of the snapshots in fetch order.
func (c Collection) Units() []Snapshot {
	if c.units == nil {
		return nil
	}
	out := make([]Snapshot, len(c.units))
	for i, s := range c.units {
		out[i] = Snapshot{Name: s.Name, Attributes: s.Attributes.clone()}
	}
	return out
}
