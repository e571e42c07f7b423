// Package jsondoc holds loosely-structured documents (previous minutes in any
// historical shape) as an ordered value tree.
//
// Object keys keep their document order. Callers that resolve keys by
// "first match" depend on this, so never rebuild an Object from a Go map.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is one node of a document. A nil *Value means "absent" and is safe to
// call methods on.
type Value struct {
	kind Kind
	text string // string content, raw number text, or "true"/"false"
	arr  []*Value
	obj  *Obj
}

// Obj is an insertion-ordered mapping.
type Obj struct {
	keys []string
	vals map[string]*Value
}

// NewObj returns an empty ordered mapping.
func NewObj() *Obj {
	return &Obj{vals: make(map[string]*Value)}
}

// Set stores v under key. A repeated key keeps its first position and takes
// the last value.
func (o *Obj) Set(key string, v *Value) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Get returns the value stored under the exact key.
func (o *Obj) Get(key string) (*Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.vals[key]
	return v, ok
}

// Keys returns the keys in document order.
func (o *Obj) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys.
func (o *Obj) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// NullValue returns JSON null.
func NullValue() *Value {
	return &Value{kind: Null}
}

// BoolValue returns a JSON boolean.
func BoolValue(b bool) *Value {
	return &Value{kind: Bool, text: strconv.FormatBool(b)}
}

// NumberValue returns a JSON number from its raw spelling.
func NumberValue(raw string) *Value {
	return &Value{kind: Number, text: raw}
}

// StringValue returns a JSON string.
func StringValue(s string) *Value {
	return &Value{kind: String, text: s}
}

// ArrayValue returns a JSON array of items.
func ArrayValue(items ...*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{kind: Array, arr: items}
}

// ObjectValue wraps an ordered mapping.
func ObjectValue(o *Obj) *Value {
	if o == nil {
		o = NewObj()
	}
	return &Value{kind: Object, obj: o}
}

// Kind returns the variant; an absent value reports Null.
func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

// IsNull reports whether v is absent or JSON null.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == Null
}

// Object returns the mapping when v is an object.
func (v *Value) Object() (*Obj, bool) {
	if v == nil || v.kind != Object {
		return nil, false
	}
	return v.obj, true
}

// Array returns the elements when v is an array.
func (v *Value) Array() ([]*Value, bool) {
	if v == nil || v.kind != Array {
		return nil, false
	}
	return v.arr, true
}

// Str returns the content when v is a JSON string.
func (v *Value) Str() (string, bool) {
	if v == nil || v.kind != String {
		return "", false
	}
	return v.text, true
}

// Text coerces v to a string: strings as-is, numbers and booleans in their
// JSON spelling, null as "", arrays and objects as compact JSON.
func (v *Value) Text() string {
	if v == nil {
		return ""
	}
	switch v.kind {
	case Null:
		return ""
	case String, Number, Bool:
		return v.text
	default:
		b, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// MarshalJSON encodes v with object keys in document order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool, Number:
		buf.WriteString(v.text)
	case String:
		b, err := json.Marshal(v.text)
		if err != nil {
			return err
		}
		buf.Write(b)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, key := range v.obj.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := v.obj.vals[key].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}
