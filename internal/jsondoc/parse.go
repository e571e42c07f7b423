package jsondoc

import (
	"fmt"

	"github.com/buger/jsonparser"
)

// Parse decodes JSON text into a Value, keeping object keys in the order they
// appear in data.
func Parse(data []byte) (*Value, error) {
	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return build(raw, typ)
}

// build converts one jsonparser token into a Value. String payloads arrive
// without quotes but still escaped.
func build(raw []byte, typ jsonparser.ValueType) (*Value, error) {
	switch typ {
	case jsonparser.Null:
		return NullValue(), nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, fmt.Errorf("parse json boolean: %w", err)
		}
		return BoolValue(b), nil

	case jsonparser.Number:
		return NumberValue(string(raw)), nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse json string: %w", err)
		}
		return StringValue(s), nil

	case jsonparser.Array:
		items := []*Value{}
		var inner error
		_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			item, err := build(value, dataType)
			if err != nil {
				inner = err
				return
			}
			items = append(items, item)
		})
		if err != nil {
			return nil, fmt.Errorf("parse json array: %w", err)
		}
		if inner != nil {
			return nil, inner
		}
		return ArrayValue(items...), nil

	case jsonparser.Object:
		obj := NewObj()
		err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
			item, err := build(value, dataType)
			if err != nil {
				return err
			}
			obj.Set(string(key), item)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("parse json object: %w", err)
		}
		return ObjectValue(obj), nil

	default:
		return nil, fmt.Errorf("parse json: unexpected token %q", string(raw))
	}
}
