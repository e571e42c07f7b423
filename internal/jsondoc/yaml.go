package jsondoc

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML document into a Value. Mapping order is taken from
// the node tree, so it matches the source just like Parse does for JSON.
func ParseYAML(data []byte) (*Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if root.Kind == 0 {
		return NullValue(), nil
	}
	d := &nodeDecoder{budget: nodeBudget(len(data))}
	return d.fromNode(&root, 0)
}

const (
	// maxAliasDepth bounds alias expansion.
	maxAliasDepth = 64

	// nodesPerByte caps the expanded tree relative to the input size.
	nodesPerByte  = 100
	minNodeBudget = 10000
)

var errTooManyNodes = errors.New("parse yaml: document expands to too many nodes")

func nodeBudget(size int) int {
	return max(size*nodesPerByte, minNodeBudget)
}

// nodeDecoder converts a node tree, counting every node it produces so that
// aliases referencing other aliases cannot blow up the result.
type nodeDecoder struct {
	budget int
	used   int
}

func (d *nodeDecoder) fromNode(n *yaml.Node, depth int) (*Value, error) {
	if depth > maxAliasDepth {
		return nil, fmt.Errorf("parse yaml: nesting too deep at line %d", n.Line)
	}
	d.used++
	if d.used > d.budget {
		return nil, errTooManyNodes
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NullValue(), nil
		}
		return d.fromNode(n.Content[0], depth+1)

	case yaml.AliasNode:
		if n.Alias == nil {
			return NullValue(), nil
		}
		return d.fromNode(n.Alias, depth+1)

	case yaml.SequenceNode:
		items := make([]*Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := d.fromNode(c, depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return ArrayValue(items...), nil

	case yaml.MappingNode:
		obj := NewObj()
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := d.fromNode(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, val)
		}
		return ObjectValue(obj), nil

	case yaml.ScalarNode:
		return scalar(n), nil

	default:
		return nil, fmt.Errorf("parse yaml: unsupported node kind %d at line %d", n.Kind, n.Line)
	}
}

// scalar maps resolved YAML tags onto JSON kinds. Anything that is not null,
// bool, int or float stays a string, including timestamps.
func scalar(n *yaml.Node) *Value {
	switch n.ShortTag() {
	case "!!null":
		return NullValue()
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return StringValue(n.Value)
		}
		return BoolValue(b)
	case "!!int", "!!float":
		if strings.ContainsAny(n.Value, "_:") || strings.HasPrefix(n.Value, "0x") || strings.HasPrefix(n.Value, "0o") || strings.HasPrefix(n.Value, ".") {
			return StringValue(n.Value)
		}
		return NumberValue(n.Value)
	default:
		return StringValue(n.Value)
	}
}
