package value

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML document into the value set, keeping mapping
// order. Anchors and aliases are resolved. An empty document yields nil.
func ParseYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	v, err := decodeNode(&doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return v, nil
}

func decodeNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return decodeNode(n.Content[0])
	case yaml.AliasNode:
		return decodeNode(n.Alias)
	case yaml.MappingNode:
		o := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, err := decodeNode(n.Content[i])
			if err != nil {
				return nil, err
			}
			item, err := decodeNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			o.pairs.Set(String(key), item)
		}
		return o, nil
	case yaml.SequenceNode:
		a := &Array{items: make([]any, 0, len(n.Content))}
		for _, c := range n.Content {
			item, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			a.items = append(a.items, item)
		}
		return a, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Normalize(v), nil
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

// ToYAML renders v as a YAML document, keeping object key order.
func ToYAML(v any) ([]byte, error) {
	n, err := encodeNode(v)
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return out, nil
}

// MarshalYAML renders the object as an ordered mapping.
func (o *Object) MarshalYAML() (any, error) {
	return encodeNode(o)
}

// MarshalYAML renders the array as a sequence.
func (a *Array) MarshalYAML() (any, error) {
	return encodeNode(a)
}

func encodeNode(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case *Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, item := range x.All() {
			child, err := encodeNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
		}
		return n, nil
	case *Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range x.items {
			child, err := encodeNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case float64:
		tag := "!!float"
		if x == math.Trunc(x) && math.Abs(x) < 1e21 {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: yamlNumber(x)}, nil
	case *Deferred:
		return encodeNode(String(x))
	}
	n := &yaml.Node{}
	if err := n.Encode(Normalize(v)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return n, nil
}

func yamlNumber(f float64) string {
	switch s := FormatNumber(f); s {
	case "NaN":
		return ".nan"
	case "Infinity":
		return ".inf"
	case "-Infinity":
		return "-.inf"
	default:
		return s
	}
}
