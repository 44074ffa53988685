// Package json converts YAML node trees into JSON.
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/SteakFisher/arazzo-writer/yml"
	"gopkg.in/yaml.v3"
)

// YAMLToJSON writes node as JSON to w using the given indentation.
func YAMLToJSON(node *yaml.Node, indentation int, w io.Writer) error {
	v, err := ToAny(node)
	if err != nil {
		return err
	}

	e := json.NewEncoder(w)
	e.SetIndent("", strings.Repeat(" ", indentation))

	return e.Encode(v)
}

// ToAny converts node into the plain Go values encoding/json would produce.
func ToAny(node *yaml.Node) (any, error) {
	if node == nil {
		return nil, nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return ToAny(node.Content[0])
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := ToAny(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := yml.ResolveAlias(node.Content[i])
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("[%d:%d] mapping keys must be scalars, got %s", keyNode.Line, keyNode.Column, yml.NodeKindToString(keyNode.Kind))
			}
			v, err := ToAny(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[keyNode.Value] = v
		}
		return out, nil
	case yaml.ScalarNode:
		return scalarToAny(node)
	case yaml.AliasNode:
		return ToAny(node.Alias)
	default:
		return nil, fmt.Errorf("unknown node kind: %s", yml.NodeKindToString(node.Kind))
	}
}

func scalarToAny(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			// out of range integers are kept as their literal text
			return json.Number(node.Value), nil
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return node.Value, nil
	}
}
