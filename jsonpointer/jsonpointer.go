// Package jsonpointer implements RFC6901 JSON Pointers (https://datatracker.ietf.org/doc/html/rfc6901) over YAML node trees.
package jsonpointer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/yml"
	"gopkg.in/yaml.v3"
)

const (
	// ErrNotFound is returned when the pointer does not address a node.
	ErrNotFound = errors.Error("not found")
	// ErrValidation is returned when the pointer is malformed.
	ErrValidation = errors.Error("validation error")
)

// JSONPointer is a JSON Pointer string such as "/workflows/0/steps".
type JSONPointer string

// Validate reports whether the pointer is syntactically valid.
func (j JSONPointer) Validate() error {
	_, err := j.Parts()
	return err
}

// Parts returns the decoded reference tokens of the pointer.
func (j JSONPointer) Parts() ([]string, error) {
	if j == "" {
		return []string{}, nil
	}

	if !strings.HasPrefix(string(j), "/") {
		return nil, ErrValidation.Wrap(fmt.Errorf("jsonpointer must start with /: %s", string(j)))
	}

	raw := strings.Split(string(j)[1:], "/")
	parts := make([]string, 0, len(raw))
	for _, token := range raw {
		decoded, err := unescape(token)
		if err != nil {
			return nil, ErrValidation.Wrap(fmt.Errorf("%w: %s", err, string(j)))
		}
		parts = append(parts, decoded)
	}

	return parts, nil
}

func unescape(token string) (string, error) {
	for i := 0; i < len(token); i++ {
		if token[i] != '~' {
			continue
		}
		if i+1 >= len(token) || (token[i+1] != '0' && token[i+1] != '1') {
			return "", fmt.Errorf("jsonpointer token contains invalid escape sequence ~ at position %d", i)
		}
	}

	return strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~"), nil
}

func escape(token string) string {
	return strings.ReplaceAll(strings.ReplaceAll(token, "~", "~0"), "/", "~1")
}

// PartsToJSONPointer builds a pointer from unescaped reference tokens.
func PartsToJSONPointer(parts []string) JSONPointer {
	if len(parts) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, part := range parts {
		sb.WriteString("/")
		sb.WriteString(escape(part))
	}
	return JSONPointer(sb.String())
}

// GetNode resolves the pointer against root.
func GetNode(root *yaml.Node, pointer JSONPointer) (*yaml.Node, error) {
	parts, err := pointer.Parts()
	if err != nil {
		return nil, err
	}

	current := yml.ResolveAlias(root)
	if current != nil && current.Kind == yaml.DocumentNode && len(current.Content) > 0 {
		current = yml.ResolveAlias(current.Content[0])
	}

	for i, part := range parts {
		if current == nil {
			return nil, ErrNotFound.Wrap(fmt.Errorf("%s", PartsToJSONPointer(parts[:i+1])))
		}

		switch current.Kind {
		case yaml.MappingNode:
			_, value, ok := yml.GetMapElement(current, part)
			if !ok {
				return nil, ErrNotFound.Wrap(fmt.Errorf("key %q at %s", part, PartsToJSONPointer(parts[:i])))
			}
			current = value
		case yaml.SequenceNode:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(current.Content) {
				return nil, ErrNotFound.Wrap(fmt.Errorf("index %q at %s", part, PartsToJSONPointer(parts[:i])))
			}
			current = yml.ResolveAlias(current.Content[index])
		default:
			return nil, ErrNotFound.Wrap(fmt.Errorf("cannot navigate into %s at %s", yml.NodeKindToString(current.Kind), PartsToJSONPointer(parts[:i])))
		}
	}

	return current, nil
}

// GetClosestNode resolves as much of the pointer as exists and returns the deepest node reached.
// It is used to anchor findings for locations that are missing from the document.
func GetClosestNode(root *yaml.Node, parts []string) *yaml.Node {
	for n := len(parts); n >= 0; n-- {
		node, err := GetNode(root, PartsToJSONPointer(parts[:n]))
		if err == nil && node != nil {
			return node
		}
	}
	return root
}
