// Package yml provides helpers for navigating gopkg.in/yaml.v3 node trees while keeping line and column information.
package yml

import (
	"bytes"
	"fmt"
	"io"
	"iter"

	"github.com/SteakFisher/arazzo-writer/errors"
	"gopkg.in/yaml.v3"
)

const (
	// ErrEmptyDocument is returned when a document contains no YAML content.
	ErrEmptyDocument = errors.Error("document is empty")
	// ErrMultipleDocuments is returned when a stream holds more than one document.
	ErrMultipleDocuments = errors.Error("expected a single document")
)

// Parse decodes data into a node tree and returns the document's root content node.
// The whole stream is read: a later document that fails to parse, or any second document, is an error.
func Parse(data []byte) (*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, err
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyDocument
	}

	var next yaml.Node
	switch err := dec.Decode(&next); {
	case errors.Is(err, io.EOF):
		return doc.Content[0], nil
	case err != nil:
		return nil, err
	}

	line := next.Line
	if len(next.Content) > 0 {
		line = next.Content[0].Line
	}
	return nil, ErrMultipleDocuments.Wrapf("another document starts at line %d", line)
}

// ResolveAlias follows alias nodes until a concrete node is reached.
func ResolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

// GetMapElement returns the key and value nodes stored under key in a mapping node.
func GetMapElement(mapNode *yaml.Node, key string) (*yaml.Node, *yaml.Node, bool) {
	mapNode = ResolveAlias(mapNode)
	if mapNode == nil || mapNode.Kind != yaml.MappingNode {
		return nil, nil, false
	}

	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		keyNode := ResolveAlias(mapNode.Content[i])
		if keyNode != nil && keyNode.Value == key {
			return mapNode.Content[i], ResolveAlias(mapNode.Content[i+1]), true
		}
	}

	return nil, nil, false
}

// MapPairs iterates over the key and resolved value nodes of a mapping node in document order.
func MapPairs(mapNode *yaml.Node) iter.Seq2[*yaml.Node, *yaml.Node] {
	return func(yield func(*yaml.Node, *yaml.Node) bool) {
		mapNode = ResolveAlias(mapNode)
		if mapNode == nil || mapNode.Kind != yaml.MappingNode {
			return
		}

		for i := 0; i+1 < len(mapNode.Content); i += 2 {
			if !yield(ResolveAlias(mapNode.Content[i]), ResolveAlias(mapNode.Content[i+1])) {
				return
			}
		}
	}
}

// Items returns the resolved entries of a sequence node.
func Items(seqNode *yaml.Node) []*yaml.Node {
	seqNode = ResolveAlias(seqNode)
	if seqNode == nil || seqNode.Kind != yaml.SequenceNode {
		return nil
	}

	items := make([]*yaml.Node, 0, len(seqNode.Content))
	for _, item := range seqNode.Content {
		items = append(items, ResolveAlias(item))
	}
	return items
}

// NodeKindToString renders a node kind for error messages.
func NodeKindToString(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return fmt.Sprintf("unknown(%d)", kind)
	}
}

// Describe renders the kind of a node including the scalar tag, e.g. "scalar (!!int)".
func Describe(node *yaml.Node) string {
	node = ResolveAlias(node)
	if node == nil {
		return "nothing"
	}
	if node.Kind == yaml.ScalarNode {
		return fmt.Sprintf("scalar (%s)", node.ShortTag())
	}
	return NodeKindToString(node.Kind)
}
