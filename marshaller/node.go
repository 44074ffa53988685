package marshaller

import "gopkg.in/yaml.v3"

// Node is a decoded field together with the YAML nodes it was read from.
type Node[V any] struct {
	Key       string
	KeyNode   *yaml.Node
	Value     V
	ValueNode *yaml.Node
	Present   bool

	// ItemNodes holds the node of each decoded element when the value is a sequence.
	ItemNodes []*yaml.Node
}

// GetKeyNodeOrRoot returns the key node, or rootNode when the field is absent.
func (n Node[V]) GetKeyNodeOrRoot(rootNode *yaml.Node) *yaml.Node {
	if !n.Present || n.KeyNode == nil {
		return rootNode
	}
	return n.KeyNode
}

// GetValueNodeOrRoot returns the value node, or rootNode when the field is absent.
func (n Node[V]) GetValueNodeOrRoot(rootNode *yaml.Node) *yaml.Node {
	if !n.Present || n.ValueNode == nil {
		return rootNode
	}
	return n.ValueNode
}

// GetSliceValueNodeOrRoot returns the node for element i of a decoded sequence field, falling back to
// the sequence itself and then rootNode.
func (n Node[V]) GetSliceValueNodeOrRoot(i int, rootNode *yaml.Node) *yaml.Node {
	if !n.Present || n.ValueNode == nil {
		return rootNode
	}
	if i >= 0 && i < len(n.ItemNodes) {
		return n.ItemNodes[i]
	}
	if n.ValueNode.Kind != yaml.SequenceNode || i < 0 || i >= len(n.ValueNode.Content) {
		return n.ValueNode
	}
	return n.ValueNode.Content[i]
}

// Entry is one key/value pair of a decoded mapping, kept in document order.
type Entry[V any] struct {
	Key       string
	KeyNode   *yaml.Node
	Value     V
	ValueNode *yaml.Node
}

// Entries is an ordered mapping.
type Entries[V any] []Entry[V]

// Get returns the entry stored under key.
func (e Entries[V]) Get(key string) (Entry[V], bool) {
	for _, entry := range e {
		if entry.Key == key {
			return entry, true
		}
	}
	return Entry[V]{}, false
}

// Keys returns the keys in document order.
func (e Entries[V]) Keys() []string {
	keys := make([]string, 0, len(e))
	for _, entry := range e {
		keys = append(keys, entry.Key)
	}
	return keys
}
