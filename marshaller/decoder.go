// Package marshaller decodes YAML node trees into models while retaining the nodes each value came from.
//
// Decoding never stops at the first problem: type mismatches are collected as validation errors so a
// single pass can report everything wrong with a document.
package marshaller

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/SteakFisher/arazzo-writer/validation"
	"github.com/SteakFisher/arazzo-writer/yml"
	"gopkg.in/yaml.v3"
)

// DecodeFunc decodes node into a value. The bool result reports whether node had the expected shape.
type DecodeFunc[V any] func(d *Decoder, node *yaml.Node) (V, bool)

// Decoder accumulates decoding errors.
type Decoder struct {
	errs  []error
	items map[*yaml.Node][]*yaml.Node
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Errors returns the errors collected so far.
func (d *Decoder) Errors() []error {
	return d.errs
}

// AddError records err.
func (d *Decoder) AddError(err error) {
	d.errs = append(d.errs, err)
}

// TypeMismatch records that node is not of the expected kind.
func (d *Decoder) TypeMismatch(node *yaml.Node, expected string) {
	d.AddError(validation.NewNodeError(validation.RuleValidationTypeMismatch, node, "expected %s, got %s", expected, yml.Describe(node)))
}

// Object is a mapping node being decoded field by field.
type Object struct {
	Node *yaml.Node

	d     *Decoder
	valid bool
}

// Object starts decoding node as a mapping describing what. A type mismatch is recorded if node is not a mapping.
func (d *Decoder) Object(node *yaml.Node, what string) *Object {
	node = yml.ResolveAlias(node)
	o := &Object{Node: node, d: d}

	if node == nil || node.Kind != yaml.MappingNode {
		d.TypeMismatch(node, "object for "+what)
		return o
	}

	seen := make(map[string]*yaml.Node)
	for k := range yml.MapPairs(node) {
		if first, ok := seen[k.Value]; ok {
			d.AddError(validation.NewNodeError(validation.RuleValidationDuplicateKey, k, "duplicate key %q (first defined at line %d)", k.Value, first.Line))
			continue
		}
		seen[k.Value] = k
	}

	o.valid = true
	return o
}

// Valid reports whether the object was a mapping.
func (o *Object) Valid() bool {
	return o.valid
}

// Decoder returns the decoder the object reports to.
func (o *Object) Decoder() *Decoder {
	return o.d
}

// Field decodes the value stored under key with fn.
func Field[V any](o *Object, key string, fn DecodeFunc[V]) Node[V] {
	n := Node[V]{Key: key}
	if !o.valid {
		return n
	}

	keyNode, valueNode, ok := yml.GetMapElement(o.Node, key)
	if !ok {
		return n
	}

	n.Present = true
	n.KeyNode = keyNode
	n.ValueNode = valueNode
	n.Value, _ = fn(o.d, valueNode)
	n.ItemNodes = o.d.items[yml.ResolveAlias(valueNode)]

	return n
}

// Known records a warning for every key that is neither listed in keys nor an x- extension.
func (o *Object) Known(keys ...string) {
	if !o.valid {
		return
	}

	for k := range yml.MapPairs(o.Node) {
		if strings.HasPrefix(k.Value, "x-") || slices.Contains(keys, k.Value) {
			continue
		}
		o.d.AddError(validation.NewValidationError(validation.SeverityWarning, validation.RuleValidationUnknownField, fmt.Errorf("unknown field %q", k.Value), k))
	}
}

// Extensions returns the x- prefixed entries of the object.
func (o *Object) Extensions() Entries[*yaml.Node] {
	if !o.valid {
		return nil
	}

	var ext Entries[*yaml.Node]
	for k, v := range yml.MapPairs(o.Node) {
		if strings.HasPrefix(k.Value, "x-") {
			ext = append(ext, Entry[*yaml.Node]{Key: k.Value, KeyNode: k, Value: v, ValueNode: v})
		}
	}
	return ext
}

// String decodes a string scalar.
func String(d *Decoder, node *yaml.Node) (string, bool) {
	if node == nil || node.Kind != yaml.ScalarNode || node.ShortTag() != "!!str" {
		d.TypeMismatch(node, "string")
		return "", false
	}
	return node.Value, true
}

// Int decodes an integer scalar.
func Int(d *Decoder, node *yaml.Node) (int, bool) {
	if node == nil || node.Kind != yaml.ScalarNode || node.ShortTag() != "!!int" {
		d.TypeMismatch(node, "integer")
		return 0, false
	}
	v, err := strconv.ParseInt(node.Value, 0, 64)
	if err != nil {
		d.AddError(validation.NewNodeError(validation.RuleValidationTypeMismatch, node, "invalid integer %q: %s", node.Value, err.Error()))
		return 0, false
	}
	return int(v), true
}

// Number decodes an integer or float scalar.
func Number(d *Decoder, node *yaml.Node) (float64, bool) {
	if node == nil || node.Kind != yaml.ScalarNode || (node.ShortTag() != "!!int" && node.ShortTag() != "!!float") {
		d.TypeMismatch(node, "number")
		return 0, false
	}
	var v float64
	if err := node.Decode(&v); err != nil {
		d.AddError(validation.NewNodeError(validation.RuleValidationTypeMismatch, node, "invalid number %q: %s", node.Value, err.Error()))
		return 0, false
	}
	return v, true
}

// Raw keeps the node itself, for values of any shape.
func Raw(_ *Decoder, node *yaml.Node) (*yaml.Node, bool) {
	return node, node != nil
}

// Pointer adapts fn to produce a pointer, nil when decoding failed.
func Pointer[V any](fn DecodeFunc[V]) DecodeFunc[*V] {
	return func(d *Decoder, node *yaml.Node) (*V, bool) {
		v, ok := fn(d, node)
		if !ok {
			return nil, false
		}
		return &v, true
	}
}

// Slice decodes a sequence whose items are decoded with fn. Items that fail to decode are dropped.
func Slice[V any](fn DecodeFunc[V]) DecodeFunc[[]V] {
	return SliceOf[[]V](fn)
}

// SliceOf is Slice for named slice types. The nodes of the kept items are recorded so a Field can map
// positions in the decoded slice back to the sequence.
func SliceOf[S ~[]V, V any](fn DecodeFunc[V]) DecodeFunc[S] {
	return func(d *Decoder, node *yaml.Node) (S, bool) {
		node = yml.ResolveAlias(node)
		if node == nil || node.Kind != yaml.SequenceNode {
			d.TypeMismatch(node, "array")
			return nil, false
		}

		out := make(S, 0, len(node.Content))
		kept := make([]*yaml.Node, 0, len(node.Content))
		for _, item := range yml.Items(node) {
			v, ok := fn(d, item)
			if ok {
				out = append(out, v)
				kept = append(kept, item)
			}
		}

		if d.items == nil {
			d.items = make(map[*yaml.Node][]*yaml.Node)
		}
		d.items[node] = kept
		return out, true
	}
}

// Map decodes a mapping whose values are decoded with fn, keeping document order.
func Map[V any](fn DecodeFunc[V]) DecodeFunc[Entries[V]] {
	return func(d *Decoder, node *yaml.Node) (Entries[V], bool) {
		node = yml.ResolveAlias(node)
		if node == nil || node.Kind != yaml.MappingNode {
			d.TypeMismatch(node, "object")
			return nil, false
		}

		out := make(Entries[V], 0, len(node.Content)/2)
		for k, v := range yml.MapPairs(node) {
			value, ok := fn(d, v)
			if !ok {
				continue
			}
			out = append(out, Entry[V]{Key: k.Value, KeyNode: k, Value: value, ValueNode: v})
		}
		return out, true
	}
}
