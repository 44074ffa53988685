package arazzo

import (
	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/validation"
	"github.com/SteakFisher/arazzo-writer/yml"
	"gopkg.in/yaml.v3"
)

// Reusable is either an inline object or a reference to one defined under components.
type Reusable[T any] struct {
	// Reference is a $components.<kind>.<name> expression.
	Reference *expression.Expression
	// Value overrides the value of a referenced parameter.
	Value *yaml.Node
	// Object is the inline object when no reference is used.
	Object *T

	core coreReusable
}

type coreReusable struct {
	Reference marshaller.Node[*expression.Expression]
	Value     marshaller.Node[*yaml.Node]
	RootNode  *yaml.Node
}

type (
	ReusableParameter     = Reusable[Parameter]
	ReusableSuccessAction = Reusable[SuccessAction]
	ReusableFailureAction = Reusable[FailureAction]
)

// IsReference reports whether the reusable points at a component.
func (r *Reusable[T]) IsReference() bool {
	return r.Reference != nil
}

// GetObject returns the inline object, or the component the reference resolves to in components.
func (r *Reusable[T]) GetObject(components marshaller.Entries[*T]) *T {
	if r.Object != nil || r.Reference == nil {
		return r.Object
	}

	typ, _, parts, _ := r.Reference.GetParts()
	if typ != expression.ExpressionTypeComponents || len(parts) != 1 {
		return nil
	}

	entry, ok := components.Get(parts[0])
	if !ok {
		return nil
	}
	return entry.Value
}

func decodeReusable[T any](decodeObject marshaller.DecodeFunc[*T]) marshaller.DecodeFunc[*Reusable[T]] {
	return func(d *marshaller.Decoder, node *yaml.Node) (*Reusable[T], bool) {
		node = yml.ResolveAlias(node)

		if _, _, isRef := yml.GetMapElement(node, "reference"); !isRef {
			obj, ok := decodeObject(d, node)
			if !ok {
				return nil, false
			}
			return &Reusable[T]{Object: obj, core: coreReusable{RootNode: node}}, true
		}

		o := d.Object(node, "reusable object")
		o.Known("reference", "value")

		r := &Reusable[T]{}
		r.core.RootNode = o.Node
		r.core.Reference = marshaller.Field(o, "reference", marshaller.Pointer(decodeExpression))
		r.core.Value = marshaller.Field(o, "value", marshaller.Raw)
		r.Reference = r.core.Reference.Value
		r.Value = r.core.Value.Value

		return r, true
	}
}

var (
	decodeReusableParameter     = decodeReusable(decodeParameter)
	decodeReusableSuccessAction = decodeReusable(decodeSuccessAction)
	decodeReusableFailureAction = decodeReusable(decodeFailureAction)
)

// validate checks the reference form of the reusable. kind is the components section it must point into.
func (r *Reusable[T]) validate(a *Arazzo, kind string, allowValue bool) []error {
	if r.Reference == nil {
		return nil
	}

	core := r.core
	node := core.Reference.GetValueNodeOrRoot(core.RootNode)
	var errs []error

	if core.Value.Present {
		if !allowValue {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationMutuallyExclusiveFields, core.Value.GetKeyNodeOrRoot(core.RootNode), "reusable.value is only allowed when referencing a parameter"))
		} else {
			errs = append(errs, validateValue(r.Value)...)
		}
	}

	if err := r.Reference.Validate(); err != nil {
		return append(errs, validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidExpression, err, node))
	}

	typ, reference, parts, _ := r.Reference.GetParts()
	if typ != expression.ExpressionTypeComponents || reference != kind {
		return append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, node, "reusable.reference must be a $components.%s.<name> expression: %s", kind, *r.Reference))
	}

	if a != nil && !a.Components.has(kind, parts[0]) {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, node, "reusable.reference component %s.%s not found", kind, parts[0]))
	}

	return errs
}
