package arazzo

import (
	"context"

	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/validation"
	"gopkg.in/yaml.v3"
)

// Components holds reusable objects that can be referenced from workflows and steps.
type Components struct {
	// Inputs holds JSON Schemas that can be referenced from workflow inputs.
	Inputs marshaller.Entries[*yaml.Node]
	// Parameters holds parameters referenced with $components.parameters.<name>.
	Parameters marshaller.Entries[*Parameter]
	// SuccessActions holds actions referenced with $components.successActions.<name>.
	SuccessActions marshaller.Entries[*SuccessAction]
	// FailureActions holds actions referenced with $components.failureActions.<name>.
	FailureActions marshaller.Entries[*FailureAction]
	// Extensions holds the x- entries of the components object.
	Extensions marshaller.Entries[*yaml.Node]
}

func decodeComponents(d *marshaller.Decoder, node *yaml.Node) (*Components, bool) {
	o := d.Object(node, "components")
	if !o.Valid() {
		return nil, false
	}
	o.Known("inputs", "parameters", "successActions", "failureActions")

	return &Components{
		Inputs:         marshaller.Field(o, "inputs", marshaller.Map(marshaller.Raw)).Value,
		Parameters:     marshaller.Field(o, "parameters", marshaller.Map(decodeParameter)).Value,
		SuccessActions: marshaller.Field(o, "successActions", marshaller.Map(decodeSuccessAction)).Value,
		FailureActions: marshaller.Field(o, "failureActions", marshaller.Map(decodeFailureAction)).Value,
		Extensions:     o.Extensions(),
	}, true
}

// has reports whether a component of the given kind and name exists. Safe to call on nil.
func (c *Components) has(kind, name string) bool {
	if c == nil {
		return false
	}

	var ok bool
	switch kind {
	case expression.ComponentsParameters:
		_, ok = c.Parameters.Get(name)
	case expression.ComponentsSuccessActions:
		_, ok = c.SuccessActions.Get(name)
	case expression.ComponentsFailureActions:
		_, ok = c.FailureActions.Get(name)
	case expression.ComponentsInputs:
		_, ok = c.Inputs.Get(name)
	}
	return ok
}

// Validate validates the components object against the Arazzo Specification.
func (c *Components) Validate(ctx context.Context, opts ...validation.Option) []error {
	var errs []error

	checkKey := func(key string, node *yaml.Node) {
		if !componentNameRegex.MatchString(key) {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidFormat, node, "components key must be a valid name [%s]: %s", componentNameRegex.String(), key))
		}
	}

	for _, input := range c.Inputs {
		checkKey(input.Key, input.KeyNode)
		if input.Value == nil || input.Value.Kind != yaml.MappingNode {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationTypeMismatch, input.ValueNode, "components.inputs.%s must be a JSON Schema object", input.Key))
		}
	}

	for _, param := range c.Parameters {
		checkKey(param.Key, param.KeyNode)
		errs = append(errs, param.Value.Validate(ctx, opts...)...)
	}

	for _, action := range c.SuccessActions {
		checkKey(action.Key, action.KeyNode)
		errs = append(errs, action.Value.Validate(ctx, opts...)...)
	}

	for _, action := range c.FailureActions {
		checkKey(action.Key, action.KeyNode)
		errs = append(errs, action.Value.Validate(ctx, opts...)...)
	}

	return errs
}
