package arazzo

import (
	"context"
	"fmt"
	"strings"

	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/validation"
	"gopkg.in/yaml.v3"
)

// In is the location of a parameter.
type In string

const (
	// InPath indicates that the parameter is in the path of the request.
	InPath In = "path"
	// InQuery indicates that the parameter is in the query of the request.
	InQuery In = "query"
	// InHeader indicates that the parameter is in the header of the request.
	InHeader In = "header"
	// InCookie indicates that the parameter is in the cookie of the request.
	InCookie In = "cookie"
)

var parameterLocations = []string{string(InPath), string(InQuery), string(InHeader), string(InCookie)}

// Parameter is passed to the operation or workflow a step calls.
type Parameter struct {
	// Name is the case sensitive name of the parameter.
	Name string
	// In is the location of the parameter within an operation.
	In *In
	// Value is a literal value or a runtime expression.
	Value *yaml.Node
	// Extensions holds the x- entries of the parameter.
	Extensions marshaller.Entries[*yaml.Node]

	core coreParameter
}

type coreParameter struct {
	Name     marshaller.Node[string]
	In       marshaller.Node[*string]
	Value    marshaller.Node[*yaml.Node]
	RootNode *yaml.Node
}

func decodeParameter(d *marshaller.Decoder, node *yaml.Node) (*Parameter, bool) {
	o := d.Object(node, "parameter")
	if !o.Valid() {
		return nil, false
	}
	o.Known("name", "in", "value")

	p := &Parameter{}
	p.core.RootNode = o.Node
	p.core.Name = marshaller.Field(o, "name", marshaller.String)
	p.core.In = marshaller.Field(o, "in", marshaller.Pointer(marshaller.String))
	p.core.Value = marshaller.Field(o, "value", marshaller.Raw)
	p.Name = p.core.Name.Value
	if p.core.In.Value != nil {
		in := In(*p.core.In.Value)
		p.In = &in
	}
	p.Value = p.core.Value.Value
	p.Extensions = o.Extensions()

	return p, true
}

// Validate validates the parameter against the Arazzo Specification.
// When a Step is passed via validation.WithContextObject() the parameter is validated as belonging to it.
func (p *Parameter) Validate(_ context.Context, opts ...validation.Option) []error {
	o := validation.NewOptions(opts...)
	s := validation.GetContextObject[Step](o)

	core := p.core
	var errs []error

	if p.Name == "" {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, core.Name.GetValueNodeOrRoot(core.RootNode), "parameter.name is required"))
	}

	inNode := core.In.GetValueNodeOrRoot(core.RootNode)
	switch {
	case p.In == nil:
		if s != nil && s.WorkflowID == nil {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, inNode, "parameter.in is required within a step when workflowId is not set"))
		}
	case !isParameterLocation(*p.In):
		errs = append(errs, validation.NewNodeError(validation.RuleValidationAllowedValues, inNode, "parameter.in must be one of [%s] but was %s", strings.Join(parameterLocations, ", "), *p.In))
	}

	if !core.Value.Present {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, core.RootNode, "parameter.value is required"))
	} else {
		errs = append(errs, validateValue(p.Value)...)
	}

	return errs
}

func isParameterLocation(in In) bool {
	for _, l := range parameterLocations {
		if string(in) == l {
			return true
		}
	}
	return false
}

func validateParameters(ctx context.Context, params []*ReusableParameter, field marshaller.Node[[]*ReusableParameter], rootNode *yaml.Node, opts ...validation.Option) []error {
	o := validation.NewOptions(opts...)
	a := validation.GetContextObject[Arazzo](o)

	var errs []error
	seen := make(map[string]bool)

	for i, param := range params {
		node := field.GetSliceValueNodeOrRoot(i, rootNode)

		errs = append(errs, param.validate(a, expression.ComponentsParameters, true)...)
		if param.Object != nil {
			errs = append(errs, param.Object.Validate(ctx, opts...)...)
		}

		var resolved *Parameter
		if a != nil && a.Components != nil {
			resolved = param.GetObject(a.Components.Parameters)
		} else {
			resolved = param.Object
		}
		if resolved == nil {
			continue
		}

		in := ""
		if resolved.In != nil {
			in = string(*resolved.In)
		}
		id := fmt.Sprintf("%s.%s", resolved.Name, in)
		if seen[id] {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationDuplicateKey, node, "duplicate parameter found with name %s and in %s", resolved.Name, in))
		}
		seen[id] = true
	}

	return errs
}
