// Package criterion models the success and failure criteria of Arazzo steps and evaluates them
// against a captured request/response.
package criterion

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/validation"
	"github.com/SteakFisher/arazzo-writer/yml"
	"github.com/speakeasy-api/jsonpath/pkg/jsonpath"
	"github.com/vmware-labs/yaml-jsonpath/pkg/yamlpath"
	"gopkg.in/yaml.v3"
)

// ErrUnsupported is returned when a criterion cannot be evaluated locally.
const ErrUnsupported = errors.Error("criterion type is not supported for evaluation")

// CriterionType represents the type of criterion.
type CriterionType string

const (
	// CriterionTypeSimple indicates that the criterion represents a simple condition to be evaluated.
	CriterionTypeSimple CriterionType = "simple"
	// CriterionTypeRegex indicates that the criterion represents a regular expression to be evaluated.
	CriterionTypeRegex CriterionType = "regex"
	// CriterionTypeJsonPath indicates that the criterion represents a JSONPath expression to be evaluated.
	CriterionTypeJsonPath CriterionType = "jsonpath"
	// CriterionTypeXPath indicates that the criterion represents an XPath expression to be evaluated.
	CriterionTypeXPath CriterionType = "xpath"
)

var criterionTypes = []string{string(CriterionTypeSimple), string(CriterionTypeRegex), string(CriterionTypeJsonPath), string(CriterionTypeXPath)}

// CriterionTypeVersion represents the version of the criterion type.
type CriterionTypeVersion string

const (
	CriterionTypeVersionNone                            CriterionTypeVersion = ""
	CriterionTypeVersionDraftGoessnerDispatchJsonPath00 CriterionTypeVersion = "draft-goessner-dispatch-jsonpath-00"
	CriterionTypeVersionXPath30                         CriterionTypeVersion = "xpath-30"
	CriterionTypeVersionXPath20                         CriterionTypeVersion = "xpath-20"
	CriterionTypeVersionXPath10                         CriterionTypeVersion = "xpath-10"
)

// CriterionExpressionType is the object form of a criterion type, pinning the expression language version.
type CriterionExpressionType struct {
	Type    CriterionType
	Version CriterionTypeVersion

	typeNode    marshaller.Node[string]
	versionNode marshaller.Node[string]
	rootNode    *yaml.Node
}

// Validate checks the type/version pairing.
func (c *CriterionExpressionType) Validate() []error {
	var errs []error

	switch c.Type {
	case CriterionTypeJsonPath:
		if c.Version != CriterionTypeVersionDraftGoessnerDispatchJsonPath00 {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationAllowedValues, c.versionNode.GetValueNodeOrRoot(c.rootNode), "version must be one of [%s]", CriterionTypeVersionDraftGoessnerDispatchJsonPath00))
		}
	case CriterionTypeXPath:
		switch c.Version {
		case CriterionTypeVersionXPath30, CriterionTypeVersionXPath20, CriterionTypeVersionXPath10:
		default:
			errs = append(errs, validation.NewNodeError(validation.RuleValidationAllowedValues, c.versionNode.GetValueNodeOrRoot(c.rootNode), "version must be one of [%s]", strings.Join([]string{string(CriterionTypeVersionXPath30), string(CriterionTypeVersionXPath20), string(CriterionTypeVersionXPath10)}, ", ")))
		}
	default:
		errs = append(errs, validation.NewNodeError(validation.RuleValidationAllowedValues, c.typeNode.GetValueNodeOrRoot(c.rootNode), "type must be one of [%s]", strings.Join([]string{string(CriterionTypeJsonPath), string(CriterionTypeXPath)}, ", ")))
	}

	return errs
}

// CriterionTypeUnion holds either a plain criterion type or an expression type object.
type CriterionTypeUnion struct {
	Type           *CriterionType
	ExpressionType *CriterionExpressionType
}

// IsTypeProvided reports whether a type was set.
func (c CriterionTypeUnion) IsTypeProvided() bool {
	return (c.Type != nil && *c.Type != "") || (c.ExpressionType != nil && c.ExpressionType.Type != "")
}

// GetType returns the type of the criterion, defaulting to simple.
func (c CriterionTypeUnion) GetType() CriterionType {
	switch {
	case c.Type != nil:
		return *c.Type
	case c.ExpressionType != nil:
		return c.ExpressionType.Type
	default:
		return CriterionTypeSimple
	}
}

// GetVersion returns the version of the criterion type, if any.
func (c CriterionTypeUnion) GetVersion() CriterionTypeVersion {
	if c.ExpressionType == nil {
		return CriterionTypeVersionNone
	}
	return c.ExpressionType.Version
}

// Criterion is an assertion evaluated for a step.
type Criterion struct {
	// Context is the expression to the value to be evaluated. Required when Type is set.
	Context *expression.Expression
	// Condition is the condition to be evaluated.
	Condition string
	// Type is the type of criterion. Defaults to CriterionTypeSimple.
	Type CriterionTypeUnion
	// Extensions holds the x- entries of the criterion.
	Extensions marshaller.Entries[*yaml.Node]

	core coreCriterion
}

type coreCriterion struct {
	Context   marshaller.Node[*string]
	Condition marshaller.Node[string]
	Type      marshaller.Node[*yaml.Node]
	RootNode  *yaml.Node
}

// GetRootNode returns the node the criterion was decoded from.
func (c *Criterion) GetRootNode() *yaml.Node {
	return c.core.RootNode
}

// GetContextNode returns the node holding the context, or the root node when absent.
func (c *Criterion) GetContextNode() *yaml.Node {
	return c.core.Context.GetValueNodeOrRoot(c.core.RootNode)
}

// GetConditionNode returns the node holding the condition, or the root node when absent.
func (c *Criterion) GetConditionNode() *yaml.Node {
	return c.core.Condition.GetValueNodeOrRoot(c.core.RootNode)
}

// Decode decodes a criterion object from node.
func Decode(d *marshaller.Decoder, node *yaml.Node) (*Criterion, bool) {
	o := d.Object(node, "criterion")
	if !o.Valid() {
		return nil, false
	}

	o.Known("context", "condition", "type")

	c := &Criterion{}
	c.core.RootNode = o.Node
	c.core.Context = marshaller.Field(o, "context", marshaller.Pointer(marshaller.String))
	c.core.Condition = marshaller.Field(o, "condition", marshaller.String)
	c.core.Type = marshaller.Field(o, "type", marshaller.Raw)
	c.Extensions = o.Extensions()

	if c.core.Context.Value != nil {
		ctx := expression.Expression(*c.core.Context.Value)
		c.Context = &ctx
	}
	c.Condition = c.core.Condition.Value

	if c.core.Type.Present {
		c.Type = decodeTypeUnion(d, yml.ResolveAlias(c.core.Type.Value))
	}

	return c, true
}

func decodeTypeUnion(d *marshaller.Decoder, node *yaml.Node) CriterionTypeUnion {
	if node == nil {
		return CriterionTypeUnion{}
	}

	if node.Kind == yaml.MappingNode {
		o := d.Object(node, "criterion expression type")
		o.Known("type", "version")
		et := &CriterionExpressionType{rootNode: o.Node}
		et.typeNode = marshaller.Field(o, "type", marshaller.String)
		et.versionNode = marshaller.Field(o, "version", marshaller.String)
		et.Type = CriterionType(et.typeNode.Value)
		et.Version = CriterionTypeVersion(et.versionNode.Value)
		return CriterionTypeUnion{ExpressionType: et}
	}

	s, ok := marshaller.String(d, node)
	if !ok {
		return CriterionTypeUnion{}
	}
	typ := CriterionType(s)
	return CriterionTypeUnion{Type: &typ}
}

// GetCondition returns the condition parsed as a simple condition.
func (c *Criterion) GetCondition() (*Condition, error) {
	return ParseCondition(c.Condition)
}

// Validate validates the criterion object against the Arazzo specification.
func (c *Criterion) Validate() []error {
	core := c.core
	var errs []error

	if c.Condition == "" {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, core.Condition.GetValueNodeOrRoot(core.RootNode), "condition is required"))
	}

	typeNode := core.Type.GetValueNodeOrRoot(core.RootNode)
	if c.Type.Type != nil {
		switch *c.Type.Type {
		case CriterionTypeSimple, CriterionTypeRegex, CriterionTypeJsonPath, CriterionTypeXPath:
		default:
			errs = append(errs, validation.NewNodeError(validation.RuleValidationAllowedValues, typeNode, "type must be one of [%s]", strings.Join(criterionTypes, ", ")))
		}
	} else if c.Type.ExpressionType != nil {
		errs = append(errs, c.Type.ExpressionType.Validate()...)
	}

	if c.Type.IsTypeProvided() && c.Context == nil {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, core.Context.GetValueNodeOrRoot(core.RootNode), "context is required, if type is set"))
	}

	if c.Context != nil {
		if err := c.Context.Validate(); err != nil {
			errs = append(errs, validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidExpression, err, core.Context.GetValueNodeOrRoot(core.RootNode)))
		}
	}

	if c.Condition != "" {
		errs = append(errs, c.validateCondition()...)
	}

	return errs
}

func (c *Criterion) validateCondition() []error {
	node := c.GetConditionNode()
	var errs []error

	switch c.Type.GetType() {
	case CriterionTypeSimple:
		cond, err := ParseCondition(c.Condition)
		if err != nil {
			if c.Context == nil {
				errs = append(errs, validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidSyntax, err, node))
			}
			return errs
		}
		for _, err := range cond.Validate() {
			errs = append(errs, validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidExpression, err, node))
		}
	case CriterionTypeRegex:
		if _, err := regexp.Compile(c.Condition); err != nil {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidSyntax, node, "invalid regex expression: %s", err.Error()))
		}
	case CriterionTypeJsonPath:
		if c.Type.GetVersion() == CriterionTypeVersionDraftGoessnerDispatchJsonPath00 {
			if _, err := yamlpath.NewPath(c.Condition); err != nil {
				errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidSyntax, node, "invalid jsonpath expression: %s", err.Error()))
			}
		} else if _, err := jsonpath.NewPath(c.Condition); err != nil {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidSyntax, node, "invalid jsonpath expression: %s", err.Error()))
		}
	case CriterionTypeXPath:
		errs = append(errs, validation.NewValidationError(validation.SeverityHint, validation.RuleValidationInvalidSyntax, fmt.Errorf("xpath conditions are not checked locally"), node))
	}

	return errs
}

// Evaluate evaluates the criterion against r.
func (c *Criterion) Evaluate(ctx context.Context, r *Runtime) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if r == nil {
		r = &Runtime{}
	}

	switch c.Type.GetType() {
	case CriterionTypeSimple:
		cond, err := ParseCondition(c.Condition)
		if err != nil {
			return false, fmt.Errorf("parsing condition: %w", err)
		}
		return cond.Evaluate(r)
	case CriterionTypeRegex:
		if c.Context == nil {
			return false, fmt.Errorf("regex criterion requires a context")
		}
		value, err := r.Resolve(*c.Context)
		if err != nil {
			return false, err
		}
		re, err := regexp.Compile(c.Condition)
		if err != nil {
			return false, fmt.Errorf("invalid regex expression: %w", err)
		}
		return re.MatchString(stringify(value)), nil
	case CriterionTypeJsonPath:
		if c.Context == nil {
			return false, fmt.Errorf("jsonpath criterion requires a context")
		}
		node, err := r.ResolveNode(*c.Context)
		if err != nil {
			return false, err
		}
		return c.evaluateJSONPath(node)
	default:
		return false, ErrUnsupported.Wrapf("%s", c.Type.GetType())
	}
}

func (c *Criterion) evaluateJSONPath(node *yaml.Node) (bool, error) {
	if c.Type.GetVersion() == CriterionTypeVersionDraftGoessnerDispatchJsonPath00 {
		p, err := yamlpath.NewPath(c.Condition)
		if err != nil {
			return false, fmt.Errorf("invalid jsonpath expression: %w", err)
		}
		found, err := p.Find(node)
		if err != nil {
			return false, fmt.Errorf("evaluating jsonpath expression: %w", err)
		}
		return len(found) > 0, nil
	}

	p, err := jsonpath.NewPath(c.Condition)
	if err != nil {
		return false, fmt.Errorf("invalid jsonpath expression: %w", err)
	}
	return len(p.Query(node)) > 0, nil
}
