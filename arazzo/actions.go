package arazzo

import (
	"context"
	"fmt"
	"strings"

	"github.com/SteakFisher/arazzo-writer/arazzo/criterion"
	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/validation"
	"gopkg.in/yaml.v3"
)

// SuccessActionType is the kind of action taken when a step succeeds.
type SuccessActionType string

const (
	SuccessActionTypeEnd  SuccessActionType = "end"
	SuccessActionTypeGoto SuccessActionType = "goto"
)

// FailureActionType is the kind of action taken when a step fails.
type FailureActionType string

const (
	FailureActionTypeEnd   FailureActionType = "end"
	FailureActionTypeGoto  FailureActionType = "goto"
	FailureActionTypeRetry FailureActionType = "retry"
)

// SuccessAction describes what happens after a step succeeds.
type SuccessAction struct {
	// Name is the name of the action.
	Name string
	// Type is the type of action.
	Type SuccessActionType
	// WorkflowID is a workflowId or sourceDescriptions expression to transfer to. Only for goto.
	WorkflowID *expression.Expression
	// StepID is a step in the current workflow to transfer to. Only for goto.
	StepID *string
	// Criteria must all be met for the action to be taken.
	Criteria []*criterion.Criterion
	// Extensions holds the x- entries of the action.
	Extensions marshaller.Entries[*yaml.Node]

	core coreAction
}

// FailureAction describes what happens after a step fails.
type FailureAction struct {
	// Name is the name of the action.
	Name string
	// Type is the type of action.
	Type FailureActionType
	// WorkflowID is a workflowId or sourceDescriptions expression to transfer to. Only for goto and retry.
	WorkflowID *expression.Expression
	// StepID is a step in the current workflow to transfer to. Only for goto and retry.
	StepID *string
	// RetryAfter is the number of seconds to wait before retrying. Only for retry.
	RetryAfter *float64
	// RetryLimit is the maximum number of retries. Only for retry.
	RetryLimit *int
	// Criteria must all be met for the action to be taken.
	Criteria []*criterion.Criterion
	// Extensions holds the x- entries of the action.
	Extensions marshaller.Entries[*yaml.Node]

	core coreAction
}

type coreAction struct {
	Name       marshaller.Node[string]
	Type       marshaller.Node[string]
	WorkflowID marshaller.Node[*expression.Expression]
	StepID     marshaller.Node[*string]
	RetryAfter marshaller.Node[*float64]
	RetryLimit marshaller.Node[*int]
	Criteria   marshaller.Node[[]*criterion.Criterion]
	RootNode   *yaml.Node
}

// GetRootNode returns the node the action was decoded from.
func (s *SuccessAction) GetRootNode() *yaml.Node {
	return s.core.RootNode
}

// GetRootNode returns the node the action was decoded from.
func (f *FailureAction) GetRootNode() *yaml.Node {
	return f.core.RootNode
}

func decodeAction(d *marshaller.Decoder, node *yaml.Node, what string, retry bool) (coreAction, marshaller.Entries[*yaml.Node], bool) {
	o := d.Object(node, what)
	if !o.Valid() {
		return coreAction{}, nil, false
	}

	known := []string{"name", "type", "workflowId", "stepId", "criteria"}
	if retry {
		known = append(known, "retryAfter", "retryLimit")
	}
	o.Known(known...)

	c := coreAction{RootNode: o.Node}
	c.Name = marshaller.Field(o, "name", marshaller.String)
	c.Type = marshaller.Field(o, "type", marshaller.String)
	c.WorkflowID = marshaller.Field(o, "workflowId", marshaller.Pointer(decodeExpression))
	c.StepID = marshaller.Field(o, "stepId", marshaller.Pointer(marshaller.String))
	c.Criteria = marshaller.Field(o, "criteria", marshaller.Slice(criterion.Decode))
	if retry {
		c.RetryAfter = marshaller.Field(o, "retryAfter", marshaller.Pointer(marshaller.Number))
		c.RetryLimit = marshaller.Field(o, "retryLimit", marshaller.Pointer(marshaller.Int))
	}

	return c, o.Extensions(), true
}

func decodeSuccessAction(d *marshaller.Decoder, node *yaml.Node) (*SuccessAction, bool) {
	c, ext, ok := decodeAction(d, node, "successAction", false)
	if !ok {
		return nil, false
	}

	return &SuccessAction{
		Name:       c.Name.Value,
		Type:       SuccessActionType(c.Type.Value),
		WorkflowID: c.WorkflowID.Value,
		StepID:     c.StepID.Value,
		Criteria:   c.Criteria.Value,
		Extensions: ext,
		core:       c,
	}, true
}

func decodeFailureAction(d *marshaller.Decoder, node *yaml.Node) (*FailureAction, bool) {
	c, ext, ok := decodeAction(d, node, "failureAction", true)
	if !ok {
		return nil, false
	}

	return &FailureAction{
		Name:       c.Name.Value,
		Type:       FailureActionType(c.Type.Value),
		WorkflowID: c.WorkflowID.Value,
		StepID:     c.StepID.Value,
		RetryAfter: c.RetryAfter.Value,
		RetryLimit: c.RetryLimit.Value,
		Criteria:   c.Criteria.Value,
		Extensions: ext,
		core:       c,
	}, true
}

// Validate validates the success action against the Arazzo Specification.
// When a Workflow is passed via validation.WithContextObject() stepId targets are checked against it.
func (s *SuccessAction) Validate(_ context.Context, opts ...validation.Option) []error {
	o := validation.NewOptions(opts...)
	a := validation.GetContextObject[Arazzo](o)
	w := validation.GetContextObject[Workflow](o)

	core := s.core
	var errs []error

	if s.Name == "" {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, core.Name.GetValueNodeOrRoot(core.RootNode), "successAction.name is required"))
	}

	switch s.Type {
	case SuccessActionTypeEnd:
		errs = append(errs, forbidTargets(core, "successAction", string(s.Type))...)
	case SuccessActionTypeGoto:
		errs = append(errs, validateActionTarget(a, w, core, "successAction", true)...)
	default:
		errs = append(errs, validation.NewNodeError(validation.RuleValidationAllowedValues, core.Type.GetValueNodeOrRoot(core.RootNode), "successAction.type must be one of [%s]", strings.Join([]string{string(SuccessActionTypeEnd), string(SuccessActionTypeGoto)}, ", ")))
	}

	for _, c := range s.Criteria {
		errs = append(errs, c.Validate()...)
	}

	return errs
}

// Validate validates the failure action against the Arazzo Specification.
// When a Workflow is passed via validation.WithContextObject() stepId targets are checked against it.
func (f *FailureAction) Validate(_ context.Context, opts ...validation.Option) []error {
	o := validation.NewOptions(opts...)
	a := validation.GetContextObject[Arazzo](o)
	w := validation.GetContextObject[Workflow](o)

	core := f.core
	var errs []error

	if f.Name == "" {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, core.Name.GetValueNodeOrRoot(core.RootNode), "failureAction.name is required"))
	}

	switch f.Type {
	case FailureActionTypeEnd:
		errs = append(errs, forbidTargets(core, "failureAction", string(f.Type))...)
		errs = append(errs, forbidRetry(core, string(f.Type))...)
	case FailureActionTypeGoto:
		errs = append(errs, validateActionTarget(a, w, core, "failureAction", true)...)
		errs = append(errs, forbidRetry(core, string(f.Type))...)
	case FailureActionTypeRetry:
		errs = append(errs, validateActionTarget(a, w, core, "failureAction", false)...)
		if f.RetryAfter != nil && *f.RetryAfter < 0 {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidFormat, core.RetryAfter.GetValueNodeOrRoot(core.RootNode), "failureAction.retryAfter must be greater than or equal to 0"))
		}
		if f.RetryLimit != nil && *f.RetryLimit < 0 {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidFormat, core.RetryLimit.GetValueNodeOrRoot(core.RootNode), "failureAction.retryLimit must be greater than or equal to 0"))
		}
	default:
		errs = append(errs, validation.NewNodeError(validation.RuleValidationAllowedValues, core.Type.GetValueNodeOrRoot(core.RootNode), "failureAction.type must be one of [%s]", strings.Join([]string{string(FailureActionTypeEnd), string(FailureActionTypeGoto), string(FailureActionTypeRetry)}, ", ")))
	}

	for _, c := range f.Criteria {
		errs = append(errs, c.Validate()...)
	}

	return errs
}

func forbidTargets(core coreAction, what, typ string) []error {
	var errs []error
	if core.WorkflowID.Present {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationMutuallyExclusiveFields, core.WorkflowID.KeyNode, "%s.workflowId is not allowed when type: %s is specified", what, typ))
	}
	if core.StepID.Present {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationMutuallyExclusiveFields, core.StepID.KeyNode, "%s.stepId is not allowed when type: %s is specified", what, typ))
	}
	return errs
}

func forbidRetry(core coreAction, typ string) []error {
	var errs []error
	if core.RetryAfter.Present {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationMutuallyExclusiveFields, core.RetryAfter.KeyNode, "failureAction.retryAfter is not allowed when type: %s is specified", typ))
	}
	if core.RetryLimit.Present {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationMutuallyExclusiveFields, core.RetryLimit.KeyNode, "failureAction.retryLimit is not allowed when type: %s is specified", typ))
	}
	return errs
}

// validateActionTarget checks the workflowId/stepId pair of a goto or retry action.
// goto requires exactly one of them, retry allows at most one.
func validateActionTarget(a *Arazzo, w *Workflow, core coreAction, what string, required bool) []error {
	workflowID := core.WorkflowID.Value
	stepID := core.StepID.Value

	switch {
	case workflowID != nil && stepID != nil:
		return []error{validation.NewNodeError(validation.RuleValidationMutuallyExclusiveFields, core.RootNode, "%s workflowId and stepId are mutually exclusive, only one can be specified", what)}
	case workflowID == nil && stepID == nil:
		if required {
			return []error{validation.NewNodeError(validation.RuleValidationRequiredField, core.RootNode, "%s workflowId or stepId is required when type: goto is specified", what)}
		}
		return nil
	}

	if stepID != nil {
		if w != nil && w.Steps.Find(*stepID) == nil {
			return []error{validation.NewNodeError(validation.RuleValidationInvalidTarget, core.StepID.ValueNode, "%s.stepId %s does not exist in workflow %s", what, *stepID, w.WorkflowID)}
		}
		return nil
	}

	node := core.WorkflowID.ValueNode
	if workflowID.IsExpression() {
		if err := workflowID.Validate(); err != nil {
			return []error{validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidExpression, err, node)}
		}
		typ, sourceDescriptionName, _, _ := workflowID.GetParts()
		if typ != expression.ExpressionTypeSourceDescriptions {
			return []error{validation.NewNodeError(validation.RuleValidationInvalidTarget, node, "%s.workflowId must be a sourceDescriptions expression, got %s", what, typ)}
		}
		if a != nil && a.SourceDescriptions.Find(sourceDescriptionName) == nil {
			return []error{validation.NewNodeError(validation.RuleValidationInvalidTarget, node, "%s.workflowId sourceDescription %s not found", what, sourceDescriptionName)}
		}
		return nil
	}

	if a != nil && a.Workflows.Find(string(*workflowID)) == nil {
		return []error{validation.NewNodeError(validation.RuleValidationInvalidTarget, node, "%s.workflowId workflow %s not found", what, *workflowID)}
	}
	return nil
}

func validateSuccessActions(ctx context.Context, actions []*ReusableSuccessAction, field marshaller.Node[[]*ReusableSuccessAction], rootNode *yaml.Node, opts ...validation.Option) []error {
	o := validation.NewOptions(opts...)
	a := validation.GetContextObject[Arazzo](o)

	var errs []error
	seen := make(map[string]bool)

	for i, action := range actions {
		errs = append(errs, action.validate(a, expression.ComponentsSuccessActions, false)...)
		if action.Object != nil {
			errs = append(errs, action.Object.Validate(ctx, opts...)...)
		}

		id := actionIdentity(action.Reference, action.Object, func(s *SuccessAction) string { return fmt.Sprintf("%s.%s", s.Name, s.Type) })
		if id == "" {
			continue
		}
		if seen[id] {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationDuplicateKey, field.GetSliceValueNodeOrRoot(i, rootNode), "duplicate successAction found: %s", id))
		}
		seen[id] = true
	}

	return errs
}

func validateFailureActions(ctx context.Context, actions []*ReusableFailureAction, field marshaller.Node[[]*ReusableFailureAction], rootNode *yaml.Node, opts ...validation.Option) []error {
	o := validation.NewOptions(opts...)
	a := validation.GetContextObject[Arazzo](o)

	var errs []error
	seen := make(map[string]bool)

	for i, action := range actions {
		errs = append(errs, action.validate(a, expression.ComponentsFailureActions, false)...)
		if action.Object != nil {
			errs = append(errs, action.Object.Validate(ctx, opts...)...)
		}

		id := actionIdentity(action.Reference, action.Object, func(f *FailureAction) string { return fmt.Sprintf("%s.%s", f.Name, f.Type) })
		if id == "" {
			continue
		}
		if seen[id] {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationDuplicateKey, field.GetSliceValueNodeOrRoot(i, rootNode), "duplicate failureAction found: %s", id))
		}
		seen[id] = true
	}

	return errs
}

func actionIdentity[T any](ref *expression.Expression, obj *T, id func(*T) string) string {
	switch {
	case ref != nil:
		return string(*ref)
	case obj != nil:
		return id(obj)
	default:
		return ""
	}
}
