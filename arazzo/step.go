package arazzo

import (
	"context"
	"errors"

	"github.com/SteakFisher/arazzo-writer/arazzo/criterion"
	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/validation"
	"gopkg.in/yaml.v3"
)

// Steps is the ordered list of steps of a workflow.
type Steps []*Step

// Find returns the step with the given id, or nil.
func (s Steps) Find(id string) *Step {
	for _, step := range s {
		if step.StepID == id {
			return step
		}
	}
	return nil
}

// Step describes a single operation or workflow call within a workflow.
type Step struct {
	// StepID is the identifier of the step, unique within its workflow.
	StepID string
	// Description is a description of the step.
	Description *string
	// OperationID is an operationId or expression to an operation in a source description. Mutually exclusive with OperationPath & WorkflowID.
	OperationID *expression.Expression
	// OperationPath is an expression to an operation path in a source description. Mutually exclusive with OperationID & WorkflowID.
	OperationPath *expression.Expression
	// WorkflowID is a workflowId or expression to a workflow in a source description. Mutually exclusive with OperationID & OperationPath.
	WorkflowID *expression.Expression
	// Parameters are passed to the referenced operation or workflow, overriding workflow level parameters.
	Parameters []*ReusableParameter
	// RequestBody is the request body passed to the referenced operation.
	RequestBody *RequestBody
	// SuccessCriteria must all be met for the step to be considered successful.
	SuccessCriteria []*criterion.Criterion
	// OnSuccess lists the actions taken when the step succeeds.
	OnSuccess []*ReusableSuccessAction
	// OnFailure lists the actions taken when the step fails.
	OnFailure []*ReusableFailureAction
	// Outputs maps output names to the expressions producing them.
	Outputs Outputs
	// Extensions holds the x- entries of the step.
	Extensions marshaller.Entries[*yaml.Node]

	core coreStep
}

type coreStep struct {
	StepID          marshaller.Node[string]
	OperationID     marshaller.Node[*expression.Expression]
	OperationPath   marshaller.Node[*expression.Expression]
	WorkflowID      marshaller.Node[*expression.Expression]
	Parameters      marshaller.Node[[]*ReusableParameter]
	RequestBody     marshaller.Node[*RequestBody]
	SuccessCriteria marshaller.Node[[]*criterion.Criterion]
	OnSuccess       marshaller.Node[[]*ReusableSuccessAction]
	OnFailure       marshaller.Node[[]*ReusableFailureAction]
	Outputs         marshaller.Node[Outputs]
	RootNode        *yaml.Node
}

// GetRootNode returns the node the step was decoded from.
func (s *Step) GetRootNode() *yaml.Node {
	return s.core.RootNode
}

// Target returns the operationId, operationPath or workflowId the step calls, whichever is set.
func (s *Step) Target() string {
	switch {
	case s.OperationID != nil:
		return string(*s.OperationID)
	case s.OperationPath != nil:
		return string(*s.OperationPath)
	case s.WorkflowID != nil:
		return string(*s.WorkflowID)
	default:
		return ""
	}
}

func decodeStep(d *marshaller.Decoder, node *yaml.Node) (*Step, bool) {
	o := d.Object(node, "step")
	if !o.Valid() {
		return nil, false
	}
	o.Known("stepId", "description", "operationId", "operationPath", "workflowId", "parameters", "requestBody", "successCriteria", "onSuccess", "onFailure", "outputs")

	s := &Step{}
	s.core.RootNode = o.Node
	s.core.StepID = marshaller.Field(o, "stepId", marshaller.String)
	s.core.OperationID = marshaller.Field(o, "operationId", marshaller.Pointer(decodeExpression))
	s.core.OperationPath = marshaller.Field(o, "operationPath", marshaller.Pointer(decodeExpression))
	s.core.WorkflowID = marshaller.Field(o, "workflowId", marshaller.Pointer(decodeExpression))
	s.core.Parameters = marshaller.Field(o, "parameters", marshaller.Slice(decodeReusableParameter))
	s.core.RequestBody = marshaller.Field(o, "requestBody", decodeRequestBody)
	s.core.SuccessCriteria = marshaller.Field(o, "successCriteria", marshaller.Slice(criterion.Decode))
	s.core.OnSuccess = marshaller.Field(o, "onSuccess", marshaller.Slice(decodeReusableSuccessAction))
	s.core.OnFailure = marshaller.Field(o, "onFailure", marshaller.Slice(decodeReusableFailureAction))
	s.core.Outputs = marshaller.Field(o, "outputs", marshaller.Map(decodeExpression))

	s.StepID = s.core.StepID.Value
	s.Description = marshaller.Field(o, "description", marshaller.Pointer(marshaller.String)).Value
	s.OperationID = s.core.OperationID.Value
	s.OperationPath = s.core.OperationPath.Value
	s.WorkflowID = s.core.WorkflowID.Value
	s.Parameters = s.core.Parameters.Value
	s.RequestBody = s.core.RequestBody.Value
	s.SuccessCriteria = s.core.SuccessCriteria.Value
	s.OnSuccess = s.core.OnSuccess.Value
	s.OnFailure = s.core.OnFailure.Value
	s.Outputs = s.core.Outputs.Value
	s.Extensions = o.Extensions()

	return s, true
}

// Validate validates the step against the Arazzo Specification.
// Requires Arazzo and Workflow objects to be passed via validation options with validation.WithContextObject().
func (s *Step) Validate(ctx context.Context, opts ...validation.Option) []error {
	o := validation.NewOptions(opts...)

	a := validation.GetContextObject[Arazzo](o)
	w := validation.GetContextObject[Workflow](o)

	if a == nil {
		return []error{errors.New("an Arazzo object must be passed via validation options to validate a Step")}
	}
	if w == nil {
		return []error{errors.New("a Workflow object must be passed via validation options to validate a Step")}
	}

	opts = append(opts, validation.WithContextObject(s))

	core := s.core
	var errs []error

	idNode := core.StepID.GetValueNodeOrRoot(core.RootNode)
	if s.StepID == "" {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, idNode, "step.stepId is required"))
	} else if !nameRegex.MatchString(s.StepID) {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidFormat, idNode, "step.stepId must be a valid name [%s]: %s", nameRegex.String(), s.StepID))
	}

	numSet := 0
	for _, target := range []*expression.Expression{s.OperationID, s.OperationPath, s.WorkflowID} {
		if target != nil {
			numSet++
		}
	}
	switch numSet {
	case 0:
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, core.RootNode, "step at least one of operationId, operationPath or workflowId must be set"))
	case 1:
	default:
		errs = append(errs, validation.NewNodeError(validation.RuleValidationMutuallyExclusiveFields, core.RootNode, "step only one of operationId, operationPath or workflowId can be set"))
	}

	if s.OperationID != nil {
		errs = append(errs, s.validateOperationID(a)...)
	}
	if s.OperationPath != nil {
		errs = append(errs, s.validateOperationPath(a)...)
	}
	if s.WorkflowID != nil {
		errs = append(errs, s.validateWorkflowID(a, w)...)
	}

	errs = append(errs, validateParameters(ctx, s.Parameters, core.Parameters, core.RootNode, opts...)...)

	if s.RequestBody != nil {
		if s.WorkflowID != nil {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationMutuallyExclusiveFields, core.RequestBody.GetKeyNodeOrRoot(core.RootNode), "step.requestBody should not be set when workflowId is set"))
		}
		errs = append(errs, s.RequestBody.Validate()...)
	}

	for _, c := range s.SuccessCriteria {
		errs = append(errs, c.Validate()...)
	}

	errs = append(errs, validateSuccessActions(ctx, s.OnSuccess, core.OnSuccess, core.RootNode, opts...)...)
	errs = append(errs, validateFailureActions(ctx, s.OnFailure, core.OnFailure, core.RootNode, opts...)...)
	errs = append(errs, validateOutputs(s.Outputs)...)

	errs = append(errs, checkReferences(a, w, s.expressions())...)

	return errs
}

// expressions returns the runtime expressions used by the step's parameters, request body, criteria and outputs.
func (s *Step) expressions() []locatedExpression {
	var exprs []locatedExpression

	for _, p := range s.Parameters {
		if p.Object != nil {
			exprs = append(exprs, expressionsIn(p.Object.Value)...)
		}
		exprs = append(exprs, expressionsIn(p.Value)...)
	}

	if s.RequestBody != nil {
		exprs = append(exprs, expressionsIn(s.RequestBody.Payload)...)
		for _, r := range s.RequestBody.Replacements {
			exprs = append(exprs, expressionsIn(r.Value)...)
		}
	}

	for _, c := range s.SuccessCriteria {
		if c.Context != nil {
			exprs = append(exprs, locatedExpression{Expression: *c.Context, Node: c.GetContextNode()})
		}
		if c.Type.GetType() != criterion.CriterionTypeSimple {
			continue
		}
		if cond, err := c.GetCondition(); err == nil {
			for _, e := range cond.Expressions() {
				exprs = append(exprs, locatedExpression{Expression: e, Node: c.GetConditionNode()})
			}
		}
	}

	for _, output := range s.Outputs {
		exprs = append(exprs, locatedExpression{Expression: output.Value, Node: output.ValueNode})
	}

	return exprs
}

func (s *Step) validateOperationID(a *Arazzo) []error {
	node := s.core.OperationID.GetValueNodeOrRoot(s.core.RootNode)
	var errs []error

	numOpenAPISourceDescriptions := 0
	for _, sd := range a.SourceDescriptions {
		if sd.Type == SourceDescriptionTypeOpenAPI {
			numOpenAPISourceDescriptions++
		}
	}

	if !s.OperationID.IsExpression() {
		if numOpenAPISourceDescriptions > 1 {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, node, "step.operationId must be a valid expression if there are multiple OpenAPI source descriptions"))
		}
		return errs
	}

	if err := s.OperationID.Validate(); err != nil {
		return append(errs, validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidExpression, err, node))
	}

	typ, sourceDescriptionName, _, _ := s.OperationID.GetParts()
	if typ != expression.ExpressionTypeSourceDescriptions {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, node, "step.operationId must be a sourceDescriptions expression, got %s", typ))
	} else if a.SourceDescriptions.Find(sourceDescriptionName) == nil {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, node, "step.operationId sourceDescription %s not found", sourceDescriptionName))
	}

	return errs
}

func (s *Step) validateOperationPath(a *Arazzo) []error {
	node := s.core.OperationPath.GetValueNodeOrRoot(s.core.RootNode)

	if err := s.OperationPath.Validate(); err != nil {
		return []error{validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidExpression, err, node)}
	}

	var errs []error

	typ, sourceDescriptionName, parts, jp := s.OperationPath.GetParts()
	if typ != expression.ExpressionTypeSourceDescriptions {
		return append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, node, "step.operationPath must be a sourceDescriptions expression, got %s", typ))
	}

	if a.SourceDescriptions.Find(sourceDescriptionName) == nil {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, node, "step.operationPath sourceDescription %s not found", sourceDescriptionName))
	}
	if len(parts) != 1 || parts[0] != "url" {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, node, "step.operationPath must reference the url of a sourceDescription"))
	}
	if jp == "" {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, node, "step.operationPath must contain a json pointer to the operation path within the sourceDescription"))
	}

	return errs
}

func (s *Step) validateWorkflowID(a *Arazzo, w *Workflow) []error {
	node := s.core.WorkflowID.GetValueNodeOrRoot(s.core.RootNode)

	if !s.WorkflowID.IsExpression() {
		target := string(*s.WorkflowID)
		switch {
		case a.Workflows.Find(target) == nil:
			return []error{validation.NewNodeError(validation.RuleValidationInvalidReference, node, "step.workflowId workflow %s not found", target)}
		case target == w.WorkflowID:
			return []error{validation.NewNodeError(validation.RuleValidationCircularReference, node, "step.workflowId cannot call its own workflow %s", target)}
		}
		return nil
	}

	if err := s.WorkflowID.Validate(); err != nil {
		return []error{validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidExpression, err, node)}
	}

	typ, sourceDescriptionName, _, _ := s.WorkflowID.GetParts()
	if typ != expression.ExpressionTypeSourceDescriptions {
		return []error{validation.NewNodeError(validation.RuleValidationInvalidReference, node, "step.workflowId must be a sourceDescriptions expression, got %s", typ)}
	}

	sd := a.SourceDescriptions.Find(sourceDescriptionName)
	switch {
	case sd == nil:
		return []error{validation.NewNodeError(validation.RuleValidationInvalidReference, node, "step.workflowId sourceDescription %s not found", sourceDescriptionName)}
	case sd.Type == SourceDescriptionTypeOpenAPI:
		return []error{validation.NewNodeError(validation.RuleValidationInvalidReference, node, "step.workflowId sourceDescription %s must be of type arazzo", sourceDescriptionName)}
	}

	return nil
}
