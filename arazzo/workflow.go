package arazzo

import (
	"context"
	"errors"

	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/validation"
	"gopkg.in/yaml.v3"
)

// Workflows is a list of workflows.
type Workflows []*Workflow

// Find returns the workflow with the given id, or nil.
func (w Workflows) Find(id string) *Workflow {
	for _, workflow := range w {
		if workflow.WorkflowID == id {
			return workflow
		}
	}
	return nil
}

// Workflow describes a sequence of steps to be executed to achieve an outcome.
type Workflow struct {
	// WorkflowID is the unique identifier of the workflow.
	WorkflowID string
	// Summary is a short summary of the workflow.
	Summary *string
	// Description is a longer description of the workflow. May contain CommonMark syntax.
	Description *string
	// Inputs is a JSON Schema describing the inputs of the workflow.
	Inputs *yaml.Node
	// DependsOn lists workflows that must complete before this one runs.
	DependsOn []expression.Expression
	// Steps is the ordered list of steps of the workflow.
	Steps Steps
	// SuccessActions apply to every step of the workflow unless overridden.
	SuccessActions []*ReusableSuccessAction
	// FailureActions apply to every step of the workflow unless overridden.
	FailureActions []*ReusableFailureAction
	// Outputs maps output names to the expressions producing them.
	Outputs Outputs
	// Parameters apply to every step of the workflow unless overridden.
	Parameters []*ReusableParameter
	// Extensions holds the x- entries of the workflow.
	Extensions marshaller.Entries[*yaml.Node]

	core coreWorkflow
}

type coreWorkflow struct {
	WorkflowID     marshaller.Node[string]
	Inputs         marshaller.Node[*yaml.Node]
	DependsOn      marshaller.Node[[]expression.Expression]
	Steps          marshaller.Node[Steps]
	SuccessActions marshaller.Node[[]*ReusableSuccessAction]
	FailureActions marshaller.Node[[]*ReusableFailureAction]
	Outputs        marshaller.Node[Outputs]
	Parameters     marshaller.Node[[]*ReusableParameter]
	RootNode       *yaml.Node
}

// GetRootNode returns the node the workflow was decoded from.
func (w *Workflow) GetRootNode() *yaml.Node {
	return w.core.RootNode
}

func decodeWorkflow(d *marshaller.Decoder, node *yaml.Node) (*Workflow, bool) {
	o := d.Object(node, "workflow")
	if !o.Valid() {
		return nil, false
	}
	o.Known("workflowId", "summary", "description", "inputs", "dependsOn", "steps", "successActions", "failureActions", "outputs", "parameters")

	w := &Workflow{}
	w.core.RootNode = o.Node
	w.core.WorkflowID = marshaller.Field(o, "workflowId", marshaller.String)
	w.core.Inputs = marshaller.Field(o, "inputs", marshaller.Raw)
	w.core.DependsOn = marshaller.Field(o, "dependsOn", marshaller.Slice(decodeExpression))
	w.core.Steps = marshaller.Field(o, "steps", marshaller.SliceOf[Steps](decodeStep))
	w.core.SuccessActions = marshaller.Field(o, "successActions", marshaller.Slice(decodeReusableSuccessAction))
	w.core.FailureActions = marshaller.Field(o, "failureActions", marshaller.Slice(decodeReusableFailureAction))
	w.core.Outputs = marshaller.Field(o, "outputs", marshaller.Map(decodeExpression))
	w.core.Parameters = marshaller.Field(o, "parameters", marshaller.Slice(decodeReusableParameter))

	w.WorkflowID = w.core.WorkflowID.Value
	w.Summary = marshaller.Field(o, "summary", marshaller.Pointer(marshaller.String)).Value
	w.Description = marshaller.Field(o, "description", marshaller.Pointer(marshaller.String)).Value
	w.Inputs = w.core.Inputs.Value
	w.DependsOn = w.core.DependsOn.Value
	w.Steps = w.core.Steps.Value
	w.SuccessActions = w.core.SuccessActions.Value
	w.FailureActions = w.core.FailureActions.Value
	w.Outputs = w.core.Outputs.Value
	w.Parameters = w.core.Parameters.Value
	w.Extensions = o.Extensions()

	return w, true
}

// Validate validates the workflow against the Arazzo Specification.
// Requires an Arazzo object to be passed via validation options with validation.WithContextObject().
func (w *Workflow) Validate(ctx context.Context, opts ...validation.Option) []error {
	o := validation.NewOptions(opts...)

	a := validation.GetContextObject[Arazzo](o)
	if a == nil {
		return []error{errors.New("an Arazzo object must be passed via validation options to validate a Workflow")}
	}

	opts = append(opts, validation.WithContextObject(w))

	core := w.core
	var errs []error

	idNode := core.WorkflowID.GetValueNodeOrRoot(core.RootNode)
	if w.WorkflowID == "" {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, idNode, "workflow.workflowId is required"))
	} else if !nameRegex.MatchString(w.WorkflowID) {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidFormat, idNode, "workflow.workflowId must be a valid name [%s]: %s", nameRegex.String(), w.WorkflowID))
	}

	if core.Inputs.Present {
		if w.Inputs == nil || w.Inputs.Kind != yaml.MappingNode {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationTypeMismatch, core.Inputs.GetValueNodeOrRoot(core.RootNode), "workflow.inputs must be a JSON Schema object"))
		}
	}

	for i, dependsOn := range w.DependsOn {
		node := core.DependsOn.GetSliceValueNodeOrRoot(i, core.RootNode)

		if dependsOn.IsExpression() {
			if err := dependsOn.Validate(); err != nil {
				errs = append(errs, validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidExpression, err, node))
				continue
			}

			typ, sourceDescriptionName, _, _ := dependsOn.GetParts()
			if typ != expression.ExpressionTypeSourceDescriptions {
				errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, node, "workflow.dependsOn must be a workflowId or a sourceDescriptions expression, got %s", typ))
			} else if a.SourceDescriptions.Find(sourceDescriptionName) == nil {
				errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, node, "workflow.dependsOn sourceDescription %s not found", sourceDescriptionName))
			}
			continue
		}

		switch {
		case string(dependsOn) == w.WorkflowID:
			errs = append(errs, validation.NewNodeError(validation.RuleValidationCircularReference, node, "workflow.dependsOn cannot reference the workflow itself: %s", dependsOn))
		case a.Workflows.Find(string(dependsOn)) == nil:
			errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, node, "workflow.dependsOn workflow %s not found", dependsOn))
		}
	}

	if len(w.Steps) == 0 {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, core.Steps.GetValueNodeOrRoot(core.RootNode), "workflow.steps must contain at least one step"))
	}

	stepIDs := make(map[string]bool)
	for i, step := range w.Steps {
		errs = append(errs, step.Validate(ctx, opts...)...)

		if step.StepID != "" && stepIDs[step.StepID] {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationDuplicateKey, core.Steps.GetSliceValueNodeOrRoot(i, core.RootNode), "stepId %s is not unique within workflow %s", step.StepID, w.WorkflowID))
		}
		stepIDs[step.StepID] = true
	}

	errs = append(errs, validateSuccessActions(ctx, w.SuccessActions, core.SuccessActions, core.RootNode, opts...)...)
	errs = append(errs, validateFailureActions(ctx, w.FailureActions, core.FailureActions, core.RootNode, opts...)...)
	errs = append(errs, validateParameters(ctx, w.Parameters, core.Parameters, core.RootNode, opts...)...)

	errs = append(errs, validateOutputs(w.Outputs)...)

	var exprs []locatedExpression
	for _, output := range w.Outputs {
		exprs = append(exprs, locatedExpression{Expression: output.Value, Node: output.ValueNode})
	}
	errs = append(errs, checkReferences(a, w, exprs)...)

	return errs
}
