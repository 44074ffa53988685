package explore

import (
	"context"
	"fmt"
	"strings"

	"github.com/SteakFisher/arazzo-writer/arazzo"
	"github.com/SteakFisher/arazzo-writer/arazzo/criterion"
	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/pointer"
	"gopkg.in/yaml.v3"
)

// CollectSteps walks the Arazzo document and collects every step in document order
func CollectSteps(ctx context.Context, doc *arazzo.Arazzo) ([]StepInfo, error) {
	var steps []StepInfo
	position := 0

	for item := range arazzo.Walk(ctx, doc) {
		switch item.Kind {
		case arazzo.WalkKindWorkflow:
			position = 0
		case arazzo.WalkKindStep:
			position++
			steps = append(steps, newStepInfo(doc, item.Workflow, item.Step, position))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return steps, nil
}

func newStepInfo(doc *arazzo.Arazzo, w *arazzo.Workflow, s *arazzo.Step, position int) StepInfo {
	info := StepInfo{
		WorkflowID:      w.WorkflowID,
		WorkflowSummary: pointer.ValueOrZero(w.Summary),
		StepID:          s.StepID,
		Position:        position,
		Target:          s.Target(),
		Description:     pointer.ValueOrZero(s.Description),
		Step:            s,
		Folded:          true, // Start with details folded
	}

	switch {
	case s.OperationID != nil:
		info.Kind = TargetKindOperationID
	case s.OperationPath != nil:
		info.Kind = TargetKindOperationPath
	case s.WorkflowID != nil:
		info.Kind = TargetKindWorkflowID
	}

	for _, p := range s.Parameters {
		info.Parameters = append(info.Parameters, describeParameter(doc, p))
	}
	for _, c := range s.SuccessCriteria {
		info.SuccessCriteria = append(info.SuccessCriteria, DescribeCriterion(c))
	}
	for _, r := range s.OnSuccess {
		info.OnSuccess = append(info.OnSuccess, describeSuccessAction(doc, r))
	}
	for _, r := range s.OnFailure {
		info.OnFailure = append(info.OnFailure, describeFailureAction(doc, r))
	}
	for _, o := range s.Outputs {
		info.Outputs = append(info.Outputs, fmt.Sprintf("%s: %s", o.Key, o.Value))
	}

	return info
}

func describeParameter(doc *arazzo.Arazzo, r *arazzo.ReusableParameter) string {
	var p *arazzo.Parameter
	if doc.Components != nil {
		p = r.GetObject(doc.Components.Parameters)
	} else {
		p = r.GetObject(nil)
	}

	if p == nil {
		if r.Reference != nil {
			return fmt.Sprintf("%s (unresolved)", *r.Reference)
		}
		return "(invalid parameter)"
	}

	value := p.Value
	if r.Value != nil {
		value = r.Value
	}

	desc := p.Name
	if p.In != nil {
		desc += fmt.Sprintf(" (%s)", *p.In)
	}
	desc += ": " + nodeText(value)
	if r.Reference != nil {
		desc += fmt.Sprintf(" via %s", *r.Reference)
	}
	return desc
}

// DescribeCriterion renders a criterion as "[type] condition on context", omitting the type for simple conditions
func DescribeCriterion(c *criterion.Criterion) string {
	desc := c.Condition
	if c.Context != nil {
		desc = fmt.Sprintf("%s on %s", desc, *c.Context)
	}
	if typ := c.Type.GetType(); typ != criterion.CriterionTypeSimple {
		desc = fmt.Sprintf("[%s] %s", typ, desc)
	}
	return desc
}

func describeSuccessAction(doc *arazzo.Arazzo, r *arazzo.ReusableSuccessAction) string {
	var a *arazzo.SuccessAction
	if doc.Components != nil {
		a = r.GetObject(doc.Components.SuccessActions)
	} else {
		a = r.GetObject(nil)
	}
	if a == nil {
		return unresolved(r.Reference)
	}
	return describeAction(a.Name, string(a.Type), a.StepID, a.WorkflowID, len(a.Criteria))
}

func describeFailureAction(doc *arazzo.Arazzo, r *arazzo.ReusableFailureAction) string {
	var a *arazzo.FailureAction
	if doc.Components != nil {
		a = r.GetObject(doc.Components.FailureActions)
	} else {
		a = r.GetObject(nil)
	}
	if a == nil {
		return unresolved(r.Reference)
	}

	desc := describeAction(a.Name, string(a.Type), a.StepID, a.WorkflowID, len(a.Criteria))
	if a.Type == arazzo.FailureActionTypeRetry {
		if a.RetryAfter != nil {
			desc += fmt.Sprintf(", after %gs", *a.RetryAfter)
		}
		if a.RetryLimit != nil {
			desc += fmt.Sprintf(", up to %d times", *a.RetryLimit)
		}
	}
	return desc
}

func describeAction(name, typ string, stepID *string, workflowID *expression.Expression, criteria int) string {
	desc := fmt.Sprintf("%s (%s)", name, typ)
	switch {
	case stepID != nil:
		desc += " → step " + *stepID
	case workflowID != nil:
		desc += " → workflow " + string(*workflowID)
	}
	if criteria > 0 {
		desc += fmt.Sprintf(" when %d criteria hold", criteria)
	}
	return desc
}

func unresolved(ref *expression.Expression) string {
	if ref == nil {
		return "(invalid action)"
	}
	return fmt.Sprintf("%s (unresolved)", *ref)
}

// nodeText renders a parameter value on a single line.
func nodeText(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind == yaml.ScalarNode {
		return n.Value
	}
	flow := *n
	flow.Style = yaml.FlowStyle
	out, err := yaml.Marshal(&flow)
	if err != nil {
		return "(unprintable)"
	}
	return strings.TrimSpace(string(out))
}
