package arazzo

import (
	"fmt"
	"strings"

	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/validation"
	"github.com/SteakFisher/arazzo-writer/yml"
	"gopkg.in/yaml.v3"
)

// checkReferences reports runtime expressions that point at steps, workflows, source descriptions,
// inputs or components the document does not define. Either a or w may be nil when unknown.
func checkReferences(a *Arazzo, w *Workflow, exprs []locatedExpression) []error {
	var errs []error

	for _, le := range exprs {
		if le.Expression.Validate() != nil {
			continue
		}

		typ, reference, parts, _ := le.Expression.GetParts()
		switch typ {
		case expression.ExpressionTypeSteps:
			if w != nil && w.Steps.Find(reference) == nil {
				errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, le.Node, "step %s not found in workflow %s: %s", reference, w.WorkflowID, le.Expression))
			}
		case expression.ExpressionTypeWorkflows:
			if a != nil && a.Workflows.Find(reference) == nil {
				errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, le.Node, "workflow %s not found: %s", reference, le.Expression))
			}
		case expression.ExpressionTypeSourceDescriptions:
			if a != nil && a.SourceDescriptions.Find(reference) == nil {
				errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, le.Node, "sourceDescription %s not found: %s", reference, le.Expression))
			}
		case expression.ExpressionTypeInputs:
			if w != nil && !w.declaresInput(a, reference) {
				errs = append(errs, validation.NewValidationError(validation.SeverityWarning, validation.RuleValidationInvalidReference, fmt.Errorf("input %s is not declared in the inputs of workflow %s", reference, w.WorkflowID), le.Node))
			}
		case expression.ExpressionTypeComponents:
			if a != nil && len(parts) == 1 && !a.Components.has(reference, parts[0]) {
				errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidReference, le.Node, "component %s.%s not found: %s", reference, parts[0], le.Expression))
			}
		}
	}

	return errs
}

// declaresInput reports whether the workflow's inputs schema has a property called name.
// Schemas whose properties cannot be determined locally are assumed to declare it.
func (w *Workflow) declaresInput(a *Arazzo, name string) bool {
	schema := yml.ResolveAlias(w.Inputs)
	if schema == nil {
		return false
	}

	if _, ref, ok := yml.GetMapElement(schema, "$ref"); ok {
		const prefix = "#/components/inputs/"
		if a == nil || a.Components == nil || !strings.HasPrefix(ref.Value, prefix) {
			return true
		}
		entry, found := a.Components.Inputs.Get(strings.TrimPrefix(ref.Value, prefix))
		if !found {
			return true
		}
		schema = yml.ResolveAlias(entry.Value)
	}

	_, properties, ok := yml.GetMapElement(schema, "properties")
	if !ok || properties.Kind != yaml.MappingNode {
		return true
	}

	_, _, ok = yml.GetMapElement(properties, name)
	return ok
}
