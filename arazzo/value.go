package arazzo

import (
	"strings"

	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/validation"
	"github.com/SteakFisher/arazzo-writer/yml"
	"gopkg.in/yaml.v3"
)

// Outputs maps output names to the runtime expressions producing them.
type Outputs = marshaller.Entries[expression.Expression]

func decodeExpression(d *marshaller.Decoder, node *yaml.Node) (expression.Expression, bool) {
	s, ok := marshaller.String(d, node)
	return expression.Expression(s), ok
}

// locatedExpression is a runtime expression found in a document together with the node it was read from.
type locatedExpression struct {
	Expression expression.Expression
	Node       *yaml.Node
}

// expressionsIn returns every runtime expression in the string scalars under node.
func expressionsIn(node *yaml.Node) []locatedExpression {
	node = yml.ResolveAlias(node)
	if node == nil {
		return nil
	}

	var found []locatedExpression
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" {
			return nil
		}
		if e := expression.Expression(node.Value); strings.HasPrefix(node.Value, "$") && e.IsExpression() {
			return []locatedExpression{{Expression: e, Node: node}}
		}
		for _, e := range expression.ExtractExpressions(node.Value) {
			if strings.HasPrefix(string(e), "{") {
				found = append(found, locatedExpression{Expression: e, Node: node})
			}
		}
	case yaml.MappingNode:
		for _, v := range yml.MapPairs(node) {
			found = append(found, expressionsIn(v)...)
		}
	case yaml.SequenceNode, yaml.DocumentNode:
		for _, item := range node.Content {
			found = append(found, expressionsIn(item)...)
		}
	}
	return found
}

// validateValue validates the runtime expressions embedded anywhere in a literal value.
func validateValue(node *yaml.Node) []error {
	var errs []error
	for _, le := range expressionsIn(node) {
		if err := le.Expression.Validate(); err != nil {
			errs = append(errs, validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidExpression, err, le.Node))
		}
	}
	return errs
}

func validateOutputs(outputs Outputs) []error {
	var errs []error

	for _, output := range outputs {
		if !componentNameRegex.MatchString(output.Key) {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidFormat, output.KeyNode, "output name must be a valid name [%s]: %s", componentNameRegex.String(), output.Key))
		}

		if err := output.Value.Validate(); err != nil {
			errs = append(errs, validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidExpression, err, output.ValueNode))
		}
	}

	return errs
}
