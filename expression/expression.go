// Package expression implements Arazzo runtime expressions such as $statusCode, $response.body#/id and
// $steps.login.outputs.token, including expressions embedded in strings with the {$...} syntax.
package expression

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/SteakFisher/arazzo-writer/jsonpointer"
)

// ExpressionType is the first segment of a runtime expression.
type ExpressionType string

const (
	ExpressionTypeURL                ExpressionType = "url"
	ExpressionTypeMethod             ExpressionType = "method"
	ExpressionTypeStatusCode         ExpressionType = "statusCode"
	ExpressionTypeRequest            ExpressionType = "request"
	ExpressionTypeResponse           ExpressionType = "response"
	ExpressionTypeInputs             ExpressionType = "inputs"
	ExpressionTypeOutputs            ExpressionType = "outputs"
	ExpressionTypeSteps              ExpressionType = "steps"
	ExpressionTypeWorkflows          ExpressionType = "workflows"
	ExpressionTypeSourceDescriptions ExpressionType = "sourceDescriptions"
	ExpressionTypeComponents         ExpressionType = "components"
)

// Sources that may follow $request. and $response.
const (
	ReferenceTypeHeader = "header"
	ReferenceTypeQuery  = "query"
	ReferenceTypePath   = "path"
	ReferenceTypeBody   = "body"
)

// Component kinds addressable with $components.
const (
	ComponentsParameters     = "parameters"
	ComponentsSuccessActions = "successActions"
	ComponentsFailureActions = "failureActions"
	ComponentsInputs         = "inputs"
)

var expressionTypes = []string{
	string(ExpressionTypeURL),
	string(ExpressionTypeMethod),
	string(ExpressionTypeStatusCode),
	string(ExpressionTypeRequest),
	string(ExpressionTypeResponse),
	string(ExpressionTypeInputs),
	string(ExpressionTypeOutputs),
	string(ExpressionTypeSteps),
	string(ExpressionTypeWorkflows),
	string(ExpressionTypeSourceDescriptions),
	string(ExpressionTypeComponents),
}

var referenceTypes = []string{
	ReferenceTypeHeader,
	ReferenceTypeQuery,
	ReferenceTypePath,
	ReferenceTypeBody,
}

var componentKinds = []string{
	ComponentsParameters,
	ComponentsSuccessActions,
	ComponentsFailureActions,
	ComponentsInputs,
}

var (
	tokenRegex = regexp.MustCompile("^[!#$%&'*+\\-.^_`|~\\dA-Za-z]+$")
	nameRegex  = regexp.MustCompile("^[\x01-\x7F]+$")
)

// Expression is a runtime expression, or a plain value when it does not start with $.
type Expression string

// String returns the raw expression.
func (e Expression) String() string {
	return string(e)
}

// IsExpression reports whether the whole value is exactly one runtime expression.
func (e Expression) IsExpression() bool {
	found := ExtractExpressions(string(e))
	return len(found) == 1 && string(found[0]) == string(e)
}

// Validate checks the expression against the runtime expression grammar.
func (e Expression) Validate() error {
	if !e.IsExpression() {
		return fmt.Errorf("expression is not valid, must begin with $: %s", string(e))
	}

	typ, reference, parts, jp := e.GetParts()

	allowJSONPointer := false

	switch typ {
	case ExpressionTypeURL, ExpressionTypeMethod, ExpressionTypeStatusCode:
		if reference != "" || len(parts) > 0 {
			return fmt.Errorf("expression is not valid, extra characters after $%s: %s", typ, string(e))
		}
	case ExpressionTypeRequest, ExpressionTypeResponse:
		switch reference {
		case ReferenceTypeBody:
			allowJSONPointer = true
			if len(parts) > 0 {
				return fmt.Errorf("expression is not valid, only json pointers are allowed after $%s.%s: %s", typ, reference, string(e))
			}
		case ReferenceTypeHeader:
			if len(parts) != 1 {
				return fmt.Errorf("expression is not valid, expected token after $%s.%s: %s", typ, reference, string(e))
			}
			if !tokenRegex.MatchString(parts[0]) {
				return fmt.Errorf("header reference must be a valid token [%s]: %s", tokenRegex.String(), string(e))
			}
		case ReferenceTypeQuery, ReferenceTypePath:
			if len(parts) != 1 {
				return fmt.Errorf("expression is not valid, expected name after $%s.%s: %s", typ, reference, string(e))
			}
			if err := validateName(string(e), parts[0], reference+" reference"); err != nil {
				return err
			}
		default:
			return fmt.Errorf("expression is not valid, expected one of [%s] after $%s: %s", strings.Join(referenceTypes, ", "), typ, string(e))
		}
	case ExpressionTypeInputs, ExpressionTypeOutputs:
		if reference == "" {
			return fmt.Errorf("expression is not valid, expected name after $%s: %s", typ, string(e))
		}
		allowJSONPointer = true
		if err := validateName(string(e), joinName(reference, parts), "name reference"); err != nil {
			return err
		}
	case ExpressionTypeSteps:
		if reference == "" {
			return fmt.Errorf("expression is not valid, expected stepId after $%s: %s", typ, string(e))
		}
		if len(parts) < 2 || parts[0] != "outputs" {
			return fmt.Errorf("expression is not valid, expected $steps.<stepId>.outputs.<name>: %s", string(e))
		}
		allowJSONPointer = true
		if err := validateName(string(e), joinName(reference, parts), "name reference"); err != nil {
			return err
		}
	case ExpressionTypeWorkflows:
		if reference == "" {
			return fmt.Errorf("expression is not valid, expected workflowId after $%s: %s", typ, string(e))
		}
		if len(parts) < 2 || (parts[0] != "outputs" && parts[0] != "inputs") {
			return fmt.Errorf("expression is not valid, expected $workflows.<workflowId>.(inputs|outputs).<name>: %s", string(e))
		}
		allowJSONPointer = true
		if err := validateName(string(e), joinName(reference, parts), "name reference"); err != nil {
			return err
		}
	case ExpressionTypeSourceDescriptions:
		if reference == "" {
			return fmt.Errorf("expression is not valid, expected name after $%s: %s", typ, string(e))
		}
		if len(parts) == 0 {
			return fmt.Errorf("expression is not valid, expected $sourceDescriptions.<name>.<reference>: %s", string(e))
		}
		if err := validateName(string(e), joinName(reference, parts), "name reference"); err != nil {
			return err
		}
		allowJSONPointer = len(parts) == 1 && parts[0] == "url"
	case ExpressionTypeComponents:
		if !slices.Contains(componentKinds, reference) {
			return fmt.Errorf("expression is not valid, expected one of [%s] after $%s: %s", strings.Join(componentKinds, ", "), typ, string(e))
		}
		if len(parts) != 1 {
			return fmt.Errorf("expression is not valid, expected $components.%s.<name>: %s", reference, string(e))
		}
		if err := validateName(string(e), parts[0], "component name"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("expression is not valid, must begin with one of [%s]: %s", strings.Join(expressionTypes, ", "), string(e))
	}

	if jp != "" {
		if !allowJSONPointer {
			return fmt.Errorf("expression is not valid, json pointers are not allowed in current context: %s", string(e))
		}
		if err := jp.Validate(); err != nil {
			return fmt.Errorf("expression is not valid, %w: %s", err, string(e))
		}
	}

	return nil
}

// GetType returns the expression type, e.g. "steps" for $steps.a.outputs.b.
func (e Expression) GetType() ExpressionType {
	typ, _, _, _ := e.GetParts()
	return typ
}

// GetJSONPointer returns the json pointer following #, if any.
func (e Expression) GetJSONPointer() jsonpointer.JSONPointer {
	_, _, _, jp := e.GetParts()
	return jp
}

// GetParts splits the expression into its type, the segment following the type,
// any further dot separated segments and the json pointer.
func (e Expression) GetParts() (ExpressionType, string, []string, jsonpointer.JSONPointer) {
	raw := string(e)
	suffix := ""
	if strings.HasPrefix(raw, "{") {
		if closing := strings.IndexByte(raw, '}'); closing >= 0 {
			suffix = raw[closing+1:]
			raw = raw[1:closing]
		} else {
			raw = raw[1:]
		}
	}

	var jp jsonpointer.JSONPointer
	if idx := strings.Index(raw, "#"); idx >= 0 && !isHeaderExpression(raw[:idx]) {
		jp = jsonpointer.JSONPointer(raw[idx+1:])
		raw = raw[:idx]
	} else if strings.HasPrefix(suffix, "#") {
		jp = jsonpointer.JSONPointer(suffix[1:])
	}

	segments := strings.Split(strings.TrimPrefix(raw, "$"), ".")

	typ := ExpressionType(segments[0])
	segments = segments[1:]

	reference := ""
	if len(segments) > 0 {
		reference = segments[0]
		segments = segments[1:]
	}

	return typ, reference, segments, jp
}

// header tokens may legitimately contain '#'
func isHeaderExpression(s string) bool {
	s = strings.TrimPrefix(s, "$")
	return strings.HasPrefix(s, string(ExpressionTypeRequest)+"."+ReferenceTypeHeader+".") ||
		strings.HasPrefix(s, string(ExpressionTypeResponse)+"."+ReferenceTypeHeader+".")
}

func joinName(reference string, parts []string) string {
	return strings.Join(append([]string{reference}, parts...), ".")
}

func validateName(expression, name, referenceType string) error {
	for _, part := range strings.Split(name, ".") {
		if !nameRegex.MatchString(part) {
			return fmt.Errorf("%s must be a valid name [%s]: %s", referenceType, nameRegex.String(), expression)
		}
	}
	return nil
}
