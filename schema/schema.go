// Package schema validates Arazzo documents against the published Arazzo 1.0 JSON Schema.
package schema

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"

	_ "embed"

	"github.com/SteakFisher/arazzo-writer/json"
	"github.com/SteakFisher/arazzo-writer/jsonpointer"
	"github.com/SteakFisher/arazzo-writer/validation"
	"github.com/SteakFisher/arazzo-writer/yml"
	jsValidator "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

//go:embed arazzo-1.0.schema.json
var arazzoSchemaJSON string

var (
	arazzoSchema   *jsValidator.Schema
	defaultPrinter = message.NewPrinter(language.English)
	initOnce       sync.Once
)

// Validate checks the document rooted at root against the embedded schema.
// Each violation is returned as a *validation.Error anchored to the closest node in the document.
func Validate(ctx context.Context, root *yaml.Node) []error {
	if root == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return []error{err}
	}

	initValidation()

	buf := bytes.NewBuffer([]byte{})
	if err := json.YAMLToJSON(root, 0, buf); err != nil {
		return []error{
			validation.NewNodeError(validation.RuleValidationTypeMismatch, root, "document is not valid json: %s", err.Error()),
		}
	}

	doc, err := jsValidator.UnmarshalJSON(buf)
	if err != nil {
		return []error{
			validation.NewNodeError(validation.RuleValidationTypeMismatch, root, "document is not valid json: %s", err.Error()),
		}
	}

	err = arazzoSchema.Validate(doc)
	if err == nil {
		return nil
	}

	var validationErr *jsValidator.ValidationError
	if !errors.As(err, &validationErr) {
		return []error{
			validation.NewNodeError(validation.RuleValidationInvalidSchema, root, "schema invalid: %s", err.Error()),
		}
	}

	errs := getRootCauses(validationErr, root)
	validation.SortValidationErrors(errs)
	return errs
}

func getRootCauses(err *jsValidator.ValidationError, root *yaml.Node) []error {
	if len(err.Causes) == 0 {
		return []error{toValidationError(err, root)}
	}

	errs := []error{}
	for _, cause := range err.Causes {
		errs = append(errs, getRootCauses(cause, root)...)
	}
	return errs
}

func toValidationError(cause *jsValidator.ValidationError, root *yaml.Node) error {
	node := jsonpointer.GetClosestNode(root, cause.InstanceLocation)

	field := strings.Join(cause.InstanceLocation, ".")
	if field == "" {
		field = "(root)"
	}
	msg := cause.ErrorKind.LocalizedString(defaultPrinter)

	rule := validation.RuleValidationInvalidSchema
	switch k := cause.ErrorKind.(type) {
	case *kind.Type:
		rule = validation.RuleValidationTypeMismatch
	case *kind.Required:
		rule = validation.RuleValidationRequiredField
	case *kind.Enum, *kind.Const:
		rule = validation.RuleValidationAllowedValues
	case *kind.Pattern, *kind.Format:
		rule = validation.RuleValidationInvalidFormat
	case *kind.AdditionalProperties:
		rule = validation.RuleValidationUnknownField
		// anchor on the first offending key rather than the enclosing mapping
		if len(k.Properties) > 0 {
			if keyNode, _, ok := yml.GetMapElement(node, k.Properties[0]); ok {
				node = keyNode
			}
		}
	case *kind.FalseSchema:
		rule = validation.RuleValidationUnknownField
	}

	return validation.NewNodeError(rule, node, "schema field %s %s", field, msg)
}

func initValidation() {
	initOnce.Do(func() {
		doc, err := jsValidator.UnmarshalJSON(strings.NewReader(arazzoSchemaJSON))
		if err != nil {
			panic(err)
		}

		c := jsValidator.NewCompiler()
		if err := c.AddResource("arazzo.schema.json", doc); err != nil {
			panic(err)
		}
		arazzoSchema = c.MustCompile("arazzo.schema.json")
	})
}
