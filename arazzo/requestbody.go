package arazzo

import (
	"mime"
	"strings"

	"github.com/SteakFisher/arazzo-writer/jsonpointer"
	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/validation"
	"gopkg.in/yaml.v3"
)

// RequestBody is the request body passed to the operation a step calls.
type RequestBody struct {
	// ContentType is the media type of the payload.
	ContentType *string
	// Payload is a literal payload that may contain runtime expressions.
	Payload *yaml.Node
	// Replacements are applied to the payload before the request is sent.
	Replacements []*PayloadReplacement
	// Extensions holds the x- entries of the request body.
	Extensions marshaller.Entries[*yaml.Node]

	core coreRequestBody
}

type coreRequestBody struct {
	ContentType  marshaller.Node[*string]
	Replacements marshaller.Node[[]*PayloadReplacement]
	RootNode     *yaml.Node
}

// PayloadReplacement replaces a location in the payload with a value.
type PayloadReplacement struct {
	// Target is a JSON Pointer or XPath expression locating the value to replace.
	Target string
	// Value is a literal or runtime expression to replace the target with.
	Value *yaml.Node
	// Extensions holds the x- entries of the replacement.
	Extensions marshaller.Entries[*yaml.Node]

	core corePayloadReplacement
}

type corePayloadReplacement struct {
	Target   marshaller.Node[string]
	Value    marshaller.Node[*yaml.Node]
	RootNode *yaml.Node
}

func decodeRequestBody(d *marshaller.Decoder, node *yaml.Node) (*RequestBody, bool) {
	o := d.Object(node, "requestBody")
	if !o.Valid() {
		return nil, false
	}
	o.Known("contentType", "payload", "replacements")

	r := &RequestBody{}
	r.core.RootNode = o.Node
	r.core.ContentType = marshaller.Field(o, "contentType", marshaller.Pointer(marshaller.String))
	r.core.Replacements = marshaller.Field(o, "replacements", marshaller.Slice(decodePayloadReplacement))
	r.ContentType = r.core.ContentType.Value
	r.Payload = marshaller.Field(o, "payload", marshaller.Raw).Value
	r.Replacements = r.core.Replacements.Value
	r.Extensions = o.Extensions()

	return r, true
}

func decodePayloadReplacement(d *marshaller.Decoder, node *yaml.Node) (*PayloadReplacement, bool) {
	o := d.Object(node, "payloadReplacement")
	if !o.Valid() {
		return nil, false
	}
	o.Known("target", "value")

	p := &PayloadReplacement{}
	p.core.RootNode = o.Node
	p.core.Target = marshaller.Field(o, "target", marshaller.String)
	p.core.Value = marshaller.Field(o, "value", marshaller.Raw)
	p.Target = p.core.Target.Value
	p.Value = p.core.Value.Value
	p.Extensions = o.Extensions()

	return p, true
}

// Validate validates the request body against the Arazzo Specification.
func (r *RequestBody) Validate() []error {
	core := r.core
	var errs []error

	if r.ContentType != nil {
		if _, _, err := mime.ParseMediaType(*r.ContentType); err != nil {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidFormat, core.ContentType.GetValueNodeOrRoot(core.RootNode), "requestBody.contentType is not valid: %s", err.Error()))
		}
	}

	errs = append(errs, validateValue(r.Payload)...)

	isXML := r.ContentType != nil && strings.Contains(*r.ContentType, "xml")
	for _, replacement := range r.Replacements {
		errs = append(errs, replacement.validate(isXML)...)
	}

	return errs
}

func (p *PayloadReplacement) validate(isXML bool) []error {
	core := p.core
	var errs []error

	targetNode := core.Target.GetValueNodeOrRoot(core.RootNode)
	switch {
	case p.Target == "":
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, targetNode, "payloadReplacement.target is required"))
	case !isXML:
		if err := jsonpointer.JSONPointer(p.Target).Validate(); err != nil {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidFormat, targetNode, "payloadReplacement.target is not a valid json pointer: %s", err.Error()))
		}
	}

	if !core.Value.Present {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, core.RootNode, "payloadReplacement.value is required"))
	} else {
		errs = append(errs, validateValue(p.Value)...)
	}

	return errs
}
