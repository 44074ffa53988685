package arazzo

import (
	"net/url"
	"strings"

	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/validation"
	"gopkg.in/yaml.v3"
)

// SourceDescriptionType is the kind of document a source description points at.
type SourceDescriptionType string

const (
	SourceDescriptionTypeOpenAPI SourceDescriptionType = "openapi"
	SourceDescriptionTypeArazzo  SourceDescriptionType = "arazzo"
)

// SourceDescriptions is a list of source descriptions.
type SourceDescriptions []*SourceDescription

// Find returns the source description with the given name, or nil.
func (s SourceDescriptions) Find(name string) *SourceDescription {
	for _, sd := range s {
		if sd.Name == name {
			return sd
		}
	}
	return nil
}

// SourceDescription points at an OpenAPI or Arazzo document used by the workflows.
type SourceDescription struct {
	// Name is the unique name of the source description.
	Name string
	// URL is the location of the source document.
	URL string
	// Type is the type of the source document.
	Type SourceDescriptionType
	// Extensions holds the x- entries of the source description.
	Extensions marshaller.Entries[*yaml.Node]

	core coreSourceDescription
}

type coreSourceDescription struct {
	Name     marshaller.Node[string]
	URL      marshaller.Node[string]
	Type     marshaller.Node[string]
	RootNode *yaml.Node
}

func decodeSourceDescription(d *marshaller.Decoder, node *yaml.Node) (*SourceDescription, bool) {
	o := d.Object(node, "sourceDescription")
	if !o.Valid() {
		return nil, false
	}
	o.Known("name", "url", "type")

	s := &SourceDescription{}
	s.core.RootNode = o.Node
	s.core.Name = marshaller.Field(o, "name", marshaller.String)
	s.core.URL = marshaller.Field(o, "url", marshaller.String)
	s.core.Type = marshaller.Field(o, "type", marshaller.String)
	s.Name = s.core.Name.Value
	s.URL = s.core.URL.Value
	s.Type = SourceDescriptionType(s.core.Type.Value)
	s.Extensions = o.Extensions()

	return s, true
}

// Validate validates the source description against the Arazzo Specification.
func (s *SourceDescription) Validate() []error {
	core := s.core
	var errs []error

	nameNode := core.Name.GetValueNodeOrRoot(core.RootNode)
	if s.Name == "" {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, nameNode, "sourceDescription.name is required"))
	} else if !nameRegex.MatchString(s.Name) {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidFormat, nameNode, "sourceDescription.name must be a valid name [%s]: %s", nameRegex.String(), s.Name))
	}

	urlNode := core.URL.GetValueNodeOrRoot(core.RootNode)
	if s.URL == "" {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, urlNode, "sourceDescription.url is required"))
	} else if _, err := url.Parse(s.URL); err != nil {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationInvalidFormat, urlNode, "sourceDescription.url is not a valid url/uri-reference: %s", err.Error()))
	}

	switch s.Type {
	case "", SourceDescriptionTypeOpenAPI, SourceDescriptionTypeArazzo:
	default:
		errs = append(errs, validation.NewNodeError(validation.RuleValidationAllowedValues, core.Type.GetValueNodeOrRoot(core.RootNode), "sourceDescription.type must be one of [%s]", strings.Join([]string{string(SourceDescriptionTypeOpenAPI), string(SourceDescriptionTypeArazzo)}, ", ")))
	}

	return errs
}
