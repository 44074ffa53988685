package arazzo

import (
	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/validation"
	"gopkg.in/yaml.v3"
)

// Info provides metadata about the Arazzo document.
type Info struct {
	// Title is a human readable title of the Arazzo document.
	Title string
	// Summary is a short summary of the Arazzo document.
	Summary *string
	// Description is a longer description of the Arazzo document. May contain CommonMark syntax.
	Description *string
	// Version is the version of the Arazzo document.
	Version string
	// Extensions holds the x- entries of the info object.
	Extensions marshaller.Entries[*yaml.Node]

	core coreInfo
}

type coreInfo struct {
	Title    marshaller.Node[string]
	Version  marshaller.Node[string]
	RootNode *yaml.Node
}

func decodeInfo(d *marshaller.Decoder, node *yaml.Node) (*Info, bool) {
	o := d.Object(node, "info")
	if !o.Valid() {
		return nil, false
	}
	o.Known("title", "summary", "description", "version")

	i := &Info{}
	i.core.RootNode = o.Node
	i.core.Title = marshaller.Field(o, "title", marshaller.String)
	i.core.Version = marshaller.Field(o, "version", marshaller.String)
	i.Title = i.core.Title.Value
	i.Version = i.core.Version.Value
	i.Summary = marshaller.Field(o, "summary", marshaller.Pointer(marshaller.String)).Value
	i.Description = marshaller.Field(o, "description", marshaller.Pointer(marshaller.String)).Value
	i.Extensions = o.Extensions()

	return i, true
}

// Validate validates the info object against the Arazzo Specification.
func (i *Info) Validate() []error {
	var errs []error

	if i.Title == "" {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, i.core.Title.GetValueNodeOrRoot(i.core.RootNode), "info.title is required"))
	}
	if i.Version == "" {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, i.core.Version.GetValueNodeOrRoot(i.core.RootNode), "info.version is required"))
	}

	return errs
}
