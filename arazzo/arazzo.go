// Package arazzo provides an API for reading, walking and validating Arazzo documents.
//
// The Arazzo Specification is a mechanism for orchestrating API calls, defining their sequences and dependencies,
// to achieve specific outcomes when working with API descriptions like OpenAPI.
package arazzo

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/SteakFisher/arazzo-writer/internal/version"
	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/validation"
	"github.com/SteakFisher/arazzo-writer/yml"
	"gopkg.in/yaml.v3"
)

// Version is the latest version of the Arazzo Specification this package validates against.
const (
	Version      = "1.0.1"
	VersionMajor = 1
	VersionMinor = 0
	VersionPatch = 1
)

var (
	nameRegex          = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
	componentNameRegex = regexp.MustCompile(`^[a-zA-Z0-9\.\-_]+$`)
)

// Arazzo is the root object of an Arazzo document.
type Arazzo struct {
	// Arazzo is the version of the Arazzo Specification the document conforms to.
	Arazzo string
	// Info provides metadata about the document.
	Info Info
	// SourceDescriptions lists the API descriptions the workflows orchestrate.
	SourceDescriptions SourceDescriptions
	// Workflows lists the workflows defined by the document.
	Workflows Workflows
	// Components holds reusable objects referenced from workflows.
	Components *Components
	// Extensions holds the x- entries of the document.
	Extensions marshaller.Entries[*yaml.Node]

	core coreArazzo
}

type coreArazzo struct {
	Arazzo             marshaller.Node[string]
	Info               marshaller.Node[*Info]
	SourceDescriptions marshaller.Node[SourceDescriptions]
	Workflows          marshaller.Node[Workflows]
	Components         marshaller.Node[*Components]
	RootNode           *yaml.Node
}

// GetRootNode returns the node the document was decoded from.
func (a *Arazzo) GetRootNode() *yaml.Node {
	return a.core.RootNode
}

type Option[T any] func(o *T)

type unmarshalOptions struct {
	skipValidation bool
}

// WithSkipValidation skips semantic validation of the document during unmarshaling.
// Decoding errors are still returned.
func WithSkipValidation() Option[unmarshalOptions] {
	return func(o *unmarshalOptions) {
		o.skipValidation = true
	}
}

// Unmarshal reads, decodes and validates an Arazzo document.
// The returned []error holds findings about the document; the error is only set when the document could not be read or parsed.
func Unmarshal(ctx context.Context, doc io.Reader, opts ...Option[unmarshalOptions]) (*Arazzo, []error, error) {
	data, err := io.ReadAll(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Arazzo document: %w", err)
	}

	root, err := yml.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal Arazzo document: %w", err)
	}

	a, errs := UnmarshalNode(ctx, root, opts...)
	return a, errs, nil
}

// UnmarshalNode decodes and validates an Arazzo document from an already parsed YAML tree.
func UnmarshalNode(ctx context.Context, root *yaml.Node, opts ...Option[unmarshalOptions]) (*Arazzo, []error) {
	o := unmarshalOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	d := marshaller.NewDecoder()
	a := decodeArazzo(d, root)

	errs := d.Errors()
	if !o.skipValidation {
		errs = append(errs, a.Validate(ctx)...)
	}
	validation.SortValidationErrors(errs)

	return a, errs
}

func decodeArazzo(d *marshaller.Decoder, node *yaml.Node) *Arazzo {
	a := &Arazzo{}

	o := d.Object(node, "arazzo document")
	o.Known("arazzo", "info", "sourceDescriptions", "workflows", "components")

	a.core.RootNode = o.Node
	a.core.Arazzo = marshaller.Field(o, "arazzo", marshaller.String)
	a.core.Info = marshaller.Field(o, "info", decodeInfo)
	a.core.SourceDescriptions = marshaller.Field(o, "sourceDescriptions", marshaller.SliceOf[SourceDescriptions](decodeSourceDescription))
	a.core.Workflows = marshaller.Field(o, "workflows", marshaller.SliceOf[Workflows](decodeWorkflow))
	a.core.Components = marshaller.Field(o, "components", decodeComponents)
	a.Extensions = o.Extensions()

	a.Arazzo = a.core.Arazzo.Value
	if a.core.Info.Value != nil {
		a.Info = *a.core.Info.Value
	}
	a.SourceDescriptions = a.core.SourceDescriptions.Value
	a.Workflows = a.core.Workflows.Value
	a.Components = a.core.Components.Value

	return a
}

// Validate validates the document against the Arazzo Specification.
func (a *Arazzo) Validate(ctx context.Context, opts ...validation.Option) []error {
	opts = append(opts, validation.WithContextObject(a))

	core := a.core
	var errs []error

	arazzoNode := core.Arazzo.GetValueNodeOrRoot(core.RootNode)
	if !core.Arazzo.Present {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, arazzoNode, "arazzo is required"))
	} else if v, err := version.ParseVersion(a.Arazzo); err != nil {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationSupportedVersion, arazzoNode, "invalid Arazzo version in document %s: %s", a.Arazzo, err.Error()))
	} else if v.Major != VersionMajor || v.Minor != VersionMinor || v.Compare(version.Version{Major: VersionMajor, Minor: VersionMinor, Patch: VersionPatch}) > 0 {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationSupportedVersion, arazzoNode, "only Arazzo version %s and below is supported", Version))
	}

	if !core.Info.Present {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, core.RootNode, "info is required"))
	} else if core.Info.Value != nil {
		errs = append(errs, a.Info.Validate()...)
	}

	if len(a.SourceDescriptions) == 0 {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, core.SourceDescriptions.GetValueNodeOrRoot(core.RootNode), "at least one sourceDescription is required"))
	}

	sourceDescriptionNames := make(map[string]bool)
	for i, sourceDescription := range a.SourceDescriptions {
		errs = append(errs, sourceDescription.Validate()...)

		if sourceDescription.Name == "" {
			continue
		}
		if sourceDescriptionNames[sourceDescription.Name] {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationDuplicateKey, core.SourceDescriptions.GetSliceValueNodeOrRoot(i, core.RootNode), "sourceDescription name %s is not unique", sourceDescription.Name))
		}
		sourceDescriptionNames[sourceDescription.Name] = true
	}

	if len(a.Workflows) == 0 {
		errs = append(errs, validation.NewNodeError(validation.RuleValidationRequiredField, core.Workflows.GetValueNodeOrRoot(core.RootNode), "at least one workflow is required"))
	}

	workflowIDs := make(map[string]bool)
	for i, workflow := range a.Workflows {
		errs = append(errs, workflow.Validate(ctx, opts...)...)

		if workflow.WorkflowID == "" {
			continue
		}
		if workflowIDs[workflow.WorkflowID] {
			errs = append(errs, validation.NewNodeError(validation.RuleValidationDuplicateKey, core.Workflows.GetSliceValueNodeOrRoot(i, core.RootNode), "workflowId %s is not unique", workflow.WorkflowID))
		}
		workflowIDs[workflow.WorkflowID] = true
	}

	errs = append(errs, a.validateDependencyCycles()...)

	if a.Components != nil {
		errs = append(errs, a.Components.Validate(ctx, opts...)...)
	}

	return errs
}

// validateDependencyCycles reports workflows whose dependsOn chain leads back to themselves.
func (a *Arazzo) validateDependencyCycles() []error {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int, len(a.Workflows))
	reported := make(map[string]bool)
	var errs []error

	var visit func(w *Workflow, path []string)
	visit = func(w *Workflow, path []string) {
		state[w.WorkflowID] = visiting
		path = append(path, w.WorkflowID)

		for i, dep := range w.DependsOn {
			if dep.IsExpression() {
				continue
			}
			next := a.Workflows.Find(string(dep))
			if next == nil {
				continue
			}

			switch state[next.WorkflowID] {
			case visiting:
				if !reported[w.WorkflowID] {
					reported[w.WorkflowID] = true
					errs = append(errs, validation.NewNodeError(validation.RuleValidationCircularReference, w.core.DependsOn.GetSliceValueNodeOrRoot(i, w.core.RootNode), "circular dependsOn chain: %s", cyclePath(path, next.WorkflowID)))
				}
			case unvisited:
				visit(next, path)
			}
		}

		state[w.WorkflowID] = done
	}

	for _, w := range a.Workflows {
		if state[w.WorkflowID] == unvisited {
			visit(w, nil)
		}
	}

	return errs
}

func cyclePath(path []string, start string) string {
	out := ""
	found := false
	for _, id := range path {
		if id == start {
			found = true
		}
		if found {
			out += id + " -> "
		}
	}
	return out + start
}
