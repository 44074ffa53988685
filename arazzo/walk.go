package arazzo

import (
	"context"
	"iter"
	"strconv"

	"github.com/SteakFisher/arazzo-writer/jsonpointer"
)

// WalkKind identifies the type of model yielded by Walk.
type WalkKind string

const (
	WalkKindSourceDescription WalkKind = "sourceDescription"
	WalkKindWorkflow          WalkKind = "workflow"
	WalkKindStep              WalkKind = "step"
)

// WalkItem is a single model visited by Walk.
type WalkItem struct {
	Kind WalkKind
	// Location is the JSON pointer of the model within the document.
	Location jsonpointer.JSONPointer

	SourceDescription *SourceDescription
	Workflow          *Workflow
	// Step is set for WalkKindStep, alongside the Workflow it belongs to.
	Step *Step
}

// Walk returns an iterator over the source descriptions, workflows and steps of the document in document order.
// Iteration stops early when ctx is cancelled.
func Walk(ctx context.Context, a *Arazzo) iter.Seq[WalkItem] {
	return func(yield func(WalkItem) bool) {
		if a == nil {
			return
		}

		for i, sd := range a.SourceDescriptions {
			if ctx.Err() != nil {
				return
			}
			loc := jsonpointer.PartsToJSONPointer([]string{"sourceDescriptions", strconv.Itoa(i)})
			if !yield(WalkItem{Kind: WalkKindSourceDescription, Location: loc, SourceDescription: sd}) {
				return
			}
		}

		for i, w := range a.Workflows {
			if ctx.Err() != nil {
				return
			}
			wloc := []string{"workflows", strconv.Itoa(i)}
			if !yield(WalkItem{Kind: WalkKindWorkflow, Location: jsonpointer.PartsToJSONPointer(wloc), Workflow: w}) {
				return
			}

			for j, s := range w.Steps {
				if ctx.Err() != nil {
					return
				}
				loc := jsonpointer.PartsToJSONPointer(append(wloc, "steps", strconv.Itoa(j)))
				if !yield(WalkItem{Kind: WalkKindStep, Location: loc, Workflow: w, Step: s}) {
					return
				}
			}
		}
	}
}
