// Package render turns Arazzo documents into Markdown summaries and Mermaid flowcharts.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SteakFisher/arazzo-writer/arazzo"
	"github.com/SteakFisher/arazzo-writer/arazzo/criterion"
	"github.com/SteakFisher/arazzo-writer/expression"
)

// Format selects an output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatMermaid  Format = "mermaid"
)

// Render dispatches to Markdown or Mermaid.
func Render(a *arazzo.Arazzo, format Format) (string, error) {
	switch format {
	case FormatMarkdown:
		return Markdown(a), nil
	case FormatMermaid:
		return Mermaid(a), nil
	default:
		return "", fmt.Errorf("unsupported render format %q, expected %s or %s", format, FormatMarkdown, FormatMermaid)
	}
}

// Markdown renders a human readable summary of the document: its sources and, per workflow, a table of steps.
func Markdown(a *arazzo.Arazzo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", a.Info.Title)
	fmt.Fprintf(&b, "Version %s, Arazzo %s\n\n", a.Info.Version, a.Arazzo)
	if a.Info.Summary != nil {
		fmt.Fprintf(&b, "%s\n\n", *a.Info.Summary)
	}
	if a.Info.Description != nil {
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(*a.Info.Description))
	}

	if len(a.SourceDescriptions) > 0 {
		b.WriteString("## Source descriptions\n\n")
		b.WriteString("| Name | Type | URL |\n|---|---|---|\n")
		for _, sd := range a.SourceDescriptions {
			typ := sd.Type
			if typ == "" {
				typ = arazzo.SourceDescriptionTypeOpenAPI
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(sd.Name), typ, cell(sd.URL))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Workflows\n")
	for _, w := range a.Workflows {
		writeWorkflow(&b, a, w)
	}

	return b.String()
}

func writeWorkflow(b *strings.Builder, a *arazzo.Arazzo, w *arazzo.Workflow) {
	fmt.Fprintf(b, "\n### %s\n\n", w.WorkflowID)
	if w.Summary != nil {
		fmt.Fprintf(b, "%s\n\n", *w.Summary)
	}
	if len(w.DependsOn) > 0 {
		deps := make([]string, 0, len(w.DependsOn))
		for _, d := range w.DependsOn {
			deps = append(deps, code(string(d)))
		}
		fmt.Fprintf(b, "Depends on %s.\n\n", strings.Join(deps, ", "))
	}

	b.WriteString("| # | Step | Target | Success criteria | Outputs |\n|---|---|---|---|---|\n")
	for i, s := range w.Steps {
		var criteria []string
		for _, c := range s.SuccessCriteria {
			criteria = append(criteria, describeCriterion(c))
		}
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s |\n",
			i+1, cell(s.StepID), code(s.Target()), strings.Join(criteria, "<br>"), cell(strings.Join(s.Outputs.Keys(), ", ")))
	}

	if len(w.Outputs) > 0 {
		b.WriteString("\nOutputs:\n\n")
		for _, o := range w.Outputs {
			fmt.Fprintf(b, "- %s: %s\n", o.Key, code(string(o.Value)))
		}
	}

	var actions []string
	for _, s := range w.Steps {
		for _, r := range s.OnSuccess {
			if act := successAction(a, r); act != nil {
				actions = append(actions, fmt.Sprintf("- %s on success: %s", code(s.StepID), describeAction(act.Name, string(act.Type), act.StepID, act.WorkflowID)))
			}
		}
		for _, r := range s.OnFailure {
			if act := failureAction(a, r); act != nil {
				desc := describeAction(act.Name, string(act.Type), act.StepID, act.WorkflowID)
				if act.Type == arazzo.FailureActionTypeRetry && act.RetryLimit != nil {
					desc += fmt.Sprintf(", up to %d times", *act.RetryLimit)
				}
				actions = append(actions, fmt.Sprintf("- %s on failure: %s", code(s.StepID), desc))
			}
		}
	}
	if len(actions) > 0 {
		b.WriteString("\nActions:\n\n")
		b.WriteString(strings.Join(actions, "\n"))
		b.WriteString("\n")
	}
}

func describeCriterion(c *criterion.Criterion) string {
	typ := c.Type.GetType()
	if typ == criterion.CriterionTypeSimple {
		return code(c.Condition)
	}
	ctx := ""
	if c.Context != nil {
		ctx = " on " + code(string(*c.Context))
	}
	return fmt.Sprintf("%s %s%s", typ, code(c.Condition), ctx)
}

func describeAction(name, typ string, stepID *string, workflowID *expression.Expression) string {
	desc := fmt.Sprintf("%s (%s)", name, typ)
	switch {
	case stepID != nil:
		desc += " to step " + code(*stepID)
	case workflowID != nil:
		desc += " to workflow " + code(string(*workflowID))
	}
	return desc
}

func successAction(a *arazzo.Arazzo, r *arazzo.ReusableSuccessAction) *arazzo.SuccessAction {
	if a.Components == nil {
		return r.GetObject(nil)
	}
	return r.GetObject(a.Components.SuccessActions)
}

func failureAction(a *arazzo.Arazzo, r *arazzo.ReusableFailureAction) *arazzo.FailureAction {
	if a.Components == nil {
		return r.GetObject(nil)
	}
	return r.GetObject(a.Components.FailureActions)
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}

func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + cell(s) + "`"
}

// Mermaid renders a flowchart with one subgraph per workflow. Solid edges follow step order,
// labelled edges follow goto and retry actions and thick edges lead into called workflows.
func Mermaid(a *arazzo.Arazzo) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	for _, w := range a.Workflows {
		wfID := nodeID(w.WorkflowID)
		fmt.Fprintf(&b, "  subgraph %s[%s]\n", wfID, label(w.WorkflowID))
		for _, s := range w.Steps {
			fmt.Fprintf(&b, "    %s[%s]\n", stepNodeID(w, s.StepID), label(s.StepID+"<br/>"+s.Target()))
		}
		for i := 1; i < len(w.Steps); i++ {
			fmt.Fprintf(&b, "    %s --> %s\n", stepNodeID(w, w.Steps[i-1].StepID), stepNodeID(w, w.Steps[i].StepID))
		}
		b.WriteString("  end\n")
	}

	for _, w := range a.Workflows {
		for _, d := range w.DependsOn {
			if a.Workflows.Find(string(d)) != nil {
				fmt.Fprintf(&b, "  %s -. dependsOn .-> %s\n", nodeID(string(d)), nodeID(w.WorkflowID))
			}
		}

		for _, s := range w.Steps {
			from := stepNodeID(w, s.StepID)

			if s.WorkflowID != nil && a.Workflows.Find(string(*s.WorkflowID)) != nil {
				fmt.Fprintf(&b, "  %s ==> %s\n", from, nodeID(string(*s.WorkflowID)))
			}

			for _, r := range s.OnSuccess {
				act := successAction(a, r)
				if act == nil || act.Type != arazzo.SuccessActionTypeGoto {
					continue
				}
				if to := actionTarget(a, w, act.StepID, act.WorkflowID); to != "" {
					fmt.Fprintf(&b, "  %s -- %s --> %s\n", from, label(act.Name), to)
				}
			}

			for _, r := range s.OnFailure {
				act := failureAction(a, r)
				if act == nil || act.Type == arazzo.FailureActionTypeEnd {
					continue
				}
				to := actionTarget(a, w, act.StepID, act.WorkflowID)
				if to == "" && act.Type == arazzo.FailureActionTypeRetry {
					to = from
				}
				if to != "" {
					fmt.Fprintf(&b, "  %s -. %s .-> %s\n", from, label(act.Name), to)
				}
			}
		}
	}

	return b.String()
}

func actionTarget(a *arazzo.Arazzo, w *arazzo.Workflow, stepID *string, workflowID *expression.Expression) string {
	switch {
	case stepID != nil && w.Steps.Find(*stepID) != nil:
		return stepNodeID(w, *stepID)
	case workflowID != nil && a.Workflows.Find(string(*workflowID)) != nil:
		return nodeID(string(*workflowID))
	}
	return ""
}

var unsafeID = regexp.MustCompile(`[^A-Za-z0-9_]`)

func nodeID(s string) string {
	return unsafeID.ReplaceAllString(s, "_")
}

func stepNodeID(w *arazzo.Workflow, stepID string) string {
	return nodeID(w.WorkflowID) + "__" + nodeID(stepID)
}

func label(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "#quot;") + `"`
}
