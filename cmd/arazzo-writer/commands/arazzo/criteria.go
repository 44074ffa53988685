package arazzo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SteakFisher/arazzo-writer/arazzo"
	"github.com/SteakFisher/arazzo-writer/arazzo/criterion"
	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/cmdutil"
	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/internal/explore"
	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/json"
	"github.com/SteakFisher/arazzo-writer/yml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var criteriaCmds = &cobra.Command{
	Use:   "criteria",
	Short: "Work with success and failure criteria",
	Long: `Commands for working with the success criteria and action criteria of steps.

Criteria decide whether a step succeeded and which onSuccess or onFailure
action is taken next.`,
}

var criteriaTestCmd = &cobra.Command{
	Use:   "test <file>",
	Short: "Dry-run the criteria of a step against a captured response",
	Long: `Evaluate the success criteria of a step against a captured response, then
report which action the workflow would take next.

The response body is read from a JSON or YAML file given with --response.
Headers are given as 'Name: value' with --header and may be repeated.
Workflow inputs are read from a JSON or YAML file given with --inputs.

XPath criteria cannot be evaluated and are reported as errors.

Example:
  arazzo-writer criteria test pets.arazzo.yaml --workflow adoptPet --step findPets \
    --response response.json --status 200`,
	Args: cmdutil.ExactArgs(1),
	RunE: runCriteriaTest,
}

var (
	criteriaWorkflow string
	criteriaStep     string
	criteriaResponse string
	criteriaStatus   int
	criteriaHeaders  []string
	criteriaInputs   string
)

func init() {
	criteriaTestCmd.Flags().StringVar(&criteriaWorkflow, "workflow", "", "workflowId of the workflow containing the step")
	criteriaTestCmd.Flags().StringVar(&criteriaStep, "step", "", "stepId of the step to test")
	criteriaTestCmd.Flags().StringVar(&criteriaResponse, "response", "", "file holding the response body as JSON or YAML")
	criteriaTestCmd.Flags().IntVar(&criteriaStatus, "status", 200, "response status code")
	criteriaTestCmd.Flags().StringArrayVarP(&criteriaHeaders, "header", "H", nil, "response header as 'Name: value' (can be repeated)")
	criteriaTestCmd.Flags().StringVar(&criteriaInputs, "inputs", "", "file holding the workflow inputs as JSON or YAML")
	_ = criteriaTestCmd.MarkFlagRequired("workflow")
	_ = criteriaTestCmd.MarkFlagRequired("step")

	criteriaCmds.AddCommand(criteriaTestCmd)
}

func runCriteriaTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	doc, err := loadDocument(ctx, args[0], cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	rt, err := buildRuntime(criteriaStatus, criteriaHeaders, criteriaResponse, criteriaInputs)
	if err != nil {
		return err
	}

	outcome, err := testCriteria(ctx, doc, criteriaWorkflow, criteriaStep, rt)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), outcome.String())

	if !outcome.Passed {
		return cmdutil.Exit(cmdutil.ExitFailure)
	}
	return nil
}

const (
	ErrWorkflowNotFound = errors.Error("workflow not found")
	ErrStepNotFound     = errors.Error("step not found")
	ErrInvalidHeader    = errors.Error("invalid header")
)

func buildRuntime(status int, headers []string, responseFile, inputsFile string) (*criterion.Runtime, error) {
	rt := &criterion.Runtime{
		StatusCode:      status,
		ResponseHeaders: map[string]string{},
	}

	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, ErrInvalidHeader.Wrapf("%q, expected 'Name: value'", h)
		}
		rt.ResponseHeaders[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	if responseFile != "" {
		body, err := readNode(responseFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		rt.ResponseBody = body
	}

	if inputsFile != "" {
		node, err := readNode(inputsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read inputs: %w", err)
		}
		v, err := json.ToAny(node)
		if err != nil {
			return nil, fmt.Errorf("failed to read inputs: %w", err)
		}
		inputs, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("failed to read inputs: expected an object, got %T", v)
		}
		rt.Inputs = inputs
	}

	return rt, nil
}

func readNode(file string) (*yaml.Node, error) {
	data, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return nil, err
	}
	return yml.Parse(data)
}

type criterionResult struct {
	Criterion *criterion.Criterion
	Passed    bool
	Err       error
}

// criteriaOutcome is the result of dry-running a step.
type criteriaOutcome struct {
	Workflow string
	Step     string
	Results  []criterionResult
	// Passed is true when every success criterion held.
	Passed bool
	// Next describes the action the workflow would take.
	Next string
}

func (o *criteriaOutcome) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s / %s\n", o.Workflow, o.Step)

	if len(o.Results) == 0 {
		sb.WriteString("  no success criteria, the step succeeds when the call completes\n")
	}
	for _, r := range o.Results {
		desc := explore.DescribeCriterion(r.Criterion)
		switch {
		case r.Err != nil:
			fmt.Fprintf(&sb, "  ⚠️  %s: %s\n", desc, r.Err.Error())
		case r.Passed:
			fmt.Fprintf(&sb, "  ✅ %s\n", desc)
		default:
			fmt.Fprintf(&sb, "  ❌ %s\n", desc)
		}
	}

	if o.Passed {
		sb.WriteString("step succeeded")
	} else {
		sb.WriteString("step failed")
	}
	fmt.Fprintf(&sb, ", next: %s\n", o.Next)

	return sb.String()
}

// testCriteria evaluates the success criteria of a step against rt and picks the action that follows.
func testCriteria(ctx context.Context, doc *arazzo.Arazzo, workflowID, stepID string, rt *criterion.Runtime) (*criteriaOutcome, error) {
	w := doc.Workflows.Find(workflowID)
	if w == nil {
		return nil, ErrWorkflowNotFound.Wrapf("%s", workflowID)
	}
	idx := -1
	for i, s := range w.Steps {
		if s.StepID == stepID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrStepNotFound.Wrapf("%s in workflow %s", stepID, workflowID)
	}
	step := w.Steps[idx]

	outcome := &criteriaOutcome{Workflow: workflowID, Step: stepID, Passed: true}

	for _, c := range step.SuccessCriteria {
		ok, err := c.Evaluate(ctx, rt)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		outcome.Results = append(outcome.Results, criterionResult{Criterion: c, Passed: ok && err == nil, Err: err})
		if !ok || err != nil {
			outcome.Passed = false
		}
	}

	last := idx == len(w.Steps)-1

	if outcome.Passed {
		outcome.Next = nextSuccessAction(ctx, doc, w, step, rt, last)
	} else {
		outcome.Next = nextFailureAction(ctx, doc, w, step, rt)
	}

	return outcome, nil
}

func nextSuccessAction(ctx context.Context, doc *arazzo.Arazzo, w *arazzo.Workflow, step *arazzo.Step, rt *criterion.Runtime, last bool) string {
	for _, actions := range [][]*arazzo.ReusableSuccessAction{step.OnSuccess, w.SuccessActions} {
		for _, r := range actions {
			var a *arazzo.SuccessAction
			if doc.Components != nil {
				a = r.GetObject(doc.Components.SuccessActions)
			} else {
				a = r.GetObject(nil)
			}
			if a == nil || !allHold(ctx, a.Criteria, rt) {
				continue
			}
			if a.Type == arazzo.SuccessActionTypeEnd {
				return fmt.Sprintf("%s (end the workflow)", a.Name)
			}
			return fmt.Sprintf("%s (go to %s)", a.Name, actionTarget(a.StepID, a.WorkflowID))
		}
	}

	if last {
		return "end of workflow"
	}
	return "continue with the next step"
}

func nextFailureAction(ctx context.Context, doc *arazzo.Arazzo, w *arazzo.Workflow, step *arazzo.Step, rt *criterion.Runtime) string {
	for _, actions := range [][]*arazzo.ReusableFailureAction{step.OnFailure, w.FailureActions} {
		for _, r := range actions {
			var a *arazzo.FailureAction
			if doc.Components != nil {
				a = r.GetObject(doc.Components.FailureActions)
			} else {
				a = r.GetObject(nil)
			}
			if a == nil || !allHold(ctx, a.Criteria, rt) {
				continue
			}
			switch a.Type {
			case arazzo.FailureActionTypeEnd:
				return fmt.Sprintf("%s (end the workflow)", a.Name)
			case arazzo.FailureActionTypeRetry:
				desc := fmt.Sprintf("%s (retry", a.Name)
				if a.RetryAfter != nil {
					desc += fmt.Sprintf(" after %gs", *a.RetryAfter)
				}
				if a.RetryLimit != nil {
					desc += fmt.Sprintf(", up to %d times", *a.RetryLimit)
				}
				if a.StepID != nil || a.WorkflowID != nil {
					desc += " via " + actionTarget(a.StepID, a.WorkflowID)
				}
				return desc + ")"
			default:
				return fmt.Sprintf("%s (go to %s)", a.Name, actionTarget(a.StepID, a.WorkflowID))
			}
		}
	}

	return "workflow fails"
}

func actionTarget(stepID *string, workflowID *expression.Expression) string {
	if stepID != nil {
		return "step " + *stepID
	}
	if workflowID != nil {
		return "workflow " + workflowID.String()
	}
	return "nowhere"
}

func allHold(ctx context.Context, criteria []*criterion.Criterion, rt *criterion.Runtime) bool {
	for _, c := range criteria {
		ok, err := c.Evaluate(ctx, rt)
		if err != nil || !ok {
			return false
		}
	}
	return true
}
