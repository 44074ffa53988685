package arazzo

import (
	"fmt"
	"io"
	"strings"

	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/cmdutil"
	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/spf13/cobra"
)

var expressionCmds = &cobra.Command{
	Use:   "expression",
	Short: "Work with Arazzo runtime expressions",
	Long: `Commands for working with Arazzo runtime expressions.

Runtime expressions such as $steps.findPet.outputs.petId or
$response.body#/pets/0/id select values from the inputs, requests, responses
and outputs of a running workflow.`,
}

var expressionCheckCmd = &cobra.Command{
	Use:   "check <expression>...",
	Short: "Check the syntax of runtime expressions",
	Long: `Check the syntax of one or more runtime expressions.

An argument starting with '$' is checked as a single expression. Any other
argument is treated as a string with embedded expressions in {$...} form,
for example 'Bearer {$inputs.token}', and every embedded expression is checked.

Examples:
  arazzo-writer expression check '$steps.findPet.outputs.petId'
  arazzo-writer expression check '$response.body#/pets/0' 'id-{$inputs.id}'`,
	Args: cmdutil.MinimumArgs(1),
	RunE: runExpressionCheck,
}

func init() {
	expressionCmds.AddCommand(expressionCheckCmd)
}

func runExpressionCheck(cmd *cobra.Command, args []string) error {
	invalid := 0
	for _, arg := range args {
		if !checkExpression(cmd.OutOrStdout(), arg) {
			invalid++
		}
	}
	if invalid > 0 {
		return cmdutil.Exit(cmdutil.ExitFailure)
	}
	return nil
}

// checkExpression writes the outcome of checking arg to w and reports whether it is valid.
func checkExpression(w io.Writer, arg string) bool {
	arg = strings.TrimSpace(arg)

	if !strings.HasPrefix(arg, "$") {
		embedded := expression.ExtractExpressions(arg)
		if len(embedded) == 0 {
			fmt.Fprintf(w, "❌ %s: no runtime expressions found\n", arg)
			return false
		}
		if errs := expression.ValidateEmbedded(arg); len(errs) > 0 {
			fmt.Fprintf(w, "❌ %s\n", arg)
			for _, err := range errs {
				fmt.Fprintf(w, "   %s\n", err.Error())
			}
			return false
		}
		fmt.Fprintf(w, "✅ %s\n", arg)
		for _, e := range embedded {
			fmt.Fprintf(w, "   %s (%s)\n", e, e.GetType())
		}
		return true
	}

	e := expression.Expression(arg)
	if err := e.Validate(); err != nil {
		fmt.Fprintf(w, "❌ %s: %s\n", e, err.Error())
		return false
	}

	typ, reference, parts, pointer := e.GetParts()
	fmt.Fprintf(w, "✅ %s\n   type: %s\n", e, typ)
	if reference != "" {
		fmt.Fprintf(w, "   reference: %s\n", reference)
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "   parts: %s\n", strings.Join(parts, "."))
	}
	if pointer != "" {
		fmt.Fprintf(w, "   pointer: %s\n", pointer)
	}
	return true
}
