package arazzo

import "github.com/spf13/cobra"

// Apply adds the document commands to rootCmd.
func Apply(rootCmd *cobra.Command) {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(expressionCmds)
	rootCmd.AddCommand(criteriaCmds)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(exploreCmd)
}
