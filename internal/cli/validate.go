package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/exchange"
	"github.com/matzehuels/cellsolve/pkg/pipeline"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [document]",
		Short: "Check a document's constraints and structure without solving",
		Long: `Check every constraint string against the relation grammar, then check the
document structure (refs, instances and uses). Nothing is solved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := exchange.ReadFile(args[0])
			if err != nil {
				return err
			}
			issues := pipeline.ValidateDocument(cmd.Context(), doc)
			if len(issues) == 0 {
				printSuccess("%s is valid", args[0])
				return nil
			}
			printIssues(cmd.OutOrStdout(), issues)
			return errors.New(errors.ErrCodeInvalidInput, "%s has %d issue(s)", args[0], len(issues))
		},
	}
}

// printIssues lists issues, pointing at the offending offset of the
// relation text when one is known.
func printIssues(w io.Writer, issues []pipeline.Issue) {
	for _, is := range issues {
		fmt.Fprintf(w, "%s %s %s\n",
			styleIconError.Render(iconError),
			StyleDim.Render(is.Where+":"),
			is.Message)
		if is.Expr == "" {
			continue
		}
		fmt.Fprintf(w, "    %s\n", StyleValue.Render(is.Expr))
		if is.Offset >= 0 && is.Offset <= len(is.Expr) {
			fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", is.Offset), StyleWarning.Render("^"))
		}
	}
}
