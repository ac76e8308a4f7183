package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellsolve/pkg/exchange"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output string
		to     string
	)

	cmd := &cobra.Command{
		Use:   "convert [document]",
		Short: "Re-encode a document as JSON, TOML or YAML",
		Long: `Read a document in any supported encoding and write it in another. The output
encoding follows --to, or the extension of --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := exchange.ReadFile(args[0])
			if err != nil {
				return err
			}
			if output != "" && to == "" {
				if err := exchange.WriteFile(output, doc); err != nil {
					return err
				}
				printFile(output)
				return nil
			}

			if to == "" {
				to = string(exchange.FormatYAML)
			}
			f, err := exchange.ParseFormat(to)
			if err != nil {
				return err
			}
			if output == "" {
				return exchange.Write(cmd.OutOrStdout(), doc, f)
			}
			data, err := exchange.Marshal(doc, f)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty)")
	cmd.Flags().StringVar(&to, "to", "", "output encoding: json, toml, yaml (default yaml for stdout)")

	return cmd
}
