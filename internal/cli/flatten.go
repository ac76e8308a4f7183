package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellsolve/pkg/exchange"
)

// flattenCommand creates the flatten command.
func (c *CLI) flattenCommand() *cobra.Command {
	var (
		flags  solveFlags
		layer  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "flatten [document]",
		Short: "List the resolved leaf rectangles of a document",
		Long: `Solve a document (or reuse its cached layout) and list every leaf rectangle
with its hierarchical path, layer and coordinates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			doc, err := exchange.ReadFile(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), cfg, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			result, err := runner.Execute(cmd.Context(), doc, flags.options(cmd, cfg))
			if err != nil {
				return err
			}
			shapes := result.Shapes
			if layer != "" {
				shapes = exchange.ByLayer(shapes)[layer]
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(shapes)
			}
			writeShapeTable(cmd.OutOrStdout(), shapes)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&layer, "layer", "", "only list shapes on this layer")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print shapes as JSON")

	return cmd
}

// writeShapeTable renders shapes as a bordered table.
func writeShapeTable(w io.Writer, shapes []exchange.Shape) {
	rows := make([][]string, len(shapes))
	for i, s := range shapes {
		rows[i] = []string{
			s.Path,
			s.Layer,
			strconv.FormatInt(s.Box.X1, 10),
			strconv.FormatInt(s.Box.Y1, 10),
			strconv.FormatInt(s.Box.X2, 10),
			strconv.FormatInt(s.Box.Y2, 10),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Path", "Layer", "x1", "y1", "x2", "y2").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col >= 2 {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("  %d shapes", len(shapes))))
}
