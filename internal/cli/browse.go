package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/exchange"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var flags solveFlags

	cmd := &cobra.Command{
		Use:   "browse [document]",
		Short: "Explore a solved cell tree interactively",
		Args:  cobra.ExactArgs(1),
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

			spinner := newSpinner(cmd.Context(), "Solving...")
			spinner.Start()
			result, err := runner.Execute(cmd.Context(), doc, flags.options(cmd, cfg))
			spinner.Stop()
			if err != nil {
				return err
			}

			p := tea.NewProgram(newBrowseModel(result.Root), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// =============================================================================
// browseModel - Interactive cell tree
// =============================================================================

// treeRow is one visible line of the tree. shared marks a cell already
// shown higher up; its subtree is not repeated.
type treeRow struct {
	cell   *cell.Cell
	depth  int
	shared bool
}

// browseModel is the bubbletea model for the cell tree browser.
type browseModel struct {
	root     *cell.Cell
	expanded map[cell.ID]bool
	rows     []treeRow
	cursor   int
	offset   int
	height   int
}

func newBrowseModel(root *cell.Cell) browseModel {
	m := browseModel{
		root:     root,
		expanded: map[cell.ID]bool{root.ID(): true},
		height:   15,
	}
	m.rebuild()
	return m
}

// rebuild recomputes the visible rows from the expansion state.
func (m *browseModel) rebuild() {
	m.rows = nil
	seen := make(map[cell.ID]bool)
	var visit func(c *cell.Cell, depth int)
	visit = func(c *cell.Cell, depth int) {
		if seen[c.ID()] {
			m.rows = append(m.rows, treeRow{cell: c, depth: depth, shared: true})
			return
		}
		seen[c.ID()] = true
		m.rows = append(m.rows, treeRow{cell: c, depth: depth})
		if !m.expanded[c.ID()] {
			return
		}
		for _, ch := range c.Children() {
			visit(ch, depth+1)
		}
	}
	visit(m.root, 0)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.scroll()
}

func (m *browseModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// selected returns the row under the cursor.
func (m browseModel) selected() treeRow { return m.rows[m.cursor] }

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.scroll()
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				m.scroll()
			}
		case "right", "l", "enter", " ":
			row := m.selected()
			if !row.cell.IsLeaf() && !row.shared && !m.expanded[row.cell.ID()] {
				m.expanded[row.cell.ID()] = true
				m.rebuild()
			}
		case "left", "h":
			row := m.selected()
			if m.expanded[row.cell.ID()] && !row.shared {
				delete(m.expanded, row.cell.ID())
				m.rebuild()
				break
			}
			for i := m.cursor - 1; i >= 0; i-- {
				if m.rows[i].depth == row.depth-1 {
					m.cursor = i
					m.scroll()
					break
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 12
		if m.height < 5 {
			m.height = 5
		}
		m.scroll()
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Cell Tree"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  → expand  ← collapse  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(detailBoxStyle.Render(describeCell(m.selected())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))
	return b.String()
}

func (m browseModel) renderRow(i int) string {
	row := m.rows[i]
	c := row.cell

	marker := "•"
	switch {
	case row.shared:
		marker = "↺"
	case c.IsLeaf():
	case m.expanded[c.ID()]:
		marker = "▾"
	default:
		marker = "▸"
	}

	cursor := "  "
	if i == m.cursor {
		cursor = "▸ "
	}
	line := cursor + strings.Repeat("  ", row.depth) + marker + " " + c.Name()
	if c.Layer() != "" {
		line += " " + listDimStyle.Render("["+c.Layer()+"]")
	}
	if r := reuseLabel(c.Reuse()); r != "" {
		line += " " + r
	}

	switch {
	case i == m.cursor:
		return listSelectedStyle.Render(line)
	case row.shared:
		return listDimStyle.Render(line)
	default:
		return listNormalStyle.Render(line)
	}
}

// describeCell renders the detail panel for the selected row.
func describeCell(row treeRow) string {
	c := row.cell
	lines := []string{StyleValue.Render(c.Key())}

	kind := "container"
	if c.IsLeaf() {
		kind = "leaf on " + c.Layer()
	}
	lines = append(lines, StyleDim.Render("kind      ")+kind)

	box, size := formatBox(c)
	lines = append(lines, StyleDim.Render("box       ")+box)
	if size != "" {
		lines = append(lines, StyleDim.Render("size      ")+size)
	}
	lines = append(lines, StyleDim.Render("reuse     ")+c.Reuse().String())
	if !c.IsLeaf() {
		lines = append(lines, StyleDim.Render("children  ")+fmt.Sprint(c.NumChildren()))
	}
	lines = append(lines, StyleDim.Render("relations ")+fmt.Sprint(len(c.Constraints())))
	if row.shared {
		lines = append(lines, StyleDim.Render("shared with an earlier container"))
	}
	return strings.Join(lines, "\n")
}
