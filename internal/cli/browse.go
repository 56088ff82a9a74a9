package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orrery/pkg/planet"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailStyle       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

func (c *CLI) browseCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "Explore a layout interactively",
		Long: `Browse lays out a hierarchy file and lists its bodies ordered by ring and
angle. Selecting a body shows its emitted record.

A file ending in .planets.json is read as an existing layout and shown as is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			sys, err := loadSystem(cmd.Context(), runner, args[0], flags.options(cmd, c.Config.Layout))
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(NewSystemListModel(sys), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// =============================================================================
// SystemListModel - Interactive body listing
// =============================================================================

// SystemListModel is the bubbletea model for browsing a laid-out system.
type SystemListModel struct {
	System  *planet.System
	Planets []planet.Planet
	Cursor  int
	Offset  int
	Height  int
	Detail  bool
}

// NewSystemListModel lists sys ordered by ring, angle and id.
func NewSystemListModel(sys *planet.System) SystemListModel {
	return SystemListModel{
		System:  sys,
		Planets: sys.SortedByOrbit(),
		Height:  15,
	}
}

func (m SystemListModel) Init() tea.Cmd {
	return nil
}

func (m SystemListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if !m.Detail {
				return m, tea.Quit
			}
			m.Detail = false
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Planets)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Detail = !m.Detail && len(m.Planets) > 0
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m SystemListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Orrery · %s", m.System.Mode)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if m.Detail {
		b.WriteString(m.detailView(m.Planets[m.Cursor]))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Planets))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Planets[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		parent := p.Parent
		if parent == "" {
			parent = "—"
		}
		rows = append(rows, append([]string{cursor, p.ID, parent}, m.placementCells(p)...))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(m.headers()...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			}
			switch {
			case m.Offset+row == m.Cursor:
				return listSelectedStyle
			case col == 2:
				return listDimStyle
			default:
				return listNormalStyle
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Planets))))
	return b.String()
}

func (m SystemListModel) headers() []string {
	if m.System.Mode == planet.ModeJitter {
		return []string{"", "Body", "Parent", "X", "Y", "Z", "Size"}
	}
	return []string{"", "Body", "Parent", "Depth", "Radius", "Theta0", "Omega"}
}

func (m SystemListModel) placementCells(p planet.Planet) []string {
	if m.System.Mode == planet.ModeJitter {
		return []string{
			formatFloat(p.Position.X),
			formatFloat(p.Position.Y),
			formatFloat(p.Position.Z),
			formatFloat(p.Size),
		}
	}
	return []string{
		strconv.Itoa(p.Depth),
		formatFloat(p.Radius),
		formatFloat(p.Theta0),
		formatFloat(p.Omega),
	}
}

func (m SystemListModel) detailView(p planet.Planet) string {
	data, err := json.MarshalIndent(m.System.Record(p), "", "  ")
	if err != nil {
		return StyleWarning.Render(err.Error())
	}
	return detailStyle.Render(StyleHighlight.Render(p.ID) + "\n" + string(data))
}
