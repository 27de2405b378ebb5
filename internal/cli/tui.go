package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/barcodewheel/pkg/catalog"
)

// List styles
var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// ProductListModel - Interactive product selection
// =============================================================================

// ProductListModel is the bubbletea model for picking which catalog
// products end up on the wheel.
type ProductListModel struct {
	Products  []catalog.Product
	Cursor    int
	Checked   map[int]bool
	Confirmed bool
	Height    int
	Offset    int
}

// NewProductListModel creates a product list model with nothing checked.
func NewProductListModel(products []catalog.Product) ProductListModel {
	return ProductListModel{
		Products: products,
		Cursor:   0,
		Checked:  map[int]bool{},
		Height:   15,
		Offset:   0,
	}
}

func (m ProductListModel) Init() tea.Cmd {
	return nil
}

func (m ProductListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Products)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			if m.Checked[m.Cursor] {
				delete(m.Checked, m.Cursor)
			} else {
				m.Checked[m.Cursor] = true
			}
		case "a":
			for i := range m.Products {
				m.Checked[i] = true
			}
		case "n":
			m.Checked = map[int]bool{}
		case "enter":
			if len(m.Checked) == 0 {
				return m, nil
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ProductListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Products"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ␣ toggle  a all  n none  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Products) {
		end = len(m.Products)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Products[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		check := " "
		if m.Checked[i] {
			check = "✓"
		}

		picture := "—"
		if p.Picture != "" {
			picture = filepath.Base(p.Picture)
		}

		rows = append(rows, []string{cursor, check, fmt.Sprintf("%d", i+1), p.UPC.WithCheckDigit(), p.Name, picture})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "#", "UPC", "Product", "Picture").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Products) {
				return lipgloss.NewStyle()
			}
			isCurrent := actualIdx == m.Cursor
			isChecked := m.Checked[actualIdx]

			base := lipgloss.NewStyle()
			if col == 5 {
				base = base.Foreground(colorDim)
			}

			switch {
			case isCurrent && isChecked && col != 5:
				return base.Foreground(colorGreen).Bold(true)
			case isCurrent:
				return base.Bold(true)
			case isChecked && col != 5:
				return base.Foreground(colorGreen)
			default:
				return base
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d selected", m.Cursor+1, len(m.Products), len(m.Checked))))

	return b.String()
}

// Picks returns the checked catalog positions in catalog order.
func (m ProductListModel) Picks() []int {
	picks := make([]int, 0, len(m.Checked))
	for i := range m.Checked {
		picks = append(picks, i)
	}
	sort.Ints(picks)
	return picks
}

// runProductPicker shows the picker and reports the confirmed picks.
// ok is false when the user backed out without confirming.
func runProductPicker(products []catalog.Product) (picks []int, ok bool, err error) {
	p := tea.NewProgram(NewProductListModel(products))
	finalModel, err := p.Run()
	if err != nil {
		return nil, false, fmt.Errorf("product picker: %w", err)
	}

	m, isModel := finalModel.(ProductListModel)
	if !isModel || !m.Confirmed {
		return nil, false, nil
	}
	return m.Picks(), true, nil
}
