package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fintrack/internal/app"
	"github.com/MrJamesThe3rd/fintrack/internal/category"
)

type categoriesState int

const (
	categoriesStateBrowse categoriesState = iota
	categoriesStateAdd
)

// Preset colors offered by the add form.
var palette = []string{"#10B981", "#6366F1", "#8B5CF6", "#F59E0B", "#3B82F6", "#EC4899", "#F97316", "#EF4444", "#14B8A6", "#0EA5E9"}

type CategoriesModel struct {
	CommonModel
	coord *app.Coordinator

	state  categoriesState
	cursor int
	form   *huh.Form
	in     *categoryInput
	status string
}

type categoryInput struct {
	name  string
	icon  string
	color string
	kind  category.Kind
}

func NewCategoriesModel(coord *app.Coordinator) CategoriesModel {
	return CategoriesModel{coord: coord}
}

func (m CategoriesModel) Title() string { return "Categories" }

func (m CategoriesModel) ShortHelp() string {
	if m.state == categoriesStateAdd {
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return "Esc: back | ↑/↓: move | a: add | x: delete"
}

func (m CategoriesModel) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return coordMsg{err: m.coord.LoadCategories(ctx)}
	}
}

func (m CategoriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(coordMsg); ok {
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.cursor = min(m.cursor, max(len(m.coord.Snapshot().Categories)-1, 0))

		return m, nil
	}

	if m.state == categoriesStateAdd {
		return m.updateAdd(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	cats := m.coord.Snapshot().Categories

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(cats)-1 {
			m.cursor++
		}
	case "a":
		m.in = &categoryInput{color: palette[0], kind: category.KindExpense}
		m.form = m.buildForm()
		m.state = categoriesStateAdd

		return m, m.form.Init()
	case "x":
		if m.cursor < len(cats) {
			return m, m.deleteCmd(cats[m.cursor].ID)
		}
	}

	return m, nil
}

func (m CategoriesModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = categoriesStateBrowse
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = categoriesStateBrowse
	m.form = nil

	return m, m.createCmd(category.CreateParams{
		Name:  m.in.name,
		Icon:  m.in.icon,
		Color: m.in.color,
		Kind:  m.in.kind,
	})
}

func (m CategoriesModel) buildForm() *huh.Form {
	colors := make([]huh.Option[string], len(palette))
	for i, c := range palette {
		colors[i] = huh.NewOption(swatch(c)+" "+c, c)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.in.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}

					return nil
				}),

			huh.NewInput().
				Key("icon").
				Title("Icon").
				Placeholder(category.DefaultIcon).
				Value(&m.in.icon),

			huh.NewSelect[string]().
				Key("color").
				Title("Color").
				Options(colors...).
				Value(&m.in.color),

			huh.NewSelect[category.Kind]().
				Key("kind").
				Title("Used for").
				Options(
					huh.NewOption("Expenses", category.KindExpense),
					huh.NewOption("Income", category.KindIncome),
					huh.NewOption("Both", category.KindBoth),
				).
				Value(&m.in.kind),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m CategoriesModel) View() string {
	cats := m.coord.Snapshot().Categories

	var sb strings.Builder

	for i, c := range cats {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		fmt.Fprintf(&sb, "%s %s %-20s %s\n", cursor, swatch(c.Color), c.Name, faintStyle.Render(string(c.Kind)))
	}

	if len(cats) == 0 {
		sb.WriteString(faintStyle.Render("No categories yet"))
	}

	content := headerStyle.Render("Categories") + "\n\n" + sb.String()

	if m.state == categoriesStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New Category\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, "  ", panel)
	}

	if m.status != "" {
		content = errorStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

func (m CategoriesModel) createCmd(params category.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.coord.AddCategory(ctx, params)

		return coordMsg{err: err}
	}
}

func (m CategoriesModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return coordMsg{err: m.coord.RemoveCategory(ctx, id)}
	}
}
