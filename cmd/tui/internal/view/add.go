package view

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/app"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

type addState int

const (
	addStateKind addState = iota
	addStateDetails
	addStateSaving
	addStateDone
)

// AddModel creates a transaction in two steps: the kind first, then the
// details with categories narrowed to that kind.
type AddModel struct {
	CommonModel
	coord *app.Coordinator

	state addState
	form  *huh.Form
	err   error
	saved *transaction.Transaction

	in *addInput
}

// addInput holds the form bindings. It lives behind a pointer so the
// bindings survive the model being copied between updates.
type addInput struct {
	kind      transaction.Kind
	amount    string
	category  string
	note      string
	date      string
	recurring bool
}

func NewAddModel(coord *app.Coordinator) AddModel {
	m := AddModel{
		coord: coord,
		in: &addInput{
			kind: transaction.KindExpense,
			date: time.Now().Format(time.DateOnly),
		},
	}
	m.form = m.buildKindForm()

	return m
}

func (m AddModel) Title() string { return "Add Transaction" }

func (m AddModel) ShortHelp() string {
	if m.state == addStateDone {
		return "Esc: back | Enter: add another"
	}

	return "Esc: back | Enter/Tab: navigate form"
}

func (m AddModel) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), m.loadCategoriesCmd())
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case addSavedMsg:
		m.state = addStateDone
		m.err = msg.err
		m.saved = msg.tx

		return m, nil
	case coordMsg:
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == addStateDone && msg.Type == tea.KeyEnter {
			next := NewAddModel(m.coord)
			return next, next.form.Init()
		}
	}

	if m.state == addStateSaving || m.state == addStateDone {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == addStateKind {
		m.state = addStateDetails
		m.form = m.buildDetailsForm()

		return m, m.form.Init()
	}

	params, err := m.params()
	if err != nil {
		m.err = err
		m.form = m.buildDetailsForm()

		return m, m.form.Init()
	}

	m.state = addStateSaving

	return m, m.saveCmd(params)
}

func (m *AddModel) buildKindForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Kind]().
				Title("Type").
				Options(
					huh.NewOption("Expense", transaction.KindExpense),
					huh.NewOption("Income", transaction.KindIncome),
				).
				Value(&m.in.kind),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m *AddModel) buildDetailsForm() *huh.Form {
	s := m.coord.Snapshot()

	var options []huh.Option[string]

	for _, c := range s.Categories {
		if c.AppliesTo(m.in.kind) {
			options = append(options, huh.NewOption(swatch(c.Color)+" "+c.Name, c.Name))
		}
	}

	if len(options) == 0 {
		options = append(options, huh.NewOption("Other", "Other"))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title(fmt.Sprintf("Amount (%s)", s.Currency)).
				Placeholder("0.00").
				Value(&m.in.amount).
				Validate(validateAmount),

			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(options...).
				Value(&m.in.category),

			huh.NewInput().
				Key("note").
				Title("Note").
				CharLimit(transaction.MaxNoteLength).
				Value(&m.in.note),

			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.in.date).
				Validate(func(s string) error {
					_, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.Local)
					return err
				}),

			huh.NewConfirm().
				Key("recurring").
				Title("Recurring?").
				Value(&m.in.recurring),
		),
	).WithWidth(50).WithShowHelp(false)
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("amount must be a number")
	}

	if !d.IsPositive() {
		return errors.New("amount must be greater than zero")
	}

	return nil
}

// params turns the form input into CreateParams. The amount is entered in
// the display currency and stored in the base currency.
func (m AddModel) params() (transaction.CreateParams, error) {
	if err := validateAmount(m.in.amount); err != nil {
		return transaction.CreateParams{}, err
	}

	if utf8.RuneCountInString(m.in.note) > transaction.MaxNoteLength {
		return transaction.CreateParams{}, fmt.Errorf("note exceeds %d characters", transaction.MaxNoteLength)
	}

	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(m.in.date), time.Local)
	if err != nil {
		return transaction.CreateParams{}, fmt.Errorf("invalid date (YYYY-MM-DD)")
	}

	entered := decimal.RequireFromString(strings.TrimSpace(m.in.amount))
	now := time.Now()

	return transaction.CreateParams{
		Kind:      m.in.kind,
		Amount:    m.coord.FromDisplay(entered).Round(4),
		Currency:  m.coord.Snapshot().Currency,
		Category:  m.in.category,
		Note:      m.in.note,
		Date:      time.Date(day.Year(), day.Month(), day.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.Local),
		Recurring: m.in.recurring,
	}, nil
}

func (m AddModel) View() string {
	var body string

	switch m.state {
	case addStateSaving:
		body = "Saving..."
	case addStateDone:
		if m.err != nil {
			body = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
			break
		}

		body = lipgloss.JoinVertical(lipgloss.Left,
			incomeStyle.Render("Transaction saved!"),
			"",
			fmt.Sprintf("%s  %s  %s", FormatDate(m.saved.Date), m.coord.Display(Signed(m.saved)), m.saved.Category),
		)
	default:
		body = m.form.View()
		if m.err != nil {
			body = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + body
		}
	}

	return lipgloss.NewStyle().Padding(1).Render(headerStyle.Render(m.Title()) + "\n\n" + body)
}

// Messages

type addSavedMsg struct {
	tx  *transaction.Transaction
	err error
}

func (m AddModel) saveCmd(params transaction.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.coord.AddTransaction(ctx, params)

		return addSavedMsg{tx: tx, err: err}
	}
}

func (m AddModel) loadCategoriesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return coordMsg{err: m.coord.LoadCategories(ctx)}
	}
}
