package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fintrack/internal/app"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateSearch
)

var (
	kindLabels   = []string{"All", "Income", "Expense"}
	periodFrames = []Timeframe{TimeframeAll, TimeframeThisMonth, TimeframeLastMonth}
)

// ListModel is the paged transactions table.
type ListModel struct {
	CommonModel
	coord *app.Coordinator

	state  listState
	table  table.Model
	search textinput.Model
	txs    []*transaction.Transaction

	kindIdx   int
	periodIdx int

	filter transaction.ListFilter
	status string
	now    func() time.Time
}

func NewListModel(coord *app.Coordinator) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 8},
		{Title: "Amount", Width: 16},
		{Title: "Category", Width: 20},
		{Title: "Note", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	si := textinput.New()
	si.Prompt = "Search: "
	si.Placeholder = "note or category"
	si.CharLimit = 60

	return ListModel{
		coord:  coord,
		table:  t,
		search: si,
		now:    time.Now,
	}
}

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	if m.state == listStateSearch {
		return "Enter: apply | Esc: cancel"
	}

	return "Esc: back | t: type | p: period | /: search | n: more | x: delete | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case coordMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == listStateSearch {
		return m.updateSearch(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.refreshCmd()
		case "t":
			m.kindIdx = (m.kindIdx + 1) % len(kindLabels)
			m.applyFilter()

			return m, m.loadCmd()
		case "p":
			m.periodIdx = (m.periodIdx + 1) % len(periodFrames)
			m.applyFilter()

			return m, m.loadCmd()
		case "/":
			m.state = listStateSearch
			m.table.Blur()
			m.search.SetValue(m.filter.Search)

			return m, m.search.Focus()
		case "n":
			return m, m.loadMoreCmd()
		case "x":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = listStateBrowse
			m.search.Blur()
			m.table.Focus()

			return m, nil
		case tea.KeyEnter:
			m.state = listStateBrowse
			m.search.Blur()
			m.table.Focus()
			m.filter.Search = strings.TrimSpace(m.search.Value())

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m *ListModel) applyFilter() {
	switch m.kindIdx {
	case 1:
		m.filter.Kind = new(transaction.KindIncome)
	case 2:
		m.filter.Kind = new(transaction.KindExpense)
	default:
		m.filter.Kind = nil
	}

	tf := periodFrames[m.periodIdx]
	if tf == TimeframeAll {
		TimeframeSelectedMsg{All: true}.Apply(&m.filter)
		return
	}

	from, to := Range(tf, m.now())
	TimeframeSelectedMsg{From: from, To: to}.Apply(&m.filter)
}

func (m *ListModel) refreshTable() {
	s := m.coord.Snapshot()
	m.txs = s.Transactions

	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			string(tx.Kind),
			m.coord.Display(Signed(tx)),
			tx.Category,
			tx.Note,
		})
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m ListModel) View() string {
	s := m.coord.Snapshot()

	if s.Loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [p] Period: %s | [/] Search: %s",
		activeStyle(kindLabels[m.kindIdx]),
		activeStyle(periodFrames[m.periodIdx].String()),
		activeStyle(valueOr(m.filter.Search, "-")),
	)

	footer := faintStyle.Render(fmt.Sprintf("Showing %d of %d", len(s.Transactions), s.Total))
	if s.HasMore {
		footer += faintStyle.Render(" | n: load more")
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	parts := []string{lipgloss.NewStyle().PaddingBottom(1).Render(header)}
	if m.state == listStateSearch {
		parts = append(parts, m.search.View())
	}

	parts = append(parts, tableView, footer)

	if m.status != "" {
		parts = append([]string{errorStyle.Render(m.status)}, parts...)
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}

// Messages

// coordMsg reports that a coordinator call finished. Views read the result
// from the coordinator snapshot.
type coordMsg struct {
	err error
}

func (m ListModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return coordMsg{err: m.coord.LoadTransactions(ctx, filter)}
	}
}

func (m ListModel) loadMoreCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return coordMsg{err: m.coord.LoadMore(ctx)}
	}
}

func (m ListModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return coordMsg{err: m.coord.Refresh(ctx)}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	id := m.txs[idx].ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return coordMsg{err: m.coord.RemoveTransaction(ctx, id)}
	}
}
