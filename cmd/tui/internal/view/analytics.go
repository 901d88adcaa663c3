package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/app"
	"github.com/MrJamesThe3rd/fintrack/internal/stats"
)

const barWidth = 30

var periods = []stats.Period{stats.PeriodMonth, stats.PeriodQuarter, stats.PeriodYear}

// AnalyticsModel is the statistics dashboard. The month period follows the
// coordinator so it reflects edits made elsewhere; quarter and year are
// computed on demand.
type AnalyticsModel struct {
	CommonModel
	coord *app.Coordinator
	stats *stats.Service

	periodIdx int
	month     time.Time
	snap      *stats.Snapshot
	err       error
}

func NewAnalyticsModel(coord *app.Coordinator, st *stats.Service) AnalyticsModel {
	now := time.Now()

	return AnalyticsModel{
		coord: coord,
		stats: st,
		month: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
	}
}

func (m AnalyticsModel) Title() string { return "Analytics" }

func (m AnalyticsModel) ShortHelp() string {
	return "Esc: back | p: period | ←/→: month | r: reload"
}

func (m AnalyticsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AnalyticsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		m.snap, m.err = msg.snap, msg.err
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "p":
			m.periodIdx = (m.periodIdx + 1) % len(periods)
			return m, m.loadCmd()
		case "left", "h":
			if periods[m.periodIdx] == stats.PeriodMonth {
				m.month = m.month.AddDate(0, -1, 0)
				return m, m.loadCmd()
			}
		case "right", "l":
			if periods[m.periodIdx] == stats.PeriodMonth {
				m.month = m.month.AddDate(0, 1, 0)
				return m, m.loadCmd()
			}
		case "r":
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m AnalyticsModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.snap == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading statistics...")
	}

	s := m.snap

	title := fmt.Sprintf("%s %s", activeStyle(string(periods[m.periodIdx])), s.Month)
	if s.Period != stats.PeriodMonth {
		title = fmt.Sprintf("%s %s to %s", activeStyle(string(s.Period)),
			FormatDate(s.From), FormatDate(s.To.Add(-time.Nanosecond)))
	}

	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Income", incomeStyle.Render(m.coord.Display(s.TotalIncome))),
		card("Expenses", errorStyle.Render(m.coord.Display(s.TotalExpenses))),
		card("Balance", m.coord.Display(s.Balance)),
	)

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Analytics")+"  "+title,
		"",
		summary,
		"",
		headerStyle.Render("Spending by category"),
		m.categoryBars(),
		"",
		headerStyle.Render(fmt.Sprintf("Last %d days", stats.DailyWindow)),
		m.dailyBars(),
	))
}

func card(label, value string) string {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 2).
		MarginRight(1).
		Render(faintStyle.Render(label) + "\n" + value)
}

func (m AnalyticsModel) categoryBars() string {
	if len(m.snap.ByCategory) == 0 {
		return faintStyle.Render("No expenses in this period")
	}

	largest := m.snap.ByCategory[0].Amount

	var sb strings.Builder

	for _, c := range m.snap.ByCategory {
		share := decimal.Zero
		if m.snap.TotalExpenses.IsPositive() {
			share = c.Amount.Div(m.snap.TotalExpenses).Mul(decimal.NewFromInt(100))
		}

		fmt.Fprintf(&sb, "%s %-18s %s %14s %5s%%\n",
			swatch(c.Color),
			c.Name,
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(bar(c.Amount, largest)),
			m.coord.Display(c.Amount),
			share.StringFixed(1),
		)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (m AnalyticsModel) dailyBars() string {
	largest := decimal.Zero
	for _, d := range m.snap.Daily {
		largest = decimal.Max(largest, d.Income, d.Expense)
	}

	var sb strings.Builder

	for _, d := range m.snap.Daily {
		fmt.Fprintf(&sb, "%s  %s %s\n%s  %s %s\n",
			d.Date, incomeStyle.Render(bar(d.Income, largest)), m.coord.Display(d.Income),
			strings.Repeat(" ", len(d.Date)), errorStyle.Render(bar(d.Expense, largest)), m.coord.Display(d.Expense),
		)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// bar renders v as a share of largest, padded to barWidth.
func bar(v, largest decimal.Decimal) string {
	n := 0
	if largest.IsPositive() {
		n = int(v.Div(largest).Mul(decimal.NewFromInt(barWidth)).Round(0).IntPart())
	}

	return strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
}

// Messages

type statsMsg struct {
	snap *stats.Snapshot
	err  error
}

func (m AnalyticsModel) loadCmd() tea.Cmd {
	p := periods[m.periodIdx]
	month := m.month.Format("2006-01")

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		m.coord.LoadRates(ctx)

		if p == stats.PeriodMonth {
			snap, err := m.coord.LoadStats(ctx, month)
			return statsMsg{snap: snap, err: err}
		}

		snap, err := m.stats.Period(ctx, p)

		return statsMsg{snap: snap, err: err}
	}
}
