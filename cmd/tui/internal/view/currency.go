package view

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/app"
	"github.com/MrJamesThe3rd/fintrack/internal/currency"
)

// CurrencyModel picks the display currency and shows the active rate table.
type CurrencyModel struct {
	CommonModel
	coord *app.Coordinator

	cursor int
	err    error
}

func NewCurrencyModel(coord *app.Coordinator) CurrencyModel {
	return CurrencyModel{
		coord:  coord,
		cursor: max(slices.Index(currency.Supported, coord.Snapshot().Currency), 0),
	}
}

func (m CurrencyModel) Title() string { return "Currency" }

func (m CurrencyModel) ShortHelp() string {
	return "Esc: back | ↑/↓: move | Enter: select | r: refetch rates"
}

func (m CurrencyModel) Init() tea.Cmd {
	return m.ratesCmd(false)
}

func (m CurrencyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case coordMsg:
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(currency.Supported)-1 {
				m.cursor++
			}
		case "enter":
			return m, m.selectCmd(currency.Supported[m.cursor])
		case "r":
			return m, m.ratesCmd(true)
		}
	}

	return m, nil
}

func (m CurrencyModel) View() string {
	s := m.coord.Snapshot()

	var sb strings.Builder

	for i, code := range currency.Supported {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		label := fmt.Sprintf("%s %s", currency.Symbol(code), code)
		if code == s.Currency {
			label = activeStyle(label + " (active)")
		}

		rate := faintStyle.Render("-")
		if r, ok := s.Rates[code]; ok {
			rate = faintStyle.Render("1 USD = " + r.String())
		}

		fmt.Fprintf(&sb, "%s %-24s %s\n", cursor, label, rate)
	}

	source := faintStyle.Render(fmt.Sprintf("Rates from %s", valueOr(string(s.RatesTier), "-")))
	if !s.RatesUpdatedAt.IsZero() {
		source += faintStyle.Render(", updated " + s.RatesUpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	example := fmt.Sprintf("Example: %s", m.coord.Display(decimal.NewFromInt(1000)))

	content := headerStyle.Render("Display Currency") + "\n\n" + sb.String() + "\n" + source + "\n" + example
	if m.err != nil {
		content = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

func (m CurrencyModel) selectCmd(code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return coordMsg{err: m.coord.SetCurrency(ctx, code)}
	}
}

// ratesCmd resolves the rate table. force skips the in-memory tier.
func (m CurrencyModel) ratesCmd(force bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if force {
			return coordMsg{err: m.coord.Refresh(ctx)}
		}

		m.coord.LoadRates(ctx)

		return coordMsg{}
	}
}
