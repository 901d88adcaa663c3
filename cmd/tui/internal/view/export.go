package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fintrack/internal/app"
	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/export"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

const exportTimeout = 2 * time.Minute

type exportStep int

const (
	exportPickRange exportStep = iota
	exportOptions
	exportWriting
	exportDone
)

// exportOpts is bound to the options form, so it is held by pointer.
type exportOpts struct {
	dir      string
	currency string
	kind     string
}

type ExportModel struct {
	CommonModel
	svc   *export.Service
	coord *app.Coordinator

	step    exportStep
	picker  TimeframePicker
	window  TimeframeSelectedMsg
	opts    *exportOpts
	form    *huh.Form
	spinner spinner.Model

	written exportWrittenMsg
}

func NewExportModel(svc *export.Service, coord *app.Coordinator) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		svc:     svc,
		coord:   coord,
		step:    exportPickRange,
		picker:  NewTimeframePicker(TimeframeThisMonth),
		spinner: s,
		opts: &exportOpts{
			dir:      "./exports",
			currency: coord.Snapshot().Currency,
		},
	}
}

func (m ExportModel) Title() string { return "Export Transactions" }

func (m ExportModel) ShortHelp() string {
	switch m.step {
	case exportWriting:
		return "Writing..."
	case exportDone:
		return "Esc: back to menu"
	default:
		return "Esc: back | Enter: confirm"
	}
}

func (m ExportModel) Init() tea.Cmd { return nil }

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.window = msg
		m.form = optionsForm(m.opts)
		m.step = exportOptions

		return m, m.form.Init()

	case exportWrittenMsg:
		m.written = msg
		m.step = exportDone

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			switch {
			case m.step == exportPickRange && m.picker.IsSelecting(), m.step == exportDone:
				return m, Back
			case m.step == exportOptions:
				m.step = exportPickRange
				m.picker.Reset()

				return m, nil
			}
		}
	}

	var cmd tea.Cmd

	switch m.step {
	case exportPickRange:
		m.picker, cmd = m.picker.Update(msg)
	case exportOptions:
		return m.updateOptions(msg)
	case exportWriting:
		m.spinner, cmd = m.spinner.Update(msg)
	}

	return m, cmd
}

func (m ExportModel) updateOptions(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.step = exportWriting

	return m, tea.Batch(m.spinner.Tick, m.write(m.window, *m.opts))
}

func optionsForm(o *exportOpts) *huh.Form {
	codes := make([]huh.Option[string], len(currency.Supported))
	for i, c := range currency.Supported {
		codes[i] = huh.NewOption(fmt.Sprintf("%s %s", currency.Symbol(c), c), c)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Amounts In").
				Options(codes...).
				Value(&o.currency),
			huh.NewSelect[string]().
				Title("Include").
				Options(
					huh.NewOption("Everything", ""),
					huh.NewOption("Income only", string(transaction.KindIncome)),
					huh.NewOption("Expenses only", string(transaction.KindExpense)),
				).
				Value(&o.kind),
			huh.NewInput().
				Title("Output Directory").
				Placeholder("./exports").
				Value(&o.dir),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch m.step {
	case exportPickRange:
		return pad.Render(m.picker.View())
	case exportOptions:
		return pad.Render(m.form.View())
	case exportWriting:
		return pad.Render(m.spinner.View() + " Exporting transactions...")
	}

	if m.written.err != nil {
		return pad.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.written.err)))
	}

	if m.written.count == 0 {
		return pad.Render(faintStyle.Render("Nothing to export in the selected range."))
	}

	return pad.Render(lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(fmt.Sprintf("Exported %d transactions", m.written.count)),
		faintStyle.Render(m.written.file),
		"",
		m.written.summary,
	))
}

type exportWrittenMsg struct {
	file    string
	count   int
	summary string
	err     error
}

func (m ExportModel) write(window TimeframeSelectedMsg, o exportOpts) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		var filter transaction.ListFilter
		window.Apply(&filter)

		if o.kind != "" {
			filter.Kind = new(transaction.Kind(o.kind))
		}

		txs, err := m.svc.Export(ctx, filter)
		if err != nil {
			return exportWrittenMsg{err: err}
		}

		if len(txs) == 0 {
			return exportWrittenMsg{}
		}

		table := m.coord.LoadRates(ctx).Rates

		path, err := writeExportFile(o.dir, txs, o.currency, table)
		if err != nil {
			return exportWrittenMsg{err: err}
		}

		return exportWrittenMsg{
			file:    path,
			count:   len(txs),
			summary: export.Summary(txs, o.currency, table),
		}
	}
}

func writeExportFile(dir string, txs []*transaction.Transaction, code string, table currency.Rates) (string, error) {
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	name := fmt.Sprintf("fintrack_%s_%s.csv", code, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if err := export.WriteCSV(f, txs, code, table); err != nil {
		return "", err
	}

	return path, nil
}
