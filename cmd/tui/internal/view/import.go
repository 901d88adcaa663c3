package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fintrack/internal/app"
	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/importer"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importStep int

const (
	importSource importStep = iota
	importPickFile
	importReading
	importReview
	importDone
)

type importOpts struct {
	format   importer.Format
	currency string
}

type ImportModel struct {
	CommonModel
	svc   *importer.Service
	coord *app.Coordinator

	step    importStep
	opts    *importOpts
	form    *huh.Form
	picker  filepicker.Model
	spinner spinner.Model

	file      string
	fresh     []transaction.CreateParams
	conflicts []importer.Conflict
	keep      []bool
	review    table.Model

	outcome string
	err     error
}

func NewImportModel(svc *importer.Service, coord *app.Coordinator) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ImportModel{
		svc:     svc,
		coord:   coord,
		picker:  fp,
		spinner: s,
		opts:    &importOpts{currency: coord.Snapshot().Currency},
	}

	if formats := svc.Formats(); len(formats) > 0 {
		m.opts.format = formats[0]
	}

	m.form = sourceForm(svc.Formats(), m.opts)

	return m
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	switch m.step {
	case importReview:
		return "Space: keep/skip | a: keep all | n: skip all | Enter: store | Esc: cancel"
	case importDone:
		return "Esc: start over"
	default:
		return "Esc: back | Enter: select"
	}
}

func (m ImportModel) Init() tea.Cmd { return m.form.Init() }

func sourceForm(formats []importer.Format, o *importOpts) *huh.Form {
	fo := make([]huh.Option[importer.Format], len(formats))
	for i, f := range formats {
		fo[i] = huh.NewOption(formatLabel(f), f)
	}

	co := make([]huh.Option[string], len(currency.Supported))
	for i, c := range currency.Supported {
		co[i] = huh.NewOption(c, c)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[importer.Format]().
				Title("File Format").
				Options(fo...).
				Value(&o.format),
			huh.NewSelect[string]().
				Title("Statement Currency").
				Description("Used for bank files and rows without a currency column").
				Options(co...).
				Value(&o.currency),
		),
	).WithWidth(60).WithShowHelp(false)
}

func formatLabel(f importer.Format) string {
	switch f {
	case importer.FormatNative:
		return "FinTrack export"
	case importer.FormatBank:
		return "Bank statement (CGD, Sber, generic)"
	}

	return string(f)
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.escape()
		}

		if m.step == importReview {
			return m.updateReview(msg)
		}

	case parsedMsg:
		return m.parsed(msg)

	case storedMsg:
		m.step = importDone
		m.err = msg.err
		m.outcome = fmt.Sprintf("Stored %d transactions from %s.", msg.count, filepath.Base(m.file))

		return m, nil
	}

	var cmd tea.Cmd

	switch m.step {
	case importSource:
		form, c := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State == huh.StateCompleted {
			m.step = importPickFile
			return m, m.picker.Init()
		}

		cmd = c

	case importPickFile:
		m.picker, cmd = m.picker.Update(msg)

		if ok, path := m.picker.DidSelectFile(msg); ok {
			m.file = path
			m.step = importReading

			return m, tea.Batch(m.spinner.Tick, m.read(path, *m.opts))
		}

	case importReading:
		m.spinner, cmd = m.spinner.Update(msg)
	}

	return m, cmd
}

// escape walks one step back; from the first step it leaves the screen.
func (m ImportModel) escape() (tea.Model, tea.Cmd) {
	switch m.step {
	case importSource:
		return m, Back
	case importReading:
		return m, nil
	}

	m.step = importSource
	m.fresh, m.conflicts, m.keep = nil, nil, nil
	m.err, m.outcome = nil, ""
	m.form = sourceForm(m.svc.Formats(), m.opts)

	return m, m.form.Init()
}

func (m ImportModel) parsed(msg parsedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil || len(msg.result.Conflicts) == 0 {
		m.step = importDone
		m.err = msg.err

		if msg.err == nil {
			m.outcome = fmt.Sprintf("Stored %d transactions from %s (%s).",
				len(msg.result.Imported), filepath.Base(m.file), msg.result.Charset)
		}

		return m, nil
	}

	m.fresh = msg.result.New
	m.conflicts = msg.result.Conflicts
	m.keep = make([]bool, len(m.conflicts))
	m.review = m.reviewTable()
	m.step = importReview

	return m, nil
}

func (m ImportModel) reviewTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Keep", Width: 4},
			{Title: "Date", Width: 10},
			{Title: "Amount", Width: 14},
			{Title: "Note", Width: 28},
			{Title: "Already stored as", Width: 32},
		}),
		table.WithFocused(true),
		table.WithHeight(min(len(m.conflicts), 15)+1),
	)
	t.SetRows(m.reviewRows())

	return t
}

func (m ImportModel) reviewRows() []table.Row {
	rows := make([]table.Row, len(m.conflicts))

	for i, c := range m.conflicts {
		mark := "[ ]"
		if m.keep[i] {
			mark = "[x]"
		}

		rows[i] = table.Row{
			mark,
			FormatDate(c.Incoming.Date),
			m.coord.Display(c.Incoming.Amount),
			c.Incoming.Note,
			fmt.Sprintf("%s %s", c.Existing.Category, c.Existing.Note),
		}
	}

	return rows
}

func (m ImportModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		i := m.review.Cursor()
		m.keep[i] = !m.keep[i]
	case "a", "n":
		for i := range m.keep {
			m.keep[i] = msg.String() == "a"
		}
	case "enter":
		m.step = importReading
		return m, tea.Batch(m.spinner.Tick, m.store())
	default:
		var cmd tea.Cmd
		m.review, cmd = m.review.Update(msg)

		return m, cmd
	}

	m.review.SetRows(m.reviewRows())

	return m, nil
}

func (m ImportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch m.step {
	case importSource:
		return pad.Render(m.form.View())
	case importPickFile:
		return pad.Render(fmt.Sprintf("Pick a %s file:\n\n%s", formatLabel(m.opts.format), m.picker.View()))
	case importReading:
		return pad.Render(m.spinner.View() + " Reading " + filepath.Base(m.file) + "...")
	case importReview:
		return pad.Render(lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render(fmt.Sprintf("%d rows look like stored transactions, %d are new",
				len(m.conflicts), len(m.fresh))),
			"",
			m.review.View(),
		))
	}

	if m.err != nil {
		return pad.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return pad.Render(incomeStyle.Render(m.outcome))
}

type parsedMsg struct {
	result *importer.Result
	err    error
}

type storedMsg struct {
	count int
	err   error
}

func (m ImportModel) read(path string, o importOpts) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parsedMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := m.svc.Import(ctx, o.format, o.currency, f)
		if err == nil && len(res.Imported) > 0 {
			// A failed reload is recorded in the coordinator state.
			_ = m.coord.Refresh(ctx)
		}

		return parsedMsg{result: res, err: err}
	}
}

func (m ImportModel) store() tea.Cmd {
	params := append([]transaction.CreateParams(nil), m.fresh...)

	for i, c := range m.conflicts {
		if m.keep[i] {
			params = append(params, c.Incoming)
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.svc.Confirm(ctx, params)
		if len(txs) > 0 {
			_ = m.coord.Refresh(ctx)
		}

		return storedMsg{count: len(txs), err: err}
	}
}
