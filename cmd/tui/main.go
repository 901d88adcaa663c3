package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fintrack/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/fintrack/internal/app"
	"github.com/MrJamesThe3rd/fintrack/internal/backend"
	"github.com/MrJamesThe3rd/fintrack/internal/category"
	"github.com/MrJamesThe3rd/fintrack/internal/config"
	"github.com/MrJamesThe3rd/fintrack/internal/export"
	"github.com/MrJamesThe3rd/fintrack/internal/importer"
	"github.com/MrJamesThe3rd/fintrack/internal/importer/bank"
	"github.com/MrJamesThe3rd/fintrack/internal/importer/native"
	"github.com/MrJamesThe3rd/fintrack/internal/matching"
	"github.com/MrJamesThe3rd/fintrack/internal/rates"
	"github.com/MrJamesThe3rd/fintrack/internal/stats"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

type model struct {
	coord         *app.Coordinator
	statsService  *stats.Service
	exportService *export.Service
	importService *importer.Service

	currentView View
	status      string

	listView       view.ListModel
	addView        view.AddModel
	analyticsView  view.AnalyticsModel
	categoriesView view.CategoriesModel
	currencyView   view.CurrencyModel
	exportView     view.ExportModel
	importView     view.ImportModel
}

type View int

const (
	ViewMenu View = iota
	ViewList
	ViewAdd
	ViewAnalytics
	ViewCategories
	ViewCurrency
	ViewExport
	ViewImport
)

type refreshedMsg struct {
	err error
}

func newModel(coord *app.Coordinator, st *stats.Service, exp *export.Service, imp *importer.Service) model {
	return model{
		coord:         coord,
		statsService:  st,
		exportService: exp,
		importService: imp,
		currentView:   ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := view.DbCtx()
		defer cancel()

		m.coord.LoadCurrency(ctx)

		return refreshedMsg{err: m.coord.Refresh(ctx)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case refreshedMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Some data failed to load: %v", msg.err)
		}

		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.coord)

				return m, m.listView.Init()
			case "2":
				m.currentView = ViewAdd
				m.addView = view.NewAddModel(m.coord)

				return m, m.addView.Init()
			case "3":
				m.currentView = ViewAnalytics
				m.analyticsView = view.NewAnalyticsModel(m.coord, m.statsService)

				return m, m.analyticsView.Init()
			case "4":
				m.currentView = ViewCategories
				m.categoriesView = view.NewCategoriesModel(m.coord)

				return m, m.categoriesView.Init()
			case "5":
				m.currentView = ViewCurrency
				m.currencyView = view.NewCurrencyModel(m.coord)

				return m, m.currencyView.Init()
			case "6":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.coord)

				return m, m.exportView.Init()
			case "7":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.importService, m.coord)

				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewAdd:
		var newModel tea.Model
		newModel, cmd = m.addView.Update(msg)
		m.addView = newModel.(view.AddModel)
	case ViewAnalytics:
		var newModel tea.Model
		newModel, cmd = m.analyticsView.Update(msg)
		m.analyticsView = newModel.(view.AnalyticsModel)
	case ViewCategories:
		var newModel tea.Model
		newModel, cmd = m.categoriesView.Update(msg)
		m.categoriesView = newModel.(view.CategoriesModel)
	case ViewCurrency:
		var newModel tea.Model
		newModel, cmd = m.currencyView.Update(msg)
		m.currencyView = newModel.(view.CurrencyModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return m.menuView()
	case ViewList:
		return m.listView.View()
	case ViewAdd:
		return m.addView.View()
	case ViewAnalytics:
		return m.analyticsView.View()
	case ViewCategories:
		return m.categoriesView.View()
	case ViewCurrency:
		return m.currencyView.View()
	case ViewExport:
		return m.exportView.View()
	case ViewImport:
		return m.importView.View()
	}

	return "Unknown View"
}

func (m model) menuView() string {
	s := m.coord.Snapshot()

	balance := "-"
	if s.Stats != nil {
		balance = m.coord.Display(s.Stats.Balance)
	}

	body := fmt.Sprintf("FinTrack TUI\n\nThis month: %s | Currency: %s\n\n", balance, s.Currency) +
		"1. Transactions\n" +
		"2. Add Transaction\n" +
		"3. Analytics\n" +
		"4. Categories\n" +
		"5. Currency\n" +
		"6. Export Transactions\n" +
		"7. Import Transactions\n\n" +
		"q. Quit"

	if m.status != "" {
		body += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status)
	}

	return lipgloss.NewStyle().Padding(2).Render(body)
}

func main() {
	_ = godotenv.Load()

	logFile, err := tea.LogToFile(filepath.Join(os.TempDir(), "fintrack-tui.log"), "fintrack")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetLogLoggerLevel(cfg.Level())

	b, err := backend.Open(context.Background(), cfg, time.Now())
	if err != nil {
		slog.Error("failed to open backend", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	var (
		txSvc    = transaction.NewService(b.Transactions)
		catSvc   = category.NewService(b.Categories)
		statsSvc = stats.NewService(txSvc, catSvc, time.Local, nil)
		provider = rates.NewProvider(
			rates.NewHTTPFetcher(cfg.Rates.URL, nil),
			b.Cache,
			rates.Config{TTL: cfg.Rates.TTL, FetchTimeout: cfg.Rates.Timeout},
		)
		coord   = app.New(txSvc, catSvc, statsSvc, provider, b.Cache, cfg.Currency.Default)
		imports = importer.NewService(txSvc, matching.NewService(b.Rules), provider, map[importer.Format]importer.Parser{
			importer.FormatNative: native.NewParser(),
			importer.FormatBank:   bank.NewParser(),
		})
	)

	defer provider.Wait()

	p := tea.NewProgram(newModel(coord, statsSvc, export.NewService(txSvc), imports), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
