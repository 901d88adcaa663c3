package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/fintrack/internal/http/category"
	"github.com/MrJamesThe3rd/fintrack/internal/http/export"
	"github.com/MrJamesThe3rd/fintrack/internal/http/importcsv"
	"github.com/MrJamesThe3rd/fintrack/internal/http/matching"
	"github.com/MrJamesThe3rd/fintrack/internal/http/money"
	"github.com/MrJamesThe3rd/fintrack/internal/http/transaction"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration

	// RequestsPerSecond per remote host; zero disables throttling.
	RequestsPerSecond float64
	Burst             int
}

func New(
	opts Options,
	transactionsV1 *transaction.Handler,
	categoriesV1 *category.Handler,
	moneyV1 *money.Handler,
	exportV1 *export.Handler,
	importV1 *importcsv.Handler,
	rulesV1 *matching.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	if opts.RequestsPerSecond > 0 {
		router.Use(newRateLimiter(opts.RequestsPerSecond, opts.Burst).middleware)
	}

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			categoriesV1.Routes(r)
		})

		r.Route("/export", exportV1.Routes)
		r.Route("/import", importV1.Routes)

		r.Route("/rules", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			rulesV1.Routes(r)
		})

		r.Group(moneyV1.Routes)
	})

	return router
}
