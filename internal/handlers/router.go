package handlers

import (
	"net/http"

	"fintrack/internal/config"
	"fintrack/internal/db"
	"fintrack/internal/middleware"
	"fintrack/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	users        UserStore
	accounts     AccountStore
	audit        AuditStore
	transactions TransactionService
	categories   CategoryService
	billing      BillingService
	portfolio    PortfolioService
	hub          *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, accounts AccountStore, audit AuditStore, transactions TransactionService, categories CategoryService, billing BillingService, portfolio PortfolioService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:     txRunner,
		cfg:          cfg,
		users:        users,
		accounts:     accounts,
		audit:        audit,
		transactions: transactions,
		categories:   categories,
		billing:      billing,
		portfolio:    portfolio,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))

		r.Get("/accounts", h.ListAccounts)
		r.Post("/accounts", h.CreateAccount)
		r.Put("/accounts/{id}", h.UpdateAccount)
		r.Delete("/accounts/{id}", h.DeleteAccount)

		r.Get("/categories/tree", h.CategoryTree)
		r.Get("/categories/{id}/parent-candidates", h.ParentCandidates)
		r.Post("/categories", h.CreateCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)

		r.Get("/transactions", h.ListTransactions)
		r.Post("/transactions", h.CreateTransaction)
		r.Get("/transactions/{id}", h.GetTransaction)
		r.Put("/transactions/{id}", h.UpdateTransaction)
		r.Delete("/transactions/{id}", h.DeleteTransaction)

		r.Post("/portfolio/assets", h.CreateAsset)
		r.Get("/portfolio/positions", h.ListPositions)
		r.Post("/portfolio/assets/{id}/transactions", h.RecordInvestment)
		r.Get("/portfolio/assets/{id}/transactions", h.AssetHistory)
		r.Put("/portfolio/assets/{id}/price", h.UpdateAssetPrice)

		r.Get("/billing/status", h.BillingStatus)
		r.Get("/billing/invoices", h.ListInvoices)
	})

	router.With(middleware.RateLimit(h.cfg.WebhookRatePerMinute, h.cfg.WebhookRatePerMinute)).
		Post("/webhooks/payment", h.PaymentWebhook)

	router.Get("/ws/billing", h.WSBilling)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
