// Package router assembles the chi routers for the site and the customers API.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/whrealtors/realty-web/internal/assistant"
	httpmiddleware "github.com/whrealtors/realty-web/internal/http/middleware"
	"github.com/whrealtors/realty-web/internal/leads"
	"github.com/whrealtors/realty-web/internal/site"
	"github.com/whrealtors/realty-web/pkg/logging"
)

// SiteConfig holds the public site router dependencies.
type SiteConfig struct {
	Logger         *logging.Logger
	Site           *site.Handler
	MetricsHandler http.Handler
	// ContactLimiter throttles contact form posts; nil disables it.
	ContactLimiter httpmiddleware.Limiter
}

// NewSite creates the router for the marketing pages and catalog API.
func NewSite(cfg *SiteConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "text/html", "application/json"))

	r.Get("/health", cfg.Site.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Get("/", cfg.Site.Landing)
	r.Route("/projects/{projectID}", func(p chi.Router) {
		p.Get("/", cfg.Site.Project)
		if cfg.ContactLimiter != nil {
			p.With(httpmiddleware.RateLimit(cfg.ContactLimiter, cfg.Logger)).Post("/contact", cfg.Site.SubmitContact)
			return
		}
		p.Post("/contact", cfg.Site.SubmitContact)
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/projects", cfg.Site.ListProjects)
		api.Get("/projects/{projectID}", cfg.Site.GetProject)
	})

	r.NotFound(cfg.Site.NotFoundPage)
	return r
}

// CustomersConfig holds the customers API router dependencies.
type CustomersConfig struct {
	Logger             *logging.Logger
	Leads              *leads.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	AdminAuthSecret    string
	// Assistant serves the project chatbot; nil leaves /ai unrouted.
	Assistant          *assistant.Handler
	AssistantLimiter   httpmiddleware.Limiter
}

// NewCustomersAPI creates the router for the lead store backend.
func NewCustomersAPI(cfg *CustomersConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(httpmiddleware.DefaultCORSConfig(cfg.CORSAllowedOrigins)))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Post("/customers", cfg.Leads.CreateCustomer)

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret, httpmiddleware.ScopeLeadsRead))
		admin.Get("/customers", cfg.Leads.ListCustomers)
	})

	if cfg.Assistant != nil {
		r.Route("/ai", func(ai chi.Router) {
			if cfg.AssistantLimiter != nil {
				ai.Use(httpmiddleware.RateLimit(cfg.AssistantLimiter, cfg.Logger))
			}
			ai.Post("/projects/{projectID}/messages", cfg.Assistant.PostMessage)
		})
	}

	return r
}
