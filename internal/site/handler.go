// Package site serves the public marketing pages and the project contact form.
package site

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/whrealtors/realty-web/internal/catalog"
	"github.com/whrealtors/realty-web/internal/geo"
	"github.com/whrealtors/realty-web/internal/leadform"
	"github.com/whrealtors/realty-web/internal/observability/metrics"
	"github.com/whrealtors/realty-web/pkg/logging"
)

// Options carries deployment settings the pages need.
type Options struct {
	DefaultWhatsApp string
	FeatureBlurb    string
	Map             geo.Defaults
	MapsAPIKey      string
}

// Handler serves the landing page, project pages and contact submissions.
type Handler struct {
	catalog   *catalog.Catalog
	submitter leadform.Submitter
	opts      Options
	render    *renderer
	logger    *logging.Logger
	metrics   *metrics.SiteMetrics
}

// NewHandler parses the page templates and returns a ready handler.
func NewHandler(cat *catalog.Catalog, submitter leadform.Submitter, opts Options, logger *logging.Logger, m *metrics.SiteMetrics) (*Handler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	r, err := newRenderer(opts.FeatureBlurb)
	if err != nil {
		return nil, err
	}
	return &Handler{
		catalog:   cat,
		submitter: submitter,
		opts:      opts,
		render:    r,
		logger:    logger,
		metrics:   m,
	}, nil
}

// Landing handles GET /
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	h.page(w, http.StatusOK, "landing", pageData{
		Title:    "Home",
		Nav:      landingNav,
		Projects: h.catalog.All(),
		Team:     h.catalog.Team(),
	})
}

// Project handles GET /projects/{projectID}
func (h *Handler) Project(w http.ResponseWriter, r *http.Request) {
	project, ok := h.lookup(r)
	if !ok {
		h.notFound(w)
		return
	}
	requestViewportHint(w)
	h.page(w, http.StatusOK, "project", h.projectData(r, project, leadform.Fields{}, nil))
}

// requestViewportHint asks the browser to send its viewport width on later
// requests so the map height can follow it.
func requestViewportHint(w http.ResponseWriter) {
	w.Header().Set("Accept-CH", geo.ViewportWidthHeader)
	w.Header().Add("Vary", geo.ViewportWidthHeader)
}

// SubmitContact handles POST /projects/{projectID}/contact. The lead is sent
// to the customers backend and the page is re-rendered with the outcome:
// cleared inputs on success, the visitor's inputs and an error otherwise.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	project, ok := h.lookup(r)
	if !ok {
		h.notFound(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	requestViewportHint(w)

	form := leadform.New(project.ID, h.submitter,
		leadform.WithLogger(h.logger),
		leadform.WithMetrics(h.metrics),
	)
	form.SetFields(leadform.Fields{
		Name:  r.PostForm.Get("name"),
		Email: r.PostForm.Get("email"),
		Phone: r.PostForm.Get("phone"),
	})

	done, err := form.Submit(r.Context())
	if errors.Is(err, leadform.ErrMissingRequired) {
		h.page(w, http.StatusUnprocessableEntity, "project", h.projectData(r, project, form.Fields(), &Notice{
			Kind: "error",
			Text: "Please enter your name and email.",
		}))
		return
	}

	var outcome leadform.Outcome
	select {
	case outcome = <-done:
	case <-r.Context().Done():
		// The visitor left; the submission still completes in the background.
		return
	}

	if outcome.Succeeded() {
		h.page(w, http.StatusOK, "project", h.projectData(r, project, form.Fields(), &Notice{
			Kind: "success",
			Text: "Thank you! Our team will contact you shortly.",
		}))
		return
	}
	h.page(w, http.StatusBadGateway, "project", h.projectData(r, project, form.Fields(), &Notice{
		Kind: "error",
		Text: "We could not send your details. Please try again.",
	}))
}

// ListProjects handles GET /api/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects := h.catalog.All()
	if projects == nil {
		projects = []catalog.Project{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"projects": projects,
		"count":    len(projects),
	})
}

// GetProject handles GET /api/projects/{projectID}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.lookup(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "project not found"})
		return
	}
	view := geo.NewMapView(project.Title, project.Location, h.opts.Map, geo.ViewportWide)
	writeJSON(w, http.StatusOK, map[string]any{
		"project":      project,
		"contact_link": catalog.ContactLink(project, h.opts.DefaultWhatsApp),
		"map":          view,
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"projects": h.catalog.Len(),
	})
}

func (h *Handler) lookup(r *http.Request) (*catalog.Project, bool) {
	project, ok := h.catalog.Lookup(chi.URLParam(r, "projectID"))
	h.metrics.ObserveLookup(ok)
	return project, ok
}

func (h *Handler) projectData(r *http.Request, project *catalog.Project, fields leadform.Fields, notice *Notice) pageData {
	view := geo.NewMapView(project.Title, project.Location, h.opts.Map, geo.HintFromRequest(r, h.opts.Map.CompactBelowPx))
	return pageData{
		Title:       project.Title,
		Nav:         projectNav,
		Project:     project,
		ContactLink: catalog.ContactLink(project, h.opts.DefaultWhatsApp),
		Map:         &view,
		MapsAPIKey:  h.opts.MapsAPIKey,
		Form:        fields,
		Notice:      notice,
	}
}

func (h *Handler) notFound(w http.ResponseWriter) {
	h.page(w, http.StatusNotFound, "notfound", pageData{Title: "Property Not Found"})
}

func (h *Handler) page(w http.ResponseWriter, status int, name string, data pageData) {
	if err := h.render.render(w, status, name, data); err != nil {
		h.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NotFoundPage is used as the router's fallback so unknown paths get the same
// recovery link as unknown projects.
func (h *Handler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	h.notFound(w)
}
