package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sessionresults/adapters/excel"
	"sessionresults/internal"
	"sessionresults/internal/session"
	"sessionresults/ports"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// Route prefixes
const (
	SessionsPath = "/web/instructor/sessions"
	ResultsPath  = SessionsPath + "/result"
)

// App represents the UI application
type App struct {
	router    *chi.Mux
	config    Config
	backend   ports.FeedbackBackend
	timezone  ports.TimezoneFormatter
	pages     *session.Registry[*Page]
	exporter  *excel.Exporter
	templates *template.Template
	logger    *internal.Logger
}

// Config holds UI application configuration
type Config struct {
	// RenderWait bounds how long opening a page waits for the initial fetches
	RenderWait time.Duration
}

// Dependencies are the collaborators shared by every page
type Dependencies struct {
	Backend  ports.FeedbackBackend
	Timezone ports.TimezoneFormatter
	Pages    *session.Registry[*Page]
	Logger   *internal.Logger
}

// NewApp creates a new UI application
func NewApp(config Config, deps Dependencies) (*App, error) {
	if deps.Backend == nil || deps.Timezone == nil || deps.Pages == nil {
		return nil, fmt.Errorf("ui: backend, timezone and page registry are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		config:    config,
		backend:   deps.Backend,
		timezone:  deps.Timezone,
		pages:     deps.Pages,
		exporter:  excel.NewExporter(logger),
		templates: templates,
		logger:    logger.Named("UI"),
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	// Serve static files
	a.router.Handle("/static/*", http.FileServer(http.FS(embeddedFiles)))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, SessionsPath, http.StatusFound)
	})
	a.router.Get(SessionsPath, a.handleSessions)

	a.router.Route(ResultsPath, func(r chi.Router) {
		r.Get("/", a.handleOpenResults)

		r.Route("/{page}", func(r chi.Router) {
			r.Delete("/", a.handleClosePage)

			// HTMX fragments
			r.Get("/panels/{panel}", a.handlePanel)
			r.Get("/questions/{id}", a.handleQuestion)
			r.Get("/sections/{name}", a.handleSection)

			r.Get("/publish", a.handlePublishModal)
			r.Post("/publish", a.handlePublish)

			r.Get("/export.xlsx", a.handleExport)
		})
	})
}

// Handler exposes the router for an http.Server
func (a *App) Handler() http.Handler {
	return a.router
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, status int, templateName string, data interface{}) {
	// Render to a buffer first so a template error still yields a clean 500
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		a.logger.Error("template %s failed: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.Debug("writing %s response: %v", templateName, err)
	}
}

// HTMX helpers
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends the browser to target, through HX-Redirect for HTMX requests
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
