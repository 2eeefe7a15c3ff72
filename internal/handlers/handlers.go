package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/pollboard/internal/auth"
	"github.com/abrezinsky/pollboard/internal/logger"
	"github.com/abrezinsky/pollboard/internal/services"
	"github.com/abrezinsky/pollboard/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Templates holds all parsed HTML templates
type Templates struct {
	Board *template.Template
	Login *template.Template
}

// Settings holds the handler-level configuration
type Settings struct {
	BaseURL      string // public URL used in share links; request host when empty
	DefaultGroup string
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Polls        services.PollServicer
	Auth         *auth.Auth
	Hub          *websocket.Hub
	Log          logger.Logger
	settings     Settings
	templates    *Templates
	staticServer http.Handler
}

// New creates a new Handlers instance with all dependencies
func New(
	polls services.PollServicer,
	templatesFS fs.FS,
	staticServer http.Handler,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log logger.Logger,
	settings Settings,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	if settings.DefaultGroup == "" {
		settings.DefaultGroup = "default"
	}

	return &Handlers{
		Polls:        polls,
		Auth:         adminAuth,
		Hub:          hub,
		Log:          log,
		settings:     settings,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

// NewForTesting creates a Handlers instance without templates, hub or static
// files (for testing API endpoints). The admin password is "test-password".
func NewForTesting(polls services.PollServicer, log logger.Logger) *Handlers {
	return &Handlers{
		Polls:    polls,
		Auth:     auth.New("test-password"),
		Log:      log,
		settings: Settings{DefaultGroup: "default"},
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Board, err = template.New("board.html").Funcs(templateFuncs).ParseFS(templatesFS, "board.html"); err != nil {
		return nil, fmt.Errorf("board template: %w", err)
	}
	if t.Login, err = template.ParseFS(templatesFS, "login.html"); err != nil {
		return nil, fmt.Errorf("login template: %w", err)
	}

	return t, nil
}
