package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/pollboard/internal/auth"
	"github.com/abrezinsky/pollboard/internal/config"
	"github.com/abrezinsky/pollboard/internal/document"
	"github.com/abrezinsky/pollboard/internal/handlers"
	"github.com/abrezinsky/pollboard/internal/logger"
	"github.com/abrezinsky/pollboard/internal/repository"
	"github.com/abrezinsky/pollboard/internal/services"
	"github.com/abrezinsky/pollboard/internal/websocket"
	"github.com/abrezinsky/pollboard/pkg/hostdoc"
)

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      *config.Config
	store    repository.Store
	polls    *services.PollService
	hub      *websocket.Hub
	handlers *handlers.Handlers
	baseURL  string
	server   *http.Server
	stopHub  context.CancelFunc
}

// hostStore adapts the host client to a Store. The host owns the connection.
type hostStore struct {
	hostdoc.Client
}

func (hostStore) Ping(ctx context.Context) error { return nil }
func (hostStore) Close() error                   { return nil }

// OpenStore connects the document store selected by cfg.Store
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	var (
		store repository.Store
		err   error
	)
	switch cfg.Store {
	case config.StoreSQL:
		var repo *repository.Repository
		if repo, err = repository.New(cfg.DBDriver, cfg.DB); err == nil {
			store = repo
		}
	case config.StoreRedis:
		var repo *repository.RedisRepository
		if repo, err = repository.NewRedis(ctx, cfg.RedisURI); err == nil {
			store = repo
		}
	case config.StoreMongo:
		var repo *repository.MongoRepository
		if repo, err = repository.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB); err == nil {
			store = repo
		}
	case config.StoreHost:
		client := hostdoc.NewHTTPClient(cfg.HostURL, log)
		if cfg.HostToken != "" {
			client.SetToken(cfg.HostToken)
		}
		store = hostStore{Client: client}
	default:
		err = fmt.Errorf("unknown store %q", cfg.Store)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	return store, nil
}

// New creates and initializes a new application instance. The app takes
// ownership of store and closes it on Shutdown.
func New(log logger.Logger, cfg *config.Config, store repository.Store, templatesFS, staticFS fs.FS, adminAuth *auth.Auth) (*App, error) {
	registry := document.NewRegistry(store, log)
	polls := services.NewPollService(log, registry)

	hub := websocket.New(log, polls)
	ctx, cancel := context.WithCancel(context.Background())
	hub.Start(ctx)
	polls.SetBroadcaster(hub)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s%s", getPreferredIP(realNetworkProvider{}), cfg.Addr())
	}

	h, err := handlers.New(
		polls,
		templatesFS,
		handlers.NewStaticServer(staticFS),
		adminAuth,
		hub,
		log,
		handlers.Settings{BaseURL: baseURL, DefaultGroup: cfg.Group},
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		log:      log,
		cfg:      cfg,
		store:    store,
		polls:    polls,
		hub:      hub,
		handlers: h,
		baseURL:  baseURL,
		stopHub:  cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// BaseURL is the public URL used in share links
func (a *App) BaseURL() string {
	return a.baseURL
}

// BoardURL is the local URL of the default group's board
func (a *App) BoardURL() string {
	return fmt.Sprintf("http://localhost%s/groups/%s", a.cfg.Addr(), url.PathEscape(a.cfg.Group))
}

// Run serves HTTP until Shutdown is called
func (a *App) Run() error {
	a.server = &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.log.Info("Server starting", "url", a.baseURL, "store", a.cfg.Store)
	a.log.Info("Board URL", "url", a.baseURL+"/groups/"+url.PathEscape(a.cfg.Group))
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, disconnects websocket clients and closes the store
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	if a.server != nil {
		err = a.server.Shutdown(ctx)
	}
	if a.stopHub != nil {
		a.stopHub()
	}
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
