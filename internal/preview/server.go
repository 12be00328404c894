package preview

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/search"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/posts"
)

var (
	ErrStoreRequired       = errors.New("preview: post service required")
	ErrContentRequired     = errors.New("preview: markdown service required")
	ErrPasswordHashInvalid = errors.New("preview: password must be a bcrypt hash")
	ErrServerDisabled      = errors.New("preview: server disabled by configuration")
)

const (
	defaultAddr         = ":8080"
	defaultPollInterval = 2 * time.Second
	defaultPattern      = "*.md"
)

// Config carries the preview server settings.
type Config struct {
	// Addr is the listen address, defaulting to :8080.
	Addr string
	// ContentDir is the markdown directory watched for edits.
	ContentDir string
	// AssetsDir, when set, is served under /assets/.
	AssetsDir string
	// Pattern selects which files count as posts when watching.
	Pattern string
	// PasswordHash gates the draft routes when non-empty. It must be a
	// bcrypt hash; plaintext in a config file is a mistake worth refusing.
	PasswordHash string
	// LiveReload enables the watcher and the websocket reload channel.
	LiveReload bool
	// PollInterval is the watcher cadence, defaulting to two seconds.
	PollInterval time.Duration
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = defaultAddr
	}
	if c.Pattern == "" {
		c.Pattern = defaultPattern
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
}

// Server hosts the preview site over gorilla/mux.
type Server struct {
	cfg     Config
	store   posts.Service
	content interfaces.MarkdownService
	index   *search.Index
	logger  interfaces.Logger

	hub      *reloadHub
	upgrader websocket.Upgrader
	validate *validator.Validate
}

// Option configures a Server.
type Option func(*Server)

// WithLogger overrides the server logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSearchIndex mounts /api/search backed by the given index.
func WithSearchIndex(index *search.Index) Option {
	return func(s *Server) {
		s.index = index
	}
}

// New builds a preview server over the post store and markdown service.
func New(cfg Config, store posts.Service, content interfaces.MarkdownService, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if content == nil {
		return nil, ErrContentRequired
	}
	if cfg.PasswordHash != "" && !strings.HasPrefix(cfg.PasswordHash, "$2") {
		return nil, ErrPasswordHashInvalid
	}
	cfg.applyDefaults()

	s := &Server{
		cfg:      cfg,
		store:    store,
		content:  content,
		logger:   logging.NoOp(),
		hub:      newReloadHub(),
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Router assembles the route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests)
	router.Use(s.recoverPanics)

	router.HandleFunc("/", s.handleIndex).Methods("GET")
	router.HandleFunc("/posts/{slug}", s.handlePost).Methods("GET")

	drafts := router.PathPrefix("/drafts").Subrouter()
	drafts.Use(s.requireDrafts)
	drafts.HandleFunc("", s.handleDrafts).Methods("GET")

	if s.cfg.AssetsDir != "" {
		router.PathPrefix("/assets/").Handler(
			http.StripPrefix("/assets/", http.FileServer(http.Dir(s.cfg.AssetsDir))))
	}

	api := router.PathPrefix("/api").Subrouter()
	api.Use(contentTypeJSON)
	api.HandleFunc("/posts", s.handleAPIPosts).Methods("GET")
	api.HandleFunc("/schema", s.handleAPISchema).Methods("GET")
	api.HandleFunc("/rebuild", s.handleAPIRebuild).Methods("POST")
	if s.index != nil {
		api.HandleFunc("/search", s.handleAPISearch).Methods("POST")
	}

	if s.cfg.LiveReload {
		router.HandleFunc("/livereload", s.handleLiveReload)
	}

	return router
}

// Start serves until ctx is cancelled, then shuts down gracefully. The
// content watcher runs alongside the listener when live reload is on.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if s.cfg.LiveReload && s.cfg.ContentDir != "" {
		go s.watch(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("preview: serving",
		"addr", s.cfg.Addr,
		"livereload", s.cfg.LiveReload,
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.closeAll()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("preview: request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed", time.Since(start).String(),
		)
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("preview: handler panic",
					"path", r.URL.Path,
					"panic", rec,
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
