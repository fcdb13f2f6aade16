// Package server wires the emulator together and runs it.
//
// COMPOSITION ROOT:
// New assembles every dependency in one place:
//
//	memory.Store → Registrar → HubService / RepoService → handlers → chi router
//
// and, when an init-state database is configured, loads it through the
// Seeder before the first request is served.
//
// LIFECYCLE:
//
//	Listen     binds and serves in the background
//	WaitReady  polls /healthz until the server answers
//	Shutdown   drains in-flight requests
//	Run        Listen + block until ctx is done + Shutdown
//	Start      Run with SIGINT/SIGTERM as the cancel signal
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/fakehub/internal/cursor"
	"github.com/sakif/fakehub/internal/handler"
	"github.com/sakif/fakehub/internal/middleware"
	"github.com/sakif/fakehub/internal/model"
	"github.com/sakif/fakehub/internal/repository/memory"
	sqliteRepo "github.com/sakif/fakehub/internal/repository/sqlite"
	"github.com/sakif/fakehub/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port      int
	Listen    string // bind address; ":<Port>" when empty
	Address   string // base of generated URLs; "localhost:<Port>" when empty
	MainHub   string
	Hubs      []string // extra hubs, served under /hubs/{name}
	InitState string   // optional sqlite seed database
	Seed      uint64   // id generator seed; 0 is time-based
	Started   time.Time
}

func (c *Config) setDefaults() {
	if c.Listen == "" {
		c.Listen = fmt.Sprintf(":%d", c.Port)
	}
	if c.Address == "" {
		c.Address = fmt.Sprintf("localhost:%d", c.Port)
	}
	if c.MainHub == "" {
		c.MainHub = "main"
	}
	if c.Started.IsZero() {
		c.Started = time.Now()
	}
}

// Server is the emulator: its hubs, services and HTTP front.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger

	hubs  *service.HubService
	repos *service.RepoService
	main  model.Hub

	mu      sync.Mutex
	srv     *http.Server
	ln      net.Listener
	wg      sync.WaitGroup
	started bool
}

// New builds a Server: it creates the main hub and the extra hubs, loads the
// init state if one is configured, and sets up routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	cfg.setDefaults()

	store := memory.New()
	var opts []service.Option
	if cfg.Seed != 0 {
		opts = append(opts, service.WithSeed(cfg.Seed))
	}
	registrar := service.NewRegistrar(store, logger, opts...)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		hubs:   service.NewHubService(store, registrar, logger),
		repos:  service.NewRepoService(store, logger),
	}

	main, err := s.hubs.CreateHub(cfg.MainHub, cfg.Address, cfg.Started)
	if err != nil {
		return nil, fmt.Errorf("creating main hub: %w", err)
	}
	s.main = main

	for _, name := range cfg.Hubs {
		if _, err := s.hubs.CreateHub(name, s.hubAddress(name), cfg.Started); err != nil {
			return nil, fmt.Errorf("creating hub %s: %w", name, err)
		}
	}

	if cfg.InitState != "" {
		if err := s.loadInitState(context.Background()); err != nil {
			return nil, err
		}
	}

	s.setupRoutes()
	return s, nil
}

// hubAddress is the base address of an extra hub: its routes live under
// /hubs/{name}, so its URLs do too.
func (s *Server) hubAddress(name string) string {
	if name == s.config.MainHub {
		return s.config.Address
	}
	return cursor.New(s.config.Address).Joinf("hubs", name)
}

func (s *Server) loadInitState(ctx context.Context) error {
	if _, err := os.Stat(s.config.InitState); err != nil {
		return fmt.Errorf("opening init state: %w", err)
	}
	db, err := sqliteRepo.New(s.config.InitState)
	if err != nil {
		return fmt.Errorf("opening init state: %w", err)
	}
	defer db.Close()

	seeder := service.NewSeeder(s.hubs, s.hubAddress, s.logger)
	if _, err := seeder.Load(ctx, db, s.config.Started); err != nil {
		return fmt.Errorf("loading init state %s: %w", s.config.InitState, err)
	}
	return nil
}

// setupRoutes configures middleware and routes.
//
//	GET  /healthz                  health probe
//	GET  /hubs                     hub directory
//	GET  /                         root document
//	GET  /users                    users ordered by id
//	POST /users                    register
//	GET  /users/{login}            one user
//	GET  /users/{login}/repos      repositories of a user
//	POST /users/{login}/repos      create a repository
//	     /hubs/{hub}/...           the same hub routes for any hub
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	home := handler.NewHomeHandler(s.hubs, s.config.MainHub, s.logger)
	users := handler.NewUsersHandler(s.hubs, s.config.MainHub, s.logger)
	repos := handler.NewReposHandler(s.repos, s.hubs, s.config.MainHub, s.logger)
	hubs := handler.NewHubsHandler(s.hubs, s.logger)

	hubRoutes := func(r chi.Router) {
		r.Get("/", home.HandleRoot)
		r.Get("/users", users.HandleList)
		r.Post("/users", users.HandleRegister)
		r.Get("/users/{login}", users.HandleGet)
		r.Get("/users/{login}/repos", repos.HandleList)
		r.Post("/users/{login}/repos", repos.HandleCreate)
	}

	s.router.NotFound(handler.HandleNotFound)
	s.router.Get("/healthz", home.HandleHealth)
	s.router.Get("/hubs", hubs.HandleList)
	hubRoutes(s.router)
	s.router.Route("/hubs/{"+handler.HubParam+"}", hubRoutes)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// MainHub returns the hub served by the unprefixed routes.
func (s *Server) MainHub() model.Hub {
	return s.main
}

// Hubs returns the hub service, e.g. to register users directly in tests.
func (s *Server) Hubs() *service.HubService {
	return s.hubs
}

// Listen binds the configured address and serves in the background.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("server: already started")
	}
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.started = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", slog.String("error", err.Error()))
		}
	}()

	s.logger.Info("server listening",
		slog.String("listen", ln.Addr().String()),
		slog.String("address", s.config.Address),
		slog.String("coordinates", s.main.Coordinates()),
	)
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// URL returns the http URL of the bound address.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// WaitReady polls /healthz until it answers 200 or ctx is done.
func (s *Server) WaitReady(ctx context.Context) error {
	addr := s.Addr()
	if addr == "" {
		return errors.New("server: not started")
	}
	url := "http://" + addr + "/healthz"
	client := &http.Client{Timeout: 200 * time.Millisecond}

	probe := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		res, err := client.Do(req)
		if err != nil {
			return err
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("server: healthz returned %d", res.StatusCode)
		}
		return nil
	}
	return backoff.Retry(probe, backoff.WithContext(backoff.NewConstantBackOff(25*time.Millisecond), ctx))
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	srv := s.srv
	s.started = false
	s.mu.Unlock()

	err := srv.Shutdown(ctx)
	s.wg.Wait()
	return err
}

// Run serves until ctx is done, then shuts down with a 30 second grace
// period.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: graceful shutdown failed: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}
