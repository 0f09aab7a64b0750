package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/platform/sim"
	"github.com/vovakirdan/dinobot/internal/runner"
	"github.com/vovakirdan/dinobot/internal/storage"
)

// SSHServer wraps a Wish SSH server. Every connection trains its own agent
// on its own simulated page and watches it live; finished episodes go to
// the shared run store.
type SSHServer struct {
	cfg      config.Config
	server   *ssh.Server
	store    *storage.Store // Optional
	logger   *log.Logger
	sessions atomic.Int64
}

// NewSSHServer creates a new SSH server from cfg.Serve.
func NewSSHServer(cfg config.Config, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	srv := &SSHServer{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}

	hostKeyPath := config.ExpandHome(cfg.Serve.HostKeyPath)
	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Serve.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.Serve.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// sessionConfig derives the config of the n-th session's run.
func (s *SSHServer) sessionConfig(n int64) config.Config {
	cfg := s.cfg
	cfg.Run.Episodes = s.cfg.Serve.Episodes
	cfg.Sim.Seed = s.cfg.Sim.Seed + n
	cfg.Sim.Realtime = false
	return cfg.ForSim()
}

// teaHandler creates a training run and its live view for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	n := s.sessions.Add(1)
	cfg := s.sessionConfig(n)
	runID := uuid.NewString()
	logger := s.logger.With("run", shortID(runID), "user", sshSession.User())
	ctx := sshSession.Context()

	var recorder runner.EpisodeRecorder
	var finish func(context.Context) error
	if s.store != nil {
		if err := s.store.StartRun(ctx, storage.Run{
			RunID:          runID,
			Backend:        "ssh",
			Representation: cfg.Agent.Representation,
			Episodes:       cfg.Run.Episodes,
		}); err != nil {
			logger.Warn("could not record run", "error", err)
		} else {
			recorder = s.store
			finish = func(ctx context.Context) error {
				return s.store.FinishRun(ctx, runID)
			}
		}
	}

	game := sim.New(cfg)
	r, err := runner.Build(cfg, game, sim.NewClock(game, false), logger, recorder, runID)
	if err != nil {
		logger.Error("cannot start run", "error", err)
		return nil, nil
	}

	model := NewWatchModel(WatchOptions{
		Context:  ctx,
		Runner:   r,
		Game:     game,
		RunID:    runID,
		Episodes: cfg.Run.Episodes,
		Width:    pty.Window.Width,
		Height:   pty.Window.Height,
		Finish:   finish,
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until an interrupt.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.cfg.Serve.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case <-done:
	case err := <-errs:
		return fmt.Errorf("tui: serve: %w", err)
	}
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.cfg.Serve.Address
}
