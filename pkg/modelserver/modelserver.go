/*
modelserver starts a local ollama model server when one is not already
running, waits until it answers, and pulls the models a stage needs.
Starting is idempotent: repeated calls start at most one process.
*/
package modelserver

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	logger "github.com/atagle123/AgentFace/pkg/logger"
	ollama "github.com/atagle123/AgentFace/pkg/provider/ollama"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Server supervises an ollama process
type Server struct {
	sync.Mutex
	client     *ollama.Client
	executable string
	args       []string
	env        []string
	timeout    time.Duration
	interval   time.Duration
	models     []string

	cmd    *exec.Cmd
	exited chan struct{}
	ready  bool
}

// Opt configures the server
type Opt func(*Server) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultExecutable = "ollama"
	DefaultTimeout    = 2 * time.Minute
	DefaultInterval   = 500 * time.Millisecond
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a supervisor which probes the server through the client
func New(client *ollama.Client, opts ...Opt) (*Server, error) {
	if client == nil {
		return nil, agentface.ErrBadParameter.With("missing client")
	}
	s := &Server{
		client:     client,
		executable: DefaultExecutable,
		args:       []string{"serve"},
		timeout:    DefaultTimeout,
		interval:   DefaultInterval,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithExecutable sets the ollama executable and its arguments
func WithExecutable(path string, args ...string) Opt {
	return func(s *Server) error {
		if path == "" {
			return agentface.ErrBadParameter.With("missing executable")
		}
		s.executable = path
		if len(args) > 0 {
			s.args = args
		}
		return nil
	}
}

// WithEnv adds environment variables, in KEY=value form, to the process
func WithEnv(env ...string) Opt {
	return func(s *Server) error {
		s.env = append(s.env, env...)
		return nil
	}
}

// WithTimeout bounds the wait for the server to become ready
func WithTimeout(timeout, interval time.Duration) Opt {
	return func(s *Server) error {
		if timeout <= 0 || interval <= 0 {
			return agentface.ErrBadParameter.With("timeout and interval must be positive")
		}
		s.timeout = timeout
		s.interval = interval
		return nil
	}
}

// WithModels sets the models which are pulled once the server is ready
func WithModels(names ...string) Opt {
	return func(s *Server) error {
		for _, name := range names {
			if name != "" {
				s.models = append(s.models, name)
			}
		}
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Client returns the client used to talk to the server
func (s *Server) Client() *ollama.Client {
	return s.client
}

// Start makes the server ready. A server which already answers is used as
// is; otherwise the executable is started once and polled until it answers
// or the timeout expires. Missing models are then pulled.
func (s *Server) Start(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()
	if s.ready {
		return nil
	}
	log := logger.FromContext(ctx)

	// Use a running server, or start one
	if version, err := s.client.Version(ctx); err == nil {
		log.InfoContext(ctx, "model server running", "version", version)
	} else if s.cmd == nil {
		if err := s.spawn(); err != nil {
			return err
		}
		log.InfoContext(ctx, "model server started", "executable", s.executable, "pid", s.cmd.Process.Pid)
	}

	// Wait for readiness
	if err := s.wait(ctx); err != nil {
		return err
	}

	// Pull models
	for _, name := range s.models {
		if _, err := s.client.GetModel(ctx, name); err == nil {
			continue
		}
		log.InfoContext(ctx, "pulling model", "model", name)
		if err := s.client.PullModel(ctx, name); err != nil {
			return err
		}
	}

	// Return success
	s.ready = true
	return nil
}

// Stop terminates the process when it was started by Start
func (s *Server) Stop() error {
	s.Lock()
	defer s.Unlock()
	s.ready = false
	if s.cmd == nil {
		return nil
	}
	defer func() { s.cmd = nil }()
	select {
	case <-s.exited:
		return nil
	default:
	}
	if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return agentface.ErrIOFailure.With(err)
	}
	<-s.exited
	return nil
}

// Started returns true while a process started by Start is running
func (s *Server) Started() bool {
	s.Lock()
	defer s.Unlock()
	return s.cmd != nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (s *Server) spawn() error {
	path, err := exec.LookPath(s.executable)
	if err != nil {
		return agentface.ErrNotFound.Withf("model server executable %q: %v", s.executable, err)
	}
	cmd := exec.Command(path, s.args...)
	cmd.Env = append(os.Environ(), s.env...)
	if err := cmd.Start(); err != nil {
		return agentface.ErrIOFailure.With(err)
	}
	s.cmd = cmd
	s.exited = make(chan struct{})
	go func(exited chan struct{}) {
		_ = cmd.Wait()
		close(exited)

		// The next Start spawns a new process
		s.Lock()
		defer s.Unlock()
		if s.cmd == cmd {
			s.cmd = nil
			s.ready = false
		}
	}(s.exited)
	return nil
}

// wait polls the server until it answers, the process exits, the timeout
// expires or the context is cancelled
func (s *Server) wait(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var exited <-chan struct{}
	if s.cmd != nil {
		exited = s.exited
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if _, err := s.client.Version(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return agentface.ErrIOFailure.Withf("model server not ready after %v: %v", s.timeout, ctx.Err())
		case <-exited:
			s.cmd = nil
			return agentface.ErrIOFailure.Withf("model server %q exited", s.executable)
		case <-ticker.C:
		}
	}
}
