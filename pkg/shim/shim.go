/*
shim runs a pipeline stage behind a local model server. Enter starts the
model server and pulls the stage's models, and can be called any number
of times. Work submitted with Do runs one request at a time by default;
further requests wait for a slot until their context is done.
*/
package shim

import (
	"context"
	"time"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	logger "github.com/atagle123/AgentFace/pkg/logger"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
	semaphore "golang.org/x/sync/semaphore"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ModelServer is started before work runs and stopped on exit
type ModelServer interface {
	Start(ctx context.Context) error
	Stop() error
}

// Shim serializes work for a stage
type Shim struct {
	name        string
	server      ModelServer
	concurrency int64
	sem         *semaphore.Weighted
	tracer      trace.Tracer
}

// Opt configures a shim
type Opt func(*Shim) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultConcurrency = 1
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a shim for a stage. The model server may be nil when the
// stage needs none.
func New(name string, server ModelServer, opts ...Opt) (*Shim, error) {
	if name == "" {
		return nil, agentface.ErrBadParameter.With("missing name")
	}
	s := &Shim{name: name, server: server, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.sem = semaphore.NewWeighted(s.concurrency)
	return s, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithConcurrency sets the number of requests which run at once
func WithConcurrency(n int) Opt {
	return func(s *Shim) error {
		if n < 1 {
			return agentface.ErrBadParameter.Withf("invalid concurrency: %d", n)
		}
		s.concurrency = int64(n)
		return nil
	}
}

func WithTracer(tracer trace.Tracer) Opt {
	return func(s *Shim) error {
		s.tracer = tracer
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Name returns the name of the stage
func (s *Shim) Name() string {
	return s.name
}

// Enter starts the model server. Calling Enter again once the server is
// running returns immediately.
func (s *Shim) Enter(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Start(ctx)
}

// Exit stops a model server started by Enter
func (s *Shim) Exit() error {
	if s.server == nil {
		return nil
	}
	return s.server.Stop()
}

// Do waits for a free slot, makes sure the model server is running, and
// then calls fn
func (s *Shim) Do(ctx context.Context, fn func(context.Context) error) (err error) {
	ctx, endSpan := otel.StartSpan(s.tracer, ctx, "Shim",
		attribute.String("stage", s.name),
	)
	defer func() { endSpan(err) }()

	// Wait for a slot
	start := time.Now()
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)
	if wait := time.Since(start); wait > time.Second {
		logger.FromContext(ctx).InfoContext(ctx, "request queued", "stage", s.name, "wait", wait)
	}

	// Start the model server and run
	if err := s.Enter(ctx); err != nil {
		return err
	}
	return fn(ctx)
}
