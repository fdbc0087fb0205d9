// Package core is the client-side data access layer: it sends operations to
// the backend, parses the replies and caches the resulting entities.
package core

import (
	"context"
	"sync"
	"time"

	"soapcore/internal/infra/persistence/memory"
	"soapcore/internal/query"
)

// Transport delivers a request envelope and returns the raw reply body.
// Implementations must honor ctx cancellation.
type Transport interface {
	Do(ctx context.Context, body []byte) ([]byte, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, body []byte) ([]byte, error)

// Do implements Transport.
func (f TransportFunc) Do(ctx context.Context, body []byte) ([]byte, error) { return f(ctx, body) }

// Snapshotter persists the store after an operation changed it.
type Snapshotter interface {
	Persist(ctx context.Context) error
}

// EntityRef identifies an entity written to the store.
type EntityRef struct {
	Type EntityType
	ID   string
}

// Report describes what an operation did to the store. Warnings hold the
// nested entities that were skipped without failing the operation.
type Report struct {
	Operation query.Operation
	Upserted  []EntityRef
	Warnings  []Warning
}

func (r *Report) upserted(entity EntityType, id string) {
	r.Upserted = append(r.Upserted, EntityRef{Type: entity, ID: id})
}

func (r *Report) merge(other Report) {
	r.Upserted = append(r.Upserted, other.Upserted...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Completion receives the outcome of an asynchronous operation.
type Completion func(Report, error)

// Client runs operations against the backend and keeps the entity store
// current. It is safe for concurrent use.
type Client struct {
	transport   Transport
	store       *memory.Store
	registry    registry
	logger      Logger
	metrics     MetricsRecorder
	tracer      Tracer
	snapshotter Snapshotter
	now         func() time.Time
	inflight    sync.WaitGroup
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetricsRecorder sets the recorder observing every operation.
func WithMetricsRecorder(m MetricsRecorder) ClientOption {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracer sets the tracer starting a span per operation.
func WithTracer(t Tracer) ClientOption {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithClock overrides the clock used for latency measurement.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSnapshotter persists the store after every operation that wrote to it,
// including operations that failed after some writes. Persistence failures
// are logged and do not fail the operation.
func WithSnapshotter(s Snapshotter) ClientOption {
	return func(c *Client) { c.snapshotter = s }
}

// NewClient constructs a client over transport and store. A nil store gets a
// fresh empty one.
func NewClient(transport Transport, store *memory.Store, opts ...ClientOption) *Client {
	if store == nil {
		store = memory.NewStore()
	}
	c := &Client{
		transport: transport,
		store:     store,
		logger:    noopLogger{},
		metrics:   noopMetrics{},
		tracer:    noopTracer{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registry = registry{store: store, logger: c.logger}
	return c
}

// Store returns the entity store the client writes to.
func (c *Client) Store() *memory.Store { return c.store }

// Async runs call on its own goroutine and hands the outcome to done exactly once.
func (c *Client) Async(ctx context.Context, call func(context.Context) (Report, error), done Completion) {
	c.inflight.Go(func() {
		rep, err := call(ctx)
		if done != nil {
			done(rep, err)
		}
	})
}

// Wait blocks until every call started with Async has completed.
func (c *Client) Wait() { c.inflight.Wait() }

// With binds arg to an operation so it can be passed to Async.
func With[A any](op func(context.Context, A) (Report, error), arg A) func(context.Context) (Report, error) {
	return func(ctx context.Context) (Report, error) { return op(ctx, arg) }
}

// run wraps one logical operation with tracing, metrics, logging and
// persistence. fn returns the single outcome of the operation.
func (c *Client) run(ctx context.Context, op query.Operation, fn func(context.Context, *Report) error) (Report, error) {
	start := c.now()
	ctx, span := c.tracer.Start(ctx, string(op))
	rep := Report{Operation: op}
	err := fn(ctx, &rep)
	span.End(err)
	c.metrics.Observe(ctx, string(op), err == nil, c.now().Sub(start))

	// Writes made before a failure stay in the store, so they are persisted too.
	if c.snapshotter != nil && len(rep.Upserted) > 0 {
		if perr := c.snapshotter.Persist(ctx); perr != nil {
			c.logger.Warn("persist store", "operation", op, "error", perr)
		}
	}
	if err != nil {
		c.logger.Error("operation failed", "operation", op, "error", err)
		return rep, err
	}
	c.logger.Debug("operation completed",
		"operation", op,
		"upserted", len(rep.Upserted),
		"warnings", len(rep.Warnings),
	)
	return rep, nil
}
