// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-remote-config/internal/adapter"
	"github.com/MKhiriev/go-remote-config/internal/capability"
	"github.com/MKhiriev/go-remote-config/internal/config"
	"github.com/MKhiriev/go-remote-config/internal/logger"
	"github.com/MKhiriev/go-remote-config/internal/metrics"
	"github.com/MKhiriev/go-remote-config/internal/scheduler"
	"github.com/MKhiriev/go-remote-config/internal/utils"
	"github.com/MKhiriev/go-remote-config/models"
	movingaverage "github.com/RobinUS2/golang-moving-average"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	rootVersion = 1
	language    = "go"

	pollDurationWindow = 10
)

// Config holds the static settings of a [SyncManager].
type Config struct {
	Service       string
	Env           string
	AppVersion    string
	ClientVersion string
	Tags          []string
	ExtraServices []string

	// PollInterval is the pause between the end of one poll and the start
	// of the next.
	PollInterval time.Duration

	// AckTimeout bounds how long a dispatched config may stay
	// unacknowledged before it is reported as failed. Non-positive values
	// disable the limit.
	AckTimeout time.Duration
}

// NewConfig builds a [Config] from the loaded application configuration.
func NewConfig(cfg *config.StructuredConfig, clientVersion string) Config {
	return Config{
		Service:       cfg.App.Service,
		Env:           cfg.App.Env,
		AppVersion:    cfg.App.Version,
		ClientVersion: clientVersion,
		Tags:          cfg.App.Tags,
		PollInterval:  cfg.Workers.PollInterval,
		AckTimeout:    cfg.Workers.AckTimeout,
	}
}

// Identity is the immutable client identity reported on every poll.
type Identity struct {
	ClientID      string
	RuntimeID     string
	Language      string
	ClientVersion string
	Service       string
	Env           string
	AppVersion    string
	Tags          []string
	ExtraServices []string
}

// runner is the part of [scheduler.Scheduler] the manager drives.
type runner interface {
	Start()
	Stop()
	Running() bool
}

type batchRegistration struct {
	id       BatchHandlerID
	products []string
	handler  BatchHandler
}

// Option customises a [SyncManager].
type Option func(*SyncManager)

// WithTracer sets the tracer used for poll spans. Defaults to the global
// provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *SyncManager) { m.tracer = tracer }
}

// WithMetrics enables Prometheus recording.
func WithMetrics(mtr *metrics.Metrics) Option {
	return func(m *SyncManager) { m.metrics = mtr }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *SyncManager) { m.now = now }
}

// SyncManager keeps the local view of remote configuration in line with the
// control plane and fans changes out to registered consumers.
//
// Build exactly one per process: every instance reports its own client id and
// version counters to the control plane.
type SyncManager struct {
	client     adapter.ConfigClient
	scheduler  runner
	identity   Identity
	ackTimeout time.Duration

	logger  *logger.Logger
	tracer  trace.Tracer
	metrics *metrics.Metrics
	now     func() time.Time

	// pollMu keeps at most one poll cycle in flight.
	pollMu sync.Mutex
	// loopMu orders subscription changes with the start and stop of the
	// poll loop they trigger.
	loopMu sync.Mutex

	// quit is closed by Close and releases deferred outcome waiters.
	quit      chan struct{}
	closeOnce sync.Once
	waiters   sync.WaitGroup

	mu            sync.Mutex
	closed        bool
	capabilities  capability.Set
	products      []string
	handlers      map[string]ProductHandler
	batchHandlers []batchRegistration
	nextBatchID   BatchHandlerID

	applied        appliedTable
	cachedFiles    []models.CachedTargetFile
	targetsVersion int64
	backendState   string
	hasError       bool
	errorMsg       string

	lastPollAt      time.Time
	lastPollOutcome string
	pollDuration    *movingaverage.MovingAverage
}

// NewSyncManager creates an idle manager that polls through client. The poll
// loop starts when the first product is subscribed or [SyncManager.Start] is
// called.
func NewSyncManager(client adapter.ConfigClient, cfg Config, logger *logger.Logger, opts ...Option) *SyncManager {
	ids := utils.NewUUIDGenerator()

	m := &SyncManager{
		client: client,
		identity: Identity{
			ClientID:      ids.Generate(),
			RuntimeID:     ids.Generate(),
			Language:      language,
			ClientVersion: cfg.ClientVersion,
			Service:       cfg.Service,
			Env:           cfg.Env,
			AppVersion:    cfg.AppVersion,
			Tags:          slices.Clone(cfg.Tags),
			ExtraServices: slices.Clone(cfg.ExtraServices),
		},
		ackTimeout:   cfg.AckTimeout,
		logger:       logger.Component("sync_manager"),
		tracer:       otel.Tracer("go-remote-config/service"),
		now:          time.Now,
		quit:         make(chan struct{}),
		products:     []string{},
		handlers:     make(map[string]ProductHandler),
		applied:      make(appliedTable),
		cachedFiles:  []models.CachedTargetFile{},
		pollDuration: movingaverage.New(pollDurationWindow),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.scheduler = scheduler.New(cfg.PollInterval, m.work)
	return m
}

func (m *SyncManager) work(ctx context.Context, done func()) {
	defer done()
	_ = m.Poll(ctx)
}

// Identity returns the client identity.
func (m *SyncManager) Identity() Identity {
	return m.identity
}

// UpdateCapability sets or clears one advertised capability bit.
func (m *SyncManager) UpdateCapability(bit uint, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capabilities.Update(bit, enabled)
}

// SubscribeProducts adds products to the subscription set. The poll loop
// starts when the set stops being empty.
func (m *SyncManager) SubscribeProducts(products ...string) {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()

	m.mu.Lock()
	wasEmpty := len(m.products) == 0
	m.subscribeLocked(products)
	start := wasEmpty && len(m.products) > 0
	m.mu.Unlock()

	if start {
		m.logger.Debug().Strs("products", products).Msg("first product subscribed, starting poll loop")
		m.scheduler.Start()
	}
}

// UnsubscribeProducts removes products from the subscription set. The poll
// loop stops when the set becomes empty.
func (m *SyncManager) UnsubscribeProducts(products ...string) {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()

	m.mu.Lock()
	wasEmpty := len(m.products) == 0
	m.unsubscribeLocked(products)
	stop := !wasEmpty && len(m.products) == 0
	m.mu.Unlock()

	if stop {
		m.logger.Debug().Msg("last product unsubscribed, stopping poll loop")
		m.scheduler.Stop()
	}
}

func (m *SyncManager) subscribeLocked(products []string) {
	for _, p := range products {
		if p != "" && !slices.Contains(m.products, p) {
			m.products = append(m.products, p)
		}
	}
}

func (m *SyncManager) unsubscribeLocked(products []string) {
	m.products = slices.DeleteFunc(m.products, func(p string) bool {
		return slices.Contains(products, p)
	})
}

// SetProductHandler registers h for product, replacing any previous handler,
// and subscribes to product. A handler with an unknown kind or a nil function
// is rejected with [ErrUnknownHandlerKind].
func (m *SyncManager) SetProductHandler(product string, h ProductHandler) error {
	if !h.valid() {
		return ErrUnknownHandlerKind
	}

	m.mu.Lock()
	m.handlers[product] = h
	m.mu.Unlock()

	m.SubscribeProducts(product)
	return nil
}

// RemoveProductHandler unregisters the handler of product and unsubscribes
// from it.
func (m *SyncManager) RemoveProductHandler(product string) {
	m.mu.Lock()
	delete(m.handlers, product)
	m.mu.Unlock()

	m.UnsubscribeProducts(product)
}

// SetBatchHandler registers h for products. It does not subscribe to them.
func (m *SyncManager) SetBatchHandler(products []string, h BatchHandler) BatchHandlerID {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextBatchID++
	m.batchHandlers = append(m.batchHandlers, batchRegistration{
		id:       m.nextBatchID,
		products: slices.Clone(products),
		handler:  h,
	})
	return m.nextBatchID
}

// RemoveBatchHandler unregisters the batch handler with the given id.
// Unknown ids are ignored.
func (m *SyncManager) RemoveBatchHandler(id BatchHandlerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.batchHandlers = slices.DeleteFunc(m.batchHandlers, func(r batchRegistration) bool {
		return r.id == id
	})
}

// Start starts the poll loop. It is a no-op when already running.
func (m *SyncManager) Start() {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()
	m.scheduler.Start()
}

// Stop stops the poll loop. Outcomes of handlers still in flight keep being
// recorded.
func (m *SyncManager) Stop() {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()
	m.scheduler.Stop()
}

// Close stops the poll loop and stops waiting on deferred handlers that have
// not delivered an outcome yet. Rows they own keep their current state. It
// returns once those waiters have exited. The manager must not be restarted
// after Close.
func (m *SyncManager) Close() {
	m.Stop()

	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.closeOnce.Do(func() { close(m.quit) })
	m.waiters.Wait()
}

// Running reports whether the poll loop is active.
func (m *SyncManager) Running() bool {
	return m.scheduler.Running()
}

// Run starts the poll loop and blocks until ctx is done, then closes the
// manager.
func (m *SyncManager) Run(ctx context.Context) error {
	m.Start()
	<-ctx.Done()
	m.Close()
	return nil
}
