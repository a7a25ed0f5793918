package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/sonote/internal/config"
	"github.com/nguyentantai21042004/sonote/internal/domain"
	"github.com/nguyentantai21042004/sonote/internal/logger"
)

// DefaultConcurrentLimit is the number of items processed at once.
const DefaultConcurrentLimit = 2

type runHandle struct {
	epoch  uint64
	cancel context.CancelFunc
}

type implScheduler struct {
	limit       int
	settleDelay time.Duration
	transcriber Transcriber
	polisher    Polisher
	recorder    Recorder
	metrics     Metrics
	janitor     Janitor
	logger      logger.Logger
	events      *eventLog
	newID       func() string

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	items     map[string]domain.Item
	order     []string
	active    int
	nextEpoch uint64
	runs      map[string]runHandle
	recorded  map[string]bool
	changed   chan struct{}
	closed    bool
	wg        sync.WaitGroup
}

// New creates a Scheduler; a zero concurrent limit means DefaultConcurrentLimit.
func New(cfg config.SchedulerConfig, deps Deps, log logger.Logger) Scheduler {
	limit := cfg.ConcurrentLimit
	if limit <= 0 {
		limit = DefaultConcurrentLimit
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &implScheduler{
		limit:       limit,
		settleDelay: cfg.SettleDelay,
		transcriber: deps.Transcriber,
		polisher:    deps.Polisher,
		recorder:    deps.Recorder,
		metrics:     deps.Metrics,
		janitor:     deps.Janitor,
		logger:      log,
		events:      newEventLog(1000),
		newID:       uuid.NewString,
		ctx:         ctx,
		cancel:      cancel,
		items:       make(map[string]domain.Item),
		runs:        make(map[string]runHandle),
		recorded:    make(map[string]bool),
		changed:     make(chan struct{}),
	}
}

type nopMetrics struct{}

func (nopMetrics) ItemsEnqueued(int)                   {}
func (nopMetrics) RunStarted()                         {}
func (nopMetrics) RunFinished()                        {}
func (nopMetrics) StageDuration(string, time.Duration) {}
func (nopMetrics) ItemCompleted(int64)                 {}
func (nopMetrics) ItemFailed(string)                   {}
