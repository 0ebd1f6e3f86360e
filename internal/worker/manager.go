package worker

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"enatega_storefront/internal/queue"
)

const (
	// DefaultWorkerCount is the default number of worker goroutines
	DefaultWorkerCount = 2

	// DefaultBatchSize is the number of messages to read per batch
	DefaultBatchSize = 10

	// DefaultBlockTimeout is how long to block waiting for new messages
	DefaultBlockTimeout = 5 * time.Second

	readErrorBackoff = time.Second
)

// EventHandler handles a single decoded event.
type EventHandler interface {
	HandleEvent(ctx context.Context, event queue.StorefrontEvent) error
}

// Manager orchestrates worker goroutines that consume from Redis Streams.
type Manager struct {
	consumer    queue.Consumer
	handler     EventHandler
	logger      *slog.Logger
	workerCount int
	batchSize   int64
	blockTime   time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	WorkerCount  int           // Number of worker goroutines
	BatchSize    int64         // Messages per read
	BlockTimeout time.Duration // Block time for XREADGROUP
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:  DefaultWorkerCount,
		BatchSize:    DefaultBatchSize,
		BlockTimeout: DefaultBlockTimeout,
	}
}

// NewManager creates a new worker manager.
func NewManager(consumer queue.Consumer, handler EventHandler, cfg ManagerConfig, logger *slog.Logger) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		consumer:    consumer,
		handler:     handler,
		logger:      logger.With("component", "Manager"),
		workerCount: cfg.WorkerCount,
		batchSize:   cfg.BatchSize,
		blockTime:   cfg.BlockTimeout,
	}
}

// Start ensures the consumer group and begins the worker goroutines.
// Call Stop() to gracefully shut down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, queue.StreamStorefront, queue.ConsumerGroupStorefront); err != nil {
		m.cancel()
		return err
	}

	m.logger.Info("starting workers", "count", m.workerCount,
		"stream", queue.StreamStorefront, "group", queue.ConsumerGroupStorefront)

	for i := 0; i < m.workerCount; i++ {
		workerID := i + 1
		m.wg.Add(1)
		go m.runWorker(workerID, consumerNameForWorker(workerID))
	}
	return nil
}

// Stop gracefully shuts down all workers.
// Blocks until all workers have finished.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.logger.Info("stopping workers")
	m.cancel()
	m.wg.Wait()
	m.logger.Info("all workers stopped")
}

// runWorker is the main loop for a single worker goroutine.
func (m *Manager) runWorker(workerID int, consumerName string) {
	defer m.wg.Done()
	log := m.logger.With("worker", workerID, "consumer", consumerName)

	log.Debug("worker started")

	// Crash recovery: finish messages delivered to this consumer before a restart.
	m.processPending(log, consumerName)

	for {
		select {
		case <-m.ctx.Done():
			log.Debug("worker shutting down")
			return
		default:
			m.processMessages(log, consumerName)
		}
	}
}

// processPending handles messages that were delivered but not acknowledged.
func (m *Manager) processPending(log *slog.Logger, consumerName string) {
	for {
		messages, err := m.consumer.ReadPending(m.ctx, queue.StreamStorefront, queue.ConsumerGroupStorefront, consumerName, m.batchSize)
		if err != nil {
			log.Error("read pending failed", "err", err)
			return
		}
		if len(messages) == 0 {
			return
		}

		log.Info("processing pending messages", "count", len(messages))
		m.handleMessages(log, messages)
	}
}

// processMessages reads and handles a batch of messages.
func (m *Manager) processMessages(log *slog.Logger, consumerName string) {
	messages, err := m.consumer.Read(
		m.ctx,
		queue.StreamStorefront,
		queue.ConsumerGroupStorefront,
		consumerName,
		m.batchSize,
		m.blockTime,
	)
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		log.Error("read failed", "err", err)
		select {
		case <-m.ctx.Done():
		case <-time.After(readErrorBackoff):
		}
		return
	}

	if len(messages) == 0 {
		return
	}

	m.handleMessages(log, messages)
}

// handleMessages processes a batch of messages and acknowledges them.
// Failed messages are acknowledged too so a poison message cannot loop forever.
func (m *Manager) handleMessages(log *slog.Logger, messages []queue.Message) {
	for _, msg := range messages {
		if err := m.handler.HandleEvent(m.ctx, msg.Event); err != nil {
			log.Error("handler error", "msg_id", msg.ID, "type", msg.Event.Type, "err", err)
		}

		if err := m.consumer.Ack(m.ctx, queue.StreamStorefront, queue.ConsumerGroupStorefront, msg.ID); err != nil {
			log.Error("ack error", "msg_id", msg.ID, "err", err)
		}
	}
}

// consumerNameForWorker generates a unique consumer name for each worker.
func consumerNameForWorker(workerID int) string {
	return "worker-" + strconv.Itoa(workerID)
}
