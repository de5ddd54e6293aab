package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tgrayson/vaultvec/internal/config"
	"github.com/tgrayson/vaultvec/internal/embed"
	"github.com/tgrayson/vaultvec/internal/segment"
	"github.com/tgrayson/vaultvec/internal/store"
)

// Orchestrator manages the document ingestion pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	embedder embed.Embedder
	store    store.Store
	stats    *embed.Stats
	log      *slog.Logger
	cfg      config.Config
	segCfg   segment.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewOrchestrator creates the pipeline. Segmentation config is validated
// here so misconfiguration fails at startup, not per job.
func NewOrchestrator(cfg config.Config, embedder embed.Embedder, st store.Store, stats *embed.Stats, log *slog.Logger) (*Orchestrator, error) {
	segCfg := segment.Config{
		MaxTokensPerChunk:    cfg.MaxTokensPerChunk,
		OverlapTokens:        cfg.OverlapTokens,
		MinViableChunkTokens: cfg.MinViableChunkTokens,
	}
	if err := segCfg.Validate(); err != nil {
		return nil, err
	}

	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		embedder: embedder,
		store:    st,
		stats:    stats,
		log:      log,
		cfg:      cfg,
		segCfg:   segCfg,
	}, nil
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		// Each worker owns its tokenizer, so construct before the goroutine
		// to surface errors.
		w, err := NewWorker(o.embedder, o.store, o.stats, o.log, o.segCfg,
			o.cfg.MaxConcurrentEmbed, o.cfg.EmbedBatchSize, o.cfg.PDFFallbackPdftotext)
		if err != nil {
			cancel()
			return fmt.Errorf("create worker: %w", err)
		}

		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			defer w.Close()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the pipeline. Submissions after Stop fail
// cleanly rather than racing the queue close.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()
	o.wg.Wait()
}

// Submit queues a new job for processing. The mutex pairs with Stop so the
// send never hits a closed channel.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		job.SetStatus(StatusFailed, "shutting_down")
		return fmt.Errorf("pipeline is shutting down")
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Store returns the chunk store for direct use by API handlers.
func (o *Orchestrator) Store() store.Store {
	return o.store
}

// Embedder returns the embedding backend for query-side use.
func (o *Orchestrator) Embedder() embed.Embedder {
	return o.embedder
}

// Stats returns the embedding latency tracker.
func (o *Orchestrator) Stats() *embed.Stats {
	return o.stats
}
