package usecase

import (
	"context"
	"sync"
	"time"

	"smartrfq/pkg/logger"
	"smartrfq/pkg/metrics"
)

// ExtractionJob asks for quotations to be pulled out of one received email.
type ExtractionJob struct {
	OrgID   string
	EmailID string
}

// Extractor stores the quotations found in an email and reports how many.
type Extractor interface {
	ExtractFromEmail(ctx context.Context, orgID, emailID string) (int, error)
}

// ExtractionWorker runs extraction jobs on a fixed pool of goroutines.
type ExtractionWorker struct {
	extractor   Extractor
	jobQueue    chan ExtractionJob
	workerWg    sync.WaitGroup
	workerCount int
	timeout     time.Duration
	metrics     *metrics.Pipeline
	log         *logger.Logger

	mu      sync.Mutex
	started bool
	stopped bool
}

func NewExtractionWorker(workerCount int, m *metrics.Pipeline, log *logger.Logger) *ExtractionWorker {
	if workerCount <= 0 {
		workerCount = 3
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ExtractionWorker{
		jobQueue:    make(chan ExtractionJob, 500),
		workerCount: workerCount,
		timeout:     30 * time.Second,
		metrics:     m,
		log:         log.With("component", "ExtractionWorker"),
	}
}

// SetExtractor wires the quotation side in after construction.
func (w *ExtractionWorker) SetExtractor(e Extractor) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.extractor = e
}

func (w *ExtractionWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	for i := 0; i < w.workerCount; i++ {
		w.workerWg.Add(1)
		go w.worker(i)
	}
	w.started = true
	w.log.Info("extraction workers started", "count", w.workerCount)
}

// Stop drains the queue and waits for in-flight jobs.
func (w *ExtractionWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.jobQueue)
	w.mu.Unlock()

	w.workerWg.Wait()
	w.log.Info("extraction workers stopped")
}

func (w *ExtractionWorker) worker(id int) {
	defer w.workerWg.Done()
	for job := range w.jobQueue {
		w.process(job)
	}
	w.log.Debug("worker exited", "worker", id)
}

func (w *ExtractionWorker) process(job ExtractionJob) {
	w.mu.Lock()
	extractor := w.extractor
	w.mu.Unlock()
	if extractor == nil {
		w.observe("skipped")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	n, err := extractor.ExtractFromEmail(ctx, job.OrgID, job.EmailID)
	if err != nil {
		w.log.Error("extraction failed", "email_id", job.EmailID, "error", err)
		w.observe("error")
		return
	}
	w.observe("ok")
	if n > 0 {
		w.log.Info("quotations extracted", "email_id", job.EmailID, "count", n)
	}
}

func (w *ExtractionWorker) observe(result string) {
	if w.metrics != nil {
		w.metrics.ExtractionJobs.WithLabelValues(result).Inc()
	}
}

// QueueJob enqueues without blocking. It returns false when the queue is
// full or the worker has stopped.
func (w *ExtractionWorker) QueueJob(job ExtractionJob) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return false
	}
	select {
	case w.jobQueue <- job:
		return true
	default:
		return false
	}
}
