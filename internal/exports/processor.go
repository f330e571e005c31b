package exports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/insights/internal/analytics"
	"github.com/aura-webinar/insights/internal/metrics"
	"github.com/aura-webinar/insights/pkg/queue"
	"github.com/aura-webinar/insights/pkg/storage"
)

const dequeueTimeout = 5 * time.Second

// Processor computes queued report exports and uploads them to object storage.
type Processor struct {
	queue    *queue.Queue
	reporter analytics.Reporter
	creators analytics.CreatorStore
	store    ObjectStore
	backoff  time.Duration
	logger   *zap.Logger
}

// NewProcessor creates an export processor. backoff <= 0 selects queue.RetryBackoff.
func NewProcessor(q *queue.Queue, reporter analytics.Reporter, creators analytics.CreatorStore, store ObjectStore, backoff time.Duration, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backoff <= 0 {
		backoff = queue.RetryBackoff
	}
	return &Processor{queue: q, reporter: reporter, creators: creators, store: store, backoff: backoff, logger: logger}
}

// Process executes one export job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeReportExport {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	creator, err := p.creators.GetCreator(ctx, payload.CreatorID)
	if err != nil {
		return fmt.Errorf("load creator %s: %w", payload.CreatorID, err)
	}
	report, err := p.reporter.GetCreatorAnalytics(ctx, *creator, analytics.Options{
		Days:      payload.Days,
		WebinarID: payload.WebinarID,
	})
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	key := storage.ExportKey(payload.CreatorID.String(), payload.ExportID.String())
	if err := p.store.PutExport(ctx, key, "application/json", bytes.NewReader(body), int64(len(body))); err != nil {
		return fmt.Errorf("upload export: %w", err)
	}
	if err := p.queue.SetStatus(ctx, queue.ExportStatus{
		ExportID:  payload.ExportID,
		CreatorID: payload.CreatorID,
		State:     queue.ExportReady,
		ObjectKey: key,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("mark export ready: %w", err)
	}
	p.logger.Info("report export completed", zap.String("export_id", payload.ExportID.String()), zap.String("s3_key", key))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("export worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.fail(ctx, job, err)
			p.sleep(ctx)
			continue
		}
		metrics.ExportJobs.WithLabelValues("ready").Inc()
	}
}

// fail retries job, marking its export failed once it is dead-lettered.
func (p *Processor) fail(ctx context.Context, job *queue.Job, cause error) {
	p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(cause))
	deadLettered, err := p.queue.Retry(ctx, job)
	if err != nil {
		p.logger.Error("retry enqueue failed", zap.Error(err))
		return
	}
	if !deadLettered {
		metrics.ExportJobs.WithLabelValues("retried").Inc()
		return
	}
	metrics.ExportJobs.WithLabelValues("failed").Inc()
	var payload queue.ExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return
	}
	if err := p.queue.SetStatus(ctx, queue.ExportStatus{
		ExportID:  payload.ExportID,
		CreatorID: payload.CreatorID,
		State:     queue.ExportFailed,
		Error:     "export failed after retries",
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		p.logger.Error("mark export failed", zap.Error(err))
	}
}

func (p *Processor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
