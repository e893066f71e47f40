package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-docflow-api/internal/models"
	"github.com/noah-isme/edu-docflow-api/pkg/jobs"
)

const jobTypeDocumentUpdated = "document_updated"

// Dispatcher decouples workflow transitions from event delivery: transitions
// enqueue and return, workers publish with retries. A delivery failure never
// fails the transition that caused it.
type Dispatcher struct {
	queue     *jobs.Queue
	publisher Publisher
	logger    *zap.Logger
}

// NewDispatcher builds a dispatcher draining into the given publisher.
func NewDispatcher(publisher Publisher, workers int, logger *zap.Logger) *Dispatcher {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{publisher: publisher, logger: logger}
	d.queue = jobs.NewQueue("events", d.handle, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	return d
}

// Start begins delivering queued events.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains workers and closes the publisher.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
	if err := d.publisher.Close(); err != nil {
		d.logger.Warn("failed to close event publisher", zap.Error(err))
	}
}

// DocumentUpdated enqueues a change notification. Best effort: enqueue
// failures are logged and swallowed.
func (d *Dispatcher) DocumentUpdated(educationID string, docType models.DocumentType) {
	if d == nil {
		return
	}
	event := models.DocumentUpdatedEvent{
		EducationID:  educationID,
		DocumentType: docType,
		OccurredAt:   time.Now().UTC(),
	}
	err := d.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeDocumentUpdated,
		Payload: event,
	})
	if err != nil {
		d.logger.Warn("failed to enqueue document event",
			zap.String("education_id", educationID),
			zap.String("document_type", string(docType)),
			zap.Error(err))
	}
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.DocumentUpdatedEvent)
	if !ok {
		d.logger.Error("unexpected event payload type", zap.String("job_id", job.ID))
		return nil
	}
	return d.publisher.Publish(ctx, event)
}
