package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/domiapp/domi-backend/internal/content"
	"github.com/domiapp/domi-backend/internal/database"
	"github.com/domiapp/domi-backend/internal/models"
	"github.com/domiapp/domi-backend/internal/queue"
	"github.com/domiapp/domi-backend/internal/services/ai"
	"go.uber.org/zap"
)

// Enricher runs the capture-to-processed pipeline for one clip at a time:
// resolve content, generate metadata, reconcile, persist. Content and model
// failures degrade to fallbacks; only persistence failures propagate.
type Enricher struct {
	generator ai.Generator
	clipRepo  database.ClipRepositoryInterface
	resolver  *content.Resolver
	jobQueue  queue.JobQueue // For re-enqueueing rate-limited jobs with delays
	logger    *zap.Logger
}

// NewEnricher creates a new enricher
func NewEnricher(
	generator ai.Generator,
	clipRepo database.ClipRepositoryInterface,
	resolver *content.Resolver,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *Enricher {
	return &Enricher{
		generator: generator,
		clipRepo:  clipRepo,
		resolver:  resolver,
		jobQueue:  jobQueue,
		logger:    logger,
	}
}

// EnrichClip runs the full pipeline against an already-loaded clip record.
// Model failures are absorbed into fallback metadata so the clip always
// reaches processed; the returned error is a persistence failure only.
func (e *Enricher) EnrichClip(ctx context.Context, clip *models.Clip, mock bool) (*ai.ClipMetadata, error) {
	metadata, previewURL, modelErr := e.generate(ctx, clip, mock)
	if modelErr != nil {
		e.logger.Warn("metadata_generation_failed_using_fallback",
			zap.String("clip_id", clip.ID.String()),
			zap.Error(modelErr),
		)
		metadata = ai.FallbackMetadata(clip.Title, modelErr)
	}

	patch := Reconcile(clip, metadata, previewURL)
	if err := e.clipRepo.ApplyPatch(ctx, clip.ID, patch); err != nil {
		return nil, fmt.Errorf("failed to persist enrichment: %w", err)
	}

	e.logger.Info("clip_enriched",
		zap.String("clip_id", clip.ID.String()),
		zap.Bool("mock", mock),
		zap.Bool("fallback", modelErr != nil),
		zap.Strings("tags", metadata.Tags),
	)

	return metadata, nil
}

// generate resolves the clip's content and invokes the metadata generator.
// Mock mode bypasses both resolution and the model call. The preview URL is
// returned even when the model call fails so a partial failure still yields
// a usable preview image.
func (e *Enricher) generate(ctx context.Context, clip *models.Clip, mock bool) (*ai.ClipMetadata, string, error) {
	if mock {
		return ai.MockMetadata(clip.Title), "", nil
	}

	resolved := e.resolver.Resolve(ctx, clip)

	ctx = context.WithValue(ctx, ai.UserIDContextKey(), clip.UserID)
	ctx = context.WithValue(ctx, ai.ClipIDContextKey(), clip.ID)

	metadata, err := e.generator.GenerateMetadata(ctx, resolved.Text)
	if err != nil {
		return nil, resolved.PreviewImageURL, err
	}

	return metadata, resolved.PreviewImageURL, nil
}

// ProcessEnrichClipJob processes a clip enrichment job from the queue.
// A rate-limited model call is retried once per remaining attempt via a
// delayed re-enqueue; once retries are exhausted it degrades to fallback
// metadata like any other model failure.
func (e *Enricher) ProcessEnrichClipJob(ctx context.Context, job *queue.Job) error {
	if job.ClipID == nil {
		return fmt.Errorf("clip_id is required for enrichment job")
	}

	clip, err := e.clipRepo.GetByID(ctx, *job.ClipID)
	if err != nil {
		return fmt.Errorf("failed to get clip: %w", err)
	}

	// Verify clip belongs to user
	if clip.UserID != job.UserID {
		return fmt.Errorf("clip does not belong to user")
	}

	metadata, previewURL, modelErr := e.generate(ctx, clip, job.Mock)
	if modelErr != nil {
		if ai.IsRateLimitError(modelErr) && job.CanRetry() && e.jobQueue != nil {
			return &retryableError{err: modelErr}
		}
		e.logger.Warn("metadata_generation_failed_using_fallback",
			zap.String("clip_id", clip.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(modelErr),
		)
		metadata = ai.FallbackMetadata(clip.Title, modelErr)
	}

	patch := Reconcile(clip, metadata, previewURL)
	if err := e.clipRepo.ApplyPatch(ctx, clip.ID, patch); err != nil {
		return fmt.Errorf("failed to persist enrichment: %w", err)
	}

	e.logger.Info("clip_enriched",
		zap.String("clip_id", clip.ID.String()),
		zap.String("job_id", job.ID.String()),
		zap.Bool("mock", job.Mock),
		zap.Bool("fallback", modelErr != nil),
	)

	return nil
}

// retryableError marks a job failure that should be re-enqueued with a delay
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// ProcessJob processes a job based on its type
func (e *Enricher) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.GetJob()

	// Check if job should be processed now (respect NotBefore)
	if !job.ShouldProcess() {
		e.logger.Debug("job_not_ready",
			zap.String("job_id", job.ID.String()),
		)
		if ackErr := msg.Ack(); ackErr != nil {
			e.logger.Warn("failed_to_ack_deferred_job", zap.Error(ackErr))
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeEnrichClip, queue.JobTypeReprocessClip:
		if err := e.ProcessEnrichClipJob(ctx, job); err != nil {
			return e.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			e.logger.Warn("failed_to_nack_unknown_job_type", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError routes job failures: rate-limited model calls are
// re-enqueued with a backoff delay, store failures use the standard retry
// path, and exhausted jobs go to the DLQ.
func (e *Enricher) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error) error {
	var retryable *retryableError
	if errors.As(err, &retryable) {
		retryDelay := ai.GetRetryDelay(retryable.err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		delayedJob := &queue.Job{
			ID:         job.ID,
			Type:       job.Type,
			UserID:     job.UserID,
			ClipID:     job.ClipID,
			Mock:       job.Mock,
			NotBefore:  &notBefore,
			NotAfter:   job.NotAfter,
			Metadata:   job.Metadata,
			CreatedAt:  job.CreatedAt,
			RetryCount: job.RetryCount + 1,
			MaxRetries: job.MaxRetries,
		}

		if ackErr := msg.Ack(); ackErr != nil {
			e.logger.Warn("failed_to_ack_rate_limited_job", zap.Error(ackErr))
		}

		if enqueueErr := e.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
			return fmt.Errorf("rate limited, failed to re-enqueue: %w", enqueueErr)
		}

		e.logger.Info("rate_limited_job_re_enqueued",
			zap.String("job_id", job.ID.String()),
			zap.Time("not_before", notBefore),
			zap.Duration("delay", retryDelay),
		)
		return nil
	}

	// Store failures use the standard retry path
	if job.CanRetry() {
		job.IncrementRetry()
		e.logger.Warn("job_failed_will_retry",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			e.logger.Warn("failed_to_nack_job", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	// Max retries exceeded, send to DLQ
	e.logger.Error("job_failed_max_retries",
		zap.String("job_id", job.ID.String()),
		zap.Int("max_retries", job.MaxRetries),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		e.logger.Warn("failed_to_nack_job_to_dlq", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
