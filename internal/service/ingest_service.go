package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stackmentor/stackmentor/internal/domain"
	"github.com/stackmentor/stackmentor/internal/port"
	"github.com/stackmentor/stackmentor/internal/resilience"
)

// IngestService bulk-loads content into the vector store with
// rate-limited batching. Items inside a chunk run concurrently and
// fail independently; chunk N+1 never starts before chunk N finishes.
type IngestService struct {
	embedder port.Embedder
	vectors  port.VectorStore
	retry    resilience.Config

	batchSize  int
	chunkDelay time.Duration
}

// NewIngestService creates a bulk ingestion service. Embedding calls
// are retried per the given policy; store failures count against the
// item like any other.
func NewIngestService(embedder port.Embedder, vectors port.VectorStore, retry resilience.Config, batchSize int, chunkDelay time.Duration) *IngestService {
	if batchSize < 1 {
		batchSize = 1
	}
	retry.RetryIf = port.IsRetryable
	return &IngestService{
		embedder:   embedder,
		vectors:    vectors,
		retry:      retry,
		batchSize:  batchSize,
		chunkDelay: chunkDelay,
	}
}

// Ingest embeds and upserts every item, chunked by batch size with a
// fixed delay between chunks to respect provider rate limits. One
// item's failure never aborts its chunk; failures are reported, never
// dropped.
func (s *IngestService) Ingest(ctx context.Context, items []domain.IngestItem) *domain.IngestReport {
	report := &domain.IngestReport{
		JobID: uuid.NewString(),
		Total: len(items),
	}
	start := time.Now()
	defer func() { report.Duration = time.Since(start) }()

	slog.Info("bulk ingestion started", "job_id", report.JobID, "items", len(items), "batch_size", s.batchSize)

	var mu sync.Mutex
	for chunkIdx := 0; chunkIdx < len(items); chunkIdx += s.batchSize {
		if ctx.Err() != nil {
			s.failRemaining(report, items[chunkIdx:], ctx.Err(), &mu)
			break
		}

		end := chunkIdx + s.batchSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[chunkIdx:end]

		g, gctx := errgroup.WithContext(ctx)
		for _, item := range chunk {
			g.Go(func() error {
				if err := s.ingestOne(gctx, item); err != nil {
					mu.Lock()
					report.Failed++
					report.Failures = append(report.Failures, domain.IngestFailure{Item: item, Error: err.Error()})
					mu.Unlock()
					slog.Warn("ingest item failed", "job_id", report.JobID,
						"content_type", item.ContentType, "content_id", item.ContentID, "error", err)
					return nil
				}
				mu.Lock()
				report.Succeeded++
				mu.Unlock()
				return nil
			})
		}
		// Goroutines never return errors; Wait only fences the chunk.
		_ = g.Wait()

		if end < len(items) && s.chunkDelay > 0 {
			select {
			case <-time.After(s.chunkDelay):
			case <-ctx.Done():
			}
		}
	}

	slog.Info("bulk ingestion finished", "job_id", report.JobID,
		"succeeded", report.Succeeded, "failed", report.Failed, "duration", report.Duration)
	return report
}

// ingestOne embeds one item (with retry) and upserts its record.
func (s *IngestService) ingestOne(ctx context.Context, item domain.IngestItem) error {
	if item.Text == "" {
		return port.ErrEmptyText
	}

	vector, err := resilience.RetryWithResult(ctx, s.retry, func() ([]float32, error) {
		return s.embedder.Embed(ctx, item.Text)
	})
	if err != nil {
		return err
	}

	return s.vectors.Upsert(ctx, &domain.EmbeddingRecord{
		ContentType: item.ContentType,
		ContentID:   item.ContentID,
		RawText:     item.Text,
		Vector:      vector,
	})
}

// failRemaining marks all not-yet-attempted items as failed after a
// cancellation, so the report still accounts for every item.
func (s *IngestService) failRemaining(report *domain.IngestReport, remaining []domain.IngestItem, cause error, mu *sync.Mutex) {
	mu.Lock()
	defer mu.Unlock()
	for _, item := range remaining {
		report.Failed++
		report.Failures = append(report.Failures, domain.IngestFailure{Item: item, Error: cause.Error()})
	}
}
