package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"expensetracker/internal/amqp"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/voice"
)

// SegmentSource delivers voice segments until ctx is cancelled.
type SegmentSource interface {
	Run(ctx context.Context, handler amqp.SegmentHandler) error
}

// SegmentHandler is the part of the tracker the worker drives.
type SegmentHandler interface {
	HandleSegment(ctx context.Context, seg voice.Segment) (services.SegmentResult, error)
}

// SegmentWorker feeds segments from a queue into the tracker.
type SegmentWorker struct {
	source  SegmentSource
	tracker SegmentHandler
	logger  *log.Logger

	processed atomic.Int64
	created   atomic.Int64
	failed    atomic.Int64
}

func NewSegmentWorker(source SegmentSource, tracker SegmentHandler, logger *log.Logger) *SegmentWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SegmentWorker{
		source:  source,
		tracker: tracker,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// Run blocks until ctx is cancelled.
func (w *SegmentWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting voice segment worker", log.FieldOperation, log.OpStartup)
	err := w.source.Run(ctx, w.HandleSegment)
	w.logger.InfoContext(ctx, "Voice segment worker stopped",
		log.FieldOperation, log.OpShutdown,
		"processed", w.processed.Load(),
		"created", w.created.Load(),
		"failed", w.failed.Load())
	return err
}

// HandleSegment processes a single segment from the queue.
func (w *SegmentWorker) HandleSegment(ctx context.Context, seg voice.Segment) error {
	fields := log.NewFields().
		WithSegment(seg.ID, seg.ContextID, string(seg.Intent.Intent), seg.IsFinal).
		WithOperation(log.OpConsume)

	res, err := w.tracker.HandleSegment(ctx, seg)
	if err != nil {
		w.failed.Add(1)
		w.logger.ErrorContext(ctx, "Voice segment failed", fields.WithError(err).ToSlice()...)
		return fmt.Errorf("handle segment %d: %w", seg.ID, err)
	}

	w.processed.Add(1)
	if res.Created != nil {
		w.created.Add(1)
	}
	w.logger.DebugContext(ctx, "Voice segment processed", append(fields.ToSlice(), "action", res.Action.String())...)
	return nil
}

// Stats reports processed, created and failed segment counts.
func (w *SegmentWorker) Stats() (processed, created, failed int64) {
	return w.processed.Load(), w.created.Load(), w.failed.Load()
}
