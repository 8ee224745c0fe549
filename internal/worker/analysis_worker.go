// Package worker runs queued analysis jobs against the analyzers and
// writes the results into the ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"laplata/internal/amqp"
	applog "laplata/internal/log"
	"laplata/internal/services"
)

type AnalysisWorker struct {
	runner *services.AnalysisService
}

func NewAnalysisWorker(runner *services.AnalysisService) *AnalysisWorker {
	return &AnalysisWorker{runner: runner}
}

// HandleJob processes a single analysis job from the queue. An error
// return requeues the message.
func (w *AnalysisWorker) HandleJob(ctx context.Context, msg *amqp.AnalysisJobMessage) error {
	started := time.Now()

	outcome, err := w.runner.Run(ctx, msg)
	if err != nil {
		return fmt.Errorf("run analysis job %s: %w", msg.JobID, err)
	}

	fields := applog.NewFields().WithJob(msg.JobID, string(msg.Kind))
	fields["transactions"] = len(outcome.TransactionIDs)
	fields["products"] = outcome.ProductCount
	fields[applog.FieldDuration] = time.Since(started).Milliseconds()
	slog.InfoContext(ctx, "Analysis job completed", fields.ToSlice()...)

	return nil
}
