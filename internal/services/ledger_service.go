// Package services orchestrates ledger writes, the analysis queue and
// the analyzers behind it.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"laplata/internal/amqp"
	"laplata/internal/core"
	"laplata/internal/ledger"
)

// JobPublisher is the slice of the AMQP client the service needs.
type JobPublisher interface {
	PublishAnalysisJob(ctx context.Context, msg *amqp.AnalysisJobMessage) error
}

// LedgerService validates and records user entries, and routes capture
// analysis either through the job queue or inline when no broker is
// configured.
type LedgerService struct {
	store  *ledger.Store
	queue  JobPublisher // nil when AMQP is not configured
	runner *AnalysisService
}

func NewLedgerService(store *ledger.Store, queue JobPublisher, runner *AnalysisService) *LedgerService {
	return &LedgerService{store: store, queue: queue, runner: runner}
}

func (s *LedgerService) Document(ctx context.Context) core.Document {
	return s.store.Load(ctx)
}

// CreateTransaction validates and records a manual entry.
func (s *LedgerService) CreateTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.Source == "" {
		tx.Source = core.SourceManual
	}
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validate transaction: %w", err)
	}
	return s.store.AddTransaction(ctx, tx), nil
}

func (s *LedgerService) CreateBudget(ctx context.Context, b core.Budget) (string, error) {
	if err := b.Validate(); err != nil {
		return "", fmt.Errorf("validate budget: %w", err)
	}
	return s.store.AddBudget(ctx, b), nil
}

func (s *LedgerService) CreateGoal(ctx context.Context, g core.Goal) (string, error) {
	if err := g.Validate(); err != nil {
		return "", fmt.Errorf("validate goal: %w", err)
	}
	return s.store.AddGoal(ctx, g), nil
}

func (s *LedgerService) ProductStats(ctx context.Context, start, end string) core.ProductStats {
	return s.store.ProductStats(ctx, start, end)
}

// RequestAnalysis hands a capture to the analyzers. With a broker the
// job is queued for the worker and the outcome arrives later; without
// one the analyzer runs inline and the outcome is returned directly.
func (s *LedgerService) RequestAnalysis(ctx context.Context, kind amqp.JobKind, contentType, filename, account string) (string, *AnalysisOutcome, error) {
	if !kind.Valid() {
		return "", nil, fmt.Errorf("unsupported analysis kind %q", kind)
	}

	msg := amqp.NewAnalysisJobMessage(uuid.New().String(), kind, contentType, filename, account)

	if s.queue != nil {
		if err := s.queue.PublishAnalysisJob(ctx, msg); err == nil {
			return msg.JobID, nil, nil
		} else {
			slog.WarnContext(ctx, "Failed to queue analysis job, running inline",
				"job_id", msg.JobID, "kind", kind, "error", err)
		}
	}

	outcome, err := s.runner.Run(ctx, msg)
	if err != nil {
		return msg.JobID, nil, err
	}
	return msg.JobID, &outcome, nil
}
