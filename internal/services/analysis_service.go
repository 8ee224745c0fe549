package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"laplata/internal/amqp"
	"laplata/internal/analysis"
	"laplata/internal/core"
	"laplata/internal/ledger"
)

// AnalysisOutcome summarizes what one analyzer pass wrote to the
// ledger.
type AnalysisOutcome struct {
	JobID          string            `json:"job_id"`
	Kind           amqp.JobKind      `json:"kind"`
	TransactionIDs []string          `json:"transaction_ids"`
	ProductCount   int               `json:"product_count"`
	Transcript     string            `json:"transcript,omitempty"`
	Confidence     float64           `json:"confidence,omitempty"`
	FileKind       analysis.FileKind `json:"file_kind,omitempty"`
}

// AnalysisService turns analyzer output into ledger records. It is the
// single place that knows how a receipt, a transcription or a parsed
// file becomes transactions and products.
type AnalysisService struct {
	store       *ledger.Store
	receipts    analysis.ReceiptAnalyzer
	transcriber analysis.AudioTranscriber
	files       analysis.FileAnalyzer

	// Today supplies the date stamped on transcribed transactions;
	// defaults to time.Now.
	Today func() time.Time
}

func NewAnalysisService(store *ledger.Store, receipts analysis.ReceiptAnalyzer, transcriber analysis.AudioTranscriber, files analysis.FileAnalyzer) *AnalysisService {
	return &AnalysisService{
		store:       store,
		receipts:    receipts,
		transcriber: transcriber,
		files:       files,
	}
}

func (s *AnalysisService) today() string {
	now := time.Now
	if s.Today != nil {
		now = s.Today
	}
	return now().UTC().Format("2006-01-02")
}

// Run executes the analyzer selected by the job and applies its result.
func (s *AnalysisService) Run(ctx context.Context, msg *amqp.AnalysisJobMessage) (AnalysisOutcome, error) {
	switch msg.Kind {
	case amqp.JobReceipt:
		return s.runReceipt(ctx, msg)
	case amqp.JobAudio:
		return s.runAudio(ctx, msg)
	case amqp.JobFile:
		return s.runFile(ctx, msg)
	}
	return AnalysisOutcome{}, fmt.Errorf("unsupported job kind %q", msg.Kind)
}

// runReceipt records one expense for the receipt total and attaches
// the categorized line items as products.
func (s *AnalysisService) runReceipt(ctx context.Context, msg *amqp.AnalysisJobMessage) (AnalysisOutcome, error) {
	result, err := s.receipts.AnalyzeReceipt(ctx, nil)
	if err != nil {
		return AnalysisOutcome{}, fmt.Errorf("analyze receipt: %w", err)
	}

	txID := s.store.AddTransaction(ctx, core.Transaction{
		Description: "Compra - " + result.Store,
		Amount:      -result.Total,
		Category:    "Alimentação",
		Date:        result.Date,
		Type:        core.Expense,
		Account:     msg.Account,
		Source:      core.SourcePhoto,
	})

	products := analysis.ConvertReceiptToProducts(result, txID)
	s.store.AttachProducts(ctx, txID, products)

	slog.InfoContext(ctx, "Receipt applied to ledger",
		"job_id", msg.JobID, "transaction_id", txID, "products", len(products))

	return AnalysisOutcome{
		JobID:          msg.JobID,
		Kind:           msg.Kind,
		TransactionIDs: []string{txID},
		ProductCount:   len(products),
	}, nil
}

// runAudio records one expense per recognized spoken transaction,
// dated today.
func (s *AnalysisService) runAudio(ctx context.Context, msg *amqp.AnalysisJobMessage) (AnalysisOutcome, error) {
	result, err := s.transcriber.TranscribeAudio(ctx, nil)
	if err != nil {
		return AnalysisOutcome{}, fmt.Errorf("transcribe audio: %w", err)
	}

	outcome := AnalysisOutcome{
		JobID:      msg.JobID,
		Kind:       msg.Kind,
		Transcript: result.Text,
		Confidence: result.Confidence,
	}
	date := s.today()
	for _, spoken := range result.Transactions {
		txID := s.store.AddTransaction(ctx, core.Transaction{
			Description: spoken.Description,
			Amount:      -spoken.Amount,
			Category:    spoken.Category,
			Date:        date,
			Type:        core.Expense,
			Account:     msg.Account,
			Source:      core.SourceAudio,
		})
		outcome.TransactionIDs = append(outcome.TransactionIDs, txID)
	}

	slog.InfoContext(ctx, "Transcription applied to ledger",
		"job_id", msg.JobID, "transactions", len(outcome.TransactionIDs), "confidence", result.Confidence)

	return outcome, nil
}

// runFile records one transaction per extracted row. Statement rows
// carry their own date; spreadsheet rows are dated today. Rows without
// a category default by type.
func (s *AnalysisService) runFile(ctx context.Context, msg *amqp.AnalysisJobMessage) (AnalysisOutcome, error) {
	result, err := s.files.AnalyzeFile(ctx, msg.ContentType, nil)
	if err != nil {
		return AnalysisOutcome{}, fmt.Errorf("analyze file: %w", err)
	}

	outcome := AnalysisOutcome{JobID: msg.JobID, Kind: msg.Kind, FileKind: result.Kind}
	for _, row := range result.Transactions {
		txType := core.TransactionType(row.Type)
		if !txType.Valid() {
			slog.WarnContext(ctx, "Skipping row with invalid type", "type", row.Type, "description", row.Description)
			continue
		}
		date := row.Date
		if date == "" {
			date = s.today()
		}
		category := row.Category
		if category == "" {
			if txType == core.Income {
				category = "Renda"
			} else {
				category = "Outros"
			}
		}
		txID := s.store.AddTransaction(ctx, core.Transaction{
			Description: row.Description,
			Amount:      row.Amount,
			Category:    category,
			Date:        date,
			Type:        txType,
			Account:     msg.Account,
			Source:      core.SourceFile,
		})
		outcome.TransactionIDs = append(outcome.TransactionIDs, txID)
	}

	slog.InfoContext(ctx, "File analysis applied to ledger",
		"job_id", msg.JobID, "file_kind", result.Kind, "transactions", len(outcome.TransactionIDs))

	return outcome, nil
}
