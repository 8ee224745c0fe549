// Package analysis defines the capture-analysis capability: ports for
// receipt, audio and file analyzers plus the rule-based product
// categorizer. The shipped implementations are fixed stand-ins; a
// model-backed implementation can replace them without touching the
// storage or aggregation contracts.
package analysis

import "context"

const (
	FileBankStatement FileKind = "bank_statement"
	FileSpreadsheet   FileKind = "spreadsheet"
	FileUnknown       FileKind = "unknown"
)

type (
	FileKind string

	ReceiptItem struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Quantity float64 `json:"quantity"`
	}

	ReceiptAnalysis struct {
		Store    string        `json:"store"`
		Date     string        `json:"date"`
		Total    float64       `json:"total"`
		Products []ReceiptItem `json:"products"`
	}

	SpokenTransaction struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
	}

	AudioTranscription struct {
		Text         string              `json:"text"`
		Confidence   float64             `json:"confidence"`
		Transactions []SpokenTransaction `json:"transactions"`
	}

	// StatementEntry is one row extracted from an uploaded file. Date
	// is set for bank statements, Category for spreadsheets.
	StatementEntry struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Date        string  `json:"date,omitempty"`
		Category    string  `json:"category,omitempty"`
		Type        string  `json:"type"`
	}

	// FileAnalysis is the discriminated payload keyed by detected kind.
	FileAnalysis struct {
		Kind         FileKind         `json:"type"`
		Transactions []StatementEntry `json:"transactions,omitempty"`
	}
)

// Ports for capture analyzers.
type (
	ReceiptAnalyzer interface {
		AnalyzeReceipt(ctx context.Context, image []byte) (ReceiptAnalysis, error)
	}

	AudioTranscriber interface {
		TranscribeAudio(ctx context.Context, audio []byte) (AudioTranscription, error)
	}

	FileAnalyzer interface {
		// AnalyzeFile inspects the content type to decide the payload
		// kind; data is ignored by stub implementations.
		AnalyzeFile(ctx context.Context, contentType string, data []byte) (FileAnalysis, error)
	}
)
