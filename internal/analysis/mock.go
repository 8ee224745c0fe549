package analysis

import (
	"context"
	"strings"
	"time"
)

// Mock implements all three analyzer ports with canned payloads after
// a fixed simulated delay. There is no partial-failure path: barring
// context cancellation every call resolves with the same data.
type Mock struct {
	ReceiptDelay time.Duration
	AudioDelay   time.Duration
	FileDelay    time.Duration

	// Now supplies the receipt date; defaults to time.Now.
	Now func() time.Time
}

// NewMock returns a Mock with the delays the original stand-ins used.
func NewMock() *Mock {
	return &Mock{
		ReceiptDelay: 2 * time.Second,
		AudioDelay:   3 * time.Second,
		FileDelay:    2500 * time.Millisecond,
	}
}

func (m *Mock) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mock) today() string {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return now().UTC().Format("2006-01-02")
}

// AnalyzeReceipt implements ReceiptAnalyzer.
func (m *Mock) AnalyzeReceipt(ctx context.Context, _ []byte) (ReceiptAnalysis, error) {
	if err := m.wait(ctx, m.ReceiptDelay); err != nil {
		return ReceiptAnalysis{}, err
	}

	return ReceiptAnalysis{
		Store: "Supermercado Extra",
		Date:  m.today(),
		Total: 127.45,
		Products: []ReceiptItem{
			{Name: "Arroz Branco 5kg", Price: 18.90, Quantity: 1},
			{Name: "Feijão Preto 1kg", Price: 7.50, Quantity: 2},
			{Name: "Óleo de Soja 900ml", Price: 4.99, Quantity: 1},
			{Name: "Açúcar Cristal 1kg", Price: 3.20, Quantity: 1},
			{Name: "Leite Integral 1L", Price: 4.50, Quantity: 3},
			{Name: "Pão de Forma", Price: 5.80, Quantity: 2},
			{Name: "Banana Prata kg", Price: 4.90, Quantity: 2},
			{Name: "Tomate kg", Price: 6.80, Quantity: 1.5},
			{Name: "Cebola kg", Price: 3.50, Quantity: 1},
			{Name: "Frango kg", Price: 12.90, Quantity: 2},
			{Name: "Detergente", Price: 2.99, Quantity: 2},
			{Name: "Papel Higiênico 12un", Price: 15.80, Quantity: 1},
			{Name: "Sabão em Pó 1kg", Price: 8.90, Quantity: 1},
			{Name: "Refrigerante 2L", Price: 6.50, Quantity: 2},
			{Name: "Biscoito Recheado", Price: 3.80, Quantity: 3},
		},
	}, nil
}

// TranscribeAudio implements AudioTranscriber.
func (m *Mock) TranscribeAudio(ctx context.Context, _ []byte) (AudioTranscription, error) {
	if err := m.wait(ctx, m.AudioDelay); err != nil {
		return AudioTranscription{}, err
	}

	return AudioTranscription{
		Text: "Gastei cinquenta e dois reais no supermercado hoje, comprei leite, " +
			"pão e frutas. Também paguei vinte e cinco reais de combustível no posto.",
		Confidence: 0.92,
		Transactions: []SpokenTransaction{
			{Description: "Compras no supermercado", Amount: 52.00, Category: "Alimentação"},
			{Description: "Combustível", Amount: 25.00, Category: "Transporte"},
		},
	}, nil
}

// AnalyzeFile implements FileAnalyzer. The payload kind is chosen from
// the content type; unrecognized types yield FileUnknown with no rows.
func (m *Mock) AnalyzeFile(ctx context.Context, contentType string, _ []byte) (FileAnalysis, error) {
	if err := m.wait(ctx, m.FileDelay); err != nil {
		return FileAnalysis{}, err
	}

	switch {
	case strings.Contains(contentType, "pdf"):
		return FileAnalysis{
			Kind: FileBankStatement,
			Transactions: []StatementEntry{
				{Description: "PIX Recebido", Amount: 500.00, Date: "2024-01-15", Type: "income"},
				{Description: "Débito Automático - Energia", Amount: -120.50, Date: "2024-01-14", Type: "expense"},
				{Description: "Compra Cartão - Farmácia", Amount: -45.80, Date: "2024-01-13", Type: "expense"},
				{Description: "TED Enviado", Amount: -200.00, Date: "2024-01-12", Type: "expense"},
			},
		}, nil
	case strings.Contains(contentType, "spreadsheet"), strings.Contains(contentType, "excel"):
		return FileAnalysis{
			Kind: FileSpreadsheet,
			Transactions: []StatementEntry{
				{Description: "Salário", Amount: 4500.00, Category: "Renda", Type: "income"},
				{Description: "Aluguel", Amount: -1200.00, Category: "Casa", Type: "expense"},
				{Description: "Internet", Amount: -89.90, Category: "Casa", Type: "expense"},
			},
		}, nil
	}

	return FileAnalysis{Kind: FileUnknown}, nil
}

var (
	_ ReceiptAnalyzer  = (*Mock)(nil)
	_ AudioTranscriber = (*Mock)(nil)
	_ FileAnalyzer     = (*Mock)(nil)
)
