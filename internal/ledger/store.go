// Package ledger owns the single per-user financial document and the
// read-whole/write-whole persistence cycle against a key-value slot.
package ledger

import (
	"context"
	"encoding/json"
	"log/slog"

	"laplata/internal/core"
	applog "laplata/internal/log"
	"laplata/internal/storage"
)

// Store performs atomic-per-call read/modify/write operations on the
// user document. Every mutation loads the full document, changes it in
// memory and persists it whole. Persistence is best-effort: storage
// failures are logged, never propagated.
type Store struct {
	kv  storage.KV
	key string
}

func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv, key: DefaultKey}
}

// Load returns the current document. On first use the seed document is
// persisted and returned. A corrupted stored value falls back to the
// seed without crashing.
func (s *Store) Load(ctx context.Context) core.Document {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read document slot", applog.FieldSlotKey, s.key, applog.FieldError, err)
		return SeedDocument()
	}

	if !ok {
		seed := SeedDocument()
		s.Save(ctx, seed)
		return seed
	}

	var doc core.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		slog.ErrorContext(ctx, "Stored document is unparseable, using seed", applog.FieldSlotKey, s.key, applog.FieldError, err)
		return SeedDocument()
	}

	// Older documents predate the flat products list.
	if doc.Products == nil {
		doc.Products = []core.Product{}
	}

	return doc
}

// Save persists the full document, overwriting any prior value. The
// write is fire-and-forget: callers must not assume success.
func (s *Store) Save(ctx context.Context, doc core.Document) {
	raw, err := json.Marshal(doc)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to serialize document", applog.FieldError, err)
		return
	}
	if err := s.kv.Put(ctx, s.key, string(raw)); err != nil {
		slog.ErrorContext(ctx, "Failed to persist document", applog.FieldSlotKey, s.key, applog.FieldError, err)
	}
}

// AddTransaction assigns a fresh id, prepends the transaction (the
// list is most-recent-first by insertion, not by date) and persists.
// The new id is returned.
func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction) string {
	doc := s.Load(ctx)
	tx.ID = NextID()
	doc.Transactions = append([]core.Transaction{tx}, doc.Transactions...)
	s.Save(ctx, doc)

	slog.InfoContext(ctx, "Transaction recorded",
		applog.FieldTransaction, tx.ID,
		"description", tx.Description,
		applog.FieldAmount, tx.Amount,
		"type", tx.Type,
		"source", tx.Source)

	return tx.ID
}

// AddBudget assigns a fresh id, zeroes the spent amount and persists.
func (s *Store) AddBudget(ctx context.Context, b core.Budget) string {
	doc := s.Load(ctx)
	b.ID = NextID()
	b.Spent = 0
	doc.Budgets = append(doc.Budgets, b)
	s.Save(ctx, doc)

	slog.InfoContext(ctx, "Budget recorded", "id", b.ID, applog.FieldCategory, b.Category, applog.FieldMonth, b.Month)
	return b.ID
}

// AddGoal assigns a fresh id and persists. CurrentAmount stays as the
// caller supplied it; the zero value means starting from scratch.
func (s *Store) AddGoal(ctx context.Context, g core.Goal) string {
	doc := s.Load(ctx)
	g.ID = NextID()
	doc.Goals = append(doc.Goals, g)
	s.Save(ctx, doc)

	slog.InfoContext(ctx, "Goal recorded", "id", g.ID, "name", g.Name, "target", g.TargetAmount)
	return g.ID
}

// AddProducts appends to the flat products list and persists. Products
// also live nested under their transaction; the flat list serves the
// statistics views.
func (s *Store) AddProducts(ctx context.Context, products []core.Product) {
	if len(products) == 0 {
		return
	}
	doc := s.Load(ctx)
	doc.Products = append(doc.Products, products...)
	s.Save(ctx, doc)

	slog.InfoContext(ctx, "Products recorded", "count", len(products))
}

// AttachProducts nests the products under their owning transaction and
// appends them to the flat list in one read-modify-write pass. Products
// referencing a transaction that no longer exists still land on the
// flat list; storage never enforces that reference.
func (s *Store) AttachProducts(ctx context.Context, transactionID string, products []core.Product) {
	if len(products) == 0 {
		return
	}
	doc := s.Load(ctx)
	for i := range doc.Transactions {
		if doc.Transactions[i].ID == transactionID {
			doc.Transactions[i].Products = append(doc.Transactions[i].Products, products...)
			break
		}
	}
	doc.Products = append(doc.Products, products...)
	s.Save(ctx, doc)

	slog.InfoContext(ctx, "Products attached", applog.FieldTransaction, transactionID, "count", len(products))
}

// ProductsByPeriod returns the products attached to transactions dated
// inside [start, end], both bounds inclusive.
func (s *Store) ProductsByPeriod(ctx context.Context, start, end string) []core.Product {
	doc := s.Load(ctx)
	return core.ProductsByPeriod(doc.Transactions, start, end)
}

// ProductStats aggregates product purchases inside [start, end].
func (s *Store) ProductStats(ctx context.Context, start, end string) core.ProductStats {
	doc := s.Load(ctx)
	return core.ComputeProductStats(doc.Transactions, start, end)
}
