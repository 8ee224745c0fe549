package analysis

import (
	"fmt"

	"laplata/internal/core"
)

// ConvertReceiptToProducts maps receipt line items into owned Product
// records. Ids are deterministic, derived from the owning transaction
// id and the line index, so re-converting the same receipt yields the
// same ids.
func ConvertReceiptToProducts(a ReceiptAnalysis, transactionID string) []core.Product {
	products := make([]core.Product, len(a.Products))
	for i, item := range a.Products {
		products[i] = core.Product{
			ID:            fmt.Sprintf("%s-product-%d", transactionID, i),
			Name:          item.Name,
			Price:         item.Price,
			Quantity:      item.Quantity,
			Category:      CategorizeProduct(item.Name),
			TransactionID: transactionID,
		}
	}
	return products
}
