package ledger

import "laplata/internal/core"

// DefaultKey is the slot under which the user document is persisted.
const DefaultKey = "la-plata-data"

// SeedDocument returns the fixed demo dataset written on first use when
// no document has been persisted yet.
func SeedDocument() core.Document {
	return core.Document{
		User: core.User{
			ID:    "1",
			Name:  "João Silva",
			Email: "joao@email.com",
		},
		Accounts: []core.Account{
			{ID: "1", Name: "Conta Corrente", Kind: core.Checking, Balance: 5420.50, Bank: "Banco do Brasil"},
			{ID: "2", Name: "Poupança", Kind: core.Savings, Balance: 12800.00, Bank: "Nubank"},
			{ID: "3", Name: "Cartão de Crédito", Kind: core.Credit, Balance: -1250.30, Bank: "Itaú"},
		},
		Transactions: []core.Transaction{
			{ID: "1", Description: "Salário", Amount: 4500.00, Category: "Renda", Date: "2024-01-15", Type: core.Income, Account: "Conta Corrente"},
			{ID: "2", Description: "Supermercado", Amount: -320.50, Category: "Alimentação", Date: "2024-01-14", Type: core.Expense, Account: "Cartão de Crédito"},
			{ID: "3", Description: "Combustível", Amount: -180.00, Category: "Transporte", Date: "2024-01-13", Type: core.Expense, Account: "Conta Corrente"},
			{ID: "4", Description: "Freelance", Amount: 800.00, Category: "Renda Extra", Date: "2024-01-12", Type: core.Income, Account: "Conta Corrente"},
			{ID: "5", Description: "Restaurante", Amount: -95.00, Category: "Alimentação", Date: "2024-01-11", Type: core.Expense, Account: "Cartão de Crédito"},
		},
		Budgets: []core.Budget{
			{ID: "1", Category: "Alimentação", Limit: 800.00, Spent: 415.50, Month: "2024-01"},
			{ID: "2", Category: "Transporte", Limit: 400.00, Spent: 180.00, Month: "2024-01"},
			{ID: "3", Category: "Lazer", Limit: 300.00, Spent: 95.00, Month: "2024-01"},
		},
		Goals: []core.Goal{
			{ID: "1", Name: "Reserva de Emergência", TargetAmount: 20000.00, CurrentAmount: 12800.00, Deadline: "2024-12-31", Category: "Emergência"},
			{ID: "2", Name: "Viagem Europa", TargetAmount: 8000.00, CurrentAmount: 2400.00, Deadline: "2024-07-01", Category: "Lazer"},
		},
		Products: []core.Product{},
	}
}
