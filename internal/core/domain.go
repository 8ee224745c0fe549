package core

import (
	"errors"
	"strings"
)

const (
	Checking AccountKind = "checking"
	Savings  AccountKind = "savings"
	Credit   AccountKind = "credit"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	SourceManual Source = "manual"
	SourcePhoto  Source = "photo"
	SourceAudio  Source = "audio"
	SourceFile   Source = "file"
)

type (
	AccountKind     string
	TransactionType string

	// Source records how a transaction entered the system.
	Source string

	User struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Avatar string `json:"avatar,omitempty"`
	}

	Account struct {
		ID      string      `json:"id"`
		Name    string      `json:"name"`
		Kind    AccountKind `json:"type"`
		Balance float64     `json:"balance"`
		Bank    string      `json:"bank"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Date        string          `json:"date"` // ISO calendar day, YYYY-MM-DD
		Type        TransactionType `json:"type"`
		Account     string          `json:"account"` // referenced by name, not id
		Source      Source          `json:"source,omitempty"`
		Products    []Product       `json:"products,omitempty"`
	}

	Budget struct {
		ID       string  `json:"id"`
		Category string  `json:"category"`
		Limit    float64 `json:"limit"`
		Spent    float64 `json:"spent"`
		Month    string  `json:"month"` // YYYY-MM
	}

	Goal struct {
		ID            string  `json:"id"`
		Name          string  `json:"name"`
		TargetAmount  float64 `json:"targetAmount"`
		CurrentAmount float64 `json:"currentAmount"`
		Deadline      string  `json:"deadline"` // ISO calendar day
		Category      string  `json:"category"`
	}

	Product struct {
		ID            string  `json:"id"`
		Name          string  `json:"name"`
		Price         float64 `json:"price"`
		Quantity      float64 `json:"quantity"` // fractional for weighed items
		Category      string  `json:"category"`
		TransactionID string  `json:"transactionId"`
	}

	// Document is the single aggregate record holding all of a user's
	// financial data. It is persisted whole on every write.
	Document struct {
		User         User          `json:"user"`
		Accounts     []Account     `json:"accounts"`
		Transactions []Transaction `json:"transactions"`
		Budgets      []Budget      `json:"budgets"`
		Goals        []Goal        `json:"goals"`
		Products     []Product     `json:"products"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidKind      = errors.New("invalid account kind")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyEmail       = errors.New("empty email")
)

// IsISODate reports whether s looks like a YYYY-MM-DD calendar day.
// Only the shape is checked; stored dates are compared as strings.
func IsISODate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsYearMonth reports whether s looks like a YYYY-MM month key.
func IsYearMonth(s string) bool {
	if len(s) != 7 || s[4] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (k AccountKind) Valid() bool {
	switch k {
	case Checking, Savings, Credit:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (s Source) Valid() bool {
	switch s {
	case "", SourceManual, SourcePhoto, SourceAudio, SourceFile:
		return true
	}
	return false
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Amount == 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !IsISODate(t.Date) {
		return ErrInvalidDate
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.Source.Valid() {
		return errors.New("invalid transaction source")
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Limit <= 0 {
		return ErrInvalidAmount
	}
	if !IsYearMonth(b.Month) {
		return ErrInvalidMonth
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount <= 0 {
		return ErrInvalidAmount
	}
	if g.CurrentAmount < 0 {
		return ErrInvalidAmount
	}
	if !IsISODate(g.Deadline) {
		return ErrInvalidDate
	}
	return nil
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Price < 0 || p.Quantity <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
