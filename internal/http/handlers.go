package http

import (
	"net/http"
	"strings"
	"time"

	"laplata/internal/amqp"
	"laplata/internal/core"
	applog "laplata/internal/log"
)

// SummaryResponse is the dashboard payload for one month.
type SummaryResponse struct {
	Month          string               `json:"month"`
	TotalBalance   float64              `json:"totalBalance"`
	MonthlyIncome  float64              `json:"monthlyIncome"`
	MonthlyExpense float64              `json:"monthlyExpense"`
	Accounts       []core.Account       `json:"accounts"`
	Budgets        []BudgetSummary      `json:"budgets"`
	Goals          []GoalSummary        `json:"goals"`
	Categories     []core.CategoryShare `json:"categories"`
}

// BudgetSummary decorates a budget with its derived usage figures.
type BudgetSummary struct {
	core.Budget
	UsagePercent float64 `json:"usagePercent"`
	BarWidth     float64 `json:"barWidth"`
}

// GoalSummary decorates a goal with progress and deadline figures.
type GoalSummary struct {
	core.Goal
	ProgressPercent float64 `json:"progressPercent"`
	Remaining       float64 `json:"remaining"`
	DaysLeft        int     `json:"daysLeft"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	month, ok := monthParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	if cached, hit := s.summaryCache.Get(month); hit {
		s.logger.DebugContext(r.Context(), "Summary cache hit", applog.FieldMonth, month)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	doc := s.ledger.Document(r.Context())

	summary := SummaryResponse{
		Month:          month,
		TotalBalance:   core.TotalBalance(doc.Accounts),
		MonthlyIncome:  core.MonthlyIncome(doc.Transactions, month),
		MonthlyExpense: core.MonthlyExpense(doc.Transactions, month),
		Accounts:       doc.Accounts,
		Budgets:        make([]BudgetSummary, 0, len(doc.Budgets)),
		Goals:          make([]GoalSummary, 0, len(doc.Goals)),
		Categories:     core.CategoryBreakdown(doc.Transactions),
	}

	for _, b := range doc.Budgets {
		if b.Month != month {
			continue
		}
		usage := core.BudgetUsage(b)
		summary.Budgets = append(summary.Budgets, BudgetSummary{
			Budget:       b,
			UsagePercent: usage,
			BarWidth:     core.BarWidth(usage),
		})
	}

	now := time.Now()
	for _, g := range doc.Goals {
		summary.Goals = append(summary.Goals, GoalSummary{
			Goal:            g,
			ProgressPercent: core.GoalProgress(g),
			Remaining:       core.GoalRemaining(g),
			DaysLeft:        core.DaysUntilDeadline(g.Deadline, now),
		})
	}

	s.summaryCache.Set(month, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.rateLimited(s.handleCreateTransaction)(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	doc := s.ledger.Document(r.Context())

	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		writeJSON(w, http.StatusOK, doc.Transactions)
		return
	}
	if !core.IsYearMonth(month) {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	filtered := make([]core.Transaction, 0, len(doc.Transactions))
	for _, tx := range doc.Transactions {
		if strings.HasPrefix(tx.Date, month) {
			filtered = append(filtered, tx)
		}
	}
	writeJSON(w, http.StatusOK, filtered)
}

type createTransactionRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Account     string  `json:"account"`
}

type createdResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx := core.Transaction{
		Description: sanitizeInput(req.Description),
		Amount:      req.Amount,
		Category:    sanitizeInput(req.Category),
		Date:        strings.TrimSpace(req.Date),
		Type:        core.TransactionType(req.Type),
		Account:     sanitizeInput(req.Account),
	}

	id, err := s.ledger.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if len(tx.Date) >= 7 {
		s.invalidateSummary(tx.Date[:7])
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

type createBudgetRequest struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Month    string  `json:"month"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req createBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b := core.Budget{
		Category: sanitizeInput(req.Category),
		Limit:    req.Limit,
		Month:    strings.TrimSpace(req.Month),
	}

	id, err := s.ledger.CreateBudget(r.Context(), b)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.invalidateSummary(b.Month)
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

type createGoalRequest struct {
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	Deadline      string  `json:"deadline"`
	Category      string  `json:"category"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req createGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g := core.Goal{
		Name:          sanitizeInput(req.Name),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      strings.TrimSpace(req.Deadline),
		Category:      sanitizeInput(req.Category),
	}

	id, err := s.ledger.CreateGoal(r.Context(), g)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.invalidateAllSummaries()
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleProductStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	start, end, ok := periodParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "start and end must be YYYY-MM-DD")
		return
	}

	writeJSON(w, http.StatusOK, s.ledger.ProductStats(r.Context(), start, end))
}

type analyzeRequest struct {
	ContentType string `json:"contentType"`
	Filename    string `json:"filename"`
	Account     string `json:"account"`
}

type analyzeResponse struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
	Outcome any    `json:"outcome,omitempty"`
}

func (s *Server) handleAnalyzeReceipt(w http.ResponseWriter, r *http.Request) {
	s.handleAnalyze(w, r, amqp.JobReceipt)
}

func (s *Server) handleAnalyzeAudio(w http.ResponseWriter, r *http.Request) {
	s.handleAnalyze(w, r, amqp.JobAudio)
}

func (s *Server) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	s.handleAnalyze(w, r, amqp.JobFile)
}

// handleAnalyze accepts a capture for analysis. With a broker the job
// is queued and answered 202; without one the analyzer runs inline and
// the outcome comes back on the same response.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, kind amqp.JobKind) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	jobID, outcome, err := s.ledger.RequestAnalysis(r.Context(),
		kind,
		strings.TrimSpace(req.ContentType),
		sanitizeInput(req.Filename),
		sanitizeInput(req.Account))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Analysis request failed",
			applog.NewFields().WithJob(jobID, string(kind)).WithError(err).ToSlice()...)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	if outcome == nil {
		writeJSON(w, http.StatusAccepted, analyzeResponse{JobID: jobID, Status: "queued"})
		return
	}

	s.invalidateAllSummaries()
	writeJSON(w, http.StatusOK, analyzeResponse{JobID: jobID, Status: "completed", Outcome: outcome})
}
