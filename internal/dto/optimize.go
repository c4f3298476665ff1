package dto

// Optimize run start states. StartDraft rebuilds a fresh greedy draft before
// the local search; StartCurrent optimizes whatever is committed now.
const (
	StartCurrent = "current"
	StartDraft   = "draft"
)

// OptimizeRequest tunes one optimization run. Zero budgets fall back to the
// configured defaults.
type OptimizeRequest struct {
	From            string `json:"from" validate:"omitempty,oneof=current draft"`
	IterationBudget int    `json:"iteration_budget" validate:"omitempty,min=1,max=1000000"`
	TimeBudgetMs    int    `json:"time_budget_ms" validate:"omitempty,min=1,max=600000"`
}

// RunStats is returned by both the draft and optimize endpoints.
type RunStats struct {
	RunID                string  `json:"run_id"`
	TotalExams           int     `json:"total_exams"`
	ExecutionTimeMs      int64   `json:"execution_time_ms"`
	GainPct              float64 `json:"gain_pct"`
	HardViolationsBefore int     `json:"hard_violations_before"`
	HardViolationsAfter  int     `json:"hard_violations_after"`
	Converged            bool    `json:"converged"`
	Warning              string  `json:"warning,omitempty"`
}
