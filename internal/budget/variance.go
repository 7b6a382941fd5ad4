// Package budget holds the pure budget-reconciliation math: variance,
// status classification, item realization state and the milestone summary.
// Everything here is side-effect free; amounts are rupiah in the smallest
// unit, so all variance arithmetic is exact integer math.
package budget

// Status classifies a milestone budget against its spend.
type Status string

const (
	StatusUnder   Status = "under"
	StatusOnTrack Status = "on_track"
	StatusOver    Status = "over"
)

// Variance is planned minus actual. Positive means under budget.
func Variance(planned, actual int64) int64 { return planned - actual }

// Classify derives the milestone budget status. The precedence is
// deliberate and load-bearing: "under" (variance at or above 10% of budget)
// is evaluated before "over" (negative variance), matching the observed
// behavior of the system this replaces. Reordering changes classification
// at the boundaries.
func Classify(budgetAmount, variance int64) Status {
	if 10*variance >= budgetAmount {
		return StatusUnder
	}
	if variance < 0 {
		return StatusOver
	}
	return StatusOnTrack
}

// Item realization statuses.
const (
	ItemNotStarted = "not_started"
	ItemInProgress = "in_progress"
	ItemCompleted  = "completed"
	ItemOverBudget = "over_budget"
)

// ItemStatus derives a RAB item's realization status from its planned and
// actual amounts and its accumulated progress contribution.
func ItemStatus(planned, actual int64, progress float64) string {
	if actual == 0 && progress == 0 {
		return ItemNotStarted
	}
	if actual > planned {
		return ItemOverBudget
	}
	if progress >= 100 {
		return ItemCompleted
	}
	return ItemInProgress
}
