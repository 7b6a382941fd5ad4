package budget

// StatusCounts is the per-status breakdown of a milestone's RAB items,
// passed through from the backing aggregate for display.
type StatusCounts struct {
	Completed  int `json:"completed_count"`
	InProgress int `json:"in_progress_count"`
	NotStarted int `json:"not_started_count"`
	OverBudget int `json:"over_budget_count"`
}

// CategoryTotal is one slice of the per-category cost breakdown.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

// Summary is the unified milestone budget view: RAB actuals plus non-RAB
// additional costs against the milestone budget. Recomputed on read, never
// persisted as authoritative state.
type Summary struct {
	Budget          int64           `json:"budget"`
	RABPlanned      int64           `json:"rabPlanned"`
	RABActual       int64           `json:"rabActual"`
	AdditionalCosts int64           `json:"additionalCosts"`
	TotalSpent      int64           `json:"totalSpent"`
	Variance        int64           `json:"variance"`
	RABVariance     int64           `json:"rabVariance"`
	VariancePercent float64         `json:"variancePercent"`
	ProgressPercent float64         `json:"progressPercent"`
	Status          Status          `json:"status"`
	ItemCount       int             `json:"itemCount"`
	Counts          StatusCounts    `json:"itemStatusCounts"`
	Breakdown       []CategoryTotal `json:"breakdown,omitempty"`
	Alerts          []string        `json:"alerts,omitempty"`
}

// Summarize combines the RAB aggregate and the unlinked additional costs
// into the milestone budget summary. A zero budget never divides: both
// percentages degrade to 0.
func Summarize(budgetAmount, rabPlanned, rabActual, additionalCosts int64, itemCount int, counts StatusCounts, breakdown []CategoryTotal) Summary {
	totalSpent := rabActual + additionalCosts
	variance := budgetAmount - totalSpent

	s := Summary{
		Budget:          budgetAmount,
		RABPlanned:      rabPlanned,
		RABActual:       rabActual,
		AdditionalCosts: additionalCosts,
		TotalSpent:      totalSpent,
		Variance:        variance,
		RABVariance:     rabPlanned - rabActual,
		Status:          Classify(budgetAmount, variance),
		ItemCount:       itemCount,
		Counts:          counts,
		Breakdown:       breakdown,
	}
	if budgetAmount > 0 {
		s.VariancePercent = float64(variance) / float64(budgetAmount) * 100
		progress := float64(totalSpent) / float64(budgetAmount) * 100
		if progress > 100 {
			progress = 100
		}
		s.ProgressPercent = progress
	}
	if variance < 0 {
		s.Alerts = append(s.Alerts, "Cost overrun detected!")
	}
	return s
}
