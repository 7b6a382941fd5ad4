package models

import "time"

// Activity types written by the realization recorder.
const (
	ActivityCostAdded   = "cost_added"
	ActivityCostUpdated = "cost_updated"
	ActivityCostDeleted = "cost_deleted"
	ActivityCostPaid    = "cost_paid"
)

// Activity is a milestone audit trail row. Writing one is a non-fatal side
// effect: a failure surfaces as a warning on the response, never a rollback.
type Activity struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MilestoneID   uint      `gorm:"not null;index" json:"milestoneId"`
	Type          string    `gorm:"not null" json:"type"`
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `json:"description"`
	PerformedBy   *uint     `json:"performedBy"`
	PerformedAt   time.Time `json:"performedAt"`
	RelatedCostID *uint     `json:"relatedCostId"`
	CreatedAt     time.Time `json:"createdAt"`
}
