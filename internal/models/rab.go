package models

import "time"

// RAB item approval lifecycle
const (
	RABStatusDraft    = "draft"
	RABStatusApproved = "approved"
)

// RABItem is one budgeted line of the Rencana Anggaran Biaya. PlannedAmount
// is quantity times unit price, fixed at approval time. ActualAmount,
// ProgressPercentage, RealizationCount and RealizationStatus are derived
// from the linked realizations and re-persisted on every mutation so list
// endpoints stay a single query.
type RABItem struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ProjectID          uint      `gorm:"not null;index" json:"projectId"`
	Category           string    `gorm:"not null;index" json:"category"`
	Description        string    `gorm:"not null" json:"description"`
	ItemType           string    `gorm:"not null" json:"itemType"` // material, service, equipment, subcontractor
	Unit               string    `json:"unit"`
	Quantity           float64   `gorm:"not null;default:0" json:"quantity"`
	UnitPrice          int64     `gorm:"not null;default:0" json:"unitPrice"`
	PlannedAmount      int64     `gorm:"not null;default:0" json:"plannedAmount"`
	ActualAmount       int64     `gorm:"not null;default:0" json:"actualAmount"`
	ProgressPercentage float64   `gorm:"not null;default:0" json:"progressPercentage"`
	RealizationCount   int       `gorm:"not null;default:0" json:"realizationCount"`
	ApprovalStatus     string    `gorm:"not null;default:'draft';index" json:"approvalStatus"`
	RealizationStatus  string    `gorm:"not null;default:'not_started'" json:"realizationStatus"`
	ApprovedAt         *time.Time `json:"approvedAt"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Variance is planned minus actual; positive means under budget.
func (i RABItem) Variance() int64 { return i.PlannedAmount - i.ActualAmount }
