package models

import (
	"time"

	"gorm.io/gorm"
)

// Realization review lifecycle
const (
	RealizationDraft     = "draft"
	RealizationSubmitted = "submitted"
	RealizationApproved  = "approved"
	RealizationRejected  = "rejected"
	RealizationPaid      = "paid"
)

// Realization cost types
const (
	CostTypePlanned     = "planned"
	CostTypeActual      = "actual"
	CostTypeChangeOrder = "change_order"
	CostTypeUnforeseen  = "unforeseen"
)

// Realization is one actual-cost entry against a milestone. RABItemID nil
// means an additional cost (not linked to any budgeted line). Amounts are
// rupiah in the smallest unit. Progress is this entry's contribution to the
// linked item's completion and is meaningless for additional costs.
type Realization struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	MilestoneID      uint           `gorm:"not null;index" json:"milestoneId"`
	RABItemID        *uint          `gorm:"index" json:"rabItemId"`
	Category         string         `gorm:"not null" json:"category"`
	Type             string         `gorm:"not null;default:'actual'" json:"type"`
	Amount           int64          `gorm:"not null" json:"amount"`
	Description      string         `json:"description"`
	ReferenceNumber  string         `json:"referenceNumber"`
	Progress         float64        `gorm:"not null;default:0" json:"progress"`
	ExpenseAccountID uint           `gorm:"not null" json:"expenseAccountId"`
	SourceAccountID  *uint          `json:"sourceAccountId"`
	Status           string         `gorm:"not null;default:'draft';index" json:"status"`
	RejectionReason  string         `json:"rejectionReason,omitempty"`
	PaymentReference string         `json:"paymentReference,omitempty"`
	PaidAt           *time.Time     `json:"paidAt,omitempty"`
	RecordedBy       *uint          `json:"recordedBy"`
	RecordedAt       time.Time      `json:"recordedAt"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// Linked reports whether the realization is attributed to a RAB item.
func (r Realization) Linked() bool { return r.RABItemID != nil }
