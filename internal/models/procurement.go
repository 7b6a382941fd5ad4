package models

import "time"

// Purchase order statuses
const (
	POStatusPending  = "pending"
	POStatusApproved = "approved"
)

type PurchaseOrder struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProjectID   uint       `gorm:"not null;index" json:"projectId"`
	Category    string     `gorm:"not null;index" json:"category"`
	PONumber    string     `gorm:"uniqueIndex;not null" json:"poNumber"`
	Supplier    string     `json:"supplier"`
	TotalAmount int64      `gorm:"not null;default:0" json:"totalAmount"`
	Status      string     `gorm:"not null;default:'pending'" json:"status"`
	ApprovedAt  *time.Time `json:"approvedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type DeliveryReceipt struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProjectID     uint      `gorm:"not null;index" json:"projectId"`
	ReceiptNumber string    `gorm:"uniqueIndex;not null" json:"receiptNumber"`
	PONumber      string    `gorm:"not null;index" json:"poNumber"`
	TotalValue    int64     `gorm:"not null;default:0" json:"totalValue"`
	Status        string    `gorm:"not null;default:'received'" json:"status"`
	ReceivedAt    time.Time `json:"receivedAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

// BeritaAcara is the formal acceptance certificate for (part of) a
// milestone's work. MilestoneID nil means a project-level certificate that
// still counts toward every milestone of the project.
type BeritaAcara struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ProjectID          uint      `gorm:"not null;index" json:"projectId"`
	MilestoneID        *uint     `gorm:"index" json:"milestoneId"`
	BANumber           string    `gorm:"uniqueIndex;not null" json:"baNumber"`
	ProgressPercentage float64   `gorm:"not null;default:0" json:"progressPercentage"`
	TotalValue         int64     `gorm:"not null;default:0" json:"totalValue"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Progress payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

type ProgressPayment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProjectID   uint       `gorm:"not null;index" json:"projectId"`
	MilestoneID uint       `gorm:"not null;index" json:"milestoneId"`
	Amount      int64      `gorm:"not null" json:"amount"`
	Status      string     `gorm:"not null;default:'pending'" json:"status"`
	PaidAt      *time.Time `json:"paidAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
