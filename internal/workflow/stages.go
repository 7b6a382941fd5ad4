// Package workflow resolves the five-stage milestone procurement pipeline:
// RAB approval, purchase orders, delivery receipts, berita acara and
// progress payments. The resolvers are pure; callers assemble the stage
// snapshots from storage and persist the result.
package workflow

import "time"

// StageStatus is the display state of one pipeline stage.
type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageActive    StageStatus = "active"
	StageCompleted StageStatus = "completed"
)

// RABStage snapshots the milestone's RAB approval state.
type RABStage struct {
	Approved     bool       `json:"status"`
	TotalValue   int64      `json:"total_value"`
	TotalItems   int        `json:"total_items"`
	ApprovedDate *time.Time `json:"approved_date,omitempty"`
}

func (s RABStage) Status() StageStatus {
	if s.Approved {
		return StageCompleted
	}
	return StagePending
}

// POLine is one purchase order inside the PO stage snapshot.
type POLine struct {
	PONumber string     `json:"po_number"`
	Supplier string     `json:"supplier"`
	Status   string     `json:"status"`
	Value    int64      `json:"value"`
	Date     *time.Time `json:"date,omitempty"`
}

// POStage snapshots purchase order counts for the milestone category.
type POStage struct {
	TotalCount    int      `json:"total_count"`
	ApprovedCount int      `json:"approved_count"`
	PendingCount  int      `json:"pending_count"`
	TotalValue    int64    `json:"total_value"`
	Items         []POLine `json:"items,omitempty"`
}

func (s POStage) Status() StageStatus {
	if s.TotalCount > 0 && s.ApprovedCount >= s.TotalCount {
		return StageCompleted
	}
	if s.TotalCount > 0 {
		return StageActive
	}
	return StagePending
}

// ReceiptLine is one delivery receipt inside the receipts stage snapshot.
type ReceiptLine struct {
	PONumber string     `json:"po_number"`
	Supplier string     `json:"supplier"`
	Value    int64      `json:"value"`
	Date     *time.Time `json:"date,omitempty"`
}

// ReceiptStage snapshots goods received against approved purchase orders.
type ReceiptStage struct {
	ReceivedCount int           `json:"received_count"`
	ExpectedCount int           `json:"expected_count"`
	ReceivedValue int64         `json:"received_value"`
	PendingValue  int64         `json:"pending_value"`
	Items         []ReceiptLine `json:"items,omitempty"`
	Alerts        []Alert       `json:"alerts,omitempty"`
}

func (s ReceiptStage) Status() StageStatus {
	if s.ExpectedCount > 0 && s.ReceivedCount >= s.ExpectedCount {
		return StageCompleted
	}
	if s.ReceivedCount > 0 {
		return StageActive
	}
	return StagePending
}

// BAStage snapshots berita acara (work completion report) progress.
type BAStage struct {
	TotalCount          int     `json:"total_count"`
	CompletedPercentage float64 `json:"completed_percentage"`
	TotalValue          int64   `json:"total_value"`
}

func (s BAStage) Status() StageStatus {
	if s.CompletedPercentage >= 100 {
		return StageCompleted
	}
	if s.TotalCount > 0 {
		return StageActive
	}
	return StagePending
}

// PaymentStage snapshots progress payments raised against the milestone.
type PaymentStage struct {
	PaidCount         int     `json:"paid_count"`
	PaidValue         int64   `json:"paid_value"`
	PendingValue      int64   `json:"pending_value"`
	PaymentPercentage float64 `json:"payment_percentage"`
}

func (s PaymentStage) Status() StageStatus {
	if s.PaymentPercentage >= 100 {
		return StageCompleted
	}
	if s.PaidCount > 0 {
		return StageActive
	}
	return StagePending
}

// Progress is the full five-stage snapshot stored on the milestone.
type Progress struct {
	RABApproved    RABStage     `json:"rab_approved"`
	PurchaseOrders POStage      `json:"purchase_orders"`
	Receipts       ReceiptStage `json:"receipts"`
	BeritaAcara    BAStage      `json:"berita_acara"`
	Payments       PaymentStage `json:"payments"`
}
