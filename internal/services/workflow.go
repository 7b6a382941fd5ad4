package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nusakarya/construction-api/internal/models"
	"github.com/nusakarya/construction-api/internal/workflow"
	"gorm.io/gorm"
)

// WorkflowService derives the five-stage procurement snapshot for a
// milestone from the procurement tables and persists it on the milestone
// row. Reads return the stored snapshot; Sync rebuilds it.
type WorkflowService struct {
	db *gorm.DB
}

func NewWorkflowService(db *gorm.DB) *WorkflowService {
	return &WorkflowService{db: db}
}

// StageView pairs a stage snapshot with its resolved display status.
type StageView struct {
	Name   string               `json:"name"`
	Status workflow.StageStatus `json:"status"`
	Detail any                  `json:"detail"`
}

// ProgressSnapshot is the milestone progress payload.
type ProgressSnapshot struct {
	MilestoneID      uint              `json:"milestoneId"`
	WorkflowProgress workflow.Progress `json:"workflow_progress"`
	Stages           []StageView       `json:"stages"`
	OverallProgress  int               `json:"overall_progress"`
	LastSynced       *time.Time        `json:"last_synced"`
}

// Snapshot returns the stored workflow state, syncing first if the
// milestone has never been synced.
func (s *WorkflowService) Snapshot(milestoneID uint) (*ProgressSnapshot, error) {
	var m models.Milestone
	if err := s.db.First(&m, milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if m.WorkflowJSON == "" {
		return s.Sync(milestoneID)
	}

	var p workflow.Progress
	if err := json.Unmarshal([]byte(m.WorkflowJSON), &p); err != nil {
		// stored snapshot is unreadable, rebuild it
		return s.Sync(milestoneID)
	}
	return snapshotView(&m, p), nil
}

// Sync rebuilds the workflow snapshot from the procurement tables and
// persists it together with the overall progress figure.
func (s *WorkflowService) Sync(milestoneID uint) (*ProgressSnapshot, error) {
	var m models.Milestone
	if err := s.db.First(&m, milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p, err := s.build(&m)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	m.WorkflowJSON = string(raw)
	m.Progress = workflow.Overall(p)
	m.LastSynced = &now
	if err := s.db.Save(&m).Error; err != nil {
		return nil, err
	}
	return snapshotView(&m, p), nil
}

func (s *WorkflowService) build(m *models.Milestone) (workflow.Progress, error) {
	var p workflow.Progress

	// stage 1: RAB approval for the milestone category
	var items []models.RABItem
	if err := s.db.Where("project_id = ? AND category = ?", m.ProjectID, m.CategoryName).Find(&items).Error; err != nil {
		return p, err
	}
	if len(items) > 0 {
		approved := true
		var latest *time.Time
		for _, it := range items {
			p.RABApproved.TotalItems++
			p.RABApproved.TotalValue += it.PlannedAmount
			if it.ApprovalStatus != models.RABStatusApproved {
				approved = false
			} else if it.ApprovedAt != nil && (latest == nil || it.ApprovedAt.After(*latest)) {
				latest = it.ApprovedAt
			}
		}
		p.RABApproved.Approved = approved
		p.RABApproved.ApprovedDate = latest
	}

	// stage 2: purchase orders
	var orders []models.PurchaseOrder
	if err := s.db.Where("project_id = ? AND category = ?", m.ProjectID, m.CategoryName).
		Order("id").Find(&orders).Error; err != nil {
		return p, err
	}
	approvedPOs := map[string]bool{}
	for _, po := range orders {
		line := workflow.POLine{
			PONumber: po.PONumber,
			Supplier: po.Supplier,
			Status:   po.Status,
			Value:    po.TotalAmount,
			Date:     po.ApprovedAt,
		}
		p.PurchaseOrders.Items = append(p.PurchaseOrders.Items, line)
		p.PurchaseOrders.TotalCount++
		p.PurchaseOrders.TotalValue += po.TotalAmount
		if po.Status == models.POStatusApproved {
			p.PurchaseOrders.ApprovedCount++
			approvedPOs[po.PONumber] = true
		} else {
			p.PurchaseOrders.PendingCount++
		}
	}

	// stage 3: delivery receipts against approved POs
	var receipts []models.DeliveryReceipt
	if err := s.db.Where("project_id = ?", m.ProjectID).Order("id").Find(&receipts).Error; err != nil {
		return p, err
	}
	received := map[string]bool{}
	supplierByPO := map[string]string{}
	for _, po := range orders {
		supplierByPO[po.PONumber] = po.Supplier
	}
	for _, r := range receipts {
		if !approvedPOs[r.PONumber] {
			continue
		}
		received[r.PONumber] = true
		rcv := r.ReceivedAt
		p.Receipts.Items = append(p.Receipts.Items, workflow.ReceiptLine{
			PONumber: r.PONumber,
			Supplier: supplierByPO[r.PONumber],
			Value:    r.TotalValue,
			Date:     &rcv,
		})
		p.Receipts.ReceivedCount++
		p.Receipts.ReceivedValue += r.TotalValue
	}
	p.Receipts.ExpectedCount = p.PurchaseOrders.ApprovedCount
	for _, po := range orders {
		if po.Status == models.POStatusApproved && !received[po.PONumber] {
			p.Receipts.PendingValue += po.TotalAmount
		}
	}
	p.Receipts.Alerts = workflow.ReceiptAlerts(time.Now(), p.PurchaseOrders.Items, received)

	// stage 4: berita acara; project-level certificates count too
	var bas []models.BeritaAcara
	if err := s.db.Where("project_id = ? AND (milestone_id IS NULL OR milestone_id = ?)", m.ProjectID, m.ID).
		Find(&bas).Error; err != nil {
		return p, err
	}
	var baProgress float64
	for _, ba := range bas {
		p.BeritaAcara.TotalCount++
		p.BeritaAcara.TotalValue += ba.TotalValue
		baProgress += ba.ProgressPercentage
	}
	if p.BeritaAcara.TotalCount > 0 {
		p.BeritaAcara.CompletedPercentage = baProgress / float64(p.BeritaAcara.TotalCount)
	}

	// stage 5: progress payments
	var payments []models.ProgressPayment
	if err := s.db.Where("milestone_id = ?", m.ID).Find(&payments).Error; err != nil {
		return p, err
	}
	var totalValue int64
	for _, pay := range payments {
		totalValue += pay.Amount
		if pay.Status == models.PaymentStatusPaid {
			p.Payments.PaidCount++
			p.Payments.PaidValue += pay.Amount
		} else {
			p.Payments.PendingValue += pay.Amount
		}
	}
	if totalValue > 0 {
		p.Payments.PaymentPercentage = float64(p.Payments.PaidValue) / float64(totalValue) * 100
	}

	return p, nil
}

func snapshotView(m *models.Milestone, p workflow.Progress) *ProgressSnapshot {
	return &ProgressSnapshot{
		MilestoneID:      m.ID,
		WorkflowProgress: p,
		Stages: []StageView{
			{Name: "rab_approved", Status: p.RABApproved.Status(), Detail: p.RABApproved},
			{Name: "purchase_orders", Status: p.PurchaseOrders.Status(), Detail: p.PurchaseOrders},
			{Name: "receipts", Status: p.Receipts.Status(), Detail: p.Receipts},
			{Name: "berita_acara", Status: p.BeritaAcara.Status(), Detail: p.BeritaAcara},
			{Name: "payments", Status: p.Payments.Status(), Detail: p.Payments},
		},
		OverallProgress: m.Progress,
		LastSynced:      m.LastSynced,
	}
}
