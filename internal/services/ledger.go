package services

import (
	"errors"

	"github.com/nusakarya/construction-api/internal/budget"
	"github.com/nusakarya/construction-api/internal/models"
	"gorm.io/gorm"
)

// Item sources returned by ItemsForMilestone.
const (
	ItemSourceApproved      = "approved"
	ItemSourceDraftFallback = "draft_fallback"
)

// LedgerService reads the RAB ledger for a milestone: budgeted items and
// the realizations recorded against them.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// ItemList is the RAB item view for one milestone, with the aggregate the
// summary endpoints reuse.
type ItemList struct {
	Items        []models.RABItem    `json:"items"`
	Source       string              `json:"source"`
	TotalPlanned int64               `json:"totalPlanned"`
	TotalActual  int64               `json:"totalActual"`
	Counts       budget.StatusCounts `json:"itemStatusCounts"`
}

// ItemsForMilestone returns the approved RAB items of the milestone's
// category. When none are approved yet it falls back to the draft items so
// an early-stage milestone still shows its ledger; the Source field tells
// the caller which set it got.
func (s *LedgerService) ItemsForMilestone(milestoneID uint) (*ItemList, error) {
	var m models.Milestone
	if err := s.db.First(&m, milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	list := &ItemList{Source: ItemSourceApproved}
	// a milestone with its category link switched off has no RAB ledger;
	// every cost recorded against it counts as an additional cost
	if !m.CategoryEnabled {
		return list, nil
	}
	err := s.db.
		Where("project_id = ? AND category = ? AND approval_status = ?", m.ProjectID, m.CategoryName, models.RABStatusApproved).
		Order("id").Find(&list.Items).Error
	if err != nil {
		return nil, err
	}
	if len(list.Items) == 0 {
		err = s.db.
			Where("project_id = ? AND category = ? AND approval_status = ?", m.ProjectID, m.CategoryName, models.RABStatusDraft).
			Order("id").Find(&list.Items).Error
		if err != nil {
			return nil, err
		}
		if len(list.Items) > 0 {
			list.Source = ItemSourceDraftFallback
		}
	}

	for _, it := range list.Items {
		list.TotalPlanned += it.PlannedAmount
		list.TotalActual += it.ActualAmount
		switch it.RealizationStatus {
		case budget.ItemCompleted:
			list.Counts.Completed++
		case budget.ItemInProgress:
			list.Counts.InProgress++
		case budget.ItemOverBudget:
			list.Counts.OverBudget++
		default:
			list.Counts.NotStarted++
		}
	}
	return list, nil
}

// Realizations lists the cost entries linked to one RAB item, newest first.
func (s *LedgerService) Realizations(itemID uint) ([]models.Realization, error) {
	var item models.RABItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var out []models.Realization
	err := s.db.Where("rab_item_id = ?", itemID).Order("recorded_at DESC, id DESC").Find(&out).Error
	return out, err
}

// MilestoneRealizations lists every cost entry of a milestone, newest first.
func (s *LedgerService) MilestoneRealizations(milestoneID uint) ([]models.Realization, error) {
	var m models.Milestone
	if err := s.db.First(&m, milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var out []models.Realization
	err := s.db.Where("milestone_id = ?", milestoneID).Order("recorded_at DESC, id DESC").Find(&out).Error
	return out, err
}
