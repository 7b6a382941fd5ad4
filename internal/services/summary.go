package services

import (
	"errors"

	"github.com/nusakarya/construction-api/internal/budget"
	"github.com/nusakarya/construction-api/internal/models"
	"gorm.io/gorm"
)

// SummaryService computes the unified milestone budget summary on read:
// RAB actuals plus unlinked additional costs against the milestone budget.
type SummaryService struct {
	db     *gorm.DB
	ledger *LedgerService
}

func NewSummaryService(db *gorm.DB, ledger *LedgerService) *SummaryService {
	return &SummaryService{db: db, ledger: ledger}
}

// MilestoneSummary is the summary with its ledger source attached.
type MilestoneSummary struct {
	budget.Summary
	ItemSource string `json:"itemSource"`
}

// BudgetSummary builds the milestone's budget view. Soft-deleted cost
// entries never count; additional costs are the entries with no RAB item.
func (s *SummaryService) BudgetSummary(milestoneID uint) (*MilestoneSummary, error) {
	var m models.Milestone
	if err := s.db.First(&m, milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	items, err := s.ledger.ItemsForMilestone(milestoneID)
	if err != nil {
		return nil, err
	}

	var additional int64
	err = s.db.Model(&models.Realization{}).
		Where("milestone_id = ? AND rab_item_id IS NULL", milestoneID).
		Select("COALESCE(SUM(amount),0)").
		Scan(&additional).Error
	if err != nil {
		return nil, err
	}

	type row struct {
		Category string
		Total    int64
	}
	var rows []row
	err = s.db.Model(&models.Realization{}).
		Where("milestone_id = ?", milestoneID).
		Select("category, COALESCE(SUM(amount),0) AS total").
		Group("category").
		Order("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	breakdown := make([]budget.CategoryTotal, 0, len(rows))
	for _, r := range rows {
		breakdown = append(breakdown, budget.CategoryTotal{Category: r.Category, Total: r.Total})
	}

	sum := budget.Summarize(
		m.Budget,
		items.TotalPlanned,
		items.TotalActual,
		additional,
		len(items.Items),
		items.Counts,
		breakdown,
	)
	return &MilestoneSummary{Summary: sum, ItemSource: items.Source}, nil
}
