package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nusakarya/construction-api/internal/budget"
	"github.com/nusakarya/construction-api/internal/models"
	"github.com/nusakarya/construction-api/internal/validation"
	"gorm.io/gorm"
)

// RealizationService records actual costs against milestones and keeps the
// funding account balances and RAB item aggregates consistent with them.
// All money movement happens inside one transaction; the activity trail is
// written after commit and only ever produces a warning.
type RealizationService struct {
	db *gorm.DB
}

func NewRealizationService(db *gorm.DB) *RealizationService {
	return &RealizationService{db: db}
}

// RecordInput is a new cost entry. RABItemID nil records an additional cost
// against the milestone; SourceAccountID nil means the owner funds it out of
// pocket and no account balance moves.
type RecordInput struct {
	MilestoneID      uint
	RABItemID        *uint
	Category         string
	Type             string
	Amount           int64
	Description      string
	ReferenceNumber  string
	ExpenseAccountID uint
	SourceAccountID  *uint
	Progress         *float64
	RecordedBy       *uint
}

// Record validates and persists a cost entry, deducts the funding account
// and refreshes the linked RAB item's aggregate. Returned warnings are
// non-fatal side-effect failures.
func (s *RealizationService) Record(in RecordInput) (*models.Realization, []string, error) {
	v := validation.Violations{}
	validation.RequiredID("milestoneId", in.MilestoneID, v)
	validation.PositiveAmount("amount", in.Amount, v)
	validation.RequiredID("expenseAccountId", in.ExpenseAccountID, v)
	if in.Type == "" {
		in.Type = models.CostTypeActual
	}
	validation.OneOf("type", in.Type, []string{
		models.CostTypePlanned, models.CostTypeActual,
		models.CostTypeChangeOrder, models.CostTypeUnforeseen,
	}, v)
	// a cost against a budgeted line must state its completion contribution
	if in.RABItemID != nil && in.Progress == nil {
		v["progress"] = "required"
	}
	if !v.Empty() {
		return nil, nil, &ValidationError{Violations: v}
	}

	var milestone models.Milestone
	if err := s.db.First(&milestone, in.MilestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	var item *models.RABItem
	if in.RABItemID != nil {
		item = &models.RABItem{}
		if err := s.db.First(item, *in.RABItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrNotFound
			}
			return nil, nil, err
		}
		// the budgeted line must belong to the milestone's project and
		// category, otherwise the cost would count against a foreign ledger
		if item.ProjectID != milestone.ProjectID || item.Category != milestone.CategoryName {
			v["rabItemId"] = "not_in_milestone_category"
			return nil, nil, &ValidationError{Violations: v}
		}
		// the budgeted line decides the category
		in.Category = budget.CategoryForItemType(item.ItemType)
	} else {
		if in.Category == "" {
			in.Category = budget.CategoryOther
		}
		validation.OneOf("category", in.Category, budget.Categories(), v)
	}

	var expense models.Account
	if err := s.db.First(&expense, in.ExpenseAccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			v["expenseAccountId"] = "unknown_account"
		} else {
			return nil, nil, err
		}
	} else if expense.Type != models.AccountTypeExpense {
		v["expenseAccountId"] = "not_an_expense_account"
	}

	var source *models.Account
	if in.SourceAccountID != nil {
		source = &models.Account{}
		if err := s.db.First(source, *in.SourceAccountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				v["sourceAccountId"] = "unknown_account"
				source = nil
			} else {
				return nil, nil, err
			}
		} else if !source.CanFundRealizations() {
			v["sourceAccountId"] = "invalid_funding_source"
			source = nil
		}
	}
	if !v.Empty() {
		return nil, nil, &ValidationError{Violations: v}
	}

	if source != nil && !source.ExemptFromBalanceCheck() && source.CurrentBalance < in.Amount {
		return nil, nil, &InsufficientBalanceError{
			AccountName: source.Name,
			Available:   source.CurrentBalance,
			Required:    in.Amount,
		}
	}

	progress := 0.0
	if in.Progress != nil {
		progress = validation.ClampPercent(*in.Progress)
	}

	rec := &models.Realization{
		MilestoneID:      in.MilestoneID,
		RABItemID:        in.RABItemID,
		Category:         in.Category,
		Type:             in.Type,
		Amount:           in.Amount,
		Description:      in.Description,
		ReferenceNumber:  in.ReferenceNumber,
		Progress:         progress,
		ExpenseAccountID: in.ExpenseAccountID,
		SourceAccountID:  in.SourceAccountID,
		Status:           models.RealizationDraft,
		RecordedBy:       in.RecordedBy,
		RecordedAt:       time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		if source != nil {
			if err := adjustBalance(tx, source.ID, -in.Amount); err != nil {
				return err
			}
		}
		if rec.RABItemID != nil {
			return recalcItem(tx, *rec.RABItemID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	warnings := s.logActivity(models.Activity{
		MilestoneID:   rec.MilestoneID,
		Type:          models.ActivityCostAdded,
		Title:         "Cost recorded",
		Description:   fmt.Sprintf("%s cost of %d recorded", rec.Category, rec.Amount),
		PerformedBy:   rec.RecordedBy,
		PerformedAt:   rec.RecordedAt,
		RelatedCostID: &rec.ID,
	})
	return rec, warnings, nil
}

// UpdateInput carries the mutable fields of a cost entry. Nil means keep.
type UpdateInput struct {
	Amount          *int64
	Description     *string
	ReferenceNumber *string
	Progress        *float64
	SourceAccountID *uint
	PerformedBy     *uint
}

// Update edits a cost entry and reconciles the funding account: a bigger
// amount deducts the difference, a smaller one restores it, and moving to a
// different account restores the old one in full before charging the new.
func (s *RealizationService) Update(id uint, in UpdateInput) (*models.Realization, []string, error) {
	rec, err := s.get(id)
	if err != nil {
		return nil, nil, err
	}
	if rec.Status == models.RealizationPaid {
		return nil, nil, ErrInvalidTransition
	}

	newAmount := rec.Amount
	if in.Amount != nil {
		newAmount = *in.Amount
		if newAmount <= 0 {
			return nil, nil, &ValidationError{Violations: validation.Violations{"amount": "must_be_positive"}}
		}
	}

	newSourceID := rec.SourceAccountID
	if in.SourceAccountID != nil {
		newSourceID = in.SourceAccountID
	}

	var newSource *models.Account
	if newSourceID != nil {
		newSource = &models.Account{}
		if err := s.db.First(newSource, *newSourceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, &ValidationError{Violations: validation.Violations{"sourceAccountId": "unknown_account"}}
			}
			return nil, nil, err
		}
		if !newSource.CanFundRealizations() {
			return nil, nil, &ValidationError{Violations: validation.Violations{"sourceAccountId": "invalid_funding_source"}}
		}
	}

	sameSource := equalID(rec.SourceAccountID, newSourceID)
	if newSource != nil && !newSource.ExemptFromBalanceCheck() {
		required := newAmount
		if sameSource {
			// only the increase needs covering
			required = newAmount - rec.Amount
		}
		if required > 0 && newSource.CurrentBalance < required {
			return nil, nil, &InsufficientBalanceError{
				AccountName: newSource.Name,
				Available:   newSource.CurrentBalance,
				Required:    required,
			}
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if sameSource {
			if delta := newAmount - rec.Amount; delta != 0 && newSourceID != nil {
				if err := adjustBalance(tx, *newSourceID, -delta); err != nil {
					return err
				}
			}
		} else {
			if rec.SourceAccountID != nil {
				if err := adjustBalance(tx, *rec.SourceAccountID, rec.Amount); err != nil {
					return err
				}
			}
			if newSourceID != nil {
				if err := adjustBalance(tx, *newSourceID, -newAmount); err != nil {
					return err
				}
			}
		}

		rec.Amount = newAmount
		rec.SourceAccountID = newSourceID
		if in.Description != nil {
			rec.Description = *in.Description
		}
		if in.ReferenceNumber != nil {
			rec.ReferenceNumber = *in.ReferenceNumber
		}
		if in.Progress != nil {
			rec.Progress = validation.ClampPercent(*in.Progress)
		}
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
		if rec.RABItemID != nil {
			return recalcItem(tx, *rec.RABItemID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	warnings := s.logActivity(models.Activity{
		MilestoneID:   rec.MilestoneID,
		Type:          models.ActivityCostUpdated,
		Title:         "Cost updated",
		Description:   fmt.Sprintf("cost #%d updated, amount %d", rec.ID, rec.Amount),
		PerformedBy:   in.PerformedBy,
		PerformedAt:   time.Now(),
		RelatedCostID: &rec.ID,
	})
	return rec, warnings, nil
}

// Delete soft-deletes a cost entry and restores its amount to the funding
// account. Paid entries are immutable.
func (s *RealizationService) Delete(id uint, performedBy *uint) ([]string, error) {
	rec, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if rec.Status == models.RealizationPaid {
		return nil, ErrInvalidTransition
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(rec).Error; err != nil {
			return err
		}
		if rec.SourceAccountID != nil {
			if err := adjustBalance(tx, *rec.SourceAccountID, rec.Amount); err != nil {
				return err
			}
		}
		if rec.RABItemID != nil {
			return recalcItem(tx, *rec.RABItemID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	warnings := s.logActivity(models.Activity{
		MilestoneID:   rec.MilestoneID,
		Type:          models.ActivityCostDeleted,
		Title:         "Cost removed",
		Description:   fmt.Sprintf("cost #%d of %d removed", rec.ID, rec.Amount),
		PerformedBy:   performedBy,
		PerformedAt:   time.Now(),
		RelatedCostID: &rec.ID,
	})
	return warnings, nil
}

// Submit moves a draft entry into review.
func (s *RealizationService) Submit(id uint) (*models.Realization, error) {
	return s.transition(id, models.RealizationDraft, func(r *models.Realization) {
		r.Status = models.RealizationSubmitted
	})
}

// Approve accepts a submitted entry.
func (s *RealizationService) Approve(id uint) (*models.Realization, error) {
	return s.transition(id, models.RealizationSubmitted, func(r *models.Realization) {
		r.Status = models.RealizationApproved
	})
}

// Reject sends a submitted entry back with a reason.
func (s *RealizationService) Reject(id uint, reason string) (*models.Realization, error) {
	if reason == "" {
		return nil, &ValidationError{Violations: validation.Violations{"reason": "required"}}
	}
	return s.transition(id, models.RealizationSubmitted, func(r *models.Realization) {
		r.Status = models.RealizationRejected
		r.RejectionReason = reason
	})
}

// Pay marks an approved entry as disbursed and stamps a payment reference.
func (s *RealizationService) Pay(id uint, performedBy *uint) (*models.Realization, []string, error) {
	now := time.Now()
	rec, err := s.transition(id, models.RealizationApproved, func(r *models.Realization) {
		r.Status = models.RealizationPaid
		r.PaymentReference = uuid.NewString()
		r.PaidAt = &now
	})
	if err != nil {
		return nil, nil, err
	}
	warnings := s.logActivity(models.Activity{
		MilestoneID:   rec.MilestoneID,
		Type:          models.ActivityCostPaid,
		Title:         "Cost paid",
		Description:   fmt.Sprintf("cost #%d paid, ref %s", rec.ID, rec.PaymentReference),
		PerformedBy:   performedBy,
		PerformedAt:   now,
		RelatedCostID: &rec.ID,
	})
	return rec, warnings, nil
}

// Get returns one cost entry.
func (s *RealizationService) Get(id uint) (*models.Realization, error) {
	return s.get(id)
}

func (s *RealizationService) get(id uint) (*models.Realization, error) {
	var rec models.Realization
	if err := s.db.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *RealizationService) transition(id uint, from string, apply func(*models.Realization)) (*models.Realization, error) {
	rec, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if rec.Status != from {
		return nil, ErrInvalidTransition
	}
	apply(rec)
	if err := s.db.Save(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RealizationService) logActivity(a models.Activity) []string {
	if err := s.db.Create(&a).Error; err != nil {
		return []string{"activity log failed: " + err.Error()}
	}
	return nil
}

// adjustBalance moves an account balance by delta inside the transaction.
func adjustBalance(tx *gorm.DB, accountID uint, delta int64) error {
	res := tx.Model(&models.Account{}).Where("id = ?", accountID).
		Update("current_balance", gorm.Expr("current_balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// recalcItem re-derives a RAB item's actuals from its surviving
// realizations and persists them.
func recalcItem(tx *gorm.DB, itemID uint) error {
	var item models.RABItem
	if err := tx.First(&item, itemID).Error; err != nil {
		return err
	}

	type agg struct {
		Total    int64
		Progress float64
		Count    int
	}
	var a agg
	err := tx.Model(&models.Realization{}).
		Select("COALESCE(SUM(amount),0) AS total, COALESCE(SUM(progress),0) AS progress, COUNT(*) AS count").
		Where("rab_item_id = ?", itemID).
		Scan(&a).Error
	if err != nil {
		return err
	}

	item.ActualAmount = a.Total
	item.ProgressPercentage = validation.ClampPercent(a.Progress)
	item.RealizationCount = a.Count
	item.RealizationStatus = budget.ItemStatus(item.PlannedAmount, item.ActualAmount, item.ProgressPercentage)
	return tx.Save(&item).Error
}

func equalID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
