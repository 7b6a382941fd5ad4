package services

import (
	"errors"
	"math"
	"time"

	"github.com/nusakarya/construction-api/internal/budget"
	"github.com/nusakarya/construction-api/internal/models"
	"github.com/nusakarya/construction-api/internal/validation"
	"gorm.io/gorm"
)

// RABService manages the budgeted line items. Items are editable while
// draft; approval freezes the planned amount and opens the item for
// realizations.
type RABService struct {
	db *gorm.DB
}

func NewRABService(db *gorm.DB) *RABService {
	return &RABService{db: db}
}

type RABItemInput struct {
	ProjectID   uint
	Category    string
	Description string
	ItemType    string
	Unit        string
	Quantity    float64
	UnitPrice   int64
}

func (in RABItemInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.RequiredID("projectId", in.ProjectID, v)
	validation.Required("category", in.Category, v)
	validation.Required("description", in.Description, v)
	validation.OneOf("itemType", in.ItemType, []string{
		budget.ItemTypeMaterial, budget.ItemTypeService,
		budget.ItemTypeEquipment, budget.ItemTypeSubcontractor,
	}, v)
	if in.Quantity <= 0 {
		v["quantity"] = "must_be_positive"
	}
	validation.PositiveAmount("unitPrice", in.UnitPrice, v)
	return v
}

// plannedAmount is quantity times unit price, rounded to the nearest rupiah.
func plannedAmount(quantity float64, unitPrice int64) int64 {
	return int64(math.Round(quantity * float64(unitPrice)))
}

func (s *RABService) Create(in RABItemInput) (*models.RABItem, error) {
	if v := in.validate(); !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	var project models.Project
	if err := s.db.First(&project, in.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	item := &models.RABItem{
		ProjectID:         in.ProjectID,
		Category:          in.Category,
		Description:       in.Description,
		ItemType:          in.ItemType,
		Unit:              in.Unit,
		Quantity:          in.Quantity,
		UnitPrice:         in.UnitPrice,
		PlannedAmount:     plannedAmount(in.Quantity, in.UnitPrice),
		ApprovalStatus:    models.RABStatusDraft,
		RealizationStatus: budget.ItemNotStarted,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update edits a draft item and re-derives its planned amount. Approved
// items are frozen.
func (s *RABService) Update(id uint, in RABItemInput) (*models.RABItem, error) {
	var item models.RABItem
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if item.ApprovalStatus != models.RABStatusDraft {
		return nil, ErrInvalidTransition
	}
	in.ProjectID = item.ProjectID
	if v := in.validate(); !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	item.Category = in.Category
	item.Description = in.Description
	item.ItemType = in.ItemType
	item.Unit = in.Unit
	item.Quantity = in.Quantity
	item.UnitPrice = in.UnitPrice
	item.PlannedAmount = plannedAmount(in.Quantity, in.UnitPrice)
	if err := s.db.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Approve freezes a draft item's plan.
func (s *RABService) Approve(id uint) (*models.RABItem, error) {
	var item models.RABItem
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if item.ApprovalStatus != models.RABStatusDraft {
		return nil, ErrInvalidTransition
	}
	now := time.Now()
	item.ApprovalStatus = models.RABStatusApproved
	item.ApprovedAt = &now
	if err := s.db.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes a draft item with no realizations against it.
func (s *RABService) Delete(id uint) error {
	var item models.RABItem
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if item.ApprovalStatus != models.RABStatusDraft || item.RealizationCount > 0 {
		return ErrInvalidTransition
	}
	return s.db.Delete(&item).Error
}

// List returns a project's items, optionally filtered by category.
func (s *RABService) List(projectID uint, category string) ([]models.RABItem, error) {
	q := s.db.Where("project_id = ?", projectID).Order("category, id")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var items []models.RABItem
	err := q.Find(&items).Error
	return items, err
}

// Get returns one item.
func (s *RABService) Get(id uint) (*models.RABItem, error) {
	var item models.RABItem
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}
