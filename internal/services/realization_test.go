package services

import (
	"errors"
	"testing"

	"github.com/nusakarya/construction-api/internal/budget"
	"github.com/nusakarya/construction-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLinkedCost(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	item := seedRABItem(t, db, f, 6_000_000, models.RABStatusApproved)
	svc := NewRealizationService(db)

	rec, warnings, err := svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		RABItemID:        &item.ID,
		Amount:           2_000_000,
		Description:      "Pembelian besi tahap 1",
		ExpenseAccountID: f.Expense.ID,
		SourceAccountID:  &f.Bank.ID,
		Progress:         ptr(30.0),
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, models.RealizationDraft, rec.Status)
	// category comes from the budgeted line's item type, not the input
	assert.Equal(t, budget.CategoryMaterials, rec.Category)
	assert.Equal(t, models.CostTypeActual, rec.Type)

	assert.Equal(t, int64(8_000_000), accountBalance(t, db, f.Bank.ID))

	var got models.RABItem
	require.NoError(t, db.First(&got, item.ID).Error)
	assert.Equal(t, int64(2_000_000), got.ActualAmount)
	assert.Equal(t, 30.0, got.ProgressPercentage)
	assert.Equal(t, 1, got.RealizationCount)
	assert.Equal(t, budget.ItemInProgress, got.RealizationStatus)

	var activity models.Activity
	require.NoError(t, db.Where("milestone_id = ?", f.Milestone.ID).First(&activity).Error)
	assert.Equal(t, models.ActivityCostAdded, activity.Type)
	assert.Equal(t, rec.ID, *activity.RelatedCostID)
}

func TestRecordInsufficientBalance(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	svc := NewRealizationService(db)

	_, _, err := svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		Category:         budget.CategoryOther,
		Amount:           12_000_000,
		ExpenseAccountID: f.Expense.ID,
		SourceAccountID:  &f.Bank.ID,
	})
	var ib *InsufficientBalanceError
	require.ErrorAs(t, err, &ib)
	assert.Equal(t, "Bank BCA", ib.AccountName)
	assert.Equal(t, int64(10_000_000), ib.Available)
	assert.Equal(t, int64(12_000_000), ib.Required)
	assert.Equal(t, int64(2_000_000), ib.Shortfall())

	// nothing was written and nothing moved
	var count int64
	require.NoError(t, db.Model(&models.Realization{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, int64(10_000_000), accountBalance(t, db, f.Bank.ID))
}

// Petty cash may overdraw: the sufficiency check is skipped but the
// deduction still happens, so the balance goes negative.
func TestRecordPettyCashOverdraw(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	svc := NewRealizationService(db)

	_, _, err := svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		Category:         budget.CategoryOther,
		Amount:           500_000,
		ExpenseAccountID: f.Expense.ID,
		SourceAccountID:  &f.PettyCash.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-400_000), accountBalance(t, db, f.PettyCash.ID))
}

func TestRecordWithoutSourceAccount(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	svc := NewRealizationService(db)

	rec, _, err := svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		Category:         budget.CategoryLabor,
		Amount:           1_000_000,
		ExpenseAccountID: f.Expense.ID,
	})
	require.NoError(t, err)
	assert.Nil(t, rec.SourceAccountID)
	assert.Equal(t, int64(10_000_000), accountBalance(t, db, f.Bank.ID))
}

// A cost against a budgeted line must carry its progress contribution;
// omitting it is a field error, not a silent zero.
func TestRecordLinkedRequiresProgress(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	item := seedRABItem(t, db, f, 6_000_000, models.RABStatusApproved)
	svc := NewRealizationService(db)

	_, _, err := svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		RABItemID:        &item.ID,
		Amount:           2_000_000,
		ExpenseAccountID: f.Expense.ID,
		SourceAccountID:  &f.Bank.ID,
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "required", ve.Violations["progress"])

	var count int64
	require.NoError(t, db.Model(&models.Realization{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, int64(10_000_000), accountBalance(t, db, f.Bank.ID))

	// an explicit zero is fine
	_, _, err = svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		RABItemID:        &item.ID,
		Amount:           2_000_000,
		ExpenseAccountID: f.Expense.ID,
		Progress:         ptr(0.0),
	})
	require.NoError(t, err)
}

func TestRecordRejectsForeignItem(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	svc := NewRealizationService(db)

	// same project, different category
	other := seedRABItem(t, db, f, 3_000_000, models.RABStatusApproved)
	require.NoError(t, db.Model(&models.RABItem{}).
		Where("id = ?", other.ID).Update("category", "finishing").Error)

	_, _, err := svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		RABItemID:        &other.ID,
		Amount:           1_000_000,
		ExpenseAccountID: f.Expense.ID,
		Progress:         ptr(10.0),
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "not_in_milestone_category", ve.Violations["rabItemId"])

	// different project entirely
	foreign := models.Project{Name: "Proyek Lain"}
	require.NoError(t, db.Create(&foreign).Error)
	foreignItem := models.RABItem{
		ProjectID: foreign.ID, Category: f.Milestone.CategoryName,
		Description: "x", ItemType: "material", Quantity: 1,
		UnitPrice: 1000, PlannedAmount: 1000,
		ApprovalStatus: models.RABStatusApproved,
	}
	require.NoError(t, db.Create(&foreignItem).Error)

	_, _, err = svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		RABItemID:        &foreignItem.ID,
		Amount:           1_000_000,
		ExpenseAccountID: f.Expense.ID,
		Progress:         ptr(10.0),
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "not_in_milestone_category", ve.Violations["rabItemId"])
}

func TestRecordValidation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	svc := NewRealizationService(db)

	_, _, err := svc.Record(RecordInput{MilestoneID: f.Milestone.ID, Amount: -5, ExpenseAccountID: f.Expense.ID})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Violations, "amount")

	// the expense side must be an EXPENSE account
	_, _, err = svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		Category:         budget.CategoryOther,
		Amount:           1000,
		ExpenseAccountID: f.Bank.ID,
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "not_an_expense_account", ve.Violations["expenseAccountId"])

	// the funding side must be an active cash-and-bank asset
	_, _, err = svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		Category:         budget.CategoryOther,
		Amount:           1000,
		ExpenseAccountID: f.Expense.ID,
		SourceAccountID:  &f.Expense.ID,
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "invalid_funding_source", ve.Violations["sourceAccountId"])

	// control accounts are headers, never posting targets
	control := models.Account{
		Code: "1101", Name: "Kas & Bank", Type: models.AccountTypeAsset,
		SubType: models.AccountSubTypeCashAndBank, IsControlAccount: true, IsActive: true,
		Level: 1,
	}
	require.NoError(t, db.Create(&control).Error)
	_, _, err = svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		Category:         budget.CategoryOther,
		Amount:           1000,
		ExpenseAccountID: f.Expense.ID,
		SourceAccountID:  &control.ID,
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "invalid_funding_source", ve.Violations["sourceAccountId"])

	_, _, err = svc.Record(RecordInput{MilestoneID: 9999, Amount: 1000, ExpenseAccountID: f.Expense.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSameAccountAdjustsByDelta(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	svc := NewRealizationService(db)

	rec, _, err := svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		Category:         budget.CategoryOther,
		Amount:           2_000_000,
		ExpenseAccountID: f.Expense.ID,
		SourceAccountID:  &f.Bank.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(8_000_000), accountBalance(t, db, f.Bank.ID))

	_, _, err = svc.Update(rec.ID, UpdateInput{Amount: ptr(int64(3_500_000))})
	require.NoError(t, err)
	assert.Equal(t, int64(6_500_000), accountBalance(t, db, f.Bank.ID))

	_, _, err = svc.Update(rec.ID, UpdateInput{Amount: ptr(int64(1_000_000))})
	require.NoError(t, err)
	assert.Equal(t, int64(9_000_000), accountBalance(t, db, f.Bank.ID))
}

func TestUpdateDeltaExceedingBalance(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	svc := NewRealizationService(db)

	rec, _, err := svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		Category:         budget.CategoryOther,
		Amount:           9_000_000,
		ExpenseAccountID: f.Expense.ID,
		SourceAccountID:  &f.Bank.ID,
	})
	require.NoError(t, err)

	// balance is 1M; raising the amount by 2M must fail on the delta
	_, _, err = svc.Update(rec.ID, UpdateInput{Amount: ptr(int64(11_000_000))})
	var ib *InsufficientBalanceError
	require.ErrorAs(t, err, &ib)
	assert.Equal(t, int64(1_000_000), ib.Available)
	assert.Equal(t, int64(2_000_000), ib.Required)
	assert.Equal(t, int64(1_000_000), accountBalance(t, db, f.Bank.ID))
}

func TestUpdateMovesToAnotherAccount(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	svc := NewRealizationService(db)

	rec, _, err := svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		Category:         budget.CategoryOther,
		Amount:           2_000_000,
		ExpenseAccountID: f.Expense.ID,
		SourceAccountID:  &f.Bank.ID,
	})
	require.NoError(t, err)

	_, _, err = svc.Update(rec.ID, UpdateInput{SourceAccountID: &f.PettyCash.ID})
	require.NoError(t, err)

	// old account made whole, new one charged in full
	assert.Equal(t, int64(10_000_000), accountBalance(t, db, f.Bank.ID))
	assert.Equal(t, int64(-1_900_000), accountBalance(t, db, f.PettyCash.ID))
}

func TestDeleteRestoresBalanceAndItem(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	item := seedRABItem(t, db, f, 6_000_000, models.RABStatusApproved)
	svc := NewRealizationService(db)

	rec, _, err := svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		RABItemID:        &item.ID,
		Amount:           2_000_000,
		ExpenseAccountID: f.Expense.ID,
		SourceAccountID:  &f.Bank.ID,
		Progress:         ptr(30.0),
	})
	require.NoError(t, err)

	_, err = svc.Delete(rec.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(10_000_000), accountBalance(t, db, f.Bank.ID))

	var got models.RABItem
	require.NoError(t, db.First(&got, item.ID).Error)
	assert.Zero(t, got.ActualAmount)
	assert.Zero(t, got.RealizationCount)
	assert.Equal(t, budget.ItemNotStarted, got.RealizationStatus)

	_, err = svc.Get(rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewLifecycle(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	svc := NewRealizationService(db)

	rec, _, err := svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		Category:         budget.CategoryOther,
		Amount:           1_000_000,
		ExpenseAccountID: f.Expense.ID,
	})
	require.NoError(t, err)

	// draft cannot be approved directly
	_, err = svc.Approve(rec.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	rec, err = svc.Submit(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RealizationSubmitted, rec.Status)

	rec, err = svc.Approve(rec.ID)
	require.NoError(t, err)

	rec, _, err = svc.Pay(rec.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RealizationPaid, rec.Status)
	assert.NotEmpty(t, rec.PaymentReference)
	require.NotNil(t, rec.PaidAt)

	// paid entries are immutable
	_, _, err = svc.Update(rec.ID, UpdateInput{Amount: ptr(int64(500))})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Delete(rec.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectRequiresReason(t *testing.T) {
	db := setupTestDB(t, t.Name())
	f := seedFixture(t, db)
	svc := NewRealizationService(db)

	rec, _, err := svc.Record(RecordInput{
		MilestoneID:      f.Milestone.ID,
		Category:         budget.CategoryOther,
		Amount:           1_000_000,
		ExpenseAccountID: f.Expense.ID,
	})
	require.NoError(t, err)
	_, err = svc.Submit(rec.ID)
	require.NoError(t, err)

	_, err = svc.Reject(rec.ID, "")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))

	rec, err = svc.Reject(rec.ID, "nota tidak lengkap")
	require.NoError(t, err)
	assert.Equal(t, models.RealizationRejected, rec.Status)
	assert.Equal(t, "nota tidak lengkap", rec.RejectionReason)
}
