package services

import (
	"fmt"
	"testing"

	"github.com/nusakarya/construction-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Role{}, &models.User{},
		&models.Account{},
		&models.Project{}, &models.Milestone{},
		&models.RABItem{}, &models.Realization{},
		&models.PurchaseOrder{}, &models.DeliveryReceipt{},
		&models.BeritaAcara{}, &models.ProgressPayment{},
		&models.Activity{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	Project   models.Project
	Milestone models.Milestone
	Expense   models.Account
	Bank      models.Account
	PettyCash models.Account
}

// seedFixture creates one project with a structural-works milestone, an
// expense account and two funding accounts: a bank with 10M and petty cash.
func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		Project: models.Project{Name: "Gedung Serbaguna", Location: "Bandung"},
	}
	if err := db.Create(&f.Project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	f.Milestone = models.Milestone{
		ProjectID:    f.Project.ID,
		Title:        "Pekerjaan Struktur",
		Budget:       10_000_000,
		CategoryName: "struktur",
	}
	if err := db.Create(&f.Milestone).Error; err != nil {
		t.Fatalf("seed milestone: %v", err)
	}
	f.Expense = models.Account{Code: "5101.01", Name: "Beban Material", Type: models.AccountTypeExpense}
	f.Bank = models.Account{
		Code: "1101.02", Name: "Bank BCA",
		Type: models.AccountTypeAsset, SubType: models.AccountSubTypeCashAndBank,
		CurrentBalance: 10_000_000, IsActive: true,
	}
	f.PettyCash = models.Account{
		Code: models.PettyCashCode, Name: "Kas Tunai Proyek",
		Type: models.AccountTypeAsset, SubType: models.AccountSubTypeCashAndBank,
		CurrentBalance: 100_000, IsActive: true,
	}
	for _, acc := range []*models.Account{&f.Expense, &f.Bank, &f.PettyCash} {
		if err := db.Create(acc).Error; err != nil {
			t.Fatalf("seed account %s: %v", acc.Code, err)
		}
	}
	return f
}

func seedRABItem(t *testing.T, db *gorm.DB, f fixture, planned int64, status string) models.RABItem {
	t.Helper()
	item := models.RABItem{
		ProjectID:      f.Project.ID,
		Category:       f.Milestone.CategoryName,
		Description:    "Besi beton 12mm",
		ItemType:       "material",
		Unit:           "kg",
		Quantity:       100,
		UnitPrice:      planned / 100,
		PlannedAmount:  planned,
		ApprovalStatus: status,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed rab item: %v", err)
	}
	return item
}

func accountBalance(t *testing.T, db *gorm.DB, id uint) int64 {
	t.Helper()
	var acc models.Account
	if err := db.First(&acc, id).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	return acc.CurrentBalance
}

func ptr[T any](v T) *T { return &v }
