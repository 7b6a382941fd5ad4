package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/nusakarya/construction-api/internal/models"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var db *gorm.DB
	var err error
	if IsSQLiteDSN(dsn) {
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	} else {
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			fmt.Println("Retrying DB connection...", err)
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// Basic connectivity test
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)

	// MIGRATIONS=1 runs sql migrations via golang-migrate (postgres only);
	// otherwise AutoMigrate keeps dev and test setups convenient.
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); (v == "1" || v == "true" || v == "yes") && !IsSQLiteDSN(dsn) {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	for _, table := range []string{"roles", "users", "accounts", "milestones"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	// Seeding only when explicitly requested (e.g. development) via DB_SEED=1|true
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		Seed(db)
	}
	return db, nil
}

// AutoMigrate migrates every model this service persists.
func AutoMigrate(db *gorm.DB) error {
	modelsToMigrate := []interface{}{
		&models.Role{}, &models.User{}, &models.Account{}, &models.Project{}, &models.Milestone{},
		&models.RABItem{}, &models.Realization{}, &models.PurchaseOrder{}, &models.DeliveryReceipt{},
		&models.BeritaAcara{}, &models.ProgressPayment{}, &models.Activity{},
	}
	for _, m := range modelsToMigrate {
		if migErr := db.AutoMigrate(m); migErr != nil {
			return fmt.Errorf("automigrate %T: %w", m, migErr)
		}
	}
	return nil
}

// Seed inserts the base roles and the default chart of accounts when absent.
func Seed(db *gorm.DB) {
	for _, r := range []models.Role{{Name: "admin"}, {Name: "project_manager"}, {Name: "finance"}, {Name: "user"}} {
		var existing models.Role
		if err := db.Where("name = ?", r.Name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&r)
		}
	}
	baseAccounts := []models.Account{
		{Code: "1101.01", Name: "Bank BCA Operasional", Type: models.AccountTypeAsset, SubType: models.AccountSubTypeCashAndBank},
		{Code: "1101.02", Name: "Bank Mandiri Proyek", Type: models.AccountTypeAsset, SubType: models.AccountSubTypeCashAndBank},
		{Code: models.PettyCashCode, Name: "Kas Tunai", Type: models.AccountTypeAsset, SubType: models.AccountSubTypeCashAndBank},
		{Code: "3101.01", Name: "Modal Pribadi Pemilik", Type: models.AccountTypeAsset, SubType: models.AccountSubTypeCashAndBank},
		{Code: "5101.01", Name: "Beban Material", Type: models.AccountTypeExpense},
		{Code: "5101.02", Name: "Beban Upah Tenaga Kerja", Type: models.AccountTypeExpense},
		{Code: "5101.03", Name: "Beban Sewa Peralatan", Type: models.AccountTypeExpense},
		{Code: "5101.04", Name: "Beban Subkontraktor", Type: models.AccountTypeExpense},
		{Code: "5102.01", Name: "Beban Overhead Proyek", Type: models.AccountTypeExpense},
	}
	for _, a := range baseAccounts {
		var existing models.Account
		if err := db.Where("code = ?", a.Code).First(&existing).Error; err == gorm.ErrRecordNotFound {
			a.IsActive = true
			a.Level = 2
			db.Create(&a)
		}
	}
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
