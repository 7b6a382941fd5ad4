package models

import (
	"strings"
	"time"
)

// Chart of accounts types
const (
	AccountTypeExpense   = "EXPENSE"
	AccountTypeAsset     = "ASSET"
	AccountTypeLiability = "LIABILITY"
	AccountTypeEquity    = "EQUITY"
	AccountTypeRevenue   = "REVENUE"

	AccountSubTypeCashAndBank = "CASH_AND_BANK"
)

// PettyCashCode is the chart-of-accounts code of the petty cash account.
const PettyCashCode = "1101.07"

// Account is a chart-of-accounts entry. EXPENSE accounts classify
// realizations; ASSET/CASH_AND_BANK accounts fund them. Balances are rupiah
// in the smallest unit.
type Account struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Code             string    `gorm:"uniqueIndex;not null" json:"accountCode"`
	Name             string    `gorm:"not null" json:"accountName"`
	Type             string    `gorm:"not null;index" json:"accountType"`
	SubType          string    `gorm:"index" json:"accountSubType"`
	CurrentBalance   int64     `gorm:"not null;default:0" json:"currentBalance"`
	Level            int       `gorm:"not null;default:2" json:"level"`
	IsControlAccount bool      `gorm:"not null;default:false" json:"isControlAccount"`
	IsActive         bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ExemptFromBalanceCheck reports whether realizations funded by this account
// skip the sufficiency check: petty cash ("kas tunai", code 1101.07) and
// unlimited owner capital ("modal pribadi") are treated as bottomless.
func (a Account) ExemptFromBalanceCheck() bool {
	if a.Code == PettyCashCode {
		return true
	}
	name := strings.ToLower(a.Name)
	return strings.Contains(name, "kas tunai") || strings.Contains(name, "modal pribadi")
}

// CanFundRealizations reports whether the account is a valid funding source.
// Control accounts are grouping headers; postings go to their children only.
func (a Account) CanFundRealizations() bool {
	return a.IsActive && !a.IsControlAccount &&
		a.Type == AccountTypeAsset && a.SubType == AccountSubTypeCashAndBank
}
