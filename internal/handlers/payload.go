package handlers

import (
	"net/http"
	"strconv"

	"github.com/nusakarya/construction-api/internal/services"
)

// realizationPayload accepts both the camelCase keys of the current client
// and the snake_case keys older clients still send. First non-empty key
// wins, camelCase preferred.
type realizationPayload struct {
	MilestoneID  uint  `json:"milestoneId"`
	MilestoneIDS uint  `json:"milestone_id"`
	RABItemID    *uint `json:"rabItemId"`
	RABItemIDS   *uint `json:"rab_item_id"`

	Amount int64 `json:"amount"`

	Category      string `json:"category"`
	CostCategory  string `json:"costCategory"`
	CostCategoryS string `json:"cost_category"`

	Type      string `json:"type"`
	CostType  string `json:"costType"`
	CostTypeS string `json:"cost_type"`

	Description string `json:"description"`

	ReferenceNumber  string `json:"referenceNumber"`
	ReferenceNumberS string `json:"reference_number"`

	ExpenseAccountID  uint `json:"expenseAccountId"`
	ExpenseAccountIDS uint `json:"expense_account_id"`
	AccountID         uint `json:"accountId"`

	SourceAccountID  *uint `json:"sourceAccountId"`
	SourceAccountIDS *uint `json:"source_account_id"`

	Progress *float64 `json:"progress"`
}

func coalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func coalesceUint(vals ...uint) uint {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func coalescePtr(vals ...*uint) *uint {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func (p realizationPayload) toInput(recordedBy *uint) services.RecordInput {
	return services.RecordInput{
		MilestoneID:      coalesceUint(p.MilestoneID, p.MilestoneIDS),
		RABItemID:        coalescePtr(p.RABItemID, p.RABItemIDS),
		Category:         coalesceStr(p.Category, p.CostCategory, p.CostCategoryS),
		Type:             coalesceStr(p.Type, p.CostType, p.CostTypeS),
		Amount:           p.Amount,
		Description:      p.Description,
		ReferenceNumber:  coalesceStr(p.ReferenceNumber, p.ReferenceNumberS),
		ExpenseAccountID: coalesceUint(p.ExpenseAccountID, p.ExpenseAccountIDS, p.AccountID),
		SourceAccountID:  coalescePtr(p.SourceAccountID, p.SourceAccountIDS),
		Progress:         p.Progress,
		RecordedBy:       recordedBy,
	}
}

// pathID parses the {id} segment of the matched route.
func pathID(r *http.Request, name string) (uint, bool) {
	raw := r.PathValue(name)
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
