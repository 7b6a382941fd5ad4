package workflow

import "math"

// Stage weights for the overall milestone progress figure. They sum to 100.
const (
	weightRAB      = 10
	weightPO       = 20
	weightReceipts = 20
	weightBA       = 30
	weightPayments = 20
)

// Overall collapses the five-stage snapshot into a single 0..100 progress
// percentage. Partially complete stages contribute proportionally; stages
// with no activity contribute nothing.
func Overall(p Progress) int {
	var total float64

	if p.RABApproved.Approved {
		total += weightRAB
	}
	if p.PurchaseOrders.TotalCount > 0 {
		total += weightPO * float64(p.PurchaseOrders.ApprovedCount) / float64(p.PurchaseOrders.TotalCount)
	}
	if p.Receipts.ExpectedCount > 0 {
		total += weightReceipts * float64(p.Receipts.ReceivedCount) / float64(p.Receipts.ExpectedCount)
	}
	total += weightBA * clampPct(p.BeritaAcara.CompletedPercentage) / 100
	total += weightPayments * clampPct(p.Payments.PaymentPercentage) / 100

	return int(math.Round(total))
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
