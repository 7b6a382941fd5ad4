package workflow

import (
	"fmt"
	"time"
)

// Alert flags a purchase order whose goods are overdue.
type Alert struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	PONumber    string `json:"po_number"`
	DaysWaiting int    `json:"days_waiting"`
}

const (
	AlertReceiptDelay = "receipt_delay"

	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Receipt delay thresholds, in days since PO approval.
const (
	receiptWarnAfter     = 7
	receiptCriticalAfter = 14
)

// ReceiptAlerts flags approved purchase orders that still have no delivery
// receipt after a week. The received set is keyed by PO number.
func ReceiptAlerts(now time.Time, orders []POLine, received map[string]bool) []Alert {
	var alerts []Alert
	for _, po := range orders {
		if po.Status != "approved" || po.Date == nil || received[po.PONumber] {
			continue
		}
		days := int(now.Sub(*po.Date).Hours() / 24)
		if days <= receiptWarnAfter {
			continue
		}
		severity := SeverityMedium
		if days > receiptCriticalAfter {
			severity = SeverityHigh
		}
		alerts = append(alerts, Alert{
			Type:        AlertReceiptDelay,
			Severity:    severity,
			Message:     fmt.Sprintf("%s approved %d days ago, no receipt yet", po.PONumber, days),
			PONumber:    po.PONumber,
			DaysWaiting: days,
		})
	}
	return alerts
}
