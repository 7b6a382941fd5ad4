package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nusakarya/construction-api/internal/httpx"
	"github.com/nusakarya/construction-api/internal/services"
	"github.com/xuri/excelize/v2"
)

// ExportHandler writes the milestone budget workbook: one sheet for the RAB
// ledger, one for the recorded costs.
type ExportHandler struct {
	Ledger  *services.LedgerService
	Summary *services.SummaryService
}

func NewExportHandler(ledger *services.LedgerService, summary *services.SummaryService) *ExportHandler {
	return &ExportHandler{Ledger: ledger, Summary: summary}
}

// BudgetXLSX: GET /api/milestones/{id}/budget/export
func (h *ExportHandler) BudgetXLSX(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	items, err := h.Ledger.ItemsForMilestone(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	costs, err := h.Ledger.MilestoneRealizations(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sum, err := h.Summary.BudgetSummary(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const rabSheet = "RAB"
	if err := f.SetSheetName("Sheet1", rabSheet); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "export_failed", nil)
		return
	}
	rabHeader := []any{"Description", "Type", "Unit", "Qty", "Unit Price", "Planned", "Actual", "Variance", "Progress %", "Status"}
	_ = f.SetSheetRow(rabSheet, "A1", &rabHeader)
	for i, it := range items.Items {
		row := []any{
			it.Description, it.ItemType, it.Unit, it.Quantity, it.UnitPrice,
			it.PlannedAmount, it.ActualAmount, it.Variance(), it.ProgressPercentage, it.RealizationStatus,
		}
		_ = f.SetSheetRow(rabSheet, fmt.Sprintf("A%d", i+2), &row)
	}
	totals := []any{"TOTAL", "", "", "", "", items.TotalPlanned, items.TotalActual, items.TotalPlanned - items.TotalActual, "", ""}
	_ = f.SetSheetRow(rabSheet, fmt.Sprintf("A%d", len(items.Items)+2), &totals)

	const costSheet = "Costs"
	if _, err := f.NewSheet(costSheet); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "export_failed", nil)
		return
	}
	costHeader := []any{"Date", "Category", "Type", "Amount", "Description", "Reference", "Status"}
	_ = f.SetSheetRow(costSheet, "A1", &costHeader)
	for i, c := range costs {
		row := []any{
			c.RecordedAt.Format("2006-01-02"), c.Category, c.Type, c.Amount,
			c.Description, c.ReferenceNumber, c.Status,
		}
		_ = f.SetSheetRow(costSheet, fmt.Sprintf("A%d", i+2), &row)
	}
	summaryRows := [][]any{
		{"Budget", sum.Budget},
		{"Total Spent", sum.TotalSpent},
		{"Variance", sum.Variance},
		{"Status", string(sum.Status)},
	}
	base := len(costs) + 3
	for i := range summaryRows {
		_ = f.SetSheetRow(costSheet, fmt.Sprintf("A%d", base+i), &summaryRows[i])
	}

	name := fmt.Sprintf("milestone-%d-budget-%s.xlsx", id, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := f.Write(w); err != nil {
		// headers are already out, nothing left to report
		_ = err
	}
}
