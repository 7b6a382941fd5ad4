package handlers

import (
	"net/http"

	"github.com/nusakarya/construction-api/internal/httpx"
	"github.com/nusakarya/construction-api/internal/services"
)

// MilestoneHandler serves the milestone-scoped read endpoints: the RAB
// ledger, the cost list, the budget summary and the workflow progress.
type MilestoneHandler struct {
	Ledger   *services.LedgerService
	Summary  *services.SummaryService
	Workflow *services.WorkflowService
}

func NewMilestoneHandler(ledger *services.LedgerService, summary *services.SummaryService, wf *services.WorkflowService) *MilestoneHandler {
	return &MilestoneHandler{Ledger: ledger, Summary: summary, Workflow: wf}
}

// Items: GET /api/milestones/{id}/rab-items
func (h *MilestoneHandler) Items(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	list, err := h.Ledger.ItemsForMilestone(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, list)
}

// Realizations: GET /api/milestones/{id}/realizations
func (h *MilestoneHandler) Realizations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	recs, err := h.Ledger.MilestoneRealizations(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, recs)
}

// BudgetSummary: GET /api/milestones/{id}/budget-summary
func (h *MilestoneHandler) BudgetSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	sum, err := h.Summary.BudgetSummary(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, sum)
}

// Progress: GET /api/milestones/{id}/progress
func (h *MilestoneHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	snap, err := h.Workflow.Snapshot(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, snap)
}

// Sync: POST /api/milestones/{id}/sync
func (h *MilestoneHandler) Sync(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	snap, err := h.Workflow.Sync(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, snap)
}
