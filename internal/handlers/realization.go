package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nusakarya/construction-api/internal/auth"
	"github.com/nusakarya/construction-api/internal/httpx"
	"github.com/nusakarya/construction-api/internal/models"
	"github.com/nusakarya/construction-api/internal/services"
)

type RealizationHandler struct {
	Svc *services.RealizationService
}

func NewRealizationHandler(svc *services.RealizationService) *RealizationHandler {
	return &RealizationHandler{Svc: svc}
}

func currentUser(r *http.Request) *uint {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok && uid != 0 {
		return &uid
	}
	return nil
}

// Create: POST /api/realizations
func (h *RealizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p realizationPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rec, warnings, err := h.Svc.Record(p.toInput(currentUser(r)))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusCreated, rec, warnings...)
}

// CreateForMilestone: POST /api/milestones/{id}/realizations
// The path wins over any milestone id in the body.
func (h *RealizationHandler) CreateForMilestone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var p realizationPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in := p.toInput(currentUser(r))
	in.MilestoneID = id
	rec, warnings, err := h.Svc.Record(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusCreated, rec, warnings...)
}

// Get: GET /api/realizations/{id}
func (h *RealizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	rec, err := h.Svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, rec)
}

type realizationUpdatePayload struct {
	Amount           *int64   `json:"amount"`
	Description      *string  `json:"description"`
	ReferenceNumber  *string  `json:"referenceNumber"`
	ReferenceNumberS *string  `json:"reference_number"`
	Progress         *float64 `json:"progress"`
	SourceAccountID  *uint    `json:"sourceAccountId"`
	SourceAccountIDS *uint    `json:"source_account_id"`
}

// Update: PUT /api/realizations/{id}
func (h *RealizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var p realizationUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	ref := p.ReferenceNumber
	if ref == nil {
		ref = p.ReferenceNumberS
	}
	src := p.SourceAccountID
	if src == nil {
		src = p.SourceAccountIDS
	}
	rec, warnings, err := h.Svc.Update(id, services.UpdateInput{
		Amount:          p.Amount,
		Description:     p.Description,
		ReferenceNumber: ref,
		Progress:        p.Progress,
		SourceAccountID: src,
		PerformedBy:     currentUser(r),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, rec, warnings...)
}

// Delete: DELETE /api/realizations/{id}
func (h *RealizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	warnings, err := h.Svc.Delete(id, currentUser(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, map[string]bool{"deleted": true}, warnings...)
}

// Submit: POST /api/realizations/{id}/submit
func (h *RealizationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.Svc.Submit)
}

// Approve: POST /api/realizations/{id}/approve
func (h *RealizationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.Svc.Approve)
}

// Reject: POST /api/realizations/{id}/reject
func (h *RealizationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rec, err := h.Svc.Reject(id, body.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, rec)
}

// Pay: POST /api/realizations/{id}/pay
func (h *RealizationHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	rec, warnings, err := h.Svc.Pay(id, currentUser(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, rec, warnings...)
}

func (h *RealizationHandler) simpleTransition(w http.ResponseWriter, r *http.Request, fn func(uint) (*models.Realization, error)) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	rec, err := fn(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, rec)
}
