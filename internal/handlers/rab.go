package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/nusakarya/construction-api/internal/httpx"
	"github.com/nusakarya/construction-api/internal/services"
)

type RABHandler struct {
	Svc    *services.RABService
	Ledger *services.LedgerService
}

func NewRABHandler(svc *services.RABService, ledger *services.LedgerService) *RABHandler {
	return &RABHandler{Svc: svc, Ledger: ledger}
}

type rabItemPayload struct {
	ProjectID   uint    `json:"projectId"`
	ProjectIDS  uint    `json:"project_id"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ItemType    string  `json:"itemType"`
	ItemTypeS   string  `json:"item_type"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   int64   `json:"unitPrice"`
	UnitPriceS  int64   `json:"unit_price"`
}

func (p rabItemPayload) toInput() services.RABItemInput {
	unitPrice := p.UnitPrice
	if unitPrice == 0 {
		unitPrice = p.UnitPriceS
	}
	return services.RABItemInput{
		ProjectID:   coalesceUint(p.ProjectID, p.ProjectIDS),
		Category:    p.Category,
		Description: p.Description,
		ItemType:    coalesceStr(p.ItemType, p.ItemTypeS),
		Unit:        p.Unit,
		Quantity:    p.Quantity,
		UnitPrice:   unitPrice,
	}
}

// Create: POST /api/rab-items
func (h *RABHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p rabItemPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	item, err := h.Svc.Create(p.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusCreated, item)
}

// List: GET /api/rab-items?projectId=1&category=struktur
func (h *RABHandler) List(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.ParseUint(r.URL.Query().Get("projectId"), 10, 32)
	if err != nil || pid == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_project_id", nil)
		return
	}
	items, err := h.Svc.List(uint(pid), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, items)
}

// Get: GET /api/rab-items/{id}
func (h *RABHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	item, err := h.Svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, item)
}

// Update: PUT /api/rab-items/{id}
func (h *RABHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var p rabItemPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	item, err := h.Svc.Update(id, p.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, item)
}

// Approve: POST /api/rab-items/{id}/approve
func (h *RABHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	item, err := h.Svc.Approve(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, item)
}

// Delete: DELETE /api/rab-items/{id}
func (h *RABHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusNoContent, nil)
}

// Realizations: GET /api/rab-items/{id}/realizations
func (h *RABHandler) Realizations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	recs, err := h.Ledger.Realizations(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSONData(w, http.StatusOK, recs)
}
