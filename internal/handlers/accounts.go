package handlers

import (
	"net/http"

	"github.com/nusakarya/construction-api/internal/httpx"
	"github.com/nusakarya/construction-api/internal/models"
	"gorm.io/gorm"
)

type AccountHandler struct {
	DB *gorm.DB
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

// List: GET /api/accounts?type=ASSET&funding=1
// funding=1 narrows to the active cash-and-bank accounts that can pay for
// realizations.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("code")
	if t := r.URL.Query().Get("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if st := r.URL.Query().Get("subtype"); st != "" {
		q = q.Where("sub_type = ?", st)
	}
	if r.URL.Query().Get("funding") == "1" {
		q = q.Where("type = ? AND sub_type = ? AND is_active = ?",
			models.AccountTypeAsset, models.AccountSubTypeCashAndBank, true)
	}
	var accounts []models.Account
	if err := q.Find(&accounts).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSONData(w, http.StatusOK, accounts)
}

// Get: GET /api/accounts/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var acc models.Account
	if err := h.DB.First(&acc, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSONData(w, http.StatusOK, acc)
}
