package server

import (
	"context"
	"net/http"

	"github.com/nusakarya/construction-api/internal/auth"
	"github.com/nusakarya/construction-api/internal/handlers"
	"github.com/nusakarya/construction-api/internal/httpx"
	"github.com/nusakarya/construction-api/internal/middleware"
	"github.com/nusakarya/construction-api/internal/models"
	"github.com/nusakarya/construction-api/internal/services"
	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, tokens *auth.TokenIssuer) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth double-checks that the token's user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ledger := services.NewLedgerService(db)
	rab := services.NewRABService(db)
	realizations := services.NewRealizationService(db)
	summary := services.NewSummaryService(db, ledger)
	wf := services.NewWorkflowService(db)

	ah := handlers.NewAuthHandler(db, tokens)
	mux.HandleFunc("POST /api/auth/register", ah.Register)
	mux.HandleFunc("POST /api/auth/login", ah.Login)

	// everything below requires a valid token
	protected := func(h http.HandlerFunc) http.Handler {
		return tokens.Middleware(auth.RequireAuth(h))
	}

	acc := handlers.NewAccountHandler(db)
	mux.Handle("GET /api/accounts", protected(acc.List))
	mux.Handle("GET /api/accounts/{id}", protected(acc.Get))

	rh := handlers.NewRABHandler(rab, ledger)
	mux.Handle("POST /api/rab-items", protected(rh.Create))
	mux.Handle("GET /api/rab-items", protected(rh.List))
	mux.Handle("GET /api/rab-items/{id}", protected(rh.Get))
	mux.Handle("PUT /api/rab-items/{id}", protected(rh.Update))
	mux.Handle("DELETE /api/rab-items/{id}", protected(rh.Delete))
	mux.Handle("POST /api/rab-items/{id}/approve", protected(rh.Approve))
	mux.Handle("GET /api/rab-items/{id}/realizations", protected(rh.Realizations))

	ch := handlers.NewRealizationHandler(realizations)
	mux.Handle("POST /api/realizations", protected(ch.Create))
	mux.Handle("GET /api/realizations/{id}", protected(ch.Get))
	mux.Handle("PUT /api/realizations/{id}", protected(ch.Update))
	mux.Handle("DELETE /api/realizations/{id}", protected(ch.Delete))
	mux.Handle("POST /api/realizations/{id}/submit", protected(ch.Submit))
	mux.Handle("POST /api/realizations/{id}/approve", protected(ch.Approve))
	mux.Handle("POST /api/realizations/{id}/reject", protected(ch.Reject))
	mux.Handle("POST /api/realizations/{id}/pay", protected(ch.Pay))

	mh := handlers.NewMilestoneHandler(ledger, summary, wf)
	mux.Handle("GET /api/milestones/{id}/rab-items", protected(mh.Items))
	mux.Handle("GET /api/milestones/{id}/realizations", protected(mh.Realizations))
	mux.Handle("POST /api/milestones/{id}/realizations", protected(ch.CreateForMilestone))
	mux.Handle("GET /api/milestones/{id}/budget-summary", protected(mh.BudgetSummary))
	mux.Handle("GET /api/milestones/{id}/progress", protected(mh.Progress))
	mux.Handle("POST /api/milestones/{id}/sync", protected(mh.Sync))

	eh := handlers.NewExportHandler(ledger, summary)
	mux.Handle("GET /api/milestones/{id}/budget/export", protected(eh.BudgetXLSX))

	return middleware.Recover(middleware.Logging(mux))
}
