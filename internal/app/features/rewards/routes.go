// internal/app/features/rewards/routes.go
package rewards

import (
	"github.com/attendease/attendease/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.HandleListCatalog)
		pr.Post("/", h.HandleCreateReward)
		pr.Get("/claims", h.HandleMyClaims)
		pr.Post("/{rewardID}/claim", h.HandleClaim)
	})

	return r
}
