// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/attendease/attendease/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.HandleListMine)
		pr.Post("/", h.HandleCreate)
		pr.Post("/join", h.HandleJoin)

		pr.Route("/{orgID}", func(or chi.Router) {
			or.Get("/", h.HandleGet)
			or.Put("/settings", h.HandleUpdateSettings)
			or.Post("/suspend", h.HandleSuspend)
			or.Post("/reactivate", h.HandleReactivate)

			or.Get("/members", h.HandleListMembers)
			or.Post("/members", h.HandleAddMember)
			or.Post("/members/import", h.HandleImportMembers)
			or.Delete("/members/{userID}", h.HandleRemoveMember)
			or.Put("/members/{userID}/role", h.HandleSetRole)
		})
	})

	return r
}
