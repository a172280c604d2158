// internal/app/features/sessions/routes.go
package sessions

import (
	"github.com/attendease/attendease/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.HandleList)
		pr.Post("/", h.HandleCreate)

		pr.Route("/{sessionID}", func(sr chi.Router) {
			sr.Get("/", h.HandleGet)
			sr.Post("/revoke", h.HandleRevoke)
			sr.Get("/qr.png", h.HandleQRImage)
			sr.Get("/stats", h.HandleStats)
			sr.Post("/stats/rebuild", h.HandleRebuildStats)
		})
	})

	return r
}
