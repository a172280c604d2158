// internal/app/features/sessions/stats.go
package sessions

import (
	"net/http"

	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/timeouts"
)

// HandleStats handles GET /api/sessions/{sessionID}/stats: the running
// scan counters as stored on the session document.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get session stats")
	defer cancel()

	sess, ok := h.loadManaged(ctx, w, r, sessionID)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, sess.Stats)
}

// HandleRebuildStats handles POST /api/sessions/{sessionID}/stats/rebuild:
// recounts the attendance ledger and overwrites the stored counters. The
// recovery path for counters that drifted after a crash between the
// attendance insert and the stats update.
func (h *Handler) HandleRebuildStats(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "rebuild session stats")
	defer cancel()

	if _, ok := h.loadManaged(ctx, w, r, sessionID); !ok {
		return
	}

	rebuilt, err := h.Aggregator.Rebuild(ctx, sessionID)
	if err != nil {
		httpjson.Internal(w, h.Log, "rebuild session stats", err)
		return
	}
	httpjson.Write(w, http.StatusOK, rebuilt)
}
