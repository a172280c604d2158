// internal/app/features/sessions/qr.go
package sessions

import (
	"net/http"
	"strconv"

	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/qrpayload"
	"github.com/attendease/attendease/internal/app/system/timeouts"
)

const (
	defaultQRSizePx = 512
	maxQRSizePx     = 2048
)

// HandleQRImage handles GET /api/sessions/{sessionID}/qr.png. The image
// encodes the bearer token, so it is served with no-store and only to
// org managers. An optional size query parameter sets the pixel edge.
func (h *Handler) HandleQRImage(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	size := defaultQRSizePx
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > maxQRSizePx {
			httpjson.BadRequest(w, "size must be a number between 64 and 2048")
			return
		}
		size = n
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "render session qr")
	defer cancel()

	sess, ok := h.loadManaged(ctx, w, r, sessionID)
	if !ok {
		return
	}
	if sess.IsTerminal() {
		httpjson.Conflict(w, "session_closed", "This session no longer accepts scans.")
		return
	}

	png, err := qrpayload.EncodePNG(sess.Type, sess.Token, size)
	if err != nil {
		httpjson.Internal(w, h.Log, "encode qr png", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
