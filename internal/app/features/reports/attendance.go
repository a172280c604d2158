// internal/app/features/reports/attendance.go
package reports

import (
	"net/http"
	"strconv"

	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/limits"
	"github.com/attendease/attendease/internal/app/system/timeouts"
)

// HandleOrgAttendance handles GET /api/reports/attendance
// ?org_id=...&from=...&to=...&limit=... — the org's attendance records,
// newest first, for managers.
func (h *Handler) HandleOrgAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "org attendance report")
	defer cancel()

	orgID, ok := h.requireOrgManager(ctx, w, r)
	if !ok {
		return
	}
	from, to, err := parseTimeRange(r)
	if err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpjson.BadRequest(w, "limit must be a number")
			return
		}
	}
	limit = limits.Clamp(limit)

	records, err := h.Attendance.ListByOrg(ctx, orgID, from, to, limit)
	if err != nil {
		httpjson.Internal(w, h.Log, "list org attendance", err)
		return
	}
	out := make([]attendanceResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toAttendanceResponse(rec))
	}
	httpjson.Write(w, http.StatusOK, out)
}

// HandleMyAttendance handles GET /api/reports/attendance/me: the caller's
// own history across organizations, newest first.
func (h *Handler) HandleMyAttendance(w http.ResponseWriter, r *http.Request) {
	_, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "my attendance report")
	defer cancel()

	records, err := h.Attendance.ListByUser(ctx, callerID, limits.Clamp(0))
	if err != nil {
		httpjson.Internal(w, h.Log, "list my attendance", err)
		return
	}
	out := make([]attendanceResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toAttendanceResponse(rec))
	}
	httpjson.Write(w, http.StatusOK, out)
}
