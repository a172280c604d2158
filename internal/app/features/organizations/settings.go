// internal/app/features/organizations/settings.go
package organizations

import (
	"errors"
	"net/http"

	organizationstore "github.com/attendease/attendease/internal/app/store/organizations"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/inputval"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"github.com/attendease/attendease/internal/domain/models"
	"go.uber.org/zap"
)

type updateSettingsRequest struct {
	AttendanceRadiusM float64 `json:"attendance_radius_m" validate:"min=0,max=100000" label:"Attendance radius"`
	QRExpiryMinutes   int     `json:"qr_expiry_minutes" validate:"min=0,max=10080" label:"QR expiry"`
	GraceMinutes      int     `json:"grace_minutes" validate:"min=0,max=1440" label:"Grace window"`
	WorkStartHour     int     `json:"work_start_hour" validate:"min=0,max=23" label:"Work start hour"`
	WorkEndHour       int     `json:"work_end_hour" validate:"min=0,max=23" label:"Work end hour"`
	WorkDays          []int   `json:"work_days" validate:"max=7,dive,min=0,max=6" label:"Work days"`
}

// HandleUpdateSettings handles PUT /api/orgs/{orgID}/settings. Admin or
// owner standing required. The body replaces the settings document whole;
// zero values fall back to application defaults at the point of use.
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update org settings")
	defer cancel()

	callerID, ok := h.requireManager(ctx, w, r, orgID)
	if !ok {
		return
	}

	var req updateSettingsRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Validation(w, res.All())
		return
	}

	settings := models.OrgSettings{
		AttendanceRadiusM: req.AttendanceRadiusM,
		QRExpiryMinutes:   req.QRExpiryMinutes,
		GraceMinutes:      req.GraceMinutes,
		WorkStartHour:     req.WorkStartHour,
		WorkEndHour:       req.WorkEndHour,
		WorkDays:          req.WorkDays,
	}
	err := h.Orgs.UpdateSettings(ctx, orgID, settings)
	if errors.Is(err, organizationstore.ErrNotFound) {
		httpjson.NotFound(w, "organization not found")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "update org settings", err)
		return
	}

	h.Log.Info("org settings updated",
		zap.String("org_id", orgID.Hex()),
		zap.String("updated_by", callerID.Hex()))

	org, err := h.Orgs.GetByID(ctx, orgID)
	if err != nil {
		httpjson.Internal(w, h.Log, "reload organization", err)
		return
	}
	httpjson.Write(w, http.StatusOK, toOrgResponse(org))
}
