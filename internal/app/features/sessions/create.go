// internal/app/features/sessions/create.go
package sessions

import (
	"errors"
	"net/http"

	"github.com/attendease/attendease/internal/app/session"
	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/inputval"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"github.com/attendease/attendease/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type geofenceRequest struct {
	Lat     float64 `json:"lat" validate:"min=-90,max=90" label:"Latitude"`
	Lon     float64 `json:"lon" validate:"min=-180,max=180" label:"Longitude"`
	RadiusM float64 `json:"radius_m" validate:"gt=0,max=100000" label:"Geofence radius"`
}

type createSessionRequest struct {
	OrgID           string           `json:"org_id" validate:"required,objectid" label:"Organization id"`
	Type            string           `json:"type" validate:"omitempty,sessiontype" label:"Session type"`
	DurationMinutes int              `json:"duration_minutes" validate:"min=0,max=10080" label:"Duration"`
	Geofence        *geofenceRequest `json:"geofence"`

	AllowMultipleScans bool `json:"allow_multiple_scans"`
	RequireLocation    bool `json:"require_location"`
	GraceMinutes       int  `json:"grace_minutes" validate:"min=0,max=1440" label:"Grace window"`
}

// HandleCreate handles POST /api/sessions. Admin or owner role in the
// target org required; the manager enforces that along with org status.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	var req createSessionRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Validation(w, res.All())
		return
	}
	orgID, err := primitive.ObjectIDFromHex(req.OrgID)
	if err != nil {
		httpjson.BadRequest(w, "invalid organization id")
		return
	}

	params := session.CreateParams{
		OrgID:           orgID,
		CreatorID:       callerID,
		Type:            req.Type,
		DurationMinutes: req.DurationMinutes,
		Settings: models.SessionSettings{
			AllowMultipleScans: req.AllowMultipleScans,
			RequireLocation:    req.RequireLocation,
			GraceMinutes:       req.GraceMinutes,
		},
	}
	if req.Geofence != nil {
		params.Geofence = &models.Geofence{
			Center:  models.GeoPoint{Lat: req.Geofence.Lat, Lon: req.Geofence.Lon},
			RadiusM: req.Geofence.RadiusM,
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create qr session")
	defer cancel()

	created, err := h.Manager.Create(ctx, params)
	switch {
	case errors.Is(err, session.ErrOrgNotFound):
		httpjson.NotFound(w, "organization not found")
	case errors.Is(err, session.ErrOrgSuspended):
		httpjson.Forbidden(w, "organization is suspended")
	case errors.Is(err, session.ErrForbidden):
		httpjson.Forbidden(w, "admin or owner role required")
	case err != nil:
		httpjson.Internal(w, h.Log, "create qr session", err)
	default:
		httpjson.Write(w, http.StatusCreated, toSessionResponse(created))
	}
}
