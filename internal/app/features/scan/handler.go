// Package scan exposes POST /api/scan, the endpoint a member's device
// hits after reading a QR code. It parses the payload, rate-limits per
// user, runs the check-in pipeline, and maps the failure taxonomy onto
// reason-coded JSON responses. Business rejections are 4xx; only a
// persistence failure is a 500.
package scan

import (
	"errors"
	"net/http"
	"time"

	"github.com/attendease/attendease/internal/app/checkin"
	"github.com/attendease/attendease/internal/app/session"
	"github.com/attendease/attendease/internal/app/stats"
	attendancestore "github.com/attendease/attendease/internal/app/store/attendance"
	membershipstore "github.com/attendease/attendease/internal/app/store/memberships"
	organizationstore "github.com/attendease/attendease/internal/app/store/organizations"
	sessionstore "github.com/attendease/attendease/internal/app/store/qrsessions"
	userstore "github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/inputval"
	"github.com/attendease/attendease/internal/app/system/qrpayload"
	"github.com/attendease/attendease/internal/app/system/ratelimit"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"github.com/attendease/attendease/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds the dependencies for the scan endpoint.
type Handler struct {
	Recorder *checkin.Recorder
	Limiter  *ratelimit.Limiter
	Log      *zap.Logger
}

// Config tunes the scan pipeline per deployment.
type Config struct {
	// GraceMinutes is the default late threshold when neither the session
	// nor the org configures one.
	GraceMinutes int
	// BonusPoints is the per-check-in reward amount.
	BonusPoints int64
	// RateLimit is scans allowed per user per RateWindow.
	RateLimit int
	RateWindow time.Duration
}

// NewHandler wires the full check-in pipeline from the Mongo database.
func NewHandler(db *mongo.Database, cfg Config, logger *zap.Logger) *Handler {
	ss := sessionstore.New(db)
	os := organizationstore.New(db)
	ms := membershipstore.New(db)
	as := attendancestore.New(db)
	mgr := session.NewManager(ss, os, ms, logger)
	agg := stats.NewAggregator(ss, as, userstore.New(db), cfg.BonusPoints, logger)
	rec := checkin.NewRecorder(mgr, as, ms, os, agg,
		checkin.GraceWindowPolicy(cfg.GraceMinutes), logger)

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 30
	}
	window := cfg.RateWindow
	if window <= 0 {
		window = time.Minute
	}
	return &Handler{
		Recorder: rec,
		Limiter:  ratelimit.New(limit, window),
		Log:      logger,
	}
}

type scanRequest struct {
	Payload  string           `json:"payload" validate:"required,max=4096" label:"QR payload"`
	Location *models.GeoPoint `json:"location"`
	Device   struct {
		Platform string `json:"platform" validate:"max=64" label:"Platform"`
		DeviceID string `json:"device_id" validate:"max=128" label:"Device id"`
	} `json:"device"`
}

type scanResponse struct {
	Result    string    `json:"result"`
	Status    string    `json:"status"`
	SessionID string    `json:"session_id,omitempty"`
	ScannedAt time.Time `json:"scanned_at"`
}

// HandleScan handles POST /api/scan.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	_, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	if !h.Limiter.Allow(callerID.Hex()) {
		httpjson.WriteError(w, http.StatusTooManyRequests, "rate_limited",
			"Too many scan attempts; slow down.")
		return
	}

	var req scanRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Validation(w, res.All())
		return
	}

	payload, err := qrpayload.Decode(req.Payload)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "malformed_payload",
			"The scanned code is not a valid check-in code.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "record scan")
	defer cancel()

	record, err := h.Recorder.RecordScan(ctx, checkin.ScanRequest{
		SessionToken: payload.SID,
		UserID:       callerID,
		Location:     req.Location,
		Device: models.DeviceInfo{
			Platform:  req.Device.Platform,
			UserAgent: r.UserAgent(),
			DeviceID:  req.Device.DeviceID,
		},
	})
	if err != nil {
		h.writeScanError(w, err)
		return
	}

	resp := scanResponse{
		Result:    "recorded",
		Status:    record.Status,
		ScannedAt: record.ScannedAt,
	}
	if record.SessionID != nil {
		resp.SessionID = record.SessionID.Hex()
	}
	httpjson.Write(w, http.StatusCreated, resp)
}

// writeScanError maps the taxonomy to a status and reason code. The code
// strings come from checkin.ReasonCode so clients see one stable set.
func (h *Handler) writeScanError(w http.ResponseWriter, err error) {
	code := checkin.ReasonCode(err)
	switch {
	case errors.Is(err, checkin.ErrSessionNotFound):
		httpjson.WriteError(w, http.StatusNotFound, code, "No session matches this code.")
	case errors.Is(err, checkin.ErrSessionExpired),
		errors.Is(err, checkin.ErrSessionRevoked):
		httpjson.WriteError(w, http.StatusGone, code, "This session is no longer accepting scans.")
	case errors.Is(err, checkin.ErrNotAMember):
		httpjson.WriteError(w, http.StatusForbidden, code, "You are not a member of this organization.")
	case errors.Is(err, checkin.ErrLocationRequired):
		httpjson.WriteError(w, http.StatusUnprocessableEntity, code, "This session requires your location.")
	case errors.Is(err, checkin.ErrOutOfRange):
		httpjson.WriteError(w, http.StatusUnprocessableEntity, code, "You are too far from the session location.")
	case errors.Is(err, checkin.ErrAlreadyMarked):
		httpjson.WriteError(w, http.StatusConflict, code, "Attendance is already recorded for this session.")
	default:
		h.Log.Error("scan persistence failure", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, code,
			"Could not record the scan; try again.")
	}
}
