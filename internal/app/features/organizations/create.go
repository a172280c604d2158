// internal/app/features/organizations/create.go
package organizations

import (
	"errors"
	"net/http"
	"strings"

	organizationstore "github.com/attendease/attendease/internal/app/store/organizations"
	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/htmlsanitize"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/inputval"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"github.com/attendease/attendease/internal/domain/models"
	"go.uber.org/zap"
)

type createOrgRequest struct {
	Name     string              `json:"name" validate:"required,max=200" label:"Organization name"`
	Code     string              `json:"code" validate:"required,orgcode" label:"Org code"`
	Type     string              `json:"type" validate:"omitempty,oneof=company school club other" label:"Organization type"`
	Location *models.GeoPoint    `json:"location"`
	Settings *models.OrgSettings `json:"settings"`
}

// HandleCreate handles POST /api/orgs. The caller becomes the owner.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	var req createOrgRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Validation(w, res.All())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create organization")
	defer cancel()

	org := models.Organization{
		Name:     strings.TrimSpace(htmlsanitize.StripTags(req.Name)),
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		Type:     req.Type,
		Location: req.Location,
	}
	if req.Settings != nil {
		org.Settings = *req.Settings
	}

	created, err := h.Orgs.Create(ctx, org)
	if errors.Is(err, organizationstore.ErrDuplicateOrganization) {
		httpjson.Conflict(w, "org_exists", "An organization with this name or code already exists.")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "create organization", err)
		return
	}

	// The creator is the owner. An org without an owner is unusable, so
	// if this write fails, suspend the fresh org and report the failure.
	if _, err := h.Memberships.Add(ctx, created.ID, callerID, models.RoleOwner); err != nil {
		if serr := h.Orgs.SetStatus(ctx, created.ID, models.OrgStatusSuspended); serr != nil {
			h.Log.Error("suspend orphaned org failed",
				zap.String("org_id", created.ID.Hex()), zap.Error(serr))
		}
		httpjson.Internal(w, h.Log, "create owner membership", err)
		return
	}

	h.Log.Info("organization created",
		zap.String("org_id", created.ID.Hex()),
		zap.String("owner_id", callerID.Hex()))

	httpjson.Write(w, http.StatusCreated, toOrgResponse(created))
}
