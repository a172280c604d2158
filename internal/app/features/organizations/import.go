// internal/app/features/organizations/import.go
package organizations

import (
	"errors"
	"net/http"

	membershipstore "github.com/attendease/attendease/internal/app/store/memberships"
	userstore "github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/csvutil"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"github.com/attendease/attendease/internal/domain/models"
	"go.uber.org/zap"
)

// importResult summarizes a roster upload. Rows for unknown emails are
// skipped, not failed: the admin gets the list back and can invite those
// people to register first.
type importResult struct {
	Added         int      `json:"added"`
	AlreadyMember int      `json:"already_member"`
	UnknownEmails []string `json:"unknown_emails,omitempty"`
}

// HandleImportMembers handles POST /api/orgs/{orgID}/members/import: a
// multipart upload with a "file" field holding a CSV of full name + email
// columns. Admin or owner standing required. The file must parse clean
// before any membership is written.
func (h *Handler) HandleImportMembers(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "import org members")
	defer cancel()

	callerID, ok := h.requireManager(ctx, w, r, orgID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)
	if err := r.ParseMultipartForm(csvutil.MaxUploadSize); err != nil {
		httpjson.BadRequest(w, "upload too large or not multipart form data")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpjson.BadRequest(w, `missing "file" upload field`)
		return
	}
	defer file.Close()

	parsed, err := csvutil.ParseMemberCSV(file, csvutil.DefaultParseOptions())
	if errors.Is(err, csvutil.ErrTooManyRows) {
		httpjson.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		httpjson.BadRequest(w, "could not read CSV: "+err.Error())
		return
	}
	if parsed.HasErrors() {
		httpjson.Validation(w, parsed.FormatErrors(5))
		return
	}

	res := importResult{UnknownEmails: []string{}}
	for _, row := range parsed.Rows {
		u, err := h.Users.GetByEmail(ctx, row.Email)
		if errors.Is(err, userstore.ErrNotFound) {
			res.UnknownEmails = append(res.UnknownEmails, row.Email)
			continue
		}
		if err != nil {
			httpjson.Internal(w, h.Log, "lookup user by email", err)
			return
		}
		_, err = h.Memberships.Add(ctx, orgID, u.ID, models.RoleMember)
		if errors.Is(err, membershipstore.ErrDuplicateMembership) {
			res.AlreadyMember++
			continue
		}
		if err != nil {
			httpjson.Internal(w, h.Log, "add membership", err)
			return
		}
		res.Added++
	}

	h.Log.Info("member import finished",
		zap.String("org_id", orgID.Hex()),
		zap.Int("added", res.Added),
		zap.Int("already_member", res.AlreadyMember),
		zap.Int("unknown", len(res.UnknownEmails)),
		zap.String("imported_by", callerID.Hex()))

	httpjson.Write(w, http.StatusOK, res)
}
