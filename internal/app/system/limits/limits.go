// internal/app/system/limits/limits.go
package limits

// Paging and export limits for list endpoints.
// These keep a single report request from dragging the whole collection
// into memory.
const (
	// DefaultListLimit is applied when a list request names no limit.
	DefaultListLimit = 100

	// MaxListLimit caps the limit a client may request.
	MaxListLimit = 1000

	// MaxExportRows caps a single CSV export.
	MaxExportRows = 50000
)

// Clamp normalizes a requested limit into [1, MaxListLimit], applying
// the default for zero or negative values.
func Clamp(requested int64) int64 {
	if requested <= 0 {
		return DefaultListLimit
	}
	if requested > MaxListLimit {
		return MaxListLimit
	}
	return requested
}
