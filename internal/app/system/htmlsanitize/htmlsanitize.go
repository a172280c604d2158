// Package htmlsanitize wraps the bluemonday policies used for user-supplied
// text. Organization names and reward text arrive from clients and are
// echoed back to other members, so they pass through here before storage.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var (
	// ugc allows the small set of formatting tags safe for user content.
	ugc = bluemonday.UGCPolicy()

	// strict strips all markup, for fields that are plain text only.
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps safe formatting markup and strips anything executable.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// StripTags removes all markup, returning plain text.
func StripTags(s string) string {
	return strict.Sanitize(s)
}
