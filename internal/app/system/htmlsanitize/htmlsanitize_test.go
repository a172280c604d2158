package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/attendease/attendease/internal/app/system/htmlsanitize"
)

func TestSanitize_PlainTextUnchanged(t *testing.T) {
	got := htmlsanitize.Sanitize("Free coffee at the front desk")
	if got != "Free coffee at the front desk" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestSanitize_KeepsFormatting(t *testing.T) {
	got := htmlsanitize.Sanitize("<p>Redeem at the <strong>front desk</strong></p>")
	if !strings.Contains(got, "<strong>front desk</strong>") {
		t.Errorf("expected formatting kept, got %q", got)
	}
}

func TestSanitize_StripsScript(t *testing.T) {
	got := htmlsanitize.Sanitize(`Coffee<script>alert("x")</script>`)
	if strings.Contains(got, "script") || strings.Contains(got, "alert") {
		t.Errorf("expected script stripped, got %q", got)
	}
	if !strings.Contains(got, "Coffee") {
		t.Errorf("expected text content kept, got %q", got)
	}
}

func TestSanitize_StripsEventHandlers(t *testing.T) {
	got := htmlsanitize.Sanitize(`<p onclick="steal()">hi</p>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("expected event handler stripped, got %q", got)
	}
}

func TestStripTags_RemovesAllMarkup(t *testing.T) {
	got := htmlsanitize.StripTags("<b>Acme</b> <i>Corp</i>")
	if got != "Acme Corp" {
		t.Errorf("expected %q, got %q", "Acme Corp", got)
	}
}

func TestStripTags_Empty(t *testing.T) {
	if got := htmlsanitize.StripTags(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
