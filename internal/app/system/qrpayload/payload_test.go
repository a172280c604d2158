package qrpayload_test

import (
	"errors"
	"testing"

	"github.com/attendease/attendease/internal/app/system/qrpayload"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	s, err := qrpayload.Encode("attendance", "tok_abc123")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	p, err := qrpayload.Decode(s)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.SID != "tok_abc123" {
		t.Errorf("SID: got %q, want %q", p.SID, "tok_abc123")
	}
	if p.T != "attendance" {
		t.Errorf("T: got %q, want %q", p.T, "attendance")
	}
	if p.V != qrpayload.Version {
		t.Errorf("V: got %d, want %d", p.V, qrpayload.Version)
	}
}

func TestEncode_RejectsUnknownType(t *testing.T) {
	if _, err := qrpayload.Encode("lunch", "tok"); err == nil {
		t.Fatal("expected error for unknown session type")
	}
}

func TestEncode_RejectsEmptyToken(t *testing.T) {
	if _, err := qrpayload.Encode("attendance", ""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestDecode_Strictness(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"raw token string", "tok_abc123"},
		{"empty", ""},
		{"wrong version", `{"v":2,"t":"attendance","sid":"tok"}`},
		{"unknown type", `{"v":1,"t":"lunch","sid":"tok"}`},
		{"missing sid", `{"v":1,"t":"attendance","sid":""}`},
		{"legacy key name", `{"v":1,"t":"attendance","sessionId":"tok"}`},
		{"unknown extra field", `{"v":1,"t":"attendance","sid":"tok","x":1}`},
		{"url query shape", "sid=tok&t=attendance"},
		{"trailing data", `{"v":1,"t":"attendance","sid":"tok"}{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := qrpayload.Decode(tt.raw)
			if err == nil {
				t.Fatalf("Decode(%q) succeeded, want error", tt.raw)
			}
			if !errors.Is(err, qrpayload.ErrMalformed) {
				t.Errorf("error is not ErrMalformed: %v", err)
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	png, err := qrpayload.EncodePNG("attendance", "tok_abc123", 256)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("expected non-empty PNG bytes")
	}
	// PNG magic number
	if png[0] != 0x89 || png[1] != 'P' || png[2] != 'N' || png[3] != 'G' {
		t.Error("output does not start with the PNG signature")
	}
}
