// Package qrpayload defines the one wire format encoded into scannable
// codes. The payload is deliberately small and self-describing: a version,
// a session type discriminator, and the opaque session token. The token's
// unguessability is the security boundary; the payload format carries no
// other secret.
//
// Decode is strict. Earlier systems in this space accepted raw strings,
// JSON with varying key names, and URL query parameters speculatively;
// here anything that is not the canonical schema is a validation error.
package qrpayload

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/attendease/attendease/internal/domain/models"
)

// Version is the only payload version this build understands.
const Version = 1

// ErrMalformed is returned when a scanned payload does not match the schema.
var ErrMalformed = errors.New("qr payload is malformed")

// Payload is what gets serialized into the QR image.
type Payload struct {
	V   int    `json:"v"`
	T   string `json:"t"`
	SID string `json:"sid"`
}

// Encode returns the canonical JSON string for a session token and type.
func Encode(sessionType, token string) (string, error) {
	if !validType(sessionType) {
		return "", fmt.Errorf("unknown session type %q", sessionType)
	}
	if token == "" {
		return "", errors.New("empty session token")
	}
	b, err := json.Marshal(Payload{V: Version, T: sessionType, SID: token})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodePNG renders the payload as a QR code PNG of the given pixel size.
func EncodePNG(sessionType, token string, size int) ([]byte, error) {
	s, err := Encode(sessionType, token)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(s, qrcode.Medium, size)
}

// Decode parses a scanned payload and returns it if, and only if, it matches
// the canonical schema exactly. Unknown fields, a wrong version, an unknown
// type, or a missing token all return ErrMalformed.
func Decode(raw string) (Payload, error) {
	var p Payload
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return Payload{}, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	if p.V != Version {
		return Payload{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, p.V)
	}
	if !validType(p.T) {
		return Payload{}, fmt.Errorf("%w: unknown type %q", ErrMalformed, p.T)
	}
	if p.SID == "" {
		return Payload{}, fmt.Errorf("%w: missing session id", ErrMalformed)
	}
	return p, nil
}

func validType(t string) bool {
	switch t {
	case models.SessionTypeAttendance, models.SessionTypeEvent, models.SessionTypeAccess:
		return true
	}
	return false
}
