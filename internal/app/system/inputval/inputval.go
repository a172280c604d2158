// Package inputval validates request input.
//
// Struct validation runs through go-playground/validator with a few
// domain rules registered (objectid, httpurl, sessiontype, orgcode).
// Field messages are phrased for end users and keyed by the struct's
// `label` tag.
package inputval

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the human label rather than the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})

	mustRegister(v, "objectid", func(fl validator.FieldLevel) bool {
		return IsValidObjectID(fl.Field().String())
	})
	mustRegister(v, "httpurl", func(fl validator.FieldLevel) bool {
		return IsValidHTTPURL(fl.Field().String())
	})
	mustRegister(v, "sessiontype", func(fl validator.FieldLevel) bool {
		return IsValidSessionType(fl.Field().String())
	})
	mustRegister(v, "orgcode", func(fl validator.FieldLevel) bool {
		return IsValidOrgCode(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("inputval: register %q: %v", tag, err))
	}
}

// FieldError is a single validation failure on one field.
type FieldError struct {
	Field   string
	Message string
}

// Result collects validation failures in field order.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any field failed validation.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first error message, or "" when validation passed.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every error message with "; ".
func (r *Result) All() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Validate runs struct validation and returns user-facing messages.
func Validate(input any) *Result {
	res := &Result{}
	err := validate.Struct(input)
	if err == nil {
		return res
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: "Input could not be validated."})
		return res
	}

	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "latitude":
		return label + " must be a valid latitude."
	case "longitude":
		return label + " must be a valid longitude."
	case "objectid":
		return label + " must be a valid ID."
	case "httpurl":
		return label + " must be an http(s) URL."
	case "sessiontype":
		return label + " must be one of: attendance, event, access."
	case "orgcode":
		return label + " may contain only letters, digits, and hyphens."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, fe.Param())
	default:
		return label + " is invalid."
	}
}

/* ------------------------------ leaf checks ------------------------------ */

// IsValidEmail checks addr syntactically: a local part and a domain with
// no stray whitespace, angle brackets, or doubled/edge dots. Single-label
// domains (user@localhost) are accepted for dev and test environments.
func IsValidEmail(addr string) bool {
	addr = strings.TrimSpace(addr)
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 || at == len(addr)-1 {
		return false
	}
	local, domain := addr[:at], addr[at+1:]

	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	for _, r := range local {
		if !isLocalChar(r) {
			return false
		}
	}

	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") || strings.Contains(domain, "..") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for _, r := range label {
			if !isAlnum(r) && r != '-' {
				return false
			}
		}
	}
	return true
}

func isLocalChar(r rune) bool {
	return isAlnum(r) || strings.ContainsRune("._%+-", r)
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// IsValidHTTPURL accepts absolute http or https URLs only.
func IsValidHTTPURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidObjectID accepts a 24-character hex string (Mongo ObjectID).
func IsValidObjectID(id string) bool {
	id = strings.TrimSpace(id)
	if len(id) != 24 {
		return false
	}
	for _, r := range id {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}

// IsValidSessionType accepts the supported QR session types.
func IsValidSessionType(t string) bool {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "attendance", "event", "access":
		return true
	}
	return false
}

// IsValidOrgCode accepts short join codes: letters, digits, and hyphens,
// 3 to 32 characters.
func IsValidOrgCode(code string) bool {
	code = strings.TrimSpace(code)
	if len(code) < 3 || len(code) > 32 {
		return false
	}
	for _, r := range code {
		if !isAlnum(r) && r != '-' {
			return false
		}
	}
	return true
}
