// internal/pardot/errors.go
package pardot

import (
	"errors"
	"fmt"
)

// ErrorKind buckets platform failures so the step layer can pattern-match
// without re-parsing payloads.
type ErrorKind string

const (
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindRateLimited        ErrorKind = "rate_limited"
	KindDailyLimit         ErrorKind = "daily_limit"
	KindNotFound           ErrorKind = "not_found"
	KindInvalidTenant      ErrorKind = "invalid_tenant"
	KindUnknown            ErrorKind = "unknown"
)

// Platform error codes observed across API versions.
const (
	codeLoginFailed        = 15
	codeConcurrentRequests = 66
	codeInvalidProspect    = 4
	codeInvalidID          = 25
	codeDailyLimit         = 122
	codeObjectNotFound     = 109
	codeWrongBusinessUnit  = 181
)

// PlatformError is the one structured error shape every domain operation
// returns. Raw preserves the platform payload for diagnostics.
type PlatformError struct {
	Kind    ErrorKind
	Code    int
	Message string
	Raw     string
}

func (e *PlatformError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("pardot: %s (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("pardot: %s: %s", e.Kind, e.Message)
}

// AsPlatform unwraps err into a PlatformError when one is present.
func AsPlatform(err error) (*PlatformError, bool) {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsKind reports whether err is a PlatformError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	pe, ok := AsPlatform(err)
	return ok && pe.Kind == kind
}

// IsCode reports whether err carries the given platform error code.
func IsCode(err error, code int) bool {
	pe, ok := AsPlatform(err)
	return ok && pe.Code == code
}

func kindForCode(code int) ErrorKind {
	switch code {
	case codeLoginFailed:
		return KindInvalidCredentials
	case codeConcurrentRequests:
		return KindRateLimited
	case codeDailyLimit:
		return KindDailyLimit
	case codeInvalidProspect, codeInvalidID, codeObjectNotFound, codeWrongBusinessUnit:
		return KindNotFound
	}
	return KindUnknown
}

// classify normalizes a platform error payload (v4 "err"/err_code or v5
// code/message) into a PlatformError.
func classify(code int, message, raw string) *PlatformError {
	kind := kindForCode(code)
	if kind == KindUnknown {
		switch message {
		case "Invalid ID", "Invalid prospect email address":
			kind = KindNotFound
		case "Login failed":
			kind = KindInvalidCredentials
		}
	}
	return &PlatformError{Kind: kind, Code: code, Message: message, Raw: raw}
}

// errMissingBusinessUnit mirrors the platform's header-validation text so the
// step layer can translate it into a failure naming the supplied unit.
func errMissingBusinessUnit() *PlatformError {
	return &PlatformError{
		Kind:    KindInvalidTenant,
		Message: `invalid value "" for header "Pardot-Business-Unit-Id"`,
	}
}
