// internal/pardot/buid.go
package pardot

import "strings"

// DefaultBusinessUnitName is the sentinel callers may pass to mean "use the
// session's default business unit". Matching is case-insensitive to tolerate
// both historical spellings ("Default" and "default").
const DefaultBusinessUnitName = "Default"

// DefaultBusinessUnit returns the session's default business unit id.
func (s *Session) DefaultBusinessUnit() string { return s.creds.BusinessUnitID }

// ResolveBusinessUnit maps a human-supplied business-unit name to its tenant
// id. Empty or sentinel names resolve to the default unit; anything else is a
// lookup into the named-override map. An unknown name yields ok=false rather
// than an empty header sneaking onto a request.
func (s *Session) ResolveBusinessUnit(name string) (id string, ok bool) {
	if name == "" || strings.EqualFold(name, DefaultBusinessUnitName) {
		return s.creds.BusinessUnitID, true
	}
	id, ok = s.creds.AdditionalBusinessUnits[name]
	if ok && id == "" {
		return "", false
	}
	return id, ok
}
