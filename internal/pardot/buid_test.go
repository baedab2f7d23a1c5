// internal/pardot/buid_test.go
package pardot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func unitSession() *Session {
	return &Session{creds: Credentials{
		BusinessUnitID: "0Uv000000000001",
		AdditionalBusinessUnits: map[string]string{
			"EMEA":  "0Uv000000000002",
			"Empty": "",
		},
	}}
}

func TestResolveBusinessUnit(t *testing.T) {
	s := unitSession()

	cases := []struct {
		name   string
		wantID string
		wantOK bool
	}{
		{"", "0Uv000000000001", true},
		{"Default", "0Uv000000000001", true},
		{"default", "0Uv000000000001", true},
		{"DEFAULT", "0Uv000000000001", true},
		{"EMEA", "0Uv000000000002", true},
		{"APAC", "", false},
		{"Empty", "", false},
	}
	for _, tc := range cases {
		id, ok := s.ResolveBusinessUnit(tc.name)
		assert.Equal(t, tc.wantOK, ok, "name=%q", tc.name)
		assert.Equal(t, tc.wantID, id, "name=%q", tc.name)
	}
}

func TestDefaultBusinessUnit(t *testing.T) {
	assert.Equal(t, "0Uv000000000001", unitSession().DefaultBusinessUnit())
}
