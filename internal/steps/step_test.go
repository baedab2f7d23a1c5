// internal/steps/step_test.go
package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pardotcog/internal/pardot"
	"pardotcog/pkg/cog"
)

// stubOps implements the full operation set through optional function fields;
// calling an unconfigured operation fails the test via nil dereference.
type stubOps struct {
	createProspect        func(ctx context.Context, fields map[string]any, bu string) (map[string]any, error)
	deleteProspectByEmail func(ctx context.Context, email, bu string) error
	getProspectByEmail    func(ctx context.Context, email, bu string) (map[string]any, error)
	getProspectsByListID  func(ctx context.Context, listID, bu string) ([]map[string]any, error)
	getListByName         func(ctx context.Context, name, bu string, fields []string) (*pardot.Page, error)
	getMembership         func(ctx context.Context, listID, prospectID, bu string) (map[string]any, error)
	getMemberships        func(ctx context.Context, listID, bu string, fields []string, token string) (*pardot.Page, error)
	sendSampleEmail       func(ctx context.Context, campaignID, templateID, email, bu string) (map[string]any, error)
	getEmail              func(ctx context.Context, emailID, bu string) (map[string]any, error)
	getTrackerDomainByID  func(ctx context.Context, id string, fields []string, bu string) (map[string]any, error)
}

func (s *stubOps) CreateProspect(ctx context.Context, fields map[string]any, bu string) (map[string]any, error) {
	return s.createProspect(ctx, fields, bu)
}
func (s *stubOps) DeleteProspectByEmail(ctx context.Context, email, bu string) error {
	return s.deleteProspectByEmail(ctx, email, bu)
}
func (s *stubOps) GetProspectByEmail(ctx context.Context, email, bu string) (map[string]any, error) {
	return s.getProspectByEmail(ctx, email, bu)
}
func (s *stubOps) GetProspectsByListID(ctx context.Context, listID, bu string) ([]map[string]any, error) {
	return s.getProspectsByListID(ctx, listID, bu)
}
func (s *stubOps) GetListByName(ctx context.Context, name, bu string, fields []string) (*pardot.Page, error) {
	return s.getListByName(ctx, name, bu, fields)
}
func (s *stubOps) GetListMembershipByListIDAndProspectID(ctx context.Context, listID, prospectID, bu string) (map[string]any, error) {
	return s.getMembership(ctx, listID, prospectID, bu)
}
func (s *stubOps) GetListMembershipsByListID(ctx context.Context, listID, bu string, fields []string, token string) (*pardot.Page, error) {
	return s.getMemberships(ctx, listID, bu, fields, token)
}
func (s *stubOps) SendSampleEmail(ctx context.Context, campaignID, templateID, email, bu string) (map[string]any, error) {
	return s.sendSampleEmail(ctx, campaignID, templateID, email, bu)
}
func (s *stubOps) GetEmail(ctx context.Context, emailID, bu string) (map[string]any, error) {
	return s.getEmail(ctx, emailID, bu)
}
func (s *stubOps) GetTrackerDomainByID(ctx context.Context, id string, fields []string, bu string) (map[string]any, error) {
	return s.getTrackerDomainByID(ctx, id, fields, bu)
}

var _ pardot.Operations = (*stubOps)(nil)

// stubUnits resolves "Default"/"" to bu-default plus one named unit.
type stubUnits struct{}

func (stubUnits) DefaultBusinessUnit() string { return "bu-default" }
func (stubUnits) ResolveBusinessUnit(name string) (string, bool) {
	switch name {
	case "", "Default", "default":
		return "bu-default", true
	case "EMEA":
		return "bu-emea", true
	}
	return "", false
}

func notFoundErr(msg string) error {
	return &pardot.PlatformError{Kind: pardot.KindNotFound, Message: msg}
}

func invalidTenantErr() error {
	return &pardot.PlatformError{Kind: pardot.KindInvalidTenant, Message: `invalid value "" for header "Pardot-Business-Unit-Id"`}
}

func req(data map[string]any) cog.Request {
	return cog.Request{Data: data}
}

func TestRegistryRegistersEveryStep(t *testing.T) {
	r := NewRegistry(&stubOps{}, stubUnits{})
	defs := r.Definitions()
	assert.Len(t, defs, 8)

	for _, id := range []string{
		"CreateProspect", "DeleteProspect", "DiscoverProspect", "ProspectFieldEquals",
		"CheckListMembership", "ListMembershipCount", "SendSampleEmail", "TrackerDomainFieldEquals",
	} {
		_, ok := r.Get(id)
		assert.True(t, ok, "missing step %s", id)
	}
	_, ok := r.Get("NoSuchStep")
	assert.False(t, ok)
}

func TestOrderedRecords(t *testing.T) {
	kv := map[string]any{"id": float64(1)}
	recs := orderedRecords("prospect", "Created Prospect", kv, 3)
	require.Len(t, recs, 2)
	assert.Equal(t, "prospect", recs[0].ID)
	assert.Equal(t, "prospect.3", recs[1].ID)
	assert.Equal(t, "Created Prospect from Step 3", recs[1].Name)
	assert.Equal(t, kv, recs[1].KeyValue)

	// Unset step order counts as the first step.
	recs = orderedRecords("prospect", "Created Prospect", kv, 0)
	assert.Equal(t, "prospect.1", recs[1].ID)
}

func TestStringifyValue(t *testing.T) {
	assert.Equal(t, "42", stringifyValue(float64(42)))
	assert.Equal(t, "42", stringifyValue("42"))
	assert.Equal(t, "", stringifyValue(nil))
	assert.Equal(t, "1.5", stringifyValue(float64(1.5)))
}

func TestTruthy(t *testing.T) {
	assert.True(t, truthy(true))
	assert.True(t, truthy(float64(1)))
	assert.True(t, truthy("1"))
	assert.True(t, truthy("true"))
	assert.False(t, truthy(false))
	assert.False(t, truthy("0"))
	assert.False(t, truthy(nil))
}
