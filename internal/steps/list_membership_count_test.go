// internal/steps/list_membership_count_test.go
package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pardotcog/internal/pardot"
	"pardotcog/pkg/cog"
)

func TestMembershipCountWalksAllPages(t *testing.T) {
	pages := map[string]*pardot.Page{
		"": {
			Values:        []map[string]any{{"id": float64(1)}, {"id": float64(2)}},
			NextPageToken: "cursor-1",
		},
		"cursor-1": {
			Values:        []map[string]any{{"id": float64(3)}, {"id": float64(4)}},
			NextPageToken: "cursor-2",
		},
		"cursor-2": {
			Values: []map[string]any{{"id": float64(5)}},
		},
	}
	var tokens []string
	ops := &stubOps{
		getListByName: func(_ context.Context, name, _ string, fields []string) (*pardot.Page, error) {
			assert.Equal(t, []string{"id"}, fields)
			return &pardot.Page{Values: []map[string]any{{"id": float64(42), "name": name}}}, nil
		},
		getMemberships: func(_ context.Context, listID, _ string, _ []string, token string) (*pardot.Page, error) {
			assert.Equal(t, "42", listID)
			tokens = append(tokens, token)
			return pages[token], nil
		},
	}
	step := &ListMembershipCount{lists: ops, memberships: ops, units: stubUnits{}}

	resp := step.Execute(context.Background(), req(map[string]any{"listName": "Newsletter"}))
	assert.Equal(t, cog.OutcomePassed, resp.Outcome)
	assert.Equal(t, "List Newsletter has 5 members", resp.Message)
	assert.Equal(t, []string{"", "cursor-1", "cursor-2"}, tokens)

	require.Len(t, resp.Records, 2)
	assert.Equal(t, "listMember", resp.Records[0].ID)
	assert.Equal(t, "42", resp.Records[0].KeyValue["listId"])
	assert.Equal(t, 5, resp.Records[0].KeyValue["listMemberCount"])
}

func TestMembershipCountUnknownList(t *testing.T) {
	ops := &stubOps{
		getListByName: func(context.Context, string, string, []string) (*pardot.Page, error) {
			return &pardot.Page{}, nil
		},
	}
	step := &ListMembershipCount{lists: ops, memberships: ops, units: stubUnits{}}

	resp := step.Execute(context.Background(), req(map[string]any{"listName": "Ghost"}))
	assert.Equal(t, cog.OutcomeError, resp.Outcome)
	assert.Equal(t, "List with name Ghost does not exist", resp.Message)
}

func TestMembershipCountPageFaultErrors(t *testing.T) {
	ops := &stubOps{
		getListByName: func(context.Context, string, string, []string) (*pardot.Page, error) {
			return &pardot.Page{Values: []map[string]any{{"id": float64(42)}}}, nil
		},
		getMemberships: func(context.Context, string, string, []string, string) (*pardot.Page, error) {
			return nil, &pardot.PlatformError{Kind: pardot.KindRateLimited, Code: 66, Message: "Too many concurrent requests"}
		},
	}
	step := &ListMembershipCount{lists: ops, memberships: ops, units: stubUnits{}}

	resp := step.Execute(context.Background(), req(map[string]any{"listName": "Newsletter"}))
	assert.Equal(t, cog.OutcomeError, resp.Outcome)
	assert.Contains(t, resp.Message, "There was an error while checking list member count")
}
