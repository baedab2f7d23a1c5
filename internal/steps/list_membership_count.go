// internal/steps/list_membership_count.go
package steps

import (
	"context"

	"pardotcog/internal/pardot"
	"pardotcog/pkg/cog"
)

// ListMembershipCount counts the members of a named list, walking the
// membership cursor page by page.
type ListMembershipCount struct {
	lists       pardot.ListOps
	memberships pardot.ListMembershipOps
	units       BusinessUnitResolver
}

func (s *ListMembershipCount) Definition() cog.Definition {
	return cog.Definition{
		ID:         "ListMembershipCount",
		Name:       "Count a Pardot List Membership",
		Expression: "check the number of members from pardot list (?<listName>.+)",
		Type:       cog.StepValidation,
		Fields: append([]cog.FieldDef{{
			Key:         "listName",
			Type:        cog.FieldString,
			Description: "Name of the List",
		}}, businessUnitFields...),
		Records: []cog.RecordDef{{
			ID: "listMember",
			Fields: []cog.FieldDef{
				{Key: "listId", Type: cog.FieldString, Description: "List's Pardot ID"},
				{Key: "listMemberCount", Type: cog.FieldNumeric, Description: "List's Member Count"},
			},
		}},
	}
}

func (s *ListMembershipCount) Execute(ctx context.Context, req cog.Request) cog.Response {
	listName := req.String("listName")

	unitID, unitName, ok := resolveUnit(s.units, req)
	if !ok {
		return fail("No list found with name %s in Business Unit %s", []any{listName, unitName})
	}

	lists, err := s.lists.GetListByName(ctx, listName, unitID, []string{"id"})
	if err != nil {
		if invalidTenant(err) {
			return fail("No list found with name %s in Business Unit %s", []any{listName, unitName})
		}
		return errorOut("There was an error while checking list member count: %s", []any{err.Error()})
	}
	if lists == nil || len(lists.Values) == 0 {
		return errorOut("List with name %s does not exist", []any{listName})
	}
	listID := stringifyValue(lists.Values[0]["id"])

	// Pages are awaited one at a time; the cursor orders them.
	count := 0
	token := ""
	for {
		page, err := s.memberships.GetListMembershipsByListID(ctx, listID, unitID, []string{"id"}, token)
		if err != nil {
			return errorOut("There was an error while checking list member count: %s", []any{err.Error()})
		}
		count += len(page.Values)
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	record := map[string]any{"listId": listID, "listMemberCount": count}
	records := orderedRecords("listMember", "Checked List Member Count", record, req.StepOrder)
	return pass("List %s has %d members", []any{listName, count}, records...)
}
