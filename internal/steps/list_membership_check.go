// internal/steps/list_membership_check.go
package steps

import (
	"context"

	"pardotcog/internal/pardot"
	"pardotcog/pkg/cog"
)

// ListMembershipCheck asserts a prospect's membership / opt state on a list.
type ListMembershipCheck struct {
	prospects   pardot.ProspectOps
	memberships pardot.ListMembershipOps
	units       BusinessUnitResolver
}

func (s *ListMembershipCheck) Definition() cog.Definition {
	return cog.Definition{
		ID:         "CheckListMembership",
		Name:       "Check Pardot List Membership",
		Expression: "the (?<email>.+) pardot prospect should (?<optInOut>be opted in to|be opted out of|not be a member of) list (?<listId>.+)",
		Type:       cog.StepValidation,
		Fields: append([]cog.FieldDef{{
			Key:         "email",
			Type:        cog.FieldEmail,
			Description: "The Email Address of the Prospect",
		}, {
			Key:         "optInOut",
			Type:        cog.FieldString,
			Description: `One of "be opted in to", "be opted out of", or "not be a member of"`,
		}, {
			Key:         "listId",
			Type:        cog.FieldNumeric,
			Description: "The ID of the Pardot List",
		}}, businessUnitFields...),
		Records: []cog.RecordDef{{
			ID: "listMembership",
			Fields: []cog.FieldDef{
				{Key: "id", Type: cog.FieldNumeric, Description: "List Membership's Pardot ID"},
				{Key: "list_id", Type: cog.FieldNumeric, Description: "List's Pardot ID"},
				{Key: "prospect_id", Type: cog.FieldNumeric, Description: "Prospect's Pardot ID"},
				{Key: "opted_out", Type: cog.FieldBoolean, Description: "Opted Out"},
				{Key: "created_at", Type: cog.FieldDatetime, Description: "The date created"},
				{Key: "updated_at", Type: cog.FieldDatetime, Description: "The date updated"},
			},
		}, {
			ID:            "prospect",
			Fields:        prospectRecordFields,
			DynamicFields: true,
		}},
	}
}

func (s *ListMembershipCheck) Execute(ctx context.Context, req cog.Request) cog.Response {
	email := req.String("email")
	optInOut := req.String("optInOut")
	listID := stringify(req, "listId")

	unitID, unitName, ok := resolveUnit(s.units, req)
	if !ok {
		return fail("No Prospect found with email %s in Business Unit %s", []any{email, unitName})
	}

	prospect, err := s.prospects.GetProspectByEmail(ctx, email, unitID)
	if err != nil {
		switch {
		case invalidTenant(err):
			return fail("No Prospect found with email %s in Business Unit %s", []any{email, unitName})
		case pardot.IsKind(err, pardot.KindNotFound):
			return fail("No prospect found with email %s", []any{email})
		}
		return errorOut("There was a problem checking list membership: %s", []any{err.Error()})
	}
	prospectRecord := keyValue("prospect", "Checked Prospect", prospect)

	membership, err := s.memberships.GetListMembershipByListIDAndProspectID(ctx, listID, stringifyValue(prospect["id"]), unitID)
	if err != nil {
		// "Invalid ID" covers both an unknown list and a prospect that was
		// never a member of it.
		if pardot.IsKind(err, pardot.KindNotFound) {
			if optInOut == "not be a member of" {
				return pass("Prospect %s is not a member of list %s, as expected.", []any{email, listID}, prospectRecord)
			}
			return fail("No list found with ID %s", []any{listID}, prospectRecord)
		}
		return errorOut("There was a problem checking list membership: %s", []any{err.Error()})
	}

	membershipRecord := keyValue("listMembership", "List Membership", membership)
	optedOut := truthy(membership["opted_out"])

	switch optInOut {
	case "not be a member of":
		return fail("Expected prospect %s to not be a member of list %s, but a list membership was found",
			[]any{email, listID}, prospectRecord, membershipRecord)
	case "be opted in to":
		if optedOut {
			return fail("Expected prospect %s to be opted in to list %s, but the prospect is opted out.",
				[]any{email, listID}, prospectRecord, membershipRecord)
		}
		return pass("Prospect %s is opted in to list %s, as expected.",
			[]any{email, listID}, prospectRecord, membershipRecord)
	case "be opted out of":
		if optedOut {
			return pass("Prospect %s is opted out of list %s, as expected.",
				[]any{email, listID}, prospectRecord, membershipRecord)
		}
		return fail("Expected prospect %s to be opted out of list %s, but the prospect is opted in.",
			[]any{email, listID}, prospectRecord, membershipRecord)
	}
	return errorOut(`%s is not a valid check; use one of "be opted in to", "be opted out of", or "not be a member of"`, []any{optInOut})
}
