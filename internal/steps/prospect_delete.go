// internal/steps/prospect_delete.go
package steps

import (
	"context"

	"pardotcog/internal/pardot"
	"pardotcog/pkg/cog"
)

// ProspectDelete deletes a prospect by email. Deleting an absent prospect is
// a failed assertion about world state, not a system fault.
type ProspectDelete struct {
	ops   pardot.ProspectOps
	units BusinessUnitResolver
}

func (s *ProspectDelete) Definition() cog.Definition {
	return cog.Definition{
		ID:         "DeleteProspect",
		Name:       "Delete a Pardot Prospect",
		Expression: "delete the (?<email>.+) pardot prospect",
		Type:       cog.StepAction,
		Fields: append([]cog.FieldDef{{
			Key:         "email",
			Type:        cog.FieldEmail,
			Description: "Email address",
		}}, businessUnitFields...),
	}
}

func (s *ProspectDelete) Execute(ctx context.Context, req cog.Request) cog.Response {
	email := req.String("email")

	unitID, unitName, ok := resolveUnit(s.units, req)
	if !ok {
		return fail("No Prospect found with email %s in Business Unit %s", []any{email, unitName})
	}

	if err := s.ops.DeleteProspectByEmail(ctx, email, unitID); err != nil {
		switch {
		case invalidTenant(err):
			return fail("No Prospect found with email %s in Business Unit %s", []any{email, unitName})
		case pardot.IsKind(err, pardot.KindNotFound):
			return fail("No prospect found with email %s", []any{email})
		}
		return errorOut("There was a problem deleting the Prospect: %s", []any{err.Error()})
	}
	return pass("Successfully deleted Prospect: %s", []any{email})
}
