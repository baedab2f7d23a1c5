// internal/steps/prospect_discover.go
package steps

import (
	"context"

	"pardotcog/internal/pardot"
	"pardotcog/pkg/cog"
)

// ProspectDiscover fetches a prospect and surfaces every field it carries so
// later steps can reference them.
type ProspectDiscover struct {
	ops   pardot.ProspectOps
	units BusinessUnitResolver
}

func (s *ProspectDiscover) Definition() cog.Definition {
	return cog.Definition{
		ID:         "DiscoverProspect",
		Name:       "Discover fields on a Pardot Prospect",
		Expression: "discover fields on pardot prospect (?<email>.+)",
		Type:       cog.StepAction,
		Fields: append([]cog.FieldDef{{
			Key:         "email",
			Type:        cog.FieldEmail,
			Description: "Prospect's email address",
		}}, businessUnitFields...),
		Records: []cog.RecordDef{{
			ID:            "discoverProspect",
			Fields:        prospectRecordFields,
			DynamicFields: true,
		}},
	}
}

func (s *ProspectDiscover) Execute(ctx context.Context, req cog.Request) cog.Response {
	email := req.String("email")

	unitID, unitName, ok := resolveUnit(s.units, req)
	if !ok {
		return fail("No Prospect found with email %s in Business Unit %s", []any{email, unitName})
	}

	prospect, err := s.ops.GetProspectByEmail(ctx, email, unitID)
	if err != nil {
		switch {
		case invalidTenant(err):
			return fail("No Prospect found with email %s in Business Unit %s", []any{email, unitName})
		case pardot.IsKind(err, pardot.KindNotFound):
			return fail("No prospect found with email %s", []any{email})
		}
		return errorOut("There was an error discovering the prospect fields: %s", []any{err.Error()})
	}
	records := orderedRecords("discoverProspect", "Discovered Prospect", prospect, req.StepOrder)
	return pass("Successfully discovered fields on prospect", nil, records...)
}
