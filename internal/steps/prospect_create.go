// internal/steps/prospect_create.go
package steps

import (
	"context"

	"pardotcog/internal/pardot"
	"pardotcog/pkg/cog"
)

var prospectRecordFields = []cog.FieldDef{
	{Key: "id", Type: cog.FieldNumeric, Description: "Prospect's Pardot ID"},
	{Key: "email", Type: cog.FieldEmail, Description: "Prospect's Email Address"},
	{Key: "created_at", Type: cog.FieldDatetime, Description: "The date/time the Prospect was created"},
	{Key: "updated_at", Type: cog.FieldDatetime, Description: "The date/time the Prospect was updated"},
}

// ProspectCreate creates a prospect from a field map.
type ProspectCreate struct {
	ops   pardot.ProspectOps
	units BusinessUnitResolver
}

func (s *ProspectCreate) Definition() cog.Definition {
	return cog.Definition{
		ID:         "CreateProspect",
		Name:       "Create a Pardot Prospect",
		Expression: "create a pardot prospect",
		Type:       cog.StepAction,
		Fields: append([]cog.FieldDef{{
			Key:         "prospect",
			Type:        cog.FieldMap,
			Description: "A map of field names to field values",
		}}, businessUnitFields...),
		Records: []cog.RecordDef{{
			ID:            "prospect",
			Fields:        prospectRecordFields,
			DynamicFields: true,
		}},
	}
}

func (s *ProspectCreate) Execute(ctx context.Context, req cog.Request) cog.Response {
	prospect := req.Map("prospect")
	if _, ok := prospect["email"]; !ok {
		return fail("An email address must be provided in order to create a Pardot prospect", nil)
	}

	unitID, unitName, ok := resolveUnit(s.units, req)
	if !ok {
		return fail("No Business Unit found with name %s", []any{unitName})
	}

	created, err := s.ops.CreateProspect(ctx, prospect, unitID)
	if err != nil {
		if invalidTenant(err) {
			return fail("No Business Unit found with name %s", []any{unitName})
		}
		return errorOut("There was a problem creating the Prospect: %s", []any{err.Error()})
	}
	records := orderedRecords("prospect", "Created Prospect", created, req.StepOrder)
	return pass("Successfully created Prospect with ID %v", []any{created["id"]}, records...)
}
