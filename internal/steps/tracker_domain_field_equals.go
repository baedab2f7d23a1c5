// internal/steps/tracker_domain_field_equals.go
package steps

import (
	"context"
	"strings"

	"pardotcog/internal/check"
	"pardotcog/internal/pardot"
	"pardotcog/pkg/cog"
)

// trackerDomainFieldSet is the v5 field list requested on every read.
var trackerDomainFieldSet = []string{
	"id", "domain", "isPrimary", "isDeleted", "defaultCampaignId",
	"httpsStatus", "sslStatus", "sslStatusDetails", "sslRequestedById",
	"validationStatus", "validatedAt", "vanityUrlStatus", "trackingCode",
	"createdAt", "updatedAt", "createdById", "updatedById",
}

// TrackerDomainFieldEquals checks one field on a tracker domain.
type TrackerDomainFieldEquals struct {
	ops   pardot.TrackerDomainOps
	units BusinessUnitResolver
}

func (s *TrackerDomainFieldEquals) Definition() cog.Definition {
	return cog.Definition{
		ID:         "TrackerDomainFieldEquals",
		Name:       "Check a field on a Pardot Tracker Domain",
		Expression: "the (?<field>[a-zA-Z0-9_]+) field on pardot tracker domain (?<id>.+) should (?<operator>" + operatorAlternation + ") ?(?<expectedValue>.+)?",
		Type:       cog.StepValidation,
		Fields: append([]cog.FieldDef{{
			Key:         "id",
			Type:        cog.FieldString,
			Description: "Tracker Domain's id",
		}, {
			Key:         "field",
			Type:        cog.FieldString,
			Description: "Field name to check",
		}, {
			Key:         "operator",
			Type:        cog.FieldString,
			Description: "Check Logic (" + strings.Join(check.Operators, ", ") + ")",
			Optional:    true,
		}, {
			Key:         "expectedValue",
			Type:        cog.FieldAnyScalar,
			Description: "Expected field value",
			Optional:    true,
		}}, businessUnitFields...),
		Records: []cog.RecordDef{{
			ID: "trackerDomain",
			Fields: []cog.FieldDef{
				{Key: "id", Type: cog.FieldString, Description: "Tracker Domain's Pardot ID"},
				{Key: "domain", Type: cog.FieldString, Description: "Tracker Domain's Domain"},
				{Key: "validationStatus", Type: cog.FieldString, Description: "Tracker Domain's Validation Status"},
				{Key: "sslStatus", Type: cog.FieldString, Description: "Tracker Domain's SSL Status"},
				{Key: "httpsStatus", Type: cog.FieldString, Description: "Tracker Domain's HTTPS Status"},
			},
			DynamicFields: true,
		}},
	}
}

func (s *TrackerDomainFieldEquals) Execute(ctx context.Context, req cog.Request) cog.Response {
	id := stringify(req, "id")
	field := req.String("field")
	operator := req.String("operator")
	if operator == "" {
		operator = "be"
	}
	expected, hasExpected := req.Value("expectedValue")

	if !hasExpected && check.RequiresExpected(operator) {
		return errorOut("The operator '%s' requires an expected value. Please provide one.", []any{operator})
	}

	unitID, unitName, ok := resolveUnit(s.units, req)
	if !ok {
		return fail("No Tracker Domain found with id %s in Business Unit %s", []any{id, unitName})
	}

	domain, err := s.ops.GetTrackerDomainByID(ctx, id, trackerDomainFieldSet, unitID)
	if err != nil {
		switch {
		case invalidTenant(err), pardot.IsCode(err, 181):
			return fail("No Tracker Domain found with id %s in Business Unit %s", []any{id, unitName})
		case pardot.IsKind(err, pardot.KindNotFound):
			return fail("No Tracker Domain found with id %s", []any{id})
		}
		return errorOut("There was an error checking the Tracker Domain field: %s", []any{err.Error()})
	}

	records := orderedRecords("trackerDomain", "Tracker Domain", domain, req.StepOrder)

	actual, found := check.LookupField(domain, field)
	if !found {
		return fail("The %s field does not exist on Tracker Domain %s", []any{field, id}, records...)
	}

	result, err := check.Evaluate(operator, actual, expected, field, req.SuppressPII)
	if err != nil {
		return assertionError(err)
	}
	if result.Valid {
		return pass(result.Message, nil, records...)
	}
	return fail(result.Message, nil, records...)
}
