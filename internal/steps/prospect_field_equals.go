// internal/steps/prospect_field_equals.go
package steps

import (
	"context"
	"errors"
	"strings"

	"pardotcog/internal/check"
	"pardotcog/internal/pardot"
	"pardotcog/pkg/cog"
)

// ProspectFieldEquals checks one field on a prospect against an expectation.
type ProspectFieldEquals struct {
	ops   pardot.ProspectOps
	units BusinessUnitResolver
}

func (s *ProspectFieldEquals) Definition() cog.Definition {
	return cog.Definition{
		ID:         "ProspectFieldEquals",
		Name:       "Check a field on a Pardot Prospect",
		Expression: "the (?<field>[a-zA-Z0-9_]+) field on pardot prospect (?<email>.+) should (?<operator>" + operatorAlternation + ") ?(?<expectedValue>.+)?",
		Type:       cog.StepValidation,
		Fields: append([]cog.FieldDef{{
			Key:         "email",
			Type:        cog.FieldEmail,
			Description: "Prospect's email address",
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
			ID:            "prospect",
			Fields:        prospectRecordFields,
			DynamicFields: true,
		}},
	}
}

func (s *ProspectFieldEquals) Execute(ctx context.Context, req cog.Request) cog.Response {
	email := req.String("email")
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
		return errorOut("There was a problem checking the Prospect: %s", []any{err.Error()})
	}

	records := orderedRecords("prospect", "Checked Prospect", prospect, req.StepOrder)

	actual, found := check.LookupField(prospect, field)
	if !found {
		return fail("The %s field does not exist on Prospect %s", []any{field, email}, records...)
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

// operatorAlternation orders longer operator spellings first so the
// expression's named group is never clipped by a shorter prefix.
const operatorAlternation = "be set|not be set|be less than|be greater than|be one of|be|contain|not be one of|not be|not contain"

// assertionError maps engine misconfiguration to an ERROR outcome; these are
// never coerced into failures.
func assertionError(err error) cog.Response {
	var unknown *check.UnknownOperatorError
	if errors.As(err, &unknown) {
		return errorOut("%s Please provide one of: %s", []any{unknown.Error(), strings.Join(check.Operators, ", ")})
	}
	var operand *check.InvalidOperandError
	if errors.As(err, &operand) {
		return errorOut("There was an error checking the field: %s", []any{operand.Error()})
	}
	return errorOut("There was an error evaluating the check: %s", []any{err.Error()})
}
