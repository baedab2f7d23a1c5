// internal/steps/email_send_sample.go
package steps

import (
	"context"

	"pardotcog/internal/pardot"
	"pardotcog/pkg/cog"
)

// SendSampleEmail sends a sample of an email template to a prospect.
type SendSampleEmail struct {
	ops   pardot.EmailOps
	units BusinessUnitResolver
}

func (s *SendSampleEmail) Definition() cog.Definition {
	return cog.Definition{
		ID:         "SendSampleEmail",
		Name:       "Send Pardot Prospect Sample Email",
		Expression: `send a sample email to pardot prospect (?<toEmail>.+@.+\..+)`,
		Type:       cog.StepAction,
		Fields: append([]cog.FieldDef{{
			Key:         "campaignId",
			Type:        cog.FieldString,
			Description: "The ID of the Pardot campaign to associate the email with",
		}, {
			Key:         "emailTemplateId",
			Type:        cog.FieldString,
			Description: "The Pardot ID of the email template",
		}, {
			Key:         "toEmail",
			Type:        cog.FieldEmail,
			Description: "The email address of the prospect you're sending the email to",
		}}, businessUnitFields...),
		Records: []cog.RecordDef{{
			ID: "email",
			Fields: []cog.FieldDef{
				{Key: "id", Type: cog.FieldNumeric, Description: "Email's Pardot ID"},
				{Key: "name", Type: cog.FieldString, Description: "Email's Name"},
				{Key: "subject", Type: cog.FieldString, Description: "Email's Subject"},
				{Key: "message", Type: cog.FieldString, Description: "Email's Message"},
				{Key: "created_at", Type: cog.FieldDatetime, Description: "The date/time the Email was created"},
			},
			DynamicFields: true,
		}},
	}
}

func (s *SendSampleEmail) Execute(ctx context.Context, req cog.Request) cog.Response {
	campaignID := stringify(req, "campaignId")
	templateID := stringify(req, "emailTemplateId")
	toEmail := req.String("toEmail")

	unitID, unitName, ok := resolveUnit(s.units, req)
	if !ok {
		return fail("No Business Unit found with name %s", []any{unitName})
	}

	email, err := s.ops.SendSampleEmail(ctx, campaignID, templateID, toEmail, unitID)
	if err != nil {
		if invalidTenant(err) {
			return fail("No Business Unit found with name %s", []any{unitName})
		}
		return errorOut("There was an error sending the Pardot email with id %s: %s", []any{templateID, err.Error()})
	}

	// The platform nests the message body; flatten it to text for the record.
	if msg, ok := email["message"].(map[string]any); ok {
		if text, ok := msg["text"]; ok {
			email["message"] = text
		}
	}
	records := orderedRecords("email", "Sent Email", email, req.StepOrder)
	return pass("Successfully sent Pardot email with id %s to %s", []any{templateID, toEmail}, records...)
}
