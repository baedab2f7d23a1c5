// internal/steps/email_send_sample_test.go
package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pardotcog/pkg/cog"
)

func TestSendSampleEmailSuccess(t *testing.T) {
	var gotCampaign, gotTemplate, gotEmail string
	ops := &stubOps{
		sendSampleEmail: func(_ context.Context, campaignID, templateID, email, _ string) (map[string]any, error) {
			gotCampaign, gotTemplate, gotEmail = campaignID, templateID, email
			return map[string]any{
				"id":      float64(31),
				"subject": "Hello",
				"message": map[string]any{"text": "body text", "html": "<p>body</p>"},
			}, nil
		},
	}
	step := &SendSampleEmail{ops: ops, units: stubUnits{}}

	resp := step.Execute(context.Background(), req(map[string]any{
		"campaignId":      float64(7),
		"emailTemplateId": "55",
		"toEmail":         "p@example.com",
	}))
	assert.Equal(t, cog.OutcomePassed, resp.Outcome)
	assert.Equal(t, "Successfully sent Pardot email with id 55 to p@example.com", resp.Message)
	assert.Equal(t, "7", gotCampaign)
	assert.Equal(t, "55", gotTemplate)
	assert.Equal(t, "p@example.com", gotEmail)

	// The nested message body is flattened to its text variant.
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "body text", resp.Records[0].KeyValue["message"])
}

func TestSendSampleEmailPlatformFault(t *testing.T) {
	ops := &stubOps{
		sendSampleEmail: func(context.Context, string, string, string, string) (map[string]any, error) {
			return nil, notFoundErr("Invalid ID")
		},
	}
	step := &SendSampleEmail{ops: ops, units: stubUnits{}}

	resp := step.Execute(context.Background(), req(map[string]any{
		"campaignId":      "7",
		"emailTemplateId": "55",
		"toEmail":         "p@example.com",
	}))
	assert.Equal(t, cog.OutcomeError, resp.Outcome)
	assert.Contains(t, resp.Message, "There was an error sending the Pardot email with id 55")
}

func TestSendSampleEmailUnknownBusinessUnit(t *testing.T) {
	step := &SendSampleEmail{ops: &stubOps{}, units: stubUnits{}}
	resp := step.Execute(context.Background(), req(map[string]any{
		"campaignId":       "7",
		"emailTemplateId":  "55",
		"toEmail":          "p@example.com",
		"businessUnitName": "APAC",
	}))
	assert.Equal(t, cog.OutcomeFailed, resp.Outcome)
	assert.Equal(t, "No Business Unit found with name APAC", resp.Message)
}
