// internal/pardot/emails.go
package pardot

import (
	"context"
	"net/url"
)

// SendSampleEmail triggers a one-off send of a template to a prospect. The
// platform sometimes reports failures inside an HTTP 200 body; those surface
// through the same classified error path as transport failures.
func (c *Client) SendSampleEmail(ctx context.Context, campaignID, templateID, prospectEmail, businessUnitID string) (map[string]any, error) {
	q := url.Values{
		"campaign_id":       []string{campaignID},
		"email_template_id": []string{templateID},
	}
	doc, err := c.do(ctx, "POST", "/api/email/version/4/do/send/prospect_email/"+url.PathEscape(prospectEmail), q, url.Values{}, businessUnitID)
	if err != nil {
		return nil, err
	}
	return asRecord(doc["email"]), nil
}

// GetEmail reads one sent email by id.
func (c *Client) GetEmail(ctx context.Context, emailID, businessUnitID string) (map[string]any, error) {
	doc, err := c.do(ctx, "GET", "/api/email/version/4/do/read/id/"+url.PathEscape(emailID), nil, nil, businessUnitID)
	if err != nil {
		return nil, err
	}
	return asRecord(doc["email"]), nil
}
