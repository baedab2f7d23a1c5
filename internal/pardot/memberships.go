// internal/pardot/memberships.go
package pardot

import (
	"context"
	"net/url"
)

// GetListMembershipByListIDAndProspectID is a single-record v4 lookup. An
// unknown list surfaces as the platform's "Invalid ID" error, an unknown
// prospect as "Invalid prospect email address"; the step layer tells them
// apart by message.
func (c *Client) GetListMembershipByListIDAndProspectID(ctx context.Context, listID, prospectID, businessUnitID string) (map[string]any, error) {
	path := "/api/listMembership/version/4/do/read/list_id/" + url.PathEscape(listID) +
		"/prospect_id/" + url.PathEscape(prospectID)
	doc, err := c.do(ctx, "GET", path, nil, nil, businessUnitID)
	if err != nil {
		return nil, err
	}
	membership := asRecord(doc["list_membership"])
	if membership == nil {
		return nil, classify(codeInvalidID, "Invalid ID", "")
	}
	return membership, nil
}

// GetListMembershipsByListID fetches one page of v5 list memberships. Callers
// keep fetching while NextPageToken is non-empty; pages are awaited
// sequentially to preserve cursor ordering.
func (c *Client) GetListMembershipsByListID(ctx context.Context, listID, businessUnitID string, fields []string, nextPageToken string) (*Page, error) {
	q := url.Values{
		"listId": []string{listID},
		"fields": []string{fieldsParam(fields)},
	}
	if nextPageToken != "" {
		q.Set("nextPageToken", nextPageToken)
	}
	doc, err := c.do(ctx, "GET", "/api/v5/objects/list-memberships", q, nil, businessUnitID)
	if err != nil {
		return nil, err
	}
	return page(doc), nil
}
