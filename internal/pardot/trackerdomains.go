// internal/pardot/trackerdomains.go
package pardot

import (
	"context"
	"net/url"
)

// GetTrackerDomainByID is a single-record v5 lookup keyed by id. Code 109
// means the id is unknown; code 181 means it exists outside the requested
// business unit.
func (c *Client) GetTrackerDomainByID(ctx context.Context, id string, fields []string, businessUnitID string) (map[string]any, error) {
	q := url.Values{"fields": []string{fieldsParam(fields)}}
	doc, err := c.do(ctx, "GET", "/api/v5/objects/tracker-domains/"+url.PathEscape(id), q, nil, businessUnitID)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
