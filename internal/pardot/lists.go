// internal/pardot/lists.go
package pardot

import (
	"context"
	"net/url"
)

// GetListByName looks a list up through the v5 objects API, restricted to the
// requested fields.
func (c *Client) GetListByName(ctx context.Context, name, businessUnitID string, fields []string) (*Page, error) {
	q := url.Values{
		"name":   []string{name},
		"fields": []string{fieldsParam(fields)},
	}
	doc, err := c.do(ctx, "GET", "/api/v5/objects/lists", q, nil, businessUnitID)
	if err != nil {
		return nil, err
	}
	return page(doc), nil
}
