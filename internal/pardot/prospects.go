// internal/pardot/prospects.go
package pardot

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// CreateProspect posts the field map as creation parameters. The email field
// is the create key and must be present.
func (c *Client) CreateProspect(ctx context.Context, fields map[string]any, businessUnitID string) (map[string]any, error) {
	email, _ := fields["email"].(string)
	if email == "" {
		return nil, &PlatformError{Kind: KindUnknown, Message: "an email address is required to create a prospect"}
	}
	form := url.Values{}
	for k, v := range fields {
		if k == "email" {
			continue
		}
		form.Set(k, fmt.Sprintf("%v", v))
	}
	doc, err := c.do(ctx, "POST", "/api/prospect/version/4/do/create/email/"+url.PathEscape(email), nil, form, businessUnitID)
	if err != nil {
		return nil, err
	}
	return asRecord(doc["prospect"]), nil
}

// DeleteProspectByEmail resolves the prospect by email first, then deletes by
// its numeric id. A missing prospect surfaces as the platform's own
// invalid-email error from the read, distinct from transport failures.
func (c *Client) DeleteProspectByEmail(ctx context.Context, email, businessUnitID string) error {
	prospect, err := c.GetProspectByEmail(ctx, email, businessUnitID)
	if err != nil {
		return err
	}
	id := fmt.Sprintf("%v", prospect["id"])
	_, err = c.do(ctx, "POST", "/api/prospect/version/4/do/delete/id/"+url.PathEscape(id), nil, url.Values{}, businessUnitID)
	return err
}

// GetProspectByEmail reads a prospect by email. Duplicate emails come back as
// a collection; the record with the most recent creation timestamp is the
// canonical one, ties broken by response order.
func (c *Client) GetProspectByEmail(ctx context.Context, email, businessUnitID string) (map[string]any, error) {
	doc, err := c.do(ctx, "GET", "/api/prospect/version/4/do/read/email/"+url.PathEscape(email), nil, nil, businessUnitID)
	if err != nil {
		return nil, err
	}
	prospects := asRecords(doc["prospect"])
	if len(prospects) == 0 {
		return nil, classify(codeInvalidProspect, "Invalid prospect email address", "")
	}
	return newestByCreation(prospects), nil
}

// GetProspectsByListID returns the list's prospect collection as-is; list
// context does not canonicalize.
func (c *Client) GetProspectsByListID(ctx context.Context, listID, businessUnitID string) ([]map[string]any, error) {
	doc, err := c.do(ctx, "GET", "/api/prospect/version/4/do/query",
		url.Values{"list_id": []string{listID}}, nil, businessUnitID)
	if err != nil {
		return nil, err
	}
	result := asRecord(doc["result"])
	if result == nil {
		return nil, nil
	}
	return asRecords(result["prospect"]), nil
}

// newestByCreation picks the record with the latest created_at. Records with
// unparseable timestamps keep their original position and lose ties.
func newestByCreation(records []map[string]any) map[string]any {
	best := records[0]
	bestAt, _ := createdAt(best)
	for _, r := range records[1:] {
		at, ok := createdAt(r)
		if ok && at.After(bestAt) {
			best = r
			bestAt = at
		}
	}
	return best
}

func createdAt(r map[string]any) (time.Time, bool) {
	s, _ := r["created_at"].(string)
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
