// internal/pardot/client.go
package pardot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Capability interfaces. Steps depend on the narrowest one they need; the
// concrete Client implements them all by explicit composition rather than
// anything resembling the historical mixin copying.

type ProspectOps interface {
	CreateProspect(ctx context.Context, fields map[string]any, businessUnitID string) (map[string]any, error)
	DeleteProspectByEmail(ctx context.Context, email, businessUnitID string) error
	GetProspectByEmail(ctx context.Context, email, businessUnitID string) (map[string]any, error)
	GetProspectsByListID(ctx context.Context, listID, businessUnitID string) ([]map[string]any, error)
}

type ListOps interface {
	GetListByName(ctx context.Context, name, businessUnitID string, fields []string) (*Page, error)
}

type ListMembershipOps interface {
	GetListMembershipByListIDAndProspectID(ctx context.Context, listID, prospectID, businessUnitID string) (map[string]any, error)
	GetListMembershipsByListID(ctx context.Context, listID, businessUnitID string, fields []string, nextPageToken string) (*Page, error)
}

type EmailOps interface {
	SendSampleEmail(ctx context.Context, campaignID, templateID, prospectEmail, businessUnitID string) (map[string]any, error)
	GetEmail(ctx context.Context, emailID, businessUnitID string) (map[string]any, error)
}

type TrackerDomainOps interface {
	GetTrackerDomainByID(ctx context.Context, id string, fields []string, businessUnitID string) (map[string]any, error)
}

// Operations is the full domain operation set a step registry wires against.
type Operations interface {
	ProspectOps
	ListOps
	ListMembershipOps
	EmailOps
	TrackerDomainOps
}

// Page is one page of a v5 collection response. An empty NextPageToken means
// no more pages.
type Page struct {
	Values        []map[string]any
	NextPageToken string
}

// Client executes domain operations against one authenticated session.
// All fields are fixed at construction; nothing here mutates after that.
type Client struct {
	session *Session
	httpc   *http.Client
	retry   RetryPolicy
	log     *zap.SugaredLogger
	baseURL string
}

var _ Operations = (*Client)(nil)

// NewClient builds the operation set for a session. A nil httpc falls back to
// the session's transport so login and operations share connection state.
func NewClient(s *Session, retry RetryPolicy, httpc *http.Client, log *zap.SugaredLogger) *Client {
	if httpc == nil {
		httpc = s.httpc
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		session: s,
		httpc:   httpc,
		retry:   retry,
		log:     log,
		baseURL: s.PardotURL(),
	}
}

// Session exposes the underlying session for business-unit resolution.
func (c *Client) Session() *Session { return c.session }

// do performs one authenticated platform request through the retry policy and
// returns the decoded JSON document. Every request waits on session readiness
// and carries the resolved business-unit header; classification of platform
// error payloads happens here so callers see a single error shape.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, form url.Values, businessUnitID string) (map[string]any, error) {
	if businessUnitID == "" {
		return nil, errMissingBusinessUnit()
	}
	if err := c.session.Ready(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if query == nil {
		query = url.Values{}
	}
	query.Set("format", "json")
	u += "?" + query.Encode()

	var payload map[string]any
	err := c.retry.Attempt(ctx, func(ctx context.Context) error {
		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}
		req, err := http.NewRequestWithContext(ctx, method, u, body)
		if err != nil {
			return &PlatformError{Kind: KindUnknown, Message: err.Error()}
		}
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		c.session.authorize(req)
		req.Header.Set("Pardot-Business-Unit-Id", businessUnitID)

		resp, err := c.httpc.Do(req)
		if err != nil {
			return &PlatformError{Kind: KindUnknown, Message: err.Error()}
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return &PlatformError{Kind: KindUnknown, Message: err.Error()}
		}

		var doc map[string]any
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &doc); err != nil && resp.StatusCode < 400 {
				return &PlatformError{Kind: KindUnknown, Message: "response was not JSON: " + err.Error(), Raw: string(raw)}
			}
		}
		if pe := platformErrFromPayload(doc, resp.StatusCode); pe != nil {
			if pe.Raw == "" {
				pe.Raw = string(raw)
			}
			return pe
		}
		payload = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// platformErrFromPayload normalizes the platform's two error vocabularies:
// v4 ({"err": "...", "@attributes": {"err_code": N}}) and v5
// ({"code": N, "message": "..."}), falling back to the HTTP status.
func platformErrFromPayload(doc map[string]any, status int) *PlatformError {
	if doc != nil {
		if msg, ok := doc["err"].(string); ok && msg != "" {
			code := 0
			if attrs, ok := doc["@attributes"].(map[string]any); ok {
				code = intField(attrs, "err_code")
			}
			return classify(code, msg, "")
		}
		if code := intField(doc, "code"); code != 0 {
			if msg, ok := doc["message"].(string); ok || status >= 400 {
				return classify(code, msg, "")
			}
		}
	}
	if status >= 400 {
		kind := KindUnknown
		switch status {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = KindInvalidCredentials
		case http.StatusNotFound:
			kind = KindNotFound
		case http.StatusTooManyRequests:
			kind = KindRateLimited
		}
		return &PlatformError{Kind: kind, Message: http.StatusText(status)}
	}
	return nil
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return 0
}

// asRecord coerces a decoded JSON value into a key/value record.
func asRecord(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

// asRecords coerces a decoded JSON value into a record collection; a single
// object becomes a one-element collection.
func asRecords(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m := asRecord(item); m != nil {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		return []map[string]any{t}
	}
	return nil
}

// page decodes a v5 collection document.
func page(doc map[string]any) *Page {
	p := &Page{}
	if vs, ok := doc["values"].([]any); ok {
		p.Values = asRecords(vs)
	}
	if tok, ok := doc["nextPageToken"].(string); ok {
		p.NextPageToken = tok
	}
	return p
}

func fieldsParam(fields []string) string { return strings.Join(fields, ",") }
