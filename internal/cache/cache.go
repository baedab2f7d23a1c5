// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pardotcog/internal/pardot"
)

// KV is the minimal key-value surface the cache needs. The redis client
// satisfies it in production; tests use an in-memory map.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type redisKV struct{ cli *redis.Client }

// NewRedisKV adapts a redis client to the KV surface.
func NewRedisKV(cli *redis.Client) KV { return redisKV{cli: cli} }

func (r redisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.cli.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r redisKV) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.cli.SetEx(ctx, key, value, ttl).Err()
}

func (r redisKV) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.cli.Del(ctx, keys...).Err()
}

// Scope identifies one scenario run; cache entries never leak across runs.
type Scope struct {
	ScenarioID   string
	RequestorID  string
	ConnectionID string
}

func (s Scope) prefix() string { return s.ScenarioID + s.RequestorID + s.ConnectionID }

// entryTTL keeps entries a little longer than a typical step gap; any
// mutating call clears the run's entries before that anyway.
const entryTTL = 55 * time.Second

// Client is a read-through wrapper over the plain operation set. Prospect
// reads populate the cache; any mutating call invalidates everything written
// during the scenario run. Cache failures are logged and swallowed; the
// wrapped client is always the source of truth.
type Client struct {
	inner pardot.Operations
	kv    KV
	scope Scope
	log   *zap.SugaredLogger
}

var _ pardot.Operations = (*Client)(nil)

func New(inner pardot.Operations, kv KV, scope Scope, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{inner: inner, kv: kv, scope: scope, log: log}
}

func (c *Client) key(entity, lookup string) string {
	return fmt.Sprintf("Pardot|%s|%s|%s", entity, lookup, c.scope.prefix())
}

func (c *Client) keysKey() string { return "cachekeys|" + c.scope.prefix() }

// Prospect ops

func (c *Client) CreateProspect(ctx context.Context, fields map[string]any, businessUnitID string) (map[string]any, error) {
	c.clear(ctx)
	return c.inner.CreateProspect(ctx, fields, businessUnitID)
}

func (c *Client) DeleteProspectByEmail(ctx context.Context, email, businessUnitID string) error {
	c.clear(ctx)
	return c.inner.DeleteProspectByEmail(ctx, email, businessUnitID)
}

func (c *Client) GetProspectByEmail(ctx context.Context, email, businessUnitID string) (map[string]any, error) {
	key := c.key("Prospect", email)
	var cached map[string]any
	if c.get(ctx, key, &cached) {
		return cached, nil
	}
	result, err := c.inner.GetProspectByEmail(ctx, email, businessUnitID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, result)
	return result, nil
}

func (c *Client) GetProspectsByListID(ctx context.Context, listID, businessUnitID string) ([]map[string]any, error) {
	key := c.key("Prospect", listID)
	var cached []map[string]any
	if c.get(ctx, key, &cached) {
		return cached, nil
	}
	result, err := c.inner.GetProspectsByListID(ctx, listID, businessUnitID)
	if err != nil {
		return nil, err
	}
	if result != nil {
		c.set(ctx, key, result)
	}
	return result, nil
}

// List / membership / email / tracker-domain ops delegate without caching;
// these are either paginated, volatile, or side-effecting.

func (c *Client) GetListByName(ctx context.Context, name, businessUnitID string, fields []string) (*pardot.Page, error) {
	return c.inner.GetListByName(ctx, name, businessUnitID, fields)
}

func (c *Client) GetListMembershipByListIDAndProspectID(ctx context.Context, listID, prospectID, businessUnitID string) (map[string]any, error) {
	return c.inner.GetListMembershipByListIDAndProspectID(ctx, listID, prospectID, businessUnitID)
}

func (c *Client) GetListMembershipsByListID(ctx context.Context, listID, businessUnitID string, fields []string, nextPageToken string) (*pardot.Page, error) {
	return c.inner.GetListMembershipsByListID(ctx, listID, businessUnitID, fields, nextPageToken)
}

func (c *Client) SendSampleEmail(ctx context.Context, campaignID, templateID, prospectEmail, businessUnitID string) (map[string]any, error) {
	c.clear(ctx)
	return c.inner.SendSampleEmail(ctx, campaignID, templateID, prospectEmail, businessUnitID)
}

func (c *Client) GetEmail(ctx context.Context, emailID, businessUnitID string) (map[string]any, error) {
	return c.inner.GetEmail(ctx, emailID, businessUnitID)
}

func (c *Client) GetTrackerDomainByID(ctx context.Context, id string, fields []string, businessUnitID string) (map[string]any, error) {
	return c.inner.GetTrackerDomainByID(ctx, id, fields, businessUnitID)
}

// cache plumbing

func (c *Client) get(ctx context.Context, key string, out any) bool {
	raw, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		c.log.Warnw("cache get", "key", key, "err", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		c.log.Warnw("cache decode", "key", key, "err", err)
		return false
	}
	return true
}

// set stores the value and records its key in the run's companion key list so
// clear can bulk-invalidate later.
func (c *Client) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warnw("cache encode", "key", key, "err", err)
		return
	}
	var keys []string
	c.get(ctx, c.keysKey(), &keys)
	keys = append(keys, key)
	rawKeys, _ := json.Marshal(keys)
	if err := c.kv.SetEx(ctx, key, string(raw), entryTTL); err != nil {
		c.log.Warnw("cache set", "key", key, "err", err)
		return
	}
	if err := c.kv.SetEx(ctx, c.keysKey(), string(rawKeys), entryTTL); err != nil {
		c.log.Warnw("cache set", "key", c.keysKey(), "err", err)
	}
}

// clear drops every key written during this scenario run.
func (c *Client) clear(ctx context.Context) {
	var keys []string
	if c.get(ctx, c.keysKey(), &keys) && len(keys) > 0 {
		if err := c.kv.Del(ctx, keys...); err != nil {
			c.log.Warnw("cache clear", "err", err)
		}
	}
	if err := c.kv.SetEx(ctx, c.keysKey(), "[]", entryTTL); err != nil {
		c.log.Warnw("cache reset", "err", err)
	}
}
