// internal/pardot/session.go
package pardot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	defaultLoginURL  = "https://login.salesforce.com"
	defaultPardotURL = "https://pi.pardot.com"
)

// Credentials is the opaque bag supplied once at session creation. Which
// fields are set decides the authentication strategy; the rest configure
// routing (Pardot host, business units).
type Credentials struct {
	// Salesforce SSO (OAuth2).
	InstanceURL  string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	AccessToken  string
	RefreshToken string
	LoginURL     string

	// Legacy Pardot user-key login.
	Email   string
	UserKey string

	// Routing.
	PardotURL               string
	BusinessUnitID          string
	AdditionalBusinessUnits map[string]string
}

// CredentialsFromMap reads the orchestrator-supplied metadata bag, accepting
// every historical field vocabulary.
func CredentialsFromMap(m map[string]any) Credentials {
	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := m[k]; ok && v != nil {
				if s, ok := v.(string); ok && s != "" {
					return s
				}
			}
		}
		return ""
	}
	c := Credentials{
		InstanceURL:    str("instanceUrl", "loginUrl"),
		ClientID:       str("clientId"),
		ClientSecret:   str("clientSecret"),
		Username:       str("username"),
		Password:       str("password"),
		AccessToken:    str("accessToken"),
		RefreshToken:   str("refreshToken"),
		LoginURL:       str("loginUrl", "instanceUrl"),
		Email:          str("email"),
		UserKey:        str("userKey"),
		PardotURL:      str("pardotUrl"),
		BusinessUnitID: str("businessUnitId"),
	}
	switch abu := m["additionalBusinessUnits"].(type) {
	case map[string]any:
		c.AdditionalBusinessUnits = map[string]string{}
		for k, v := range abu {
			c.AdditionalBusinessUnits[k] = fmt.Sprintf("%v", v)
		}
	case string:
		if abu != "" {
			var parsed map[string]string
			if err := json.Unmarshal([]byte(abu), &parsed); err == nil {
				c.AdditionalBusinessUnits = parsed
			}
		}
	}
	return c
}

// Fingerprint identifies one credential bag so a serving surface can share a
// session across invocations of the same connection.
func (c Credentials) Fingerprint() string {
	parts := []string{
		c.InstanceURL, c.ClientID, c.ClientSecret, c.Username, c.Password,
		c.AccessToken, c.RefreshToken, c.LoginURL, c.Email, c.UserKey,
		c.PardotURL, c.BusinessUnitID,
	}
	names := make([]string, 0, len(c.AdditionalBusinessUnits))
	for k := range c.AdditionalBusinessUnits {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		parts = append(parts, k+"="+c.AdditionalBusinessUnits[k])
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

// authStrategy is chosen exactly once at construction from mutually exclusive
// credential shapes.
type authStrategy int

const (
	authRefreshToken authStrategy = iota
	authPasswordGrant
	authUserKey
)

func (s authStrategy) String() string {
	switch s {
	case authRefreshToken:
		return "refresh_token"
	case authPasswordGrant:
		return "password_grant"
	case authUserKey:
		return "user_key"
	}
	return "unknown"
}

func selectStrategy(c Credentials) (authStrategy, error) {
	switch {
	case c.RefreshToken != "" && c.AccessToken != "":
		return authRefreshToken, nil
	case c.ClientSecret != "" && c.Password != "":
		return authPasswordGrant, nil
	case c.Email != "" && c.Password != "" && c.UserKey != "":
		return authUserKey, nil
	}
	return 0, fmt.Errorf("pardot: credentials match no supported auth strategy")
}

// Session resolves credentials into an authenticated platform identity.
// Login happens once, in the background; every operation waits on Ready.
// There is no re-login on token expiry: a session resolves exactly once and
// an expired token surfaces as an operation failure.
type Session struct {
	creds    Credentials
	strategy authStrategy
	httpc    *http.Client
	log      *zap.SugaredLogger

	done    chan struct{}
	err     error
	token   string // written once, before done is closed
	userKey string // set for legacy authorization style
}

// NewSession selects the auth strategy, captures business-unit routing, and
// starts the single login request. Construction fails only on a credential
// shape no strategy accepts; login failures surface through Ready.
func NewSession(ctx context.Context, creds Credentials, httpc *http.Client, log *zap.SugaredLogger) (*Session, error) {
	strategy, err := selectStrategy(creds)
	if err != nil {
		return nil, err
	}
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Session{
		creds:    creds,
		strategy: strategy,
		httpc:    httpc,
		log:      log,
		done:     make(chan struct{}),
	}
	go s.login(ctx)
	return s, nil
}

// Ready blocks until the login request resolved, returning its terminal
// outcome. Concurrent callers all observe the same result.
func (s *Session) Ready(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Strategy exposes the chosen auth variant, mostly for logging and tests.
func (s *Session) Strategy() string { return s.strategy.String() }

// LoginFailed reports, without blocking, whether the login already resolved
// with an error. An unresolved login reports false, so callers sharing
// sessions can evict dead ones without waiting on in-flight logins.
func (s *Session) LoginFailed() bool {
	select {
	case <-s.done:
		return s.err != nil
	default:
		return false
	}
}

// PardotURL returns the platform base URL for this session.
func (s *Session) PardotURL() string {
	return normalizeBase(s.creds.PardotURL, defaultPardotURL)
}

func (s *Session) loginURL() string {
	return normalizeBase(s.creds.LoginURL, defaultLoginURL)
}

// authorize stamps the strategy-appropriate Authorization header.
func (s *Session) authorize(req *http.Request) {
	if s.userKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Pardot api_key=%s, user_key=%s", s.token, s.userKey))
		return
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
}

func (s *Session) login(ctx context.Context) {
	defer close(s.done)
	switch s.strategy {
	case authRefreshToken:
		s.err = s.loginRefreshToken(ctx)
	case authPasswordGrant:
		s.err = s.loginPasswordGrant(ctx)
	case authUserKey:
		s.err = s.loginUserKey(ctx)
	}
	if s.err != nil {
		s.log.Warnw("pardot login failed", "strategy", s.strategy.String(), "err", s.err)
		return
	}
	s.log.Infow("pardot session ready", "strategy", s.strategy.String())
}

func (s *Session) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.creds.ClientID,
		ClientSecret: s.creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.loginURL() + "/services/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (s *Session) loginRefreshToken(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpc)
	src := s.oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: s.creds.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return classifyOAuthErr(err)
	}
	s.token = tok.AccessToken
	return nil
}

func (s *Session) loginPasswordGrant(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpc)
	tok, err := s.oauthConfig().PasswordCredentialsToken(ctx, s.creds.Username, s.creds.Password)
	if err != nil {
		return classifyOAuthErr(err)
	}
	s.token = tok.AccessToken
	return nil
}

func (s *Session) loginUserKey(ctx context.Context) error {
	form := url.Values{}
	form.Set("email", s.creds.Email)
	form.Set("password", s.creds.Password)
	form.Set("user_key", s.creds.UserKey)
	form.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.PardotURL()+"/api/login/version/4", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.httpc.Do(req)
	if err != nil {
		return &PlatformError{Kind: KindUnknown, Message: err.Error()}
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return &PlatformError{Kind: KindUnknown, Message: "login response was not JSON: " + err.Error()}
	}
	if pe := platformErrFromPayload(payload, resp.StatusCode); pe != nil {
		if pe.Code == codeLoginFailed {
			pe.Message = "Login failed. Please check your auth credentials and try again."
		}
		if pe.Code == codeDailyLimit {
			pe.Message = "API call limit reached for today."
		}
		return pe
	}
	key, _ := payload["api_key"].(string)
	if key == "" {
		return &PlatformError{Kind: KindInvalidCredentials, Message: "login response carried no api_key"}
	}
	s.token = key
	s.userKey = s.creds.UserKey
	return nil
}

func classifyOAuthErr(err error) error {
	if rerr, ok := err.(*oauth2.RetrieveError); ok {
		kind := KindInvalidCredentials
		if rerr.Response != nil && rerr.Response.StatusCode == http.StatusTooManyRequests {
			kind = KindRateLimited
		}
		msg := rerr.ErrorDescription
		if msg == "" {
			msg = rerr.Error()
		}
		return &PlatformError{Kind: kind, Message: "Auth Error: " + msg, Raw: string(rerr.Body)}
	}
	return &PlatformError{Kind: KindUnknown, Message: "Auth Error: " + err.Error()}
}

func normalizeBase(raw, def string) string {
	if raw == "" {
		return def
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/")
}
