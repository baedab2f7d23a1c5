// internal/pardot/session_test.go
package pardot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectStrategy(t *testing.T) {
	cases := []struct {
		name  string
		creds Credentials
		want  string
		err   bool
	}{
		{
			name:  "token pair",
			creds: Credentials{AccessToken: "at", RefreshToken: "rt", ClientID: "id", ClientSecret: "sec"},
			want:  "refresh_token",
		},
		{
			name:  "password grant",
			creds: Credentials{ClientID: "id", ClientSecret: "sec", Username: "u", Password: "p"},
			want:  "password_grant",
		},
		{
			name:  "legacy user key",
			creds: Credentials{Email: "u@example.com", Password: "p", UserKey: "uk"},
			want:  "user_key",
		},
		{
			name:  "nothing usable",
			creds: Credentials{Email: "u@example.com"},
			err:   true,
		},
		{
			name:  "access token alone is not enough",
			creds: Credentials{AccessToken: "at"},
			err:   true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := selectStrategy(tc.creds)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestCredentialsFromMap(t *testing.T) {
	c := CredentialsFromMap(map[string]any{
		"instanceUrl":             "https://login.example.com",
		"clientId":                "id",
		"clientSecret":            "sec",
		"email":                   "u@example.com",
		"password":                "p",
		"userKey":                 "uk",
		"businessUnitId":          "0Uv1",
		"additionalBusinessUnits": map[string]any{"EMEA": "0Uv2"},
	})
	assert.Equal(t, "https://login.example.com", c.InstanceURL)
	assert.Equal(t, "https://login.example.com", c.LoginURL)
	assert.Equal(t, "0Uv1", c.BusinessUnitID)
	assert.Equal(t, map[string]string{"EMEA": "0Uv2"}, c.AdditionalBusinessUnits)
}

func TestCredentialsFromMapUnitsAsJSON(t *testing.T) {
	c := CredentialsFromMap(map[string]any{
		"additionalBusinessUnits": `{"EMEA":"0Uv2","APAC":"0Uv3"}`,
	})
	assert.Equal(t, map[string]string{"EMEA": "0Uv2", "APAC": "0Uv3"}, c.AdditionalBusinessUnits)
}

func TestFingerprint(t *testing.T) {
	a := Credentials{Email: "u@example.com", Password: "p", UserKey: "uk"}
	b := Credentials{Email: "u@example.com", Password: "p", UserKey: "uk"}
	c := Credentials{Email: "other@example.com", Password: "p", UserKey: "uk"}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	// Map iteration order must not leak into the fingerprint.
	d := Credentials{AdditionalBusinessUnits: map[string]string{"A": "1", "B": "2", "C": "3"}}
	e := Credentials{AdditionalBusinessUnits: map[string]string{"C": "3", "B": "2", "A": "1"}}
	assert.Equal(t, d.Fingerprint(), e.Fingerprint())
}

func TestUserKeyLoginResolvesOnce(t *testing.T) {
	var logins int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login/version/4", r.URL.Path)
		atomic.AddInt32(&logins, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{"api_key": "k123"})
	}))
	defer ts.Close()

	creds := Credentials{Email: "u@example.com", Password: "p", UserKey: "uk", PardotURL: ts.URL}
	s, err := NewSession(context.Background(), creds, ts.Client(), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Ready(context.Background()))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&logins))

	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
	s.authorize(req)
	assert.Equal(t, "Pardot api_key=k123, user_key=uk", req.Header.Get("Authorization"))
}

func TestUserKeyLoginFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"err":         "Login failed",
			"@attributes": map[string]any{"err_code": 15},
		})
	}))
	defer ts.Close()

	creds := Credentials{Email: "u@example.com", Password: "bad", UserKey: "uk", PardotURL: ts.URL}
	s, err := NewSession(context.Background(), creds, ts.Client(), nil)
	require.NoError(t, err)

	err = s.Ready(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidCredentials))
	assert.Contains(t, err.Error(), "Login failed. Please check your auth credentials and try again.")

	// The outcome is sticky.
	assert.Equal(t, err, s.Ready(context.Background()))
}

func TestUserKeyLoginDailyLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"err":         "Daily API rate limit met",
			"@attributes": map[string]any{"err_code": 122},
		})
	}))
	defer ts.Close()

	creds := Credentials{Email: "u@example.com", Password: "p", UserKey: "uk", PardotURL: ts.URL}
	s, err := NewSession(context.Background(), creds, ts.Client(), nil)
	require.NoError(t, err)

	err = s.Ready(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDailyLimit))
	assert.Contains(t, err.Error(), "API call limit reached for today.")
}

func TestPasswordGrantLogin(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/services/oauth2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.Form.Get("grant_type"))
		assert.Equal(t, "u", r.Form.Get("username"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "token_type": "Bearer"})
	}))
	defer ts.Close()

	creds := Credentials{ClientID: "id", ClientSecret: "sec", Username: "u", Password: "p", LoginURL: ts.URL}
	s, err := NewSession(context.Background(), creds, ts.Client(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Ready(context.Background()))

	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
	s.authorize(req)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
}

func TestPasswordGrantLoginRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":             "invalid_grant",
			"error_description": "authentication failure",
		})
	}))
	defer ts.Close()

	creds := Credentials{ClientID: "id", ClientSecret: "sec", Username: "u", Password: "bad", LoginURL: ts.URL}
	s, err := NewSession(context.Background(), creds, ts.Client(), nil)
	require.NoError(t, err)

	err = s.Ready(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidCredentials))
	assert.Contains(t, err.Error(), "authentication failure")
}

func TestLoginFailedPeeksWithoutBlocking(t *testing.T) {
	unresolved := &Session{done: make(chan struct{})}
	assert.False(t, unresolved.LoginFailed())

	failed := &Session{done: make(chan struct{}), err: classify(codeLoginFailed, "Login failed", "")}
	close(failed.done)
	assert.True(t, failed.LoginFailed())

	ok := &Session{done: make(chan struct{}), token: "tok"}
	close(ok.done)
	assert.False(t, ok.LoginFailed())
}

func TestReadyHonorsContext(t *testing.T) {
	// A session whose login never resolves must not block Ready past the
	// caller's deadline.
	s := &Session{done: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Ready(ctx), context.DeadlineExceeded)
}

func TestNormalizeBase(t *testing.T) {
	assert.Equal(t, "https://pi.pardot.com", normalizeBase("", "https://pi.pardot.com"))
	assert.Equal(t, "https://pi.demo.pardot.com", normalizeBase("pi.demo.pardot.com", ""))
	assert.Equal(t, "http://localhost:8080", normalizeBase("http://localhost:8080/", ""))
}
