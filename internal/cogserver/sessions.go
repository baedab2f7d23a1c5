// internal/cogserver/sessions.go
package cogserver

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"pardotcog/internal/pardot"
)

// sessionRegistry deduplicates sessions by credential fingerprint so that
// scenarios re-running steps against the same org reuse one login instead
// of re-authenticating per request.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*pardot.Session
	httpc    *http.Client
	log      *zap.SugaredLogger
}

func newSessionRegistry(httpc *http.Client, log *zap.SugaredLogger) *sessionRegistry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &sessionRegistry{
		sessions: map[string]*pardot.Session{},
		httpc:    httpc,
		log:      log,
	}
}

// acquire returns the session for the given credentials, creating and
// logging one in on first sight. Sessions outlive the request that created
// them, so login runs under the background context. A stored session whose
// login resolved with an error is evicted and replaced; a transient login
// failure must not pin the fingerprint to a dead session.
func (r *sessionRegistry) acquire(creds pardot.Credentials) (*pardot.Session, error) {
	fp := creds.Fingerprint()

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[fp]; ok {
		if !s.LoginFailed() {
			return s, nil
		}
		delete(r.sessions, fp)
		r.log.Warnw("session login failed, replacing", "strategy", s.Strategy())
	}
	s, err := pardot.NewSession(context.Background(), creds, r.httpc, r.log)
	if err != nil {
		return nil, err
	}
	r.sessions[fp] = s
	sessionLogins.WithLabelValues(s.Strategy()).Inc()
	r.log.Infow("session created", "strategy", s.Strategy())
	return s, nil
}
