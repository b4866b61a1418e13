package syncauth

import "net/http"

// Authenticator outcomes
const (
	outcomeAttached = "attached"
	outcomePublic   = "public"
	outcomeNoToken  = "no_token"
	outcomeStoreErr = "store_error"
)

// Authenticator attaches the stored token to outgoing requests
type Authenticator struct {
	cfg *Config
}

// NewAuthenticator creates an Authenticator reading tokens from cfg's store
func NewAuthenticator(cfg *Config) *Authenticator {
	return &Authenticator{cfg: cfg}
}

// Authenticate returns the request to send. Requests to token-issuing endpoints
// and requests made without a stored token are returned as-is. Otherwise a
// clone carrying "Authorization: Bearer <token>" is returned and req is left
// untouched.
//
// An empty stored token is treated like no token.
func (a *Authenticator) Authenticate(req *http.Request) *http.Request {
	if a.cfg.isPublic(req.URL.Path) {
		a.cfg.metrics.observeRequest(outcomePublic)
		return req
	}

	token, ok, err := a.cfg.store.Get(req.Context(), KeyAuthToken)
	if err != nil {
		a.logStoreFailure(req.URL.Path, err)
		a.cfg.metrics.observeRequest(outcomeStoreErr)
		return req
	}
	if !ok || token == "" {
		a.cfg.metrics.observeRequest(outcomeNoToken)
		return req
	}

	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+token)
	a.cfg.metrics.observeRequest(outcomeAttached)
	logSessionEvent(a.cfg.logger, SessionEvent{
		EventType:    EventAttach,
		Timestamp:    a.cfg.now(),
		Path:         req.URL.Path,
		TokenPreview: token,
	})
	return authed
}

// Transport wraps base so every request passes through Authenticate.
// A nil base means http.DefaultTransport.
func (a *Authenticator) Transport(base http.RoundTripper) *Transport {
	return &Transport{Base: base, auth: a}
}

func (a *Authenticator) logStoreFailure(path string, err error) {
	if a.cfg.logger == nil {
		return
	}
	logSessionEvent(a.cfg.logger, SessionEvent{
		EventType: EventStoreFailure,
		Timestamp: a.cfg.now(),
		Reason:    err.Error(),
		Path:      path,
	})
}

// Transport is an http.RoundTripper that authenticates requests
type Transport struct {
	Base http.RoundTripper
	auth *Authenticator
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base().RoundTrip(t.auth.Authenticate(req))
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
