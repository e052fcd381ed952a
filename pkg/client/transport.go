package client

import (
	"fmt"
	"net/http"
)

// BearerTransport reads the token from its store on every request and sets
// the Authorization header when one is present.
type BearerTransport struct {
	Store TokenStore
	Base  http.RoundTripper
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.Store.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if token == "" {
		return base.RoundTrip(req)
	}

	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(authed)
}
