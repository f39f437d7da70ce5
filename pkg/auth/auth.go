// Package auth provides request authenticators applied during request
// construction and credential stores connectors use to resolve secrets.
//
// An Authenticator mutates the outgoing request's headers; its implementation
// is opaque to the request executor, which only invokes Apply on each
// attempt's freshly built request. Credential stores follow a fallback chain:
// system keychain first, an AES-GCM encrypted file second, environment
// variables as read-only last resort.
package auth

import (
	"encoding/base64"
	"errors"
	"net/http"
)

// Store errors shared by every credential backend.
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Authenticator mutates an outgoing request to carry authentication.
type Authenticator interface {
	Apply(req *http.Request) error
}

// APIKey sends a static secret in a configurable header.
type APIKey struct {
	// Header defaults to "X-API-Key".
	Header string
	Key    string
}

func (a *APIKey) Apply(req *http.Request) error {
	header := a.Header
	if header == "" {
		header = "X-API-Key"
	}
	req.Header.Set(header, a.Key)
	return nil
}

// BearerToken sends "Authorization: Bearer <token>".
type BearerToken struct {
	Token string
}

func (a *BearerToken) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+a.Token)
	return nil
}

// BasicAuth sends standard HTTP basic credentials.
type BasicAuth struct {
	Username string
	Password string
}

func (a *BasicAuth) Apply(req *http.Request) error {
	creds := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
	req.Header.Set("Authorization", "Basic "+creds)
	return nil
}

// None applies no authentication.
type None struct{}

func (None) Apply(*http.Request) error { return nil }
