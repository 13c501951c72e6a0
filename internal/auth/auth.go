// Package auth turns request-supplied credentials into verified identities.
// The middleware attaches a RawCredential to the request context without
// touching any store; handlers that need identity resolve it here with
// exactly one store or database lookup.
package auth

import (
	"errors"

	"github.com/wyatt-herkamp/nitro-share/internal/domain"
	"github.com/wyatt-herkamp/nitro-share/internal/session"
)

// ErrUnauthenticated means no credential was presented, or the presented
// credential did not resolve (unknown session, expired session, revoked or
// unknown token, deleted or banned account). It is an expected outcome, not
// a storage failure: Required callers turn it into a 401, Optional callers
// into an anonymous identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// CredentialKind tags the two credential schemes.
type CredentialKind int

const (
	// SessionCookie is a session id from the session cookie, or from the
	// Authorization header when the deployment allows that.
	SessionCookie CredentialKind = iota
	// BearerToken is an API token plaintext from "Authorization: Bearer".
	BearerToken
)

// RawCredential is unverified, request-supplied evidence of identity. It is
// produced by the extraction middleware and consumed once per request by the
// Resolver; it is never persisted.
type RawCredential struct {
	Kind  CredentialKind
	Value string // session id or token plaintext
}

// Authentication is a resolved identity, valid for one request. Exactly one
// of Session and Token is non-nil, matching the credential scheme that
// produced it.
type Authentication struct {
	User    domain.User
	Session *session.Session
	Token   *domain.AuthToken
}

// UserID returns the authenticated user's id regardless of scheme.
func (a *Authentication) UserID() int64 {
	return a.User.ID
}

// BySession reports whether the identity came from a session credential.
func (a *Authentication) BySession() bool {
	return a.Session != nil
}

// Permissions returns the authenticated user's permission document.
func (a *Authentication) Permissions() domain.Permissions {
	return a.User.Permissions
}

// Optional is the result of optional resolution: a full Authentication, or
// an anonymous identity carrying only the deployment's configured anonymous
// permission set.
type Optional struct {
	Auth      *Authentication // nil when anonymous
	Anonymous domain.Permissions
}

// Authenticated reports whether a real identity was resolved.
func (o Optional) Authenticated() bool {
	return o.Auth != nil
}

// UserID returns the resolved user id, or 0 for anonymous requests.
func (o Optional) UserID() int64 {
	if o.Auth == nil {
		return 0
	}
	return o.Auth.UserID()
}

// Permissions returns the effective permission set for the request.
func (o Optional) Permissions() domain.Permissions {
	if o.Auth == nil {
		return o.Anonymous
	}
	return o.Auth.Permissions()
}
