package auth

import "context"

// unexported, collision-proof context key
type rawCredentialKeyType struct{}

var rawCredentialKey = rawCredentialKeyType{}

// WithRawCredential attaches an extracted credential to the request context.
func WithRawCredential(ctx context.Context, raw *RawCredential) context.Context {
	return context.WithValue(ctx, rawCredentialKey, raw)
}

// RawCredentialFromContext returns the credential the middleware attached,
// or nil when the request carried none.
func RawCredentialFromContext(ctx context.Context) *RawCredential {
	raw, _ := ctx.Value(rawCredentialKey).(*RawCredential)
	return raw
}
