package accounts

import "context"

// Authorizer decides whether an account's authgroup grants access to a
// resource. Policy evaluation lives behind this interface so a real
// group-to-resource mapping can replace the default without touching the
// lifecycle code.
type Authorizer interface {
	Authorize(ctx context.Context, acct *Account, resource string) error
}

// AllowAllAuthorizer grants every request. It is the default until a real
// policy is configured.
type AllowAllAuthorizer struct{}

// Authorize always succeeds
func (AllowAllAuthorizer) Authorize(context.Context, *Account, string) error {
	return nil
}

func normalizeAuthorizer(a Authorizer) Authorizer {
	if a == nil {
		return AllowAllAuthorizer{}
	}
	return a
}
