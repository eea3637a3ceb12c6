package access

import "errors"

// ErrUnauthorized marks a backend response that means the session is no
// longer valid. Orchestration treats it as a silent transition to the
// logged-out state rather than a user-facing error.
var ErrUnauthorized = errors.New("access: unauthorized")

// ErrPortalAccessDenied is returned by login when the credentials were
// accepted but the account has no web console entitlement. This is a
// business rule, distinct from an authentication failure.
var ErrPortalAccessDenied = errors.New("access: account does not have web console access")
