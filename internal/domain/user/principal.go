package user

// Principal is the authenticated caller as reported by the identity provider.
// The core trusts UserID as given and never re-verifies it.
type Principal struct {
	UserID string
	Email  string
}
