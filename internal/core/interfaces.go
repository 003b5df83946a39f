package core

// CredentialStore persists the token pair across restarts.
//
// Load returns a zero pair, not an error, when nothing is stored.
// Clear is idempotent.
type CredentialStore interface {
	Load() (TokenPair, error)
	Store(TokenPair) error
	Clear() error
}
