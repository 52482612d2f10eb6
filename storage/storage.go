// Package storage provides the durable client-side key/value storage that
// backs the session. It is the single shared slot described by the design:
// one token, one serialized user, one theme preference. Only one session can
// be active at a time in one execution context.
package storage

// Well-known storage keys. The values mirror what the blog platform has
// always used, so a session file survives client upgrades.
const (
	// KeyToken holds the raw bearer token string.
	KeyToken = "blog_token"
	// KeyUser holds the JSON-serialized user.
	KeyUser = "blog_user"
	// KeyTheme holds the UI theme preference. The core never reads it, but it
	// shares the storage file with the session entries.
	KeyTheme = "blog_theme"
)

// Store is the durable keyed storage consumed by the gateway and the auth
// service. Reads are synchronous; implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set writes the value for key, creating the entry if needed.
	Set(key, value string) error
	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(key string) error
}

// ClearSession removes the token and user entries from the store, leaving
// unrelated entries (such as the theme) untouched. It is used on logout and
// whenever an invalid token is detected.
func ClearSession(s Store) error {
	if err := s.Delete(KeyToken); err != nil {
		return err
	}
	return s.Delete(KeyUser)
}
