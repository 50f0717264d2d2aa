// internal/services/cache/errors.go - cache error taxonomy
package cache

import "errors"

var (
	// ErrNoConnection no network at refresh time; existing data is preserved
	ErrNoConnection = errors.New("cache: pas de connexion")

	// ErrNoSnapshot nothing cached at any tier and the network failed too
	ErrNoSnapshot = errors.New("cache: aucune donnee disponible")

	// ErrTokenMismatch the session token changed since the profile was
	// cached; the cached profile belongs to another session and is cleared
	ErrTokenMismatch = errors.New("cache: jeton de session different")

	// ErrOperatorNotFound lookup exhausted memory and one forced refresh;
	// a normal negative result, not a failure
	ErrOperatorNotFound = errors.New("cache: operateur introuvable")

	// ErrRefreshThrottled a forced refresh arrived inside the minimum
	// inter-refresh interval and was skipped
	ErrRefreshThrottled = errors.New("cache: refresh limite")
)
