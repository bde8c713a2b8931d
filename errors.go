package reportguard

import "errors"

var (
	// ErrGuardNotReady is returned when a Guard method is called on a nil or
	// partially constructed Guard.
	ErrGuardNotReady = errors.New("guard not initialized")
	// ErrBuilderReused is returned by Build when the Builder has already
	// produced a Guard.
	ErrBuilderReused = errors.New("builder already used")
	// ErrUnknownAction is returned when a rate-limited action name has no
	// configured limit.
	ErrUnknownAction = errors.New("unknown rate-limited action")
	// ErrLimiterUnavailable indicates the shared rate-limit backend could not
	// be reached. The accompanying Decision always denies.
	ErrLimiterUnavailable = errors.New("rate limit backend unavailable")
	// ErrStoreUnavailable indicates the email store failed to persist a
	// record. The submission is the only case reported as non-success.
	ErrStoreUnavailable = errors.New("email store unavailable")
	// ErrRedisRequired is returned by Build when configuration selects a
	// Redis-backed component but no client was provided.
	ErrRedisRequired = errors.New("redis client required")
	// ErrPostgresDSNRequired is returned by Build when the postgres email
	// store backend is selected without a DSN.
	ErrPostgresDSNRequired = errors.New("postgres DSN required")
)
