package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrNilCache is returned when a nil cache is passed where one is required.
	ErrNilCache = errors.New("cache: cache is nil")

	// ErrInvalidKey is returned when a key is empty or contains control characters.
	ErrInvalidKey = errors.New("cache: key is invalid")

	// ErrKeyTooLong is returned when a key exceeds MaxKeyLength.
	ErrKeyTooLong = errors.New("cache: key exceeds max length")

	// ErrDisposed is returned when writing to a disposed store.
	ErrDisposed = errors.New("cache: store is disposed")

	// ErrUnknownStrategy is returned by the factory for an unregistered strategy.
	ErrUnknownStrategy = errors.New("cache: unknown strategy")

	// ErrNilConstructor is returned when registering a nil strategy constructor.
	ErrNilConstructor = errors.New("cache: constructor is nil")

	// ErrBadSnapshot is returned when importing a malformed snapshot.
	ErrBadSnapshot = errors.New("cache: snapshot is malformed")
)
