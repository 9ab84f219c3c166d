package matching

import "context"

// Locker provides a lock shared by every instance of the service. Release must
// be safe to call after the lock expired.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(context.Context) error, err error)
}

const writeLockKey = "matching:write"
