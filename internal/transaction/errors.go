package transaction

import "errors"

// ErrTimeout is returned by Fetch/Set when no correlated reply arrives
// within PollInterval * MaxRetries.
var ErrTimeout = errors.New("transaction: timed out waiting for reply")
