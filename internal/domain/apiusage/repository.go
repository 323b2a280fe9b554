package apiusage

import "context"

// Recorder appends audit records. Implementations must be safe for
// concurrent use; append failures are the caller's to log, never to retry.
type Recorder interface {
	Append(ctx context.Context, item Record) error
}
