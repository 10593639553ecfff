package ports

import "context"

// NotifySink delivers human-readable alerts. Implementations fan out to
// every configured recipient and must not exceed a 4096-byte message.
type NotifySink interface {
	Send(ctx context.Context, text string) error
}
