package notification

import "context"

// Messenger delivers push notifications to batches of device tokens.
// The reconciliation sweep is the only producer; it always fans out to
// every active device of a user, so no single-token send is exposed.
// Implemented by the Firebase Cloud Messaging client.
type Messenger interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}
