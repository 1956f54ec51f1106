package usage

import "context"

// DefaultAnonymousQuota is the number of free gated actions per anonymous session.
const DefaultAnonymousQuota = 1

// Counter is a keyed atomic counter. Get on an unknown key returns 0.
// Increment must be atomic across processes for the backing store and
// return the post-increment value. Decrement never goes below zero.
type Counter interface {
	Get(ctx context.Context, key string) (int, error)
	Increment(ctx context.Context, key string) (int, error)
	Decrement(ctx context.Context, key string) error
}

// Key namespaces, so sessions and users can share one store.
func SessionKey(token string) string { return "session:" + token }
func UserKey(userID string) string   { return "user:" + userID }
