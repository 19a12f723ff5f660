package storage

import "context"

// KV is the flat string key-value contract every persistent component builds
// on. Values are raw text; callers own serialization. Get reports absence
// through its second return value, never as an error.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
