package profile

import (
	"context"
	"encoding/json"
)

// SettingsRepository stores JSON values by key. Get returns apperr.ErrNotFound
// for an absent key.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
}
