package kafka

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONHandler adapts a typed handler to the raw dispatch signature.
func JSONHandler[T any](handle func(ctx context.Context, key []byte, ev T) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		var ev T
		if err := json.Unmarshal(value, &ev); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		return handle(ctx, key, ev)
	}
}
