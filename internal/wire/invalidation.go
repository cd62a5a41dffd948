package wire

import (
	"context"
	"fmt"

	"github.com/alanyang/promptshelf/internal/domain/event"
	porteventbus "github.com/alanyang/promptshelf/internal/port/eventbus"
	"github.com/alanyang/promptshelf/internal/service/library"
)

// startInvalidation listens on every domain channel and drops the cache keys
// a change made on another replica affects. Events this replica published come
// back too; dropping an already dropped key is harmless.
func startInvalidation(ctx context.Context, lib *library.Library, bus porteventbus.EventBus) error {
	for _, ch := range event.Channels {
		if _, err := bus.Subscribe(ctx, ch, lib.ApplyEvent); err != nil {
			return fmt.Errorf("subscribing to %s events: %w", ch, err)
		}
	}
	return nil
}
