package bus

import (
	"context"

	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/platform"
)

// WaitFor blocks until the first lifecycle event satisfying match is
// published on b after the call, until ctx ends, or until the bus fails.
func WaitFor(ctx context.Context, b platform.Bus, match func(model.Event) bool) (model.Event, error) {
	found := make(chan model.Event, 1)
	unsubscribe := b.Subscribe(func(ev model.Event) {
		if !match(ev) {
			return
		}
		select {
		case found <- ev:
		default:
		}
	}, model.ChannelLifecycle)
	defer unsubscribe()

	select {
	case ev := <-found:
		return ev, nil
	case <-b.Done():
		return model.Event{}, b.Err()
	case <-ctx.Done():
		return model.Event{}, ctx.Err()
	}
}
