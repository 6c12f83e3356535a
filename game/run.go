package game

import (
	"context"
	"log/slog"
	"time"
)

// Run steps the simulation until ctx is cancelled or maxTicks is reached
// (0 = unlimited). Cancellation is only observed between ticks. A positive
// interval paces the loop to one tick per interval. onTick, if non-nil,
// runs after every tick on the calling goroutine.
//
// Returns ctx.Err() on cancellation and nil when maxTicks is reached.
func (g *Game) Run(ctx context.Context, maxTicks int, interval time.Duration, onTick func(*Game)) error {
	var pace <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		pace = ticker.C
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		g.Step()
		if onTick != nil {
			onTick(g)
		}

		if maxTicks > 0 && int(g.tick) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.tick)
			return nil
		}

		if pace != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-pace:
			}
		}
	}
}
