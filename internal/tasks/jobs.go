package tasks

import (
	"context"
	"time"
)

// TaskCountSeconds names the demo job that counts up to n seconds.
const TaskCountSeconds = "count_seconds"

// CountSeconds builds a job that sleeps one tick per counted second and
// reports progress after each. The tick is injectable so tests do not
// sleep for real.
func CountSeconds(n int, tick time.Duration) JobFunc {
	return func(ctx context.Context, p *Reporter) error {
		p.Report(ctx, 0)
		for i := 1; i <= n; i++ {
			select {
			case <-time.After(tick):
			case <-ctx.Done():
				return ctx.Err()
			}
			p.Report(ctx, 100*i/n)
		}
		return nil
	}
}
