package notify

import (
	"context"

	"github.com/jayquinn/interview-scheduler-sub001/core/dayrun"
)

// StartBridge forwards pipeline transitions from the event bus to the
// notifier. It stops when the context is canceled or the bus closes.
func StartBridge(ctx context.Context, bus *dayrun.Bus, n Notifier, runID string) {
	if bus == nil || n == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case tr, ok := <-sub:
				if !ok {
					return
				}
				_ = n.DayStatus(DayStatus{
					RunID:   runID,
					Date:    tr.Date.Format("2006-01-02"),
					Stage:   tr.To.String(),
					Attempt: tr.Attempt,
					Error:   tr.Err,
				})
			}
		}
	}()
}
