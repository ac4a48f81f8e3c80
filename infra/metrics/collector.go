package metrics

import (
	"context"

	"github.com/jayquinn/interview-scheduler-sub001/core/dayrun"
	coremetrics "github.com/jayquinn/interview-scheduler-sub001/core/metrics"
)

// StartEventCollector subscribes to the event bus and records a solve
// attempt for every pipeline transition. It stops when the context is
// canceled or the bus closes.
func StartEventCollector(ctx context.Context, bus *dayrun.Bus, sink coremetrics.SchedulerSink) {
	if bus == nil || sink == nil {
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
				if r, ok := sink.(coremetrics.SolveRecorder); ok {
					_ = r.RecordSolve(coremetrics.SolveEvent{
						Date:    tr.Date,
						Stage:   tr.From.String(),
						Attempt: tr.Attempt,
						Error:   tr.Err,
					})
				}
			}
		}
	}()
}
