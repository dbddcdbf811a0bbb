package orchestrator

import (
	"context"
	"time"

	"coldroute/internal/logger"
)

// progressCap is the ceiling the sampler holds progress at until the job
// reaches a terminal state, per §5's "Progress stream" contract.
const progressCap = 95

// startProgressSampler writes a monotone, time-proportional progress
// estimate at cfg.ProgressInterval, stopping when the returned func is
// called or ctx is done. It is the only writer of a job's progress field
// while the job runs.
func (o *Orchestrator) startProgressSampler(ctx context.Context, jobID string) func() {
	interval := o.cfg.ProgressInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	start := time.Now()
	var totalEstimate time.Duration
	if deadline, ok := ctx.Deadline(); ok {
		totalEstimate = time.Until(deadline)
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				progress := progressCap
				if totalEstimate > 0 {
					elapsed := time.Since(start)
					progress = int(float64(elapsed) / float64(totalEstimate) * 100)
					if progress > progressCap {
						progress = progressCap
					}
					if progress < 0 {
						progress = 0
					}
				}
				if err := o.jobs.UpdateProgress(ctx, jobID, progress); err != nil {
					logger.WithJob(jobID).Warn("progress write failed", "error", err)
				}
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}
