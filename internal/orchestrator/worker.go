package orchestrator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"coldroute/internal/apperror"
	"coldroute/internal/domain"
	"coldroute/internal/logger"
	"coldroute/internal/repository"
	"coldroute/internal/telemetry"
)

// runJob is the worker-pool entry point for one job: acquire a solve
// slot, run the pipeline, persist the result, and always release the
// slot and the job's WaitGroup count. It never returns an error; job
// outcome is recorded entirely through the JobRepository.
func (o *Orchestrator) runJob(jobID string, req PlanRequest, snapshot repository.Snapshot) {
	defer o.wg.Done()

	ctx, cancel := o.jobContext(req)
	defer cancel()

	if err := o.acquireSlot(ctx); err != nil {
		o.fail(ctx, jobID, apperror.New(apperror.CodeSolverTimeout, "timed out waiting for a solver slot"))
		return
	}
	defer o.releaseSlot()

	o.stats.jobsActive.Add(1)
	defer o.stats.jobsActive.Add(-1)

	ctx, span := telemetry.StartSpan(ctx, "Orchestrator.runJob", trace.WithAttributes(attribute.String("job_id", jobID)))
	defer span.End()

	if err := o.jobs.UpdateState(ctx, jobID, domain.JobRunning); err != nil {
		logger.Log.Error("failed to mark job running", "job_id", jobID, "error", err)
		return
	}

	stopProgress := o.startProgressSampler(ctx, jobID)
	summary, routes, err := o.solve(ctx, req, snapshot)
	stopProgress()

	if err != nil {
		telemetry.SetError(ctx, err)
		o.fail(ctx, jobID, err)
		return
	}

	if err := o.persist(ctx, jobID, routes, summary, snapshot); err != nil {
		telemetry.SetError(ctx, err)
		o.fail(ctx, jobID, err)
		return
	}

	o.stats.jobsSucceeded.Add(1)
	logger.WithJob(jobID).Info("job completed",
		"vehicles_used", summary.VehiclesUsed,
		"shipments_assigned", summary.ShipmentsAssigned,
		"shipments_unassigned", summary.ShipmentsUnassigned,
	)
}

// jobContext derives the hard wall-clock deadline named in §5:
// time_limit_seconds plus a small fixed overhead for persistence.
func (o *Orchestrator) jobContext(req PlanRequest) (context.Context, context.CancelFunc) {
	limit := time.Duration(req.TimeLimitSeconds) * time.Second
	if limit <= 0 {
		limit = o.cfg.TimeLimitDefault
	}
	if o.cfg.TimeLimitMax > 0 && limit > o.cfg.TimeLimitMax {
		limit = o.cfg.TimeLimitMax
	}
	const persistOverhead = 10 * time.Second
	return context.WithTimeout(context.Background(), limit+persistOverhead)
}

func (o *Orchestrator) acquireSlot(ctx context.Context) error {
	select {
	case o.pool <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) releaseSlot() {
	<-o.pool
}

// fail records a terminal failure using a fresh, short-lived context: the
// job's own context may already be expired (that can be exactly why the
// job failed), but the failure write itself must still go through.
func (o *Orchestrator) fail(_ context.Context, jobID string, err error) {
	o.stats.jobsFailed.Add(1)
	logger.WithJob(jobID).Error("job failed", "error", err)

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if updateErr := o.jobs.Fail(writeCtx, jobID, err.Error()); updateErr != nil {
		logger.WithJob(jobID).Error("failed to record job failure", "error", updateErr)
	}
}

