package orchestrator

import (
	"context"
	"fmt"

	"coldroute/internal/apperror"
	"coldroute/internal/domain"
	"coldroute/internal/planassembler"
	"coldroute/internal/planmodel"
	"coldroute/internal/repository"
)

// solve runs the model-build -> search -> assemble pipeline for one job.
// A STRICT-SLA shipment left unassigned, or predicted by the tracker to
// arrive above its temperature ceiling, is not a partial result: per
// domain.SLAStrict's contract it makes the whole plan infeasible.
func (o *Orchestrator) solve(ctx context.Context, req PlanRequest, snapshot repository.Snapshot) (domain.PlanSummary, []domain.Route, error) {
	model := planmodel.Build(snapshot.Depot, snapshot.Vehicles, snapshot.Shipments, o.cfg.ModelConfig)

	assignment, err := o.engine.Solve(ctx, model, req.DepartureTime, req.Strategy)
	if err != nil {
		if ctx.Err() != nil {
			return domain.PlanSummary{}, nil, apperror.Wrap(err, apperror.CodeSolverTimeout, "solver did not finish within its time limit")
		}
		return domain.PlanSummary{}, nil, apperror.Wrap(err, apperror.CodeInternal, "solver failed")
	}

	assembleCfg := planassembler.Config{
		Departure:        req.DepartureTime,
		AmbientTemp:      req.AmbientTemp,
		InitialCargoTemp: req.InitialCargoTemp,
	}
	routes, unassigned := planassembler.Assemble(model, assignment, assembleCfg)

	for _, u := range unassigned {
		if shipmentSLA(snapshot.Shipments, u.ShipmentID) == domain.SLAStrict {
			return domain.PlanSummary{}, nil, apperror.New(apperror.CodeInfeasible,
				fmt.Sprintf("STRICT shipment %s could not be placed on any route", u.ShipmentID))
		}
	}
	for _, r := range routes {
		for _, stop := range r.Stops {
			if !stop.Feasible && shipmentSLA(snapshot.Shipments, stop.ShipmentID) == domain.SLAStrict {
				return domain.PlanSummary{}, nil, apperror.New(apperror.CodeInfeasible,
					fmt.Sprintf("STRICT shipment %s is predicted to exceed its temperature ceiling", stop.ShipmentID))
			}
		}
	}

	summary := planassembler.Summarize(routes, unassigned)
	return summary, routes, nil
}

func shipmentSLA(shipments []domain.Shipment, id string) domain.SLATier {
	for _, s := range shipments {
		if s.ID == id {
			return s.SLA
		}
	}
	return domain.SLAStandard
}

// persist implements §4.6's atomic completion step: write routes/stops,
// flip assigned shipments to ASSIGNED, mark the job COMPLETED with its
// summary. Route IDs are assigned in-place by PersistPlan before
// Summarize-equivalent bookkeeping reads them back via summary.RouteIDs.
func (o *Orchestrator) persist(ctx context.Context, jobID string, routes []domain.Route, summary domain.PlanSummary, snapshot repository.Snapshot) error {
	if err := o.routes.PersistPlan(ctx, jobID, routes); err != nil {
		return fmt.Errorf("persist routes: %w", err)
	}

	summary.RouteIDs = summary.RouteIDs[:0]
	for _, r := range routes {
		summary.RouteIDs = append(summary.RouteIDs, r.ID)
		for _, stop := range r.Stops {
			if err := o.shipments.UpdateStatus(ctx, stop.ShipmentID, domain.ShipmentAssigned); err != nil {
				return fmt.Errorf("update shipment status: %w", err)
			}
		}
	}

	if err := o.jobs.Complete(ctx, jobID, summary); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}
