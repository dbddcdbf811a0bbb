package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"coldroute/internal/apperror"
	"coldroute/internal/domain"
	"coldroute/internal/orchestrator"
	"coldroute/internal/report"
	"coldroute/internal/solver"
)

// handleSubmitPlan implements POST /api/v1/plans.
func (s *Server) handleSubmitPlan(w http.ResponseWriter, r *http.Request) {
	var dto planRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeValidationError(w, "", "malformed JSON body: "+err.Error())
		return
	}

	req, verr := s.toPlanRequest(dto)
	if verr != nil {
		writeError(w, verr)
		return
	}

	job, err := s.orchestrator.Submit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	snapshot, err := s.snapshotCounts(r.Context(), req.DepotID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, planAcceptedDTO{
		JobID:          job.ID,
		State:          string(job.State),
		SnapshotCounts: snapshot,
	})
}

func (s *Server) snapshotCounts(ctx context.Context, depotID string) (snapshotCounts, error) {
	vehicles, err := s.vehicles.ListAvailable(ctx)
	if err != nil {
		return snapshotCounts{}, err
	}
	shipments, err := s.shipments.ListPending(ctx)
	if err != nil {
		return snapshotCounts{}, err
	}
	return snapshotCounts{Vehicles: len(vehicles), Shipments: len(shipments)}, nil
}

func (s *Server) toPlanRequest(dto planRequestDTO) (orchestrator.PlanRequest, error) {
	if dto.DepotID == "" {
		return orchestrator.PlanRequest{}, apperror.NewWithField(apperror.CodeValidation, "depot is required", "depot")
	}

	planDate, err := time.Parse("2006-01-02", dto.PlanDate)
	if err != nil {
		return orchestrator.PlanRequest{}, apperror.NewWithField(apperror.CodeValidation, "plan_date must be YYYY-MM-DD", "plan_date")
	}

	departure, err := time.Parse("15:04", dto.PlannedDepartureTime)
	if err != nil {
		return orchestrator.PlanRequest{}, apperror.NewWithField(apperror.CodeValidation, "planned_departure_time must be HH:MM", "planned_departure_time")
	}
	departureTime := time.Date(planDate.Year(), planDate.Month(), planDate.Day(),
		departure.Hour(), departure.Minute(), 0, 0, time.UTC)

	ambient := s.modelConfig.DefaultAmbientTemp
	if dto.AmbientTemperature != nil {
		ambient = *dto.AmbientTemperature
	}
	initialCargo := s.modelConfig.DefaultInitialVehicleTemp
	if dto.InitialCargoTemperature != nil {
		initialCargo = *dto.InitialCargoTemperature
	}

	timeLimit := dto.TimeLimitSeconds
	if timeLimit <= 0 {
		timeLimit = 300
	}
	if timeLimit > 900 {
		return orchestrator.PlanRequest{}, apperror.NewWithField(apperror.CodeValidation, "time_limit_seconds must be <= 900", "time_limit_seconds")
	}

	strategy := solver.MinimizeVehicles
	switch dto.Strategy {
	case "", string(solver.MinimizeVehicles):
		strategy = solver.MinimizeVehicles
	case string(solver.MinimizeDistance):
		strategy = solver.MinimizeDistance
	default:
		return orchestrator.PlanRequest{}, apperror.NewWithField(apperror.CodeValidation, "unknown strategy", "strategy")
	}

	return orchestrator.PlanRequest{
		PlanDate:         planDate,
		DepotID:          dto.DepotID,
		DepartureTime:    departureTime,
		AmbientTemp:      ambient,
		InitialCargoTemp: initialCargo,
		TimeLimitSeconds: timeLimit,
		Strategy:         strategy,
	}, nil
}

// handleJobStatus implements the job-status endpoint.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	job, err := s.orchestrator.Status(r.Context(), jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(job))
}

func toJobDTO(job domain.Job) jobDTO {
	dto := jobDTO{
		JobID:        job.ID,
		PlanDate:     job.PlanDate.Format("2006-01-02"),
		State:        string(job.State),
		Progress:     job.Progress,
		CreatedAt:    job.CreatedAt,
		StartedAt:    job.StartedAt,
		FinishedAt:   job.FinishedAt,
		ErrorMessage: job.ErrorMessage,
	}
	if job.Summary != nil {
		dto.ResultSummary = &planSummaryDTO{
			TotalDistanceM:      job.Summary.TotalDistanceM,
			TotalDurationMin:    job.Summary.TotalDurationMin,
			VehiclesUsed:        job.Summary.VehiclesUsed,
			ShipmentsAssigned:   job.Summary.ShipmentsAssigned,
			ShipmentsUnassigned: job.Summary.ShipmentsUnassigned,
			AllFeasible:         job.Summary.AllFeasible,
			RouteIDs:            job.Summary.RouteIDs,
		}
		dto.RouteIDs = job.Summary.RouteIDs
	}
	return dto
}

// handleViolationsReport implements the violations report endpoint.
func (s *Server) handleViolationsReport(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	job, err := s.orchestrator.Status(r.Context(), jobID)
	if err != nil {
		writeError(w, err)
		return
	}

	routes, err := s.routes.ListByJob(r.Context(), jobID)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := s.buildReportData(r.Context(), job, routes)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := violationsReportDTO{JobID: jobID}
	for _, v := range data.Violations {
		resp.Violations = append(resp.Violations, violationDTO{
			RouteID:              v.RouteID,
			ShipmentID:           v.ShipmentID,
			SLA:                  string(v.SLA),
			PredictedArrivalTemp: v.PredictedArrivalTemp,
			TempCeiling:          v.TempCeiling,
			OvershootC:           v.OvershootC,
		})
	}
	for _, u := range data.Unassigned {
		reasons := make([]string, 0, len(u.LikelyReasons))
		for _, reason := range u.LikelyReasons {
			reasons = append(reasons, string(reason))
		}
		resp.Unassigned = append(resp.Unassigned, unassignedDTO{
			ShipmentID:      u.ShipmentID,
			LikelyReasons:   reasons,
			Parameter:       u.Parameter,
			CurrentValue:    u.CurrentValue,
			ConstraintValue: u.ConstraintValue,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReportExport implements the PDF/Excel report-export surface named
// in SPEC_FULL.md §6's "Report export (new)".
func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	job, err := s.orchestrator.Status(r.Context(), jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	routes, err := s.routes.ListByJob(r.Context(), jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := s.buildReportData(r.Context(), job, routes)
	if err != nil {
		writeError(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "xlsx":
		out, genErr := s.excelGenerator.Generate(data)
		if genErr != nil {
			writeError(w, apperror.Wrap(genErr, apperror.CodeInternal, "generate excel report"))
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+jobID+`.xlsx"`)
		w.WriteHeader(http.StatusOK)
		w.Write(out)
	default:
		out, genErr := s.pdfGenerator.Generate(data)
		if genErr != nil {
			writeError(w, apperror.Wrap(genErr, apperror.CodeInternal, "generate pdf report"))
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+jobID+`.pdf"`)
		w.WriteHeader(http.StatusOK)
		w.Write(out)
	}
}

func (s *Server) buildReportData(ctx context.Context, job domain.Job, routes []domain.Route) (report.Data, error) {
	shipmentIDs := map[string]struct{}{}
	for _, route := range routes {
		for _, stop := range route.Stops {
			shipmentIDs[stop.ShipmentID] = struct{}{}
		}
	}
	shipments := make([]domain.Shipment, 0, len(shipmentIDs))
	for id := range shipmentIDs {
		shipment, err := s.shipments.GetByID(ctx, id)
		if err != nil {
			return report.Data{}, err
		}
		shipments = append(shipments, shipment)
	}

	summary := domain.PlanSummary{}
	if job.Summary != nil {
		summary = *job.Summary
	}

	return report.BuildData(job.ID, job.PlanDate, s.reportConfig.DefaultCompanyName, summary, routes, shipments), nil
}

// handleMapData implements the map-data endpoint.
func (s *Server) handleMapData(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job_id")
	if jobID == "" {
		writeValidationError(w, "job_id", "job_id is required")
		return
	}

	job, err := s.orchestrator.Status(r.Context(), jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	routes, err := s.routes.ListByJob(r.Context(), jobID)
	if err != nil {
		writeError(w, err)
		return
	}

	depotID := r.URL.Query().Get("depot_id")
	if depotID == "" {
		writeValidationError(w, "depot_id", "depot_id is required")
		return
	}
	depot, err := s.depots.Get(r.Context(), depotID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := mapDataDTO{Depot: depotDTO{ID: depot.ID, Lat: depot.Lat, Lon: depot.Lon}}
	for _, route := range routes {
		rm := routeMapDTO{RouteID: route.ID, VehicleID: route.VehicleID, Feasible: route.Feasible}
		for _, stop := range route.Stops {
			shipment, serr := s.shipments.GetByID(r.Context(), stop.ShipmentID)
			if serr != nil {
				writeError(w, serr)
				return
			}
			rm.Stops = append(rm.Stops, stopMapDTO{
				Sequence:             stop.Sequence,
				ShipmentID:           stop.ShipmentID,
				Lat:                  shipment.Lat,
				Lon:                  shipment.Lon,
				ArrivalTime:          stop.ArrivalTime,
				DepartureTime:        stop.DepartureTime,
				PredictedArrivalTemp: stop.PredictedArrivalTemp,
				TempCeiling:          shipment.TempCeiling,
				Feasible:             stop.Feasible,
			})
		}
		resp.Routes = append(resp.Routes, rm)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealth backs a liveness probe; not named in SPEC_FULL.md but the
// donor's health.Server plays the same role for its gRPC services.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "SERVING"})
}
