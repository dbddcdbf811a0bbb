package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldroute/internal/apperror"
	"coldroute/internal/config"
	"coldroute/internal/domain"
	"coldroute/internal/orchestrator"
	"coldroute/internal/repository"
)

type fakeDepotRepo struct{ depot domain.Depot }

func (f *fakeDepotRepo) Get(_ context.Context, id string) (domain.Depot, error) {
	if id != f.depot.ID {
		return domain.Depot{}, repository.ErrNotFound
	}
	return f.depot, nil
}

type fakeVehicleRepo struct{ vehicles []domain.Vehicle }

func (f *fakeVehicleRepo) ListAvailable(_ context.Context) ([]domain.Vehicle, error) {
	return f.vehicles, nil
}
func (f *fakeVehicleRepo) GetByID(_ context.Context, id string) (domain.Vehicle, error) {
	for _, v := range f.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return domain.Vehicle{}, repository.ErrNotFound
}

type fakeShipmentRepo struct {
	mu        sync.Mutex
	shipments map[string]domain.Shipment
}

func newFakeShipmentRepo(shipments ...domain.Shipment) *fakeShipmentRepo {
	m := make(map[string]domain.Shipment, len(shipments))
	for _, s := range shipments {
		m[s.ID] = s
	}
	return &fakeShipmentRepo{shipments: m}
}

func (f *fakeShipmentRepo) ListPending(_ context.Context) ([]domain.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Shipment
	for _, s := range f.shipments {
		if s.Status == domain.ShipmentPending {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeShipmentRepo) GetByID(_ context.Context, id string) (domain.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shipments[id]
	if !ok {
		return domain.Shipment{}, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeShipmentRepo) UpdateStatus(_ context.Context, id string, status domain.ShipmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shipments[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Status = status
	f.shipments[id] = s
	return nil
}

type fakeRouteRepo struct {
	mu    sync.Mutex
	byJob map[string][]domain.Route
}

func newFakeRouteRepo() *fakeRouteRepo {
	return &fakeRouteRepo{byJob: make(map[string][]domain.Route)}
}

func (f *fakeRouteRepo) PersistPlan(_ context.Context, jobID string, routes []domain.Route) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byJob[jobID] = routes
	return nil
}
func (f *fakeRouteRepo) ListByJob(_ context.Context, jobID string) ([]domain.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byJob[jobID], nil
}
func (f *fakeRouteRepo) UpdateVersion(_ context.Context, route domain.Route, expectedVersion int) error {
	return nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]domain.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]domain.Job)}
}

func (f *fakeJobRepo) Create(_ context.Context, job domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = job
	return nil
}
func (f *fakeJobRepo) Get(_ context.Context, id string) (domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return domain.Job{}, repository.ErrNotFound
	}
	return job, nil
}
func (f *fakeJobRepo) UpdateState(_ context.Context, id string, state domain.JobState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := f.jobs[id]
	job.State = state
	f.jobs[id] = job
	return nil
}
func (f *fakeJobRepo) UpdateProgress(_ context.Context, id string, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := f.jobs[id]
	job.Progress = progress
	f.jobs[id] = job
	return nil
}
func (f *fakeJobRepo) Complete(_ context.Context, id string, summary domain.PlanSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := f.jobs[id]
	job.State = domain.JobCompleted
	job.Summary = &summary
	f.jobs[id] = job
	return nil
}
func (f *fakeJobRepo) Fail(_ context.Context, id string, errMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := f.jobs[id]
	job.State = domain.JobFailed
	job.ErrorMessage = errMessage
	f.jobs[id] = job
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeJobRepo, *fakeRouteRepo, *fakeShipmentRepo) {
	t.Helper()

	depot := domain.Depot{ID: "D1", Lat: 40.0, Lon: -74.0, Window: domain.TimeWindow{Start: 0, End: 1440}}
	vehicles := []domain.Vehicle{{ID: "V1", CapacityWeight: 1000, CapacityVolume: 20, Available: true, MinTemp: -20}}
	shipmentRepo := newFakeShipmentRepo(domain.Shipment{
		ID: "S1", Lat: 40.1, Lon: -74.1, Weight: 10, Volume: 1,
		Windows:        []domain.TimeWindow{{Start: 0, End: 1440}},
		ServiceMinutes: 10, TempCeiling: 5, SLA: domain.SLAStandard, Status: domain.ShipmentPending,
	})
	jobRepo := newFakeJobRepo()
	routeRepo := newFakeRouteRepo()

	orch := orchestrator.New(orchestrator.DefaultConfig(), orchestrator.Dependencies{
		Depots:    &fakeDepotRepo{depot: depot},
		Vehicles:  &fakeVehicleRepo{vehicles: vehicles},
		Shipments: shipmentRepo,
		Routes:    routeRepo,
		Jobs:      jobRepo,
	})

	srv := New(config.HTTPConfig{Port: 0, ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}, Dependencies{
		Orchestrator: orch,
		Depots:       &fakeDepotRepo{depot: depot},
		Vehicles:     &fakeVehicleRepo{vehicles: vehicles},
		Shipments:    shipmentRepo,
		Routes:       routeRepo,
		ModelConfig:  config.ModelConfig{DefaultAmbientTemp: 25, DefaultInitialVehicleTemp: 4},
		ReportConfig: config.ReportConfig{DefaultCompanyName: "Cold Chain Co", PDF: config.PDFConfig{
			MarginTop: 15, MarginBottom: 15, MarginLeft: 15, MarginRight: 15,
		}},
	})

	return srv, jobRepo, routeRepo, shipmentRepo
}

func TestHandleSubmitPlanReturnsAccepted(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"plan_date":                 "2026-08-01",
		"depot":                     "D1",
		"planned_departure_time":    "08:00",
		"ambient_temperature":       25.0,
		"initial_cargo_temperature": 4.0,
		"time_limit_seconds":        60,
		"strategy":                  "MINIMIZE_VEHICLES",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp planAcceptedDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, "PENDING", resp.State)
	assert.Equal(t, 1, resp.SnapshotCounts.Vehicles)
	assert.Equal(t, 1, resp.SnapshotCounts.Shipments)
}

func TestHandleSubmitPlanRejectsMissingDepot(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"plan_date":              "2026-08-01",
		"planned_departure_time": "08:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleJobStatusReturnsCompletedSummary(t *testing.T) {
	srv, jobRepo, _, _ := newTestServer(t)

	job := domain.Job{ID: "job-1", PlanDate: time.Now(), State: domain.JobCompleted, Progress: 100}
	summary := domain.PlanSummary{VehiclesUsed: 1, ShipmentsAssigned: 1, AllFeasible: true, RouteIDs: []string{"R1"}}
	job.Summary = &summary
	require.NoError(t, jobRepo.Create(context.Background(), job))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp jobDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "COMPLETED", resp.State)
	require.NotNil(t, resp.ResultSummary)
	assert.True(t, resp.ResultSummary.AllFeasible)
	assert.Equal(t, []string{"R1"}, resp.RouteIDs)
}

func TestHandleJobStatusNotFound(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/missing", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp errorDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(apperror.CodeNotFound), resp.Error.Code)
}

func TestHandleViolationsReportListsTemperatureBreaches(t *testing.T) {
	srv, jobRepo, routeRepo, _ := newTestServer(t)

	job := domain.Job{ID: "job-2", State: domain.JobCompleted}
	summary := domain.PlanSummary{Unassigned: []domain.UnassignedShipment{
		{ShipmentID: "S2", LikelyReasons: []domain.UnassignedDiagnostic{domain.DiagTimeWindow}},
	}}
	job.Summary = &summary
	require.NoError(t, jobRepo.Create(context.Background(), job))
	require.NoError(t, routeRepo.PersistPlan(context.Background(), "job-2", []domain.Route{{
		ID: "R1", VehicleID: "V1",
		Stops: []domain.Stop{{Sequence: 1, ShipmentID: "S1", PredictedArrivalTemp: 9, Feasible: false}},
	}}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-2/violations", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp violationsReportDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Violations, 1)
	assert.Equal(t, "S1", resp.Violations[0].ShipmentID)
	assert.InDelta(t, 4.0, resp.Violations[0].OvershootC, 1e-9)
	require.Len(t, resp.Unassigned, 1)
	assert.Equal(t, "S2", resp.Unassigned[0].ShipmentID)
}

func TestHandleMapDataRequiresJobAndDepot(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/map", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMapDataReturnsStopsWithCoordinates(t *testing.T) {
	srv, jobRepo, routeRepo, _ := newTestServer(t)

	job := domain.Job{ID: "job-3", State: domain.JobCompleted}
	require.NoError(t, jobRepo.Create(context.Background(), job))
	now := time.Now()
	require.NoError(t, routeRepo.PersistPlan(context.Background(), "job-3", []domain.Route{{
		ID: "R1", VehicleID: "V1",
		Stops: []domain.Stop{{Sequence: 1, ShipmentID: "S1", ArrivalTime: now, DepartureTime: now, Feasible: true}},
	}}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/map?job_id=job-3&depot_id=D1", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp mapDataDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "D1", resp.Depot.ID)
	require.Len(t, resp.Routes, 1)
	require.Len(t, resp.Routes[0].Stops, 1)
	assert.InDelta(t, 40.1, resp.Routes[0].Stops[0].Lat, 1e-9)
}

func TestHandleHealthReportsServing(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
