package httpapi

import "time"

// planRequestDTO is the JSON body accepted by POST /api/v1/plans, per
// SPEC_FULL.md §6's plan-request endpoint.
type planRequestDTO struct {
	PlanDate                string  `json:"plan_date"`
	DepotID                 string  `json:"depot"`
	PlannedDepartureTime    string  `json:"planned_departure_time"`
	AmbientTemperature      *float64 `json:"ambient_temperature"`
	InitialCargoTemperature *float64 `json:"initial_cargo_temperature"`
	TimeLimitSeconds        int     `json:"time_limit_seconds"`
	Strategy                string  `json:"strategy"`
}

// planAcceptedDTO is returned immediately from a successful submission.
type planAcceptedDTO struct {
	JobID           string         `json:"job_id"`
	State           string         `json:"state"`
	SnapshotCounts  snapshotCounts `json:"snapshot_counts"`
}

type snapshotCounts struct {
	Vehicles  int `json:"vehicles"`
	Shipments int `json:"shipments"`
}

// jobDTO is the job-status endpoint's full response.
type jobDTO struct {
	JobID         string          `json:"job_id"`
	PlanDate      string          `json:"plan_date"`
	State         string          `json:"state"`
	Progress      int             `json:"progress"`
	CreatedAt     time.Time       `json:"created_at"`
	StartedAt     *time.Time      `json:"started_at,omitempty"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
	ResultSummary *planSummaryDTO `json:"result_summary,omitempty"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	RouteIDs      []string        `json:"route_ids,omitempty"`
}

type planSummaryDTO struct {
	TotalDistanceM      float64  `json:"total_distance_m"`
	TotalDurationMin    float64  `json:"total_duration_min"`
	VehiclesUsed        int      `json:"vehicles_used"`
	ShipmentsAssigned   int      `json:"shipments_assigned"`
	ShipmentsUnassigned int      `json:"shipments_unassigned"`
	AllFeasible         bool     `json:"all_feasible"`
	RouteIDs            []string `json:"route_ids"`
}

// violationsReportDTO is the violations report endpoint's response.
type violationsReportDTO struct {
	JobID      string                `json:"job_id"`
	Violations []violationDTO        `json:"violations"`
	Unassigned []unassignedDTO       `json:"unassigned"`
}

type violationDTO struct {
	RouteID              string  `json:"route_id"`
	ShipmentID           string  `json:"shipment_id"`
	SLA                  string  `json:"sla"`
	PredictedArrivalTemp float64 `json:"predicted_arrival_temp"`
	TempCeiling          float64 `json:"temp_ceiling"`
	OvershootC           float64 `json:"overshoot_c"`
}

type unassignedDTO struct {
	ShipmentID       string   `json:"shipment_id"`
	LikelyReasons    []string `json:"likely_reasons"`
	Parameter        string   `json:"parameter"`
	CurrentValue     float64  `json:"current_value"`
	ConstraintValue  float64  `json:"constraint_value"`
}

// mapDataDTO is the map-data endpoint's response.
type mapDataDTO struct {
	Depot  depotDTO    `json:"depot"`
	Routes []routeMapDTO `json:"routes"`
}

type depotDTO struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type routeMapDTO struct {
	RouteID   string        `json:"route_id"`
	VehicleID string        `json:"vehicle_id"`
	Feasible  bool          `json:"feasible"`
	Stops     []stopMapDTO  `json:"stops"`
}

type stopMapDTO struct {
	Sequence             int       `json:"sequence"`
	ShipmentID           string    `json:"shipment_id"`
	Lat                  float64   `json:"lat"`
	Lon                  float64   `json:"lon"`
	ArrivalTime          time.Time `json:"arrival_time"`
	DepartureTime        time.Time `json:"departure_time"`
	PredictedArrivalTemp float64   `json:"predicted_arrival_temp"`
	TempCeiling          float64   `json:"temp_ceiling"`
	Feasible             bool      `json:"feasible"`
}

// errorDTO is the standard error envelope for every non-2xx response.
type errorDTO struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
