package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/google/uuid"

	"coldroute/internal/database"
	"coldroute/internal/domain"
	"coldroute/internal/telemetry"
)

// PostgresDepotRepository is the pgx-backed DepotRepository.
type PostgresDepotRepository struct{ db database.DB }

// NewPostgresDepotRepository builds a DepotRepository over db.
func NewPostgresDepotRepository(db database.DB) *PostgresDepotRepository {
	return &PostgresDepotRepository{db: db}
}

func (r *PostgresDepotRepository) Get(ctx context.Context, id string) (domain.Depot, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresDepotRepository.Get")
	defer span.End()

	var d domain.Depot
	err := r.db.QueryRow(ctx,
		`SELECT id, lat, lon, window_start, window_end FROM depots WHERE id = $1`, id,
	).Scan(&d.ID, &d.Lat, &d.Lon, &d.Window.Start, &d.Window.End)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Depot{}, ErrNotFound
		}
		return domain.Depot{}, fmt.Errorf("get depot: %w", err)
	}
	return d, nil
}

// PostgresVehicleRepository is the pgx-backed VehicleRepository.
type PostgresVehicleRepository struct{ db database.DB }

// NewPostgresVehicleRepository builds a VehicleRepository over db.
func NewPostgresVehicleRepository(db database.DB) *PostgresVehicleRepository {
	return &PostgresVehicleRepository{db: db}
}

func (r *PostgresVehicleRepository) ListAvailable(ctx context.Context) ([]domain.Vehicle, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresVehicleRepository.ListAvailable")
	defer span.End()

	rows, err := r.db.Query(ctx, `
		SELECT id, capacity_weight, capacity_volume, insulation, door_coefficient,
		       curtain, cooling_rate, min_temp, available, fixed_cost
		FROM vehicles WHERE available = TRUE ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list available vehicles: %w", err)
	}
	defer rows.Close()

	var out []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.CapacityWeight, &v.CapacityVolume, &v.Insulation,
			&v.DoorCoefficient, &v.Curtain, &v.CoolingRate, &v.MinTemp, &v.Available, &v.FixedCost); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresVehicleRepository) GetByID(ctx context.Context, id string) (domain.Vehicle, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresVehicleRepository.GetByID")
	defer span.End()

	var v domain.Vehicle
	err := r.db.QueryRow(ctx, `
		SELECT id, capacity_weight, capacity_volume, insulation, door_coefficient,
		       curtain, cooling_rate, min_temp, available, fixed_cost
		FROM vehicles WHERE id = $1`, id,
	).Scan(&v.ID, &v.CapacityWeight, &v.CapacityVolume, &v.Insulation, &v.DoorCoefficient,
		&v.Curtain, &v.CoolingRate, &v.MinTemp, &v.Available, &v.FixedCost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vehicle{}, ErrNotFound
		}
		return domain.Vehicle{}, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

// PostgresShipmentRepository is the pgx-backed ShipmentRepository.
type PostgresShipmentRepository struct{ db database.DB }

// NewPostgresShipmentRepository builds a ShipmentRepository over db.
func NewPostgresShipmentRepository(db database.DB) *PostgresShipmentRepository {
	return &PostgresShipmentRepository{db: db}
}

func (r *PostgresShipmentRepository) ListPending(ctx context.Context) ([]domain.Shipment, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresShipmentRepository.ListPending")
	defer span.End()

	rows, err := r.db.Query(ctx, `
		SELECT id, lat, lon, weight, volume, windows, service_minutes,
		       temp_ceiling, temp_floor, sla_tier, priority, status
		FROM shipments WHERE status = 'PENDING' ORDER BY priority DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list pending shipments: %w", err)
	}
	defer rows.Close()

	var out []domain.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresShipmentRepository) GetByID(ctx context.Context, id string) (domain.Shipment, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresShipmentRepository.GetByID")
	defer span.End()

	row := r.db.QueryRow(ctx, `
		SELECT id, lat, lon, weight, volume, windows, service_minutes,
		       temp_ceiling, temp_floor, sla_tier, priority, status
		FROM shipments WHERE id = $1`, id)
	s, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Shipment{}, ErrNotFound
		}
		return domain.Shipment{}, err
	}
	return s, nil
}

func (r *PostgresShipmentRepository) UpdateStatus(ctx context.Context, id string, status domain.ShipmentStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresShipmentRepository.UpdateStatus")
	defer span.End()

	tag, err := r.db.Exec(ctx, `UPDATE shipments SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update shipment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows, letting
// scanShipment serve both GetByID and ListPending.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (domain.Shipment, error) {
	var (
		s          domain.Shipment
		windowsRaw []byte
		tempFloor  pgtype.Float8
	)
	if err := row.Scan(&s.ID, &s.Lat, &s.Lon, &s.Weight, &s.Volume, &windowsRaw,
		&s.ServiceMinutes, &s.TempCeiling, &tempFloor, &s.SLA, &s.Priority, &s.Status); err != nil {
		return domain.Shipment{}, err
	}
	if err := json.Unmarshal(windowsRaw, &s.Windows); err != nil {
		return domain.Shipment{}, fmt.Errorf("decode shipment windows: %w", err)
	}
	if tempFloor.Valid {
		f := tempFloor.Float64
		s.TempFloor = &f
	}
	return s, nil
}

// PostgresJobRepository is the pgx-backed JobRepository.
type PostgresJobRepository struct{ db database.DB }

// NewPostgresJobRepository builds a JobRepository over db.
func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

func (r *PostgresJobRepository) Create(ctx context.Context, job domain.Job) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresJobRepository.Create")
	defer span.End()

	_, err := r.db.Exec(ctx, `
		INSERT INTO jobs (id, plan_date, state, progress, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		job.ID, job.PlanDate, job.State, job.Progress, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (r *PostgresJobRepository) Get(ctx context.Context, id string) (domain.Job, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresJobRepository.Get")
	defer span.End()

	var (
		j           domain.Job
		startedAt   pgtype.Timestamptz
		finishedAt  pgtype.Timestamptz
		summaryRaw  []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, plan_date, state, progress, created_at, started_at, finished_at, summary, error_message
		FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.PlanDate, &j.State, &j.Progress, &j.CreatedAt, &startedAt, &finishedAt, &summaryRaw, &j.ErrorMessage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Job{}, ErrNotFound
		}
		return domain.Job{}, fmt.Errorf("get job: %w", err)
	}
	if startedAt.Valid {
		t := startedAt.Time
		j.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		j.FinishedAt = &t
	}
	if len(summaryRaw) > 0 {
		var summary domain.PlanSummary
		if err := json.Unmarshal(summaryRaw, &summary); err != nil {
			return domain.Job{}, fmt.Errorf("decode job summary: %w", err)
		}
		j.Summary = &summary
	}
	return j, nil
}

func (r *PostgresJobRepository) UpdateState(ctx context.Context, id string, state domain.JobState) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresJobRepository.UpdateState")
	defer span.End()

	var startedAtClause string
	if state == domain.JobRunning {
		startedAtClause = ", started_at = now()"
	}
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`UPDATE jobs SET state = $1%s WHERE id = $2`, startedAtClause), state, id)
	if err != nil {
		return fmt.Errorf("update job state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresJobRepository.UpdateProgress")
	defer span.End()

	tag, err := r.db.Exec(ctx,
		`UPDATE jobs SET progress = $1 WHERE id = $2 AND progress <= $1`, progress, id)
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) Complete(ctx context.Context, id string, summary domain.PlanSummary) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresJobRepository.Complete")
	defer span.End()

	summaryRaw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode job summary: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE jobs SET state = $1, progress = 100, finished_at = now(), summary = $2
		WHERE id = $3`, domain.JobCompleted, summaryRaw, id)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) Fail(ctx context.Context, id string, errMessage string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresJobRepository.Fail")
	defer span.End()

	tag, err := r.db.Exec(ctx, `
		UPDATE jobs SET state = $1, finished_at = now(), error_message = $2
		WHERE id = $3`, domain.JobFailed, errMessage, id)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PostgresRouteRepository is the pgx-backed RouteRepository.
type PostgresRouteRepository struct{ db database.DB }

// NewPostgresRouteRepository builds a RouteRepository over db.
func NewPostgresRouteRepository(db database.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{db: db}
}

// PersistPlan replaces the job's routes and their stops inside one
// transaction, assigning a fresh UUID to routes that do not already carry
// one.
func (r *PostgresRouteRepository) PersistPlan(ctx context.Context, jobID string, routes []domain.Route) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRouteRepository.PersistPlan")
	defer span.End()

	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM routes WHERE job_id = $1`, jobID); err != nil {
			return fmt.Errorf("delete previous routes: %w", err)
		}
		for i := range routes {
			route := &routes[i]
			if route.ID == "" {
				route.ID = uuid.NewString()
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO routes (id, job_id, vehicle_id, total_distance_m, total_duration_min,
				                     initial_temp, final_temp, max_temp, feasible, version)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)`,
				route.ID, jobID, route.VehicleID, route.TotalDistanceM, route.TotalDurationMin,
				route.InitialTemp, route.FinalTemp, route.MaxTemp, route.Feasible)
			if err != nil {
				return fmt.Errorf("insert route: %w", err)
			}

			for _, stop := range route.Stops {
				_, err := tx.Exec(ctx, `
					INSERT INTO stops (route_id, sequence, shipment_id, arrival_time, departure_time,
					                   transit_rise, service_rise, cooling_applied, predicted_arrival_temp, feasible)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
					route.ID, stop.Sequence, stop.ShipmentID, stop.ArrivalTime, stop.DepartureTime,
					stop.TransitRise, stop.ServiceRise, stop.CoolingApplied, stop.PredictedArrivalTemp, stop.Feasible)
				if err != nil {
					return fmt.Errorf("insert stop: %w", err)
				}
			}
		}
		return nil
	})
}

func (r *PostgresRouteRepository) ListByJob(ctx context.Context, jobID string) ([]domain.Route, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRouteRepository.ListByJob")
	defer span.End()

	rows, err := r.db.Query(ctx, `
		SELECT id, vehicle_id, total_distance_m, total_duration_min,
		       initial_temp, final_temp, max_temp, feasible, version
		FROM routes WHERE job_id = $1 ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var routes []domain.Route
	for rows.Next() {
		var route domain.Route
		route.JobID = jobID
		if err := rows.Scan(&route.ID, &route.VehicleID, &route.TotalDistanceM, &route.TotalDurationMin,
			&route.InitialTemp, &route.FinalTemp, &route.MaxTemp, &route.Feasible, &route.Version); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		stops, err := r.listStops(ctx, route.ID)
		if err != nil {
			return nil, err
		}
		route.Stops = stops
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

func (r *PostgresRouteRepository) listStops(ctx context.Context, routeID string) ([]domain.Stop, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sequence, shipment_id, arrival_time, departure_time, transit_rise,
		       service_rise, cooling_applied, predicted_arrival_temp, feasible
		FROM stops WHERE route_id = $1 ORDER BY sequence`, routeID)
	if err != nil {
		return nil, fmt.Errorf("list stops: %w", err)
	}
	defer rows.Close()

	var stops []domain.Stop
	for rows.Next() {
		var s domain.Stop
		if err := rows.Scan(&s.Sequence, &s.ShipmentID, &s.ArrivalTime, &s.DepartureTime,
			&s.TransitRise, &s.ServiceRise, &s.CoolingApplied, &s.PredictedArrivalTemp, &s.Feasible); err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

// UpdateVersion applies an optimistic-concurrency update: the WHERE clause
// on both id and version means a concurrent writer's version bump causes
// this to affect zero rows, surfaced as ErrConflict.
func (r *PostgresRouteRepository) UpdateVersion(ctx context.Context, route domain.Route, expectedVersion int) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRouteRepository.UpdateVersion")
	defer span.End()

	tag, err := r.db.Exec(ctx, `
		UPDATE routes SET total_distance_m = $1, total_duration_min = $2, initial_temp = $3,
		                   final_temp = $4, max_temp = $5, feasible = $6, version = version + 1
		WHERE id = $7 AND version = $8`,
		route.TotalDistanceM, route.TotalDurationMin, route.InitialTemp, route.FinalTemp,
		route.MaxTemp, route.Feasible, route.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update route version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}
