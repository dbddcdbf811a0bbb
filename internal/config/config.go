// Package config defines coldroute's process-wide immutable configuration
// record, loaded once at startup and passed down by value/pointer to every
// component. Nothing under internal/ mutates it after Load returns.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration object, mirroring SPEC_FULL.md §10/§11's
// ambient stack plus the solver/model tunables named in spec.md §6.
type Config struct {
	App       AppConfig       `koanf:"app"`
	HTTP      HTTPConfig      `koanf:"http"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Audit     AuditConfig     `koanf:"audit"`
	Solver    SolverConfig    `koanf:"solver"`
	Model     ModelConfig     `koanf:"model"`
	Report    ReportConfig    `koanf:"report"`
}

// AppConfig carries process identity.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	Debug       bool   `koanf:"debug"`
}

// HTTPConfig configures the §6 transport edge.
type HTTPConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig configures the slog-based logger.
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	Output     string `koanf:"output"`
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"`
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// DatabaseConfig configures the pgx-backed persistence layer.
type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN renders a libpq-style connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
	)
}

// CacheConfig configures the progress/model-snapshot cache.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// Address renders the cache backend's network address.
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RateLimitConfig configures the plan-request endpoint's limiter.
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Requests        int           `koanf:"requests"`
	Window          time.Duration `koanf:"window"`
	Backend         string        `koanf:"backend"`
	BurstSize       int           `koanf:"burst_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// AuditConfig configures the audit trail for plan requests and job writes.
type AuditConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Backend     string        `koanf:"backend"`
	FilePath    string        `koanf:"file_path"`
	BufferSize  int           `koanf:"buffer_size"`
	FlushPeriod time.Duration `koanf:"flush_period"`
}

// SolverConfig configures the search itself (§4.4, §5).
type SolverConfig struct {
	TimeLimitDefault     time.Duration `koanf:"time_limit_default"`
	TimeLimitMax         time.Duration `koanf:"time_limit_max"`
	EnableLaborDimension bool          `koanf:"enable_labor_dimension"`
	DriverDailyLimitMin  int           `koanf:"driver_daily_limit_minutes"`
	DriverWeeklyLimitMin int           `koanf:"driver_weekly_limit_minutes"`
	ExpansionLimit       int           `koanf:"expansion_limit"`
	WorkerPoolSize       int           `koanf:"worker_pool_size"`
	ProgressInterval     time.Duration `koanf:"progress_interval"`
}

// ModelConfig configures model construction (§4.3, §6).
type ModelConfig struct {
	AverageSpeedKMH          float64 `koanf:"average_speed_kmh"`
	DefaultAmbientTemp       float64 `koanf:"default_ambient_temperature"`
	DefaultInitialVehicleTemp float64 `koanf:"default_initial_vehicle_temp"`
	VehicleFixedCost         int     `koanf:"vehicle_fixed_cost"`
	TempViolationPenalty     int     `koanf:"temp_violation_penalty"`
	LateDeliveryPenalty      int     `koanf:"late_delivery_penalty"`
	InfeasibleCost           int     `koanf:"infeasible_cost"`
}

// ReportConfig configures the PDF/Excel violations report export.
type ReportConfig struct {
	DefaultCompanyName string    `koanf:"default_company_name"`
	PDF                PDFConfig `koanf:"pdf"`
}

// PDFConfig configures the maroto-driven PDF generator.
type PDFConfig struct {
	PageSize       string  `koanf:"page_size"`
	Orientation    string  `koanf:"orientation"`
	MarginTop      float64 `koanf:"margin_top"`
	MarginBottom   float64 `koanf:"margin_bottom"`
	MarginLeft     float64 `koanf:"margin_left"`
	MarginRight    float64 `koanf:"margin_right"`
	FontFamily     string  `koanf:"font_family"`
}

// Validate checks invariants that loadDefaults/loadEnv cannot guarantee on
// their own (out-of-range ports, unknown enums).
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Solver.TimeLimitDefault <= 0 {
		errs = append(errs, "solver.time_limit_default must be positive")
	}
	if c.Solver.TimeLimitMax < c.Solver.TimeLimitDefault {
		errs = append(errs, "solver.time_limit_max must be >= solver.time_limit_default")
	}
	if c.Model.AverageSpeedKMH <= 0 {
		errs = append(errs, "model.average_speed_kmh must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsDevelopment reports whether the process is running in a dev environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}
