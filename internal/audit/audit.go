// Package audit records who submitted a planning job, queried a plan, or
// edited a shipment/vehicle record, independent of the structured
// application logs in internal/logger.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"coldroute/internal/config"
)

// Action names the kind of operation an audit entry records.
type Action string

const (
	ActionPlanSubmit     Action = "PLAN_SUBMIT"
	ActionPlanView       Action = "PLAN_VIEW"
	ActionShipmentCreate Action = "SHIPMENT_CREATE"
	ActionShipmentUpdate Action = "SHIPMENT_UPDATE"
	ActionVehicleUpdate  Action = "VEHICLE_UPDATE"
	ActionReportExport   Action = "REPORT_EXPORT"
)

// Outcome is the result of the audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
	OutcomeDenied  Outcome = "DENIED"
)

// Entry is one audit log record.
type Entry struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Method       string         `json:"method"`
	Action       Action         `json:"action"`
	Outcome      Outcome        `json:"outcome"`
	ClientIP     string         `json:"client_ip,omitempty"`
	Resource     string         `json:"resource,omitempty"`
	ResourceID   string         `json:"resource_id,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	DurationMs   int64          `json:"duration_ms"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Logger is the audit-trail write surface.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
	Close() error
}

// Config mirrors config.AuditConfig's fields this package acts on.
type Config struct {
	Enabled     bool
	Backend     string
	FilePath    string
	BufferSize  int
	FlushPeriod time.Duration
}

// FromConfig builds a Config from the process's audit configuration block.
func FromConfig(cfg config.AuditConfig) Config {
	return Config{
		Enabled:     cfg.Enabled,
		Backend:     cfg.Backend,
		FilePath:    cfg.FilePath,
		BufferSize:  cfg.BufferSize,
		FlushPeriod: cfg.FlushPeriod,
	}
}

// New builds the Logger backend named by cfg.Backend, or a no-op logger
// when auditing is disabled.
func New(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return noopLogger{}, nil
	}

	switch cfg.Backend {
	case "file":
		return newFileLogger(cfg)
	default:
		return stdoutLogger{}, nil
	}
}

// Builder provides a fluent API for constructing an Entry.
type Builder struct {
	entry Entry
}

// NewEntry starts a Builder with a fresh ID and timestamp.
func NewEntry(action Action) *Builder {
	return &Builder{entry: Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Action:    action,
		Metadata:  make(map[string]any),
	}}
}

func (b *Builder) Method(m string) *Builder        { b.entry.Method = m; return b }
func (b *Builder) Outcome(o Outcome) *Builder      { b.entry.Outcome = o; return b }
func (b *Builder) Client(ip string) *Builder       { b.entry.ClientIP = ip; return b }
func (b *Builder) Resource(kind, id string) *Builder {
	b.entry.Resource, b.entry.ResourceID = kind, id
	return b
}
func (b *Builder) RequestID(id string) *Builder         { b.entry.RequestID = id; return b }
func (b *Builder) Duration(d time.Duration) *Builder    { b.entry.DurationMs = d.Milliseconds(); return b }
func (b *Builder) Error(message string) *Builder        { b.entry.ErrorMessage = message; return b }
func (b *Builder) Meta(key string, value any) *Builder  { b.entry.Metadata[key] = value; return b }
func (b *Builder) Build() Entry                         { return b.entry }

// MarshalJSON is defined explicitly so adding unexported fields later
// doesn't silently change the audit wire format.
func (e Entry) MarshalJSON() ([]byte, error) {
	type alias Entry
	return json.Marshal(alias(e))
}
