package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditStatus labels the outcome of an audited operation.
type AuditStatus string

// Audit outcomes.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry captures a single service operation for compliance trails.
type AuditEntry struct {
	ID         string      `json:"id"`
	Operation  string      `json:"operation"`
	Status     AuditStatus `json:"status"`
	Entity     EntityType  `json:"entity,omitempty"`
	EntityID   string      `json:"entity_id,omitempty"`
	Error      string      `json:"error,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// AuditRecorder receives audit entries emitted by the service layer.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MetricsRecorder receives per-operation timing and outcome observations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a span with the operation outcome.
type TraceSpan interface {
	End(err error)
}

// ZapAuditRecorder writes audit entries as structured log lines.
type ZapAuditRecorder struct {
	logger *zap.Logger
}

// NewZapAuditRecorder constructs a recorder over the supplied logger. A nil
// logger falls back to zap.NewNop.
func NewZapAuditRecorder(logger *zap.Logger) *ZapAuditRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapAuditRecorder{logger: logger}
}

// Record implements AuditRecorder.
func (r *ZapAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	fields := []zap.Field{
		zap.String("audit_id", entry.ID),
		zap.String("operation", entry.Operation),
		zap.String("status", string(entry.Status)),
		zap.Time("occurred_at", entry.OccurredAt),
	}
	if entry.Entity != "" {
		fields = append(fields, zap.String("entity", string(entry.Entity)), zap.String("entity_id", entry.EntityID))
	}
	if entry.Error != "" {
		fields = append(fields, zap.String("error", entry.Error))
		r.logger.Warn("audit", fields...)
		return
	}
	r.logger.Info("audit", fields...)
}
