// Package audit records agent decisions with full context. Every significant
// decision across the coaching components (feedback interpretation, conflict
// resolution, plan generation, progress logging) is appended to the audit
// store so the reasoning behind a plan can be reconstructed later.
package audit

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/storage"
)

// Recorder is the narrow interface components use to log decisions.
type Recorder interface {
	// Record logs one decision. agent names the component, action describes
	// what was decided, userID ties the decision to a user ("system" when
	// none applies). reason may be empty; metadata may be nil.
	Record(agent, action, userID, reason string, metadata map[string]any)
}

// AuditStore is the storage surface the Logger needs.
type AuditStore interface {
	AppendAudit(storage.AuditRecord) error
}

// Logger persists decision records and mirrors them to slog. A failed append
// is logged and swallowed: auditing must never break the operation it is
// auditing.
type Logger struct {
	store AuditStore
}

// NewLogger creates a Logger backed by the given store.
func NewLogger(store AuditStore) *Logger {
	return &Logger{store: store}
}

func (l *Logger) Record(agent, action, userID, reason string, metadata map[string]any) {
	rec := storage.AuditRecord{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Agent:     agent,
		Action:    action,
		UserID:    userID,
		Reason:    reason,
	}
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			slog.Warn("audit metadata not serializable, dropping", "agent", agent, "error", err)
		} else {
			rec.Metadata = string(b)
		}
	}

	if err := l.store.AppendAudit(rec); err != nil {
		slog.Warn("failed to append audit record", "agent", agent, "action", action, "error", err)
		return
	}
	slog.Debug("decision recorded", "agent", agent, "action", action, "user", userID)
}

// Nop is a Recorder that discards everything. Used by tests and by
// components constructed without an audit store.
type Nop struct{}

func (Nop) Record(agent, action, userID, reason string, metadata map[string]any) {}
