package audit

import (
	"time"

	"swiftpos/internal/models"

	"github.com/google/uuid"
)

// Log is an append-only, creation-ordered record of operator actions.
// It exposes no edit or delete.
type Log struct {
	actorID string
	entries []models.AuditLogEntry
	now     func() time.Time
}

// NewLog creates an empty log attributed to a fixed actor
func NewLog(actorID string) *Log {
	return &Log{
		actorID: actorID,
		now:     time.Now,
	}
}

// Append records an action and returns the new entry
func (l *Log) Append(action, details string) models.AuditLogEntry {
	entry := models.AuditLogEntry{
		ID:        uuid.New().String(),
		Timestamp: l.now(),
		ActorID:   l.actorID,
		Action:    action,
		Details:   details,
	}
	l.entries = append(l.entries, entry)
	return entry
}

// Entries returns entries in creation order
func (l *Log) Entries() []models.AuditLogEntry {
	return append([]models.AuditLogEntry{}, l.entries...)
}

// Recent returns entries most recent first
func (l *Log) Recent() []models.AuditLogEntry {
	out := make([]models.AuditLogEntry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Tail returns up to n of the newest entries in creation order
func (l *Log) Tail(n int) []models.AuditLogEntry {
	if n <= 0 {
		return []models.AuditLogEntry{}
	}
	start := len(l.entries) - n
	if start < 0 {
		start = 0
	}
	return append([]models.AuditLogEntry{}, l.entries[start:]...)
}

