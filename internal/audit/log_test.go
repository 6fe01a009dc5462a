package audit

import (
	"testing"
	"time"

	"swiftpos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	l := NewLog("User-1")
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	e := l.Append("Added to Cart", "Added 2x Beer")

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "User-1", e.ActorID)
	assert.Equal(t, "Added to Cart", e.Action)
	assert.Equal(t, "Added 2x Beer", e.Details)
	assert.Equal(t, fixed, e.Timestamp)
	assert.Len(t, l.Entries(), 1)
}

func TestOrdering(t *testing.T) {
	l := NewLog("User-1")
	a := l.Append("a", "")
	b := l.Append("b", "")
	c := l.Append("c", "")

	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(l.Entries()))
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, ids(l.Recent()))
	assert.Equal(t, []string{b.ID, c.ID}, ids(l.Tail(2)))
	assert.Len(t, l.Tail(10), 3)
	assert.Empty(t, l.Tail(0))
}

func TestUniqueIDs(t *testing.T) {
	l := NewLog("User-1")
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		e := l.Append("x", "")
		require.False(t, seen[e.ID])
		seen[e.ID] = true
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	l := NewLog("User-1")
	l.Append("a", "")

	entries := l.Entries()
	entries[0].Action = "tampered"

	assert.Equal(t, "a", l.Entries()[0].Action)
}

func ids(entries []models.AuditLogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
