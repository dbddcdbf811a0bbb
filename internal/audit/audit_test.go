package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	l, err := New(Config{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, l.Log(context.Background(), Entry{}))
	require.NoError(t, l.Close())
}

func TestBuilderBuildsEntry(t *testing.T) {
	entry := NewEntry(ActionPlanSubmit).
		Method("POST /plans").
		Outcome(OutcomeSuccess).
		Client("10.0.0.1").
		Resource("depot", "D1").
		RequestID("req-1").
		Duration(250 * time.Millisecond).
		Meta("vehicle_count", 4).
		Build()

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, ActionPlanSubmit, entry.Action)
	assert.Equal(t, OutcomeSuccess, entry.Outcome)
	assert.Equal(t, "D1", entry.ResourceID)
	assert.Equal(t, int64(250), entry.DurationMs)
	assert.Equal(t, 4, entry.Metadata["vehicle_count"])
}

func TestFileLoggerWritesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := newFileLogger(Config{FilePath: path, BufferSize: 10, FlushPeriod: 10 * time.Millisecond})
	require.NoError(t, err)

	entry := NewEntry(ActionShipmentUpdate).Outcome(OutcomeSuccess).Build()
	require.NoError(t, l.Log(context.Background(), entry))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), string(ActionShipmentUpdate))
}
