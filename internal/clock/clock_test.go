package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UsesZone(t *testing.T) {
	c, err := New("Asia/Kolkata")
	require.NoError(t, err)

	_, offset := c.Now().Zone()
	assert.Equal(t, 5*3600+30*60, offset)
	assert.Equal(t, "Asia/Kolkata", c.Location().String())
}

func TestNew_InvalidZone(t *testing.T) {
	_, err := New("Mars/Olympus")
	assert.Error(t, err)
}

func TestFixed_Advance(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewFixed(start)
	c.Advance(90 * time.Minute)

	assert.Equal(t, start.Add(90*time.Minute), c.Now())
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2024, 3, 1, 23, 59, 10, 5, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
}
