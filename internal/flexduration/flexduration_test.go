package flexduration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGoDuration(t *testing.T) {
	d, err := Parse("90s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}

func TestParseTimecode(t *testing.T) {
	d, err := Parse("01:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Hour+30*time.Minute, d)
}

func TestParseTimecodeWithMillis(t *testing.T) {
	d, err := Parse("00:05:30.500")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute+30*time.Second+500*time.Millisecond, d)
}

func TestParseISO8601(t *testing.T) {
	d, err := Parse("PT1H30M")
	require.NoError(t, err)
	assert.Equal(t, time.Hour+30*time.Minute, d)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not-a-duration")
	assert.Error(t, err)
}
