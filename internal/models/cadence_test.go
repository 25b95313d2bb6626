package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalDurationThirtyMin(t *testing.T) {
	assert.Equal(t, 30*time.Minute, IntervalThirtyMin.Duration())
}

func TestIntervalDurationHourly(t *testing.T) {
	assert.Equal(t, time.Hour, IntervalHourly.Duration())
}
