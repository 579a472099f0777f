package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintRepeatable(t *testing.T) {
	s := series("Humidity", 60, 61, 62.5)
	assert.Equal(t, ComputeFingerprint(s), ComputeFingerprint(s))
	assert.Equal(t, ComputeFingerprint(s), ComputeFingerprint(series("Humidity", 60, 61, 62.5)))
}

func TestFingerprintSensitivity(t *testing.T) {
	base := series("Humidity", 60, 61, 62)
	fp := ComputeFingerprint(base)

	value := series("Humidity", 60, 61, 62.0001)
	assert.NotEqual(t, fp, ComputeFingerprint(value), "value change")

	shifted := series("Humidity", 60, 61, 62)
	shifted.Readings[1].Timestamp = shifted.Readings[1].Timestamp.Add(time.Second)
	assert.NotEqual(t, fp, ComputeFingerprint(shifted), "timestamp change")

	swapped := series("Humidity", 60, 61, 62)
	swapped.Readings[0], swapped.Readings[1] = swapped.Readings[1], swapped.Readings[0]
	assert.NotEqual(t, fp, ComputeFingerprint(swapped), "order change")

	assert.NotEqual(t, fp, ComputeFingerprint(series("Humidity", 60, 61)), "length change")
	assert.NotEqual(t, fp, ComputeFingerprint(series("Humidity", 60, 61, 62, 63)), "appended reading")
}

func TestHasChanged(t *testing.T) {
	var state ChangeState
	s := series("Humidity", 60, 61)

	changed, next := HasChanged(state, s)
	assert.True(t, changed)
	assert.True(t, next.Seen)

	changed, again := HasChanged(next, s)
	assert.False(t, changed)
	assert.Equal(t, next, again)

	changed, _ = HasChanged(next, series("Humidity", 60, 61, 62))
	assert.True(t, changed)
}

func TestHasChangedEmptySeries(t *testing.T) {
	prev := ChangeState{Fingerprint: 42, Seen: true}
	changed, next := HasChanged(prev, series("Humidity"))
	assert.False(t, changed)
	assert.Equal(t, prev, next)

	changed, next = HasChanged(ChangeState{}, series("Humidity"))
	assert.False(t, changed)
	assert.False(t, next.Seen)
}
