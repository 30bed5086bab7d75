package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCelsiusToFahrenheit(t *testing.T) {
	assert.Equal(t, 32.0, CelsiusToFahrenheit(0))
	assert.Equal(t, 212.0, CelsiusToFahrenheit(100))
	assert.Equal(t, -40.0, CelsiusToFahrenheit(-40))
	assert.Equal(t, 83.0, Round(CelsiusToFahrenheit(28.333), 1))
}

func TestSpeedConversions(t *testing.T) {
	assert.InDelta(t, 6.21371, KmhToMph(10), 1e-9)
	assert.InDelta(t, 22.36936, MetersPerSecondToMph(10), 1e-9)
	assert.InDelta(t, 11.50779, KnotsToMph(10), 1e-9)
	assert.InDelta(t, 0.393701, MillimetersToInches(10), 1e-9)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.2, Round(1.24, 1))
	assert.Equal(t, 1.3, Round(1.25, 1))
	assert.Equal(t, 2.0, Round(1.999, 2))
}

func TestRainFlag(t *testing.T) {
	assert.Equal(t, 0, RainFlag(0))
	assert.Equal(t, 1, RainFlag(1))
	assert.Equal(t, 1, RainFlag(0.5))
}
