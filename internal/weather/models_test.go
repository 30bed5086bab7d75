package weather

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decodeMap(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestEnvelopeJSONSuccess(t *testing.T) {
	env := successEnvelope(EnvelopeLocation{Name: "Huntington", Lat: 38.4, Long: -82.4}, nil)
	m := decodeMap(t, env)

	assert.Equal(t, true, m["success"])
	assert.Equal(t, []interface{}{}, m["data"])
	assert.NotContains(t, m, "error")
}

func TestEnvelopeJSONFailure(t *testing.T) {
	env := failedEnvelope(EnvelopeLocation{Name: "bad"}, errors.New("boom"))
	m := decodeMap(t, env)

	assert.Equal(t, false, m["success"])
	assert.Equal(t, "boom", m["error"])
	assert.NotContains(t, m, "data")
	loc := m["location"].(map[string]interface{})
	assert.Equal(t, 0.0, loc["lat"])
	assert.Equal(t, 0.0, loc["long"])
}

func TestFailedEnvelopeNeverHasEmptyError(t *testing.T) {
	assert.Equal(t, "unknown error", failedEnvelope(EnvelopeLocation{}, nil).Error)
	assert.Equal(t, "unknown error", failedEnvelope(EnvelopeLocation{}, errors.New("")).Error)
}

func TestRecordMissingGustIsNullNotZero(t *testing.T) {
	missing := decodeMap(t, HourlyForecastRecord{Humidity: HumidityUnsupported})
	calm := decodeMap(t, HourlyForecastRecord{GustSpeedMph: Float(0)})

	assert.Contains(t, missing, "gust_speed_mph")
	assert.Nil(t, missing["gust_speed_mph"])
	assert.Nil(t, missing["precipitation_in"])
	assert.Nil(t, missing["air_quality_index"])
	assert.Equal(t, -1.0, missing["humidity"])
	assert.Equal(t, 0.0, calm["gust_speed_mph"])
}

func TestEnvelopeYAML(t *testing.T) {
	ok, err := yaml.Marshal(successEnvelope(EnvelopeLocation{Name: "x"}, nil))
	require.NoError(t, err)
	assert.Contains(t, string(ok), "data: []")
	assert.NotContains(t, string(ok), "error:")

	failed, err := yaml.Marshal(failedEnvelope(EnvelopeLocation{Name: "x"}, errors.New("boom")))
	require.NoError(t, err)
	assert.Contains(t, string(failed), "error: boom")
	assert.NotContains(t, string(failed), "data:")
}
