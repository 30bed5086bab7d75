package weather

import (
	"encoding/json"
	"strconv"
)

// DefaultForecastDays is the horizon used when a caller does not ask for one.
const DefaultForecastDays = 14

// HumidityUnsupported marks a record whose provider did not report humidity.
const HumidityUnsupported = -1

// CoordinateQuery is a validated latitude/longitude pair ready to be sent to a provider.
// Values are only produced by ParseCoordinate.
type CoordinateQuery struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`

	// text keeps the trimmed input so the canonical form matches what the caller sent.
	text string
}

// String returns the canonical "<lat>,<lon>" form.
func (c CoordinateQuery) String() string {
	if c.text != "" {
		return c.text
	}
	return c.Key()
}

// Key returns a text-independent "<lat>,<lon>" form, so "40.0,-74" and
// "40,-74.000" name the same place.
func (c CoordinateQuery) Key() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// ResolvedLocation is what a provider learned about a coordinate: a display
// name and, when available, its IANA timezone.
type ResolvedLocation struct {
	Name     string
	Lat      float64
	Lon      float64
	Timezone string
}

// RawPayload is a provider's native response body, returned unchanged by the
// client and consumed once by the matching Normalizer.
type RawPayload struct {
	Provider string
	Body     []byte
	// Location is set when the provider resolved the coordinate in a separate step.
	Location *ResolvedLocation
	// Days is the horizon that was requested.
	Days int
}

// HourlyForecastRecord is the canonical, provider-agnostic hourly forecast.
//
// Optional metrics are pointers: nil means the provider does not measure the
// value and serializes as null, so it never reads as a genuine zero.
type HourlyForecastRecord struct {
	Datetime        string   `json:"datetime" yaml:"datetime"`
	TemperatureF    float64  `json:"temperature_f" yaml:"temperature_f"`
	WindSpeedMph    float64  `json:"wind_speed_mph" yaml:"wind_speed_mph"`
	GustSpeedMph    *float64 `json:"gust_speed_mph" yaml:"gust_speed_mph"`
	PrecipitationIn *float64 `json:"precipitation_in" yaml:"precipitation_in"`
	Humidity        int      `json:"humidity" yaml:"humidity"` // HumidityUnsupported when missing
	DewPointF       *float64 `json:"dew_point_f" yaml:"dew_point_f"`
	WillItRain      int      `json:"will_it_rain" yaml:"will_it_rain"`
	ChanceOfRain    int      `json:"chance_of_rain" yaml:"chance_of_rain"`
	AirQualityIndex *int     `json:"air_quality_index" yaml:"air_quality_index"`
	Condition       string   `json:"condition" yaml:"condition"`
}

// EnvelopeLocation identifies the location an envelope refers to.
type EnvelopeLocation struct {
	Name string  `json:"name" yaml:"name"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Long float64 `json:"long" yaml:"long"`
}

// LocationForecastEnvelope is the per-location result returned to callers.
// Data is set iff Success; Error is set iff !Success.
type LocationForecastEnvelope struct {
	Success  bool                   `json:"success" yaml:"success"`
	Location EnvelopeLocation       `json:"location" yaml:"location"`
	Data     []HourlyForecastRecord `json:"data,omitempty" yaml:"data,omitempty"`
	Error    string                 `json:"error,omitempty" yaml:"error,omitempty"`
}

// envelopeWire keeps data present (possibly empty) on success and absent on failure.
type envelopeWire struct {
	Success  bool                    `json:"success" yaml:"success"`
	Location EnvelopeLocation        `json:"location" yaml:"location"`
	Data     *[]HourlyForecastRecord `json:"data,omitempty" yaml:"data,omitempty"`
	Error    string                  `json:"error,omitempty" yaml:"error,omitempty"`
}

func (e LocationForecastEnvelope) wire() envelopeWire {
	w := envelopeWire{Success: e.Success, Location: e.Location, Error: e.Error}
	if e.Success {
		data := e.Data
		if data == nil {
			data = []HourlyForecastRecord{}
		}
		w.Data = &data
	}
	return w
}

// MarshalJSON implements json.Marshaler.
func (e LocationForecastEnvelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wire())
}

// MarshalYAML implements yaml.Marshaler.
func (e LocationForecastEnvelope) MarshalYAML() (interface{}, error) {
	return e.wire(), nil
}

func successEnvelope(loc EnvelopeLocation, data []HourlyForecastRecord) LocationForecastEnvelope {
	if data == nil {
		data = []HourlyForecastRecord{}
	}
	return LocationForecastEnvelope{Success: true, Location: loc, Data: data}
}

func failedEnvelope(loc EnvelopeLocation, err error) LocationForecastEnvelope {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return LocationForecastEnvelope{Success: false, Location: loc, Error: msg}
}
