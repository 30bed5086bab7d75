package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-forecast/internal/common"
	"github.com/i474232898/weather-forecast/internal/weather"
)

// NameNWS identifies the US National Weather Service provider.
const NameNWS = "nws"

// NWSClient implements weather.ProviderClient for api.weather.gov. A forecast
// takes two calls: /points resolves the coordinate to a grid forecast URL,
// then the hourly grid forecast is fetched in SI units.
type NWSClient struct {
	baseURL string
	contact string
	http    *transport
}

// NewNWSClient creates a client; contact is sent as User-Agent, which the API requires.
func NewNWSClient(httpCfg HTTPClientConfig, baseURL, contact string) *NWSClient {
	return &NWSClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		contact: contact,
		http:    newTransport(NameNWS, httpCfg),
	}
}

func (p *NWSClient) Name() string {
	return NameNWS
}

type nwsPointsResponse struct {
	Properties struct {
		ForecastHourly   string `json:"forecastHourly"`
		TimeZone         string `json:"timeZone"`
		RelativeLocation struct {
			Properties struct {
				City  string `json:"city"`
				State string `json:"state"`
			} `json:"properties"`
		} `json:"relativeLocation"`
	} `json:"properties"`
}

// FetchForecast resolves coord to its grid and returns the hourly forecast body.
func (p *NWSClient) FetchForecast(ctx context.Context, coord weather.CoordinateQuery, days int) (weather.RawPayload, error) {
	headers := map[string]string{
		"User-Agent": p.contact,
		"Accept":     "application/geo+json",
	}

	pointURL := fmt.Sprintf("%s/points/%.4f,%.4f", p.baseURL, coord.Latitude, coord.Longitude)
	body, err := p.http.get(ctx, coord.Key(), "points", pointURL, nil, headers)
	if err != nil {
		return weather.RawPayload{}, err
	}

	var points nwsPointsResponse
	if err := json.Unmarshal(body, &points); err != nil {
		return weather.RawPayload{}, &weather.UpstreamError{Provider: NameNWS, Op: "points", Err: err}
	}
	if points.Properties.ForecastHourly == "" {
		return weather.RawPayload{}, &weather.UpstreamError{
			Provider: NameNWS,
			Op:       "points",
			Err:      errors.New("response has no hourly forecast link"),
		}
	}

	resolved := &weather.ResolvedLocation{
		Name:     locationName(points),
		Lat:      coord.Latitude,
		Lon:      coord.Longitude,
		Timezone: points.Properties.TimeZone,
	}

	params := url.Values{}
	params.Set("units", "si")
	body, err = p.http.get(ctx, coord.Key(), "forecast", points.Properties.ForecastHourly, params, headers)
	if err != nil {
		var upErr *weather.UpstreamError
		if errors.As(err, &upErr) {
			upErr.Resolved = resolved
		}
		return weather.RawPayload{}, err
	}

	return weather.RawPayload{Provider: NameNWS, Body: body, Location: resolved, Days: days}, nil
}

func locationName(points nwsPointsResponse) string {
	rel := points.Properties.RelativeLocation.Properties
	switch {
	case rel.City != "" && rel.State != "":
		return rel.City + ", " + rel.State
	default:
		return rel.City
	}
}

// nwsQuantity accepts the shapes the API uses for a measured value: a bare
// number, a {"unitCode","value"} object, or a string such as "10 to 15 km/h".
type nwsQuantity struct {
	Value *float64
	Unit  string
}

func (q *nwsQuantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '{':
		var obj struct {
			UnitCode string   `json:"unitCode"`
			Value    *float64 `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		q.Value, q.Unit = obj.Value, obj.UnitCode
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		q.Value, q.Unit = parseQuantityText(s)
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		q.Value = &v
	}
	return nil
}

// parseQuantityText takes the last number in s, and the word after it as unit.
func parseQuantityText(s string) (*float64, string) {
	fields := strings.Fields(s)
	for i := len(fields) - 1; i >= 0; i-- {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			continue
		}
		unit := ""
		if i+1 < len(fields) {
			unit = fields[i+1]
		}
		return &v, unit
	}
	return nil, ""
}

type nwsForecastResponse struct {
	Properties *struct {
		Periods *[]nwsPeriod `json:"periods"`
	} `json:"properties"`
}

type nwsPeriod struct {
	StartTime                  string      `json:"startTime"`
	Temperature                nwsQuantity `json:"temperature"`
	TemperatureUnit            string      `json:"temperatureUnit"`
	WindSpeed                  nwsQuantity `json:"windSpeed"`
	WindGust                   nwsQuantity `json:"windGust"`
	RelativeHumidity           nwsQuantity `json:"relativeHumidity"`
	Dewpoint                   nwsQuantity `json:"dewpoint"`
	ProbabilityOfPrecipitation nwsQuantity `json:"probabilityOfPrecipitation"`
	ShortForecast              string      `json:"shortForecast"`
}

// NWSNormalizer maps hourly grid forecasts into canonical records. Values
// without an explicit unit are taken as SI, the unit system the client requests.
// Precipitation amount and air quality are not published by this endpoint.
type NWSNormalizer struct{}

// Normalize converts properties.periods in upstream order, capped at days*24 hours.
func (NWSNormalizer) Normalize(payload weather.RawPayload) ([]weather.HourlyForecastRecord, error) {
	var resp nwsForecastResponse
	if err := json.Unmarshal(payload.Body, &resp); err != nil {
		return nil, &weather.SchemaError{Provider: NameNWS, Reason: "decode", Err: err}
	}
	if resp.Properties == nil || resp.Properties.Periods == nil {
		return nil, &weather.SchemaError{Provider: NameNWS, Reason: "missing properties.periods"}
	}

	periods := *resp.Properties.Periods
	if payload.Days > 0 && len(periods) > payload.Days*24 {
		periods = periods[:payload.Days*24]
	}

	records := make([]weather.HourlyForecastRecord, 0, len(periods))
	for _, p := range periods {
		records = append(records, p.record())
	}
	return records, nil
}

// Locate returns the location resolved by the points lookup.
func (NWSNormalizer) Locate(payload weather.RawPayload) *weather.ResolvedLocation {
	return payload.Location
}

func (p nwsPeriod) record() weather.HourlyForecastRecord {
	r := weather.HourlyForecastRecord{
		Datetime:  p.StartTime,
		Humidity:  weather.HumidityUnsupported,
		Condition: p.ShortForecast,
	}

	tempUnit := p.Temperature.Unit
	if tempUnit == "" {
		tempUnit = p.TemperatureUnit
	}
	if f, ok := fahrenheit(p.Temperature.Value, tempUnit); ok {
		r.TemperatureF = weather.Round(f, 1)
	}
	if f, ok := fahrenheit(p.Dewpoint.Value, p.Dewpoint.Unit); ok {
		r.DewPointF = weather.Float(weather.Round(f, 1))
	}

	if mph, ok := milesPerHour(p.WindSpeed.Value, p.WindSpeed.Unit); ok {
		r.WindSpeedMph = mph
	}
	if mph, ok := milesPerHour(p.WindGust.Value, p.WindGust.Unit); ok {
		r.GustSpeedMph = weather.Float(mph)
	}

	if p.RelativeHumidity.Value != nil {
		r.Humidity = int(math.Round(*p.RelativeHumidity.Value))
	}

	var chance float64
	if p.ProbabilityOfPrecipitation.Value != nil {
		chance = *p.ProbabilityOfPrecipitation.Value
	}
	r.ChanceOfRain = int(math.Round(chance))
	r.WillItRain = weather.RainFlag(chance)

	return r
}

func fahrenheit(v *float64, unit string) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if unit == "F" || common.ContainsFold(unit, "degF") {
		return *v, true
	}
	return weather.CelsiusToFahrenheit(*v), true
}

func milesPerHour(v *float64, unit string) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch {
	case common.ContainsFold(unit, "mph", "mi_h-1"):
		return *v, true
	case common.ContainsFold(unit, "m_s-1", "m/s"):
		return weather.MetersPerSecondToMph(*v), true
	case common.ContainsFold(unit, "kt", "knot"):
		return weather.KnotsToMph(*v), true
	default:
		// km/h, km_h-1 or unitless.
		return weather.KmhToMph(*v), true
	}
}
