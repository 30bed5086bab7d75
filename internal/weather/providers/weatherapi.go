package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	// Zone names from the payload must resolve in minimal containers.
	_ "time/tzdata"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// NameWeatherAPI identifies the WeatherAPI.com provider.
const NameWeatherAPI = "weatherapi"

const weatherAPITimeLayout = "2006-01-02 15:04"

// WeatherAPIClient implements weather.ProviderClient for WeatherAPI.com.
type WeatherAPIClient struct {
	apiKey  string
	baseURL string
	http    *transport
}

// NewWeatherAPIClient creates a client for the forecast.json endpoint under baseURL.
func NewWeatherAPIClient(httpCfg HTTPClientConfig, baseURL, apiKey string) *WeatherAPIClient {
	return &WeatherAPIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newTransport(NameWeatherAPI, httpCfg),
	}
}

func (p *WeatherAPIClient) Name() string {
	return NameWeatherAPI
}

// FetchForecast requests the hourly forecast with air quality for coord.
func (p *WeatherAPIClient) FetchForecast(ctx context.Context, coord weather.CoordinateQuery, days int) (weather.RawPayload, error) {
	if p.apiKey == "" {
		return weather.RawPayload{}, &weather.UpstreamError{
			Provider: NameWeatherAPI,
			Op:       "forecast",
			Err:      fmt.Errorf("weatherapi api key is not configured"),
		}
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts "lat,lon".
	values.Set("q", coord.String())
	values.Set("days", strconv.Itoa(days))
	values.Set("aqi", "yes")
	values.Set("alerts", "no")

	body, err := p.http.get(ctx, coord.Key(), "forecast", p.baseURL+"/forecast.json", values, nil)
	if err != nil {
		return weather.RawPayload{}, err
	}

	return weather.RawPayload{Provider: NameWeatherAPI, Body: body, Days: days}, nil
}

// weatherAPIResponse is the subset of forecast.json the normalizer reads.
// Pointers distinguish an absent field from a zero reading.
type weatherAPIResponse struct {
	Location *struct {
		Name   string  `json:"name"`
		Region string  `json:"region"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		TzID   string  `json:"tz_id"`
	} `json:"location"`
	Forecast *struct {
		ForecastDay *[]struct {
			Hour []weatherAPIHour `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

type weatherAPIHour struct {
	TimeEpoch    int64    `json:"time_epoch"`
	Time         string   `json:"time"`
	TempC        *float64 `json:"temp_c"`
	TempF        *float64 `json:"temp_f"`
	WindMph      *float64 `json:"wind_mph"`
	WindKph      *float64 `json:"wind_kph"`
	GustMph      *float64 `json:"gust_mph"`
	GustKph      *float64 `json:"gust_kph"`
	PrecipIn     *float64 `json:"precip_in"`
	PrecipMm     *float64 `json:"precip_mm"`
	Humidity     *float64 `json:"humidity"`
	DewpointF    *float64 `json:"dewpoint_f"`
	DewpointC    *float64 `json:"dewpoint_c"`
	WillItRain   *int     `json:"will_it_rain"`
	ChanceOfRain *float64 `json:"chance_of_rain"`
	Condition    struct {
		Text string `json:"text"`
	} `json:"condition"`
	AirQuality map[string]float64 `json:"air_quality"`
}

// WeatherAPINormalizer maps forecast.json payloads into canonical records.
type WeatherAPINormalizer struct{}

func (WeatherAPINormalizer) decode(payload weather.RawPayload) (weatherAPIResponse, error) {
	var resp weatherAPIResponse
	if err := json.Unmarshal(payload.Body, &resp); err != nil {
		return resp, &weather.SchemaError{Provider: NameWeatherAPI, Reason: "decode", Err: err}
	}
	if resp.Forecast == nil || resp.Forecast.ForecastDay == nil {
		return resp, &weather.SchemaError{Provider: NameWeatherAPI, Reason: "missing forecast.forecastday"}
	}
	return resp, nil
}

// Normalize flattens forecastday[].hour[] in upstream order.
func (n WeatherAPINormalizer) Normalize(payload weather.RawPayload) ([]weather.HourlyForecastRecord, error) {
	resp, err := n.decode(payload)
	if err != nil {
		return nil, err
	}

	tz := time.UTC
	if resp.Location != nil && resp.Location.TzID != "" {
		if loc, err := time.LoadLocation(resp.Location.TzID); err == nil {
			tz = loc
		}
	}

	records := make([]weather.HourlyForecastRecord, 0)
	for _, day := range *resp.Forecast.ForecastDay {
		for _, h := range day.Hour {
			records = append(records, h.record(tz))
		}
	}
	return records, nil
}

// Locate reads the location block of the payload.
func (WeatherAPINormalizer) Locate(payload weather.RawPayload) *weather.ResolvedLocation {
	var resp weatherAPIResponse
	if err := json.Unmarshal(payload.Body, &resp); err != nil || resp.Location == nil {
		return payload.Location
	}
	return &weather.ResolvedLocation{
		Name:     resp.Location.Name,
		Lat:      resp.Location.Lat,
		Lon:      resp.Location.Lon,
		Timezone: resp.Location.TzID,
	}
}

func (h weatherAPIHour) record(tz *time.Location) weather.HourlyForecastRecord {
	r := weather.HourlyForecastRecord{
		Datetime:  h.datetime(tz),
		Humidity:  weather.HumidityUnsupported,
		Condition: h.Condition.Text,
	}

	switch {
	case h.TempF != nil:
		r.TemperatureF = weather.Round(*h.TempF, 1)
	case h.TempC != nil:
		r.TemperatureF = weather.Round(weather.CelsiusToFahrenheit(*h.TempC), 1)
	}

	switch {
	case h.WindMph != nil:
		r.WindSpeedMph = *h.WindMph
	case h.WindKph != nil:
		r.WindSpeedMph = weather.KmhToMph(*h.WindKph)
	}

	switch {
	case h.GustMph != nil:
		r.GustSpeedMph = weather.Float(*h.GustMph)
	case h.GustKph != nil:
		r.GustSpeedMph = weather.Float(weather.KmhToMph(*h.GustKph))
	}

	switch {
	case h.PrecipIn != nil:
		r.PrecipitationIn = weather.Float(*h.PrecipIn)
	case h.PrecipMm != nil:
		r.PrecipitationIn = weather.Float(weather.Round(weather.MillimetersToInches(*h.PrecipMm), 2))
	}

	if h.Humidity != nil {
		r.Humidity = int(math.Round(*h.Humidity))
	}

	switch {
	case h.DewpointF != nil:
		r.DewPointF = weather.Float(weather.Round(*h.DewpointF, 1))
	case h.DewpointC != nil:
		r.DewPointF = weather.Float(weather.Round(weather.CelsiusToFahrenheit(*h.DewpointC), 1))
	}

	var chance float64
	if h.ChanceOfRain != nil {
		chance = *h.ChanceOfRain
	}
	r.ChanceOfRain = int(math.Round(chance))
	if h.WillItRain != nil {
		r.WillItRain = *h.WillItRain
	} else {
		r.WillItRain = weather.RainFlag(chance)
	}

	if aqi, ok := h.AirQuality["us-epa-index"]; ok {
		r.AirQualityIndex = weather.Int(int(aqi))
	}

	return r
}

// datetime renders the local "2006-01-02 15:04" stamp as RFC 3339 in the location's zone.
func (h weatherAPIHour) datetime(tz *time.Location) string {
	if h.Time != "" {
		if t, err := time.ParseInLocation(weatherAPITimeLayout, h.Time, tz); err == nil {
			return t.Format(time.RFC3339)
		}
		return h.Time
	}
	if h.TimeEpoch != 0 {
		return time.Unix(h.TimeEpoch, 0).In(tz).Format(time.RFC3339)
	}
	return ""
}
