package providers

import (
	"fmt"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// Settings selects and configures the upstream provider.
type Settings struct {
	Name string

	WeatherAPIURL string
	WeatherAPIKey string

	NWSURL     string
	NWSContact string
}

// New builds the provider named in settings, pairing its client with the
// normalizer for its payloads.
func New(settings Settings, httpCfg HTTPClientConfig) (weather.Provider, error) {
	switch settings.Name {
	case NameWeatherAPI:
		return weather.Provider{
			Client:     NewWeatherAPIClient(httpCfg, settings.WeatherAPIURL, settings.WeatherAPIKey),
			Normalizer: WeatherAPINormalizer{},
		}, nil
	case NameNWS:
		if settings.NWSContact == "" {
			return weather.Provider{}, fmt.Errorf("nws provider requires a contact string")
		}
		return weather.Provider{
			Client:     NewNWSClient(httpCfg, settings.NWSURL, settings.NWSContact),
			Normalizer: NWSNormalizer{},
		}, nil
	default:
		return weather.Provider{}, fmt.Errorf("unknown weather provider %q", settings.Name)
	}
}
