package module

import (
	"weatherjar/internal/core/weather"
	"weatherjar/internal/platform/config"
)

// Options holds the configured default location
type Options struct {
	Location weather.Location
	Timezone string
}

// FromConfig reads CORE_WEATHER_ location keys
func FromConfig(cfg config.Conf) Options {
	wc := cfg.Prefix("CORE_WEATHER_")
	return Options{
		Location: weather.Location{
			Latitude:     wc.MayFloat64("LATITUDE", 42.8330),
			Longitude:    wc.MayFloat64("LONGITUDE", -108.7307),
			FriendlyName: wc.MayString("LOCATION_NAME", "Lander, Wyoming"),
		},
		Timezone: wc.MayString("TIMEZONE", "America/Denver"),
	}
}
