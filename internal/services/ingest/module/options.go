package module

import (
	"time"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/platform/config"
	ptime "weatherjar/internal/platform/time"
)

// Options holds configuration for ingestion
type Options struct {
	Variables    string
	Timezone     string
	StartDate    string
	EndDate      string
	RunTimeout   time.Duration
	FetchTimeout time.Duration
	DBTimeout    time.Duration
}

// FromConfig reads CORE_WEATHER_ and CORE_INGEST_ keys
func FromConfig(cfg config.Conf) Options {
	wc := cfg.Prefix("CORE_WEATHER_")
	ic := cfg.Prefix("CORE_INGEST_")
	return Options{
		Variables:    wc.MayEnum("VARIABLES", weather.Standard.Name, weather.SetNames...),
		Timezone:     wc.MayString("TIMEZONE", "America/Denver"),
		StartDate:    wc.MayDate("START_DATE", "2017-01-01"),
		EndDate:      wc.MayDate("END_DATE", "2025-08-02"),
		RunTimeout:   ic.MayDuration("RUN_TIMEOUT", 0),
		FetchTimeout: ic.MayDuration("FETCH_TIMEOUT", 5*time.Minute),
		DBTimeout:    ic.MayDuration("DB_TIMEOUT", 2*time.Minute),
	}
}

func (o Options) startDate() time.Time {
	t, _ := ptime.ParseDate(o.StartDate)
	return t
}
