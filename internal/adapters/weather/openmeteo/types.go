package openmeteo

import (
	"encoding/json"
	"fmt"
	"time"

	"weatherjar/internal/core/weather"
)

// FetchRequest is one window of hourly history for a point.
// Start and End are calendar days, both inclusive
type FetchRequest struct {
	Start     time.Time
	End       time.Time
	Latitude  float64
	Longitude float64
	Set       weather.VariableSet
	Timezone  string
}

// Validate checks the request before any network work
func (r FetchRequest) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("openmeteo: start and end are required")
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("openmeteo: end %s before start %s", r.End.Format(time.DateOnly), r.Start.Format(time.DateOnly))
	}
	if r.Set.Width() == 0 {
		return fmt.Errorf("openmeteo: empty variable set")
	}
	return nil
}

// archiveResponse is the subset of the archive payload we read.
// Hourly holds "time" plus one array per requested variable
type archiveResponse struct {
	Latitude  float64                    `json:"latitude"`
	Longitude float64                    `json:"longitude"`
	Timezone  string                     `json:"timezone"`
	Hourly    map[string]json.RawMessage `json:"hourly"`
}

// apiError is the body Open-Meteo sends with a 400
type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// StatusError is a non success HTTP status from upstream
type StatusError struct {
	Code   int
	Reason string
}

func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("openmeteo: status %d: %s", e.Code, e.Reason)
	}
	return fmt.Sprintf("openmeteo: status %d", e.Code)
}
