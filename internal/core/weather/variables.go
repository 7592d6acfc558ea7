package weather

import (
	"strings"

	perr "weatherjar/internal/platform/errors"
)

// Variable maps one upstream hourly variable to a storage column
type Variable struct {
	Source string // Open-Meteo hourly= name
	Column string // column in the target table
}

// VariableSet describes one family of hourly variables: what to request
// upstream, which table receives it and any unit parameters
type VariableSet struct {
	Name      string
	Table     string
	Variables []Variable
	Params    map[string]string
}

// Standard is temperature, precipitation and wind in imperial units
var Standard = VariableSet{
	Name:  "standard",
	Table: "hourly_weather",
	Variables: []Variable{
		{Source: "temperature_2m", Column: "temperature"},
		{Source: "precipitation", Column: "precipitation"},
		{Source: "wind_speed_10m", Column: "wind_speed"},
	},
	Params: map[string]string{
		"temperature_unit":   "fahrenheit",
		"wind_speed_unit":    "mph",
		"precipitation_unit": "inch",
	},
}

// Solar is the radiation family in W/m²
var Solar = VariableSet{
	Name:  "solar",
	Table: "hourly_solar",
	Variables: []Variable{
		{Source: "shortwave_radiation", Column: "shortwave_radiation"},
		{Source: "direct_radiation", Column: "direct_radiation"},
		{Source: "diffuse_radiation", Column: "diffuse_radiation"},
		{Source: "direct_normal_irradiance", Column: "direct_normal_irradiance"},
	},
}

// SetNames lists the known sets in a stable order
var SetNames = []string{Standard.Name, Solar.Name}

// SetByName resolves a set by its name, case insensitive
func SetByName(name string) (VariableSet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Standard.Name, "":
		return Standard, nil
	case Solar.Name:
		return Solar, nil
	}
	return VariableSet{}, perr.InvalidArgf("unknown variable set %q (want one of %s)", name, strings.Join(SetNames, ", "))
}

// Sources returns the upstream variable names in column order
func (s VariableSet) Sources() []string {
	out := make([]string, len(s.Variables))
	for i, v := range s.Variables {
		out[i] = v.Source
	}
	return out
}

// Columns returns the storage column names in order
func (s VariableSet) Columns() []string {
	out := make([]string, len(s.Variables))
	for i, v := range s.Variables {
		out[i] = v.Column
	}
	return out
}

// Width is the number of measure columns
func (s VariableSet) Width() int { return len(s.Variables) }
