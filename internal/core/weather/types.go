package weather

import (
	"math"
	"time"
)

// Location is one place observations are collected for
type Location struct {
	ID           int64   `json:"id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	FriendlyName string  `json:"friendly_name"`
}

// Row is one hourly observation. Values follow the VariableSet column order
type Row struct {
	Time   time.Time
	Values []float64
}

// Batch is a set of hourly rows for one variable set
type Batch struct {
	Set  VariableSet
	Rows []Row
}

// Len is the number of rows
func (b Batch) Len() int { return len(b.Rows) }

// Sample is one hourly reading from the standard set, the input to aggregation
type Sample struct {
	Time          time.Time
	Temperature   float64
	Precipitation float64
	WindSpeed     float64
}

// SampleFromRow maps a standard set row. Short rows yield NaN for the missing tail
func SampleFromRow(r Row) Sample {
	at := func(i int) float64 {
		if i < len(r.Values) {
			return r.Values[i]
		}
		return math.NaN()
	}
	return Sample{Time: r.Time, Temperature: at(0), Precipitation: at(1), WindSpeed: at(2)}
}

// Stats is the per-bucket statistics. A nil pointer means no value was present
type Stats struct {
	AverageTemperature *float64 `json:"average_temperature"`
	MinTemperature     *float64 `json:"min_temperature"`
	MaxTemperature     *float64 `json:"max_temperature"`
	AverageWindSpeed   *float64 `json:"average_wind_speed"`
	MinWindSpeed       *float64 `json:"min_wind_speed"`
	MaxWindSpeed       *float64 `json:"max_wind_speed"`
	PrecipitationSum   *float64 `json:"precipitation_sum"`
	PrecipitationMin   *float64 `json:"precipitation_min"`
	PrecipitationMax   *float64 `json:"precipitation_max"`
}

// DailySummary is one row of daily_weather
type DailySummary struct {
	LocationID int64     `json:"location_id"`
	Date       time.Time `json:"date"`
	Month      int       `json:"month"`
	DayOfMonth int       `json:"day_of_month"`
	Year       int       `json:"year"`
	Stats
}

// MonthlySummary is one row of monthly_weather, keyed on the first of the month
type MonthlySummary struct {
	LocationID int64     `json:"location_id"`
	Month      time.Time `json:"month_start"`
	MonthNum   int       `json:"month"`
	Year       int       `json:"year"`
	Stats
}

// NewDaily stamps calendar parts from day
func NewDaily(locationID int64, day time.Time, s Stats) DailySummary {
	return DailySummary{
		LocationID: locationID,
		Date:       day,
		Month:      int(day.Month()),
		DayOfMonth: day.Day(),
		Year:       day.Year(),
		Stats:      s,
	}
}

// NewMonthly stamps calendar parts from the first day of the month
func NewMonthly(locationID int64, month time.Time, s Stats) MonthlySummary {
	return MonthlySummary{
		LocationID: locationID,
		Month:      month,
		MonthNum:   int(month.Month()),
		Year:       month.Year(),
		Stats:      s,
	}
}
