// Package rollup buckets hourly samples by calendar period and computes the
// NaN-safe statistics stored in the summary tables. Daily and monthly
// summaries, full rebuilds and date-range rebuilds all go through Group
package rollup

import (
	"math"
	"sort"
	"time"

	"weatherjar/internal/core/weather"
	ptime "weatherjar/internal/platform/time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Truncation maps a timestamp to the start of its bucket
type Truncation func(time.Time) time.Time

var (
	// Day buckets by calendar day
	Day Truncation = ptime.StartOfDay
	// Month buckets by calendar month
	Month Truncation = ptime.StartOfMonth
)

// Bucket is one period of samples reduced to statistics
type Bucket struct {
	Start   time.Time
	Samples int
	weather.Stats
}

// Agg is the reduction of one metric over a bucket. Nil fields mean no value
type Agg struct {
	Mean, Min, Max, Sum *float64
}

// Group buckets samples by trunc and reduces each group. Samples with a zero
// time are skipped. Output is ordered by bucket start and samples inside a
// bucket are reduced in time order, so the same hourly data gives identical
// floats however it was fetched
func Group(samples []weather.Sample, trunc Truncation) []Bucket {
	sorted := make([]weather.Sample, 0, len(samples))
	for _, s := range samples {
		if !s.Time.IsZero() {
			sorted = append(sorted, s)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	var out []Bucket
	for i := 0; i < len(sorted); {
		start := trunc(sorted[i].Time)
		j := i
		for j < len(sorted) && trunc(sorted[j].Time).Equal(start) {
			j++
		}
		out = append(out, Bucket{Start: start, Samples: j - i, Stats: Reduce(sorted[i:j])})
		i = j
	}
	return out
}

// Reduce computes Stats over one bucket's samples
func Reduce(samples []weather.Sample) weather.Stats {
	temp := make([]float64, len(samples))
	wind := make([]float64, len(samples))
	prcp := make([]float64, len(samples))
	for i, s := range samples {
		temp[i], wind[i], prcp[i] = s.Temperature, s.WindSpeed, s.Precipitation
	}
	t, w, p := Aggregate(temp), Aggregate(wind), Aggregate(prcp)
	return weather.Stats{
		AverageTemperature: t.Mean,
		MinTemperature:     t.Min,
		MaxTemperature:     t.Max,
		AverageWindSpeed:   w.Mean,
		MinWindSpeed:       w.Min,
		MaxWindSpeed:       w.Max,
		PrecipitationSum:   p.Sum,
		PrecipitationMin:   p.Min,
		PrecipitationMax:   p.Max,
	}
}

// Aggregate reduces values ignoring NaN. All NaN (or empty) yields a zero Agg
func Aggregate(values []float64) Agg {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return Agg{}
	}
	return Agg{
		Mean: ptr(stat.Mean(present, nil)),
		Min:  ptr(floats.Min(present)),
		Max:  ptr(floats.Max(present)),
		Sum:  ptr(floats.Sum(present)),
	}
}

func ptr(v float64) *float64 { return &v }
