// Package service writes hourly rows as InfluxDB annotated CSV
package service

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"time"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit"
	perr "weatherjar/internal/platform/errors"
	"weatherjar/internal/platform/logger"
	pstrings "weatherjar/internal/platform/strings"
	ptime "weatherjar/internal/platform/time"
	"weatherjar/internal/services/export/domain"
)

// DefaultMeasurement is the measurement column value when none is configured
const DefaultMeasurement = "lander_weather"

// Service implements domain.ExporterPort
type Service struct {
	DB          repokit.TxRunner
	Binder      repokit.Binder[domain.StorageRepo]
	Locations   domain.Locations
	Measurement string
}

// New constructs the export service
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], locs domain.Locations, measurement string) *Service {
	if db == nil {
		panic("export.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("export.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder, Locations: locs, Measurement: pstrings.Measurement(pstrings.Or(measurement, DefaultMeasurement))}
}

// ExportHourly implements domain.ExporterPort and returns the data row count
func (s *Service) ExportHourly(ctx context.Context, w io.Writer, r domain.Request) (int, error) {
	var from, to time.Time
	var err error
	if r.Start != "" {
		if from, err = ptime.ParseDate(r.Start); err != nil {
			return 0, perr.WithField(err, "start")
		}
	}
	if r.End != "" {
		if to, err = ptime.ParseDate(r.End); err != nil {
			return 0, perr.WithField(err, "end")
		}
		to = to.Add(ptime.Day)
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return 0, perr.WithField(perr.InvalidArgf("end %s is before start %s", r.End, r.Start), "end")
	}
	set := r.Set
	if set.Width() == 0 {
		set = weather.Standard
	}

	loc, err := s.Locations.Default(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := s.Binder.Bind(s.DB).HourlyRows(ctx, loc.ID, set, from, to)
	if err != nil {
		return 0, perr.FromPostgresf(err, "read %s", set.Table)
	}

	measurement := s.Measurement
	if r.Measurement != "" {
		measurement = pstrings.Measurement(r.Measurement)
	}
	if err := WriteAnnotated(w, measurement, loc.ID, set, rows); err != nil {
		return 0, err
	}
	logger.C(ctx).Info().Int("rows", len(rows)).Str("measurement", measurement).Msg("hourly csv written")
	return len(rows), nil
}

// WriteAnnotated writes the #datatype annotation, a header and one line per row.
// Missing values are empty cells
func WriteAnnotated(w io.Writer, measurement string, locationID int64, set weather.VariableSet, rows []weather.Row) error {
	types := "#datatype measurement,long,dateTime:RFC3339"
	for range set.Variables {
		types += ",double"
	}
	if _, err := io.WriteString(w, types+"\n"); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := append([]string{"measurement", "location_id", "time"}, set.Columns()...)
	if err := cw.Write(header); err != nil {
		return err
	}
	loc := strconv.FormatInt(locationID, 10)
	rec := make([]string, len(header))
	for _, row := range rows {
		rec[0], rec[1], rec[2] = measurement, loc, row.Time.UTC().Format(time.RFC3339)
		for i := 0; i < set.Width(); i++ {
			rec[3+i] = ""
			if i < len(row.Values) && !math.IsNaN(row.Values[i]) {
				rec[3+i] = strconv.FormatFloat(row.Values[i], 'f', -1, 64)
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
