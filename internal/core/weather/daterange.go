package weather

import (
	"time"

	perr "weatherjar/internal/platform/errors"
	ptime "weatherjar/internal/platform/time"
)

// DateRange is an inclusive pair of YYYY-MM-DD days as typed by a user
type DateRange struct {
	Start string `query:"start" json:"start" validate:"required,datetime=2006-01-02"`
	End   string `query:"end" json:"end" validate:"required,datetime=2006-01-02"`
}

// Bounds parses both days. End before start is an invalid argument
func (r DateRange) Bounds() (start, end time.Time, err error) {
	if start, err = ptime.ParseDate(r.Start); err != nil {
		return start, end, perr.WithField(err, "start")
	}
	if end, err = ptime.ParseDate(r.End); err != nil {
		return start, end, perr.WithField(err, "end")
	}
	if end.Before(start) {
		return start, end, perr.WithField(perr.InvalidArgf("end %s is before start %s", r.End, r.Start), "end")
	}
	return start, end, nil
}
