package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit"
	"weatherjar/internal/platform/config"
	perr "weatherjar/internal/platform/errors"
	"weatherjar/internal/platform/logger"
	"weatherjar/internal/platform/net/http/bind"
	"weatherjar/internal/platform/store"
	"weatherjar/internal/platform/store/migrate"
	pstrings "weatherjar/internal/platform/strings"
	ptime "weatherjar/internal/platform/time"

	querymod "weatherjar/internal/services/api/weather/module"
	exportdom "weatherjar/internal/services/export/domain"
	exportmod "weatherjar/internal/services/export/module"
	ingestdom "weatherjar/internal/services/ingest/domain"
	ingestmod "weatherjar/internal/services/ingest/module"
	locationsmod "weatherjar/internal/services/locations/module"
	sumdom "weatherjar/internal/services/summaries/domain"
	summod "weatherjar/internal/services/summaries/module"
)

// errUsage is returned for a bad command line; the message was already printed
var errUsage = errors.New("usage")

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"migrate":                 {"apply schema migrations and seed the default location", cmdMigrate},
	"import-weather-data":     {"ingest hourly rows for --start..--end", cmdImport},
	"update-hourly":           {"ingest from the latest stored hour through today", cmdUpdateHourly},
	"build-daily-summaries":   {"rebuild daily summaries, fully or for --start..--end", cmdBuildDaily},
	"update-daily":            {"summarize days after the latest summary through yesterday", cmdUpdateDaily},
	"build-monthly-summaries": {"rebuild monthly summaries", cmdBuildMonthly},
	"summary":                 {"print the summary sentences for --date", cmdSummary},
	"export-hourly-csv":       {"write hourly rows as InfluxDB annotated CSV to --out", cmdExport},
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: weatherjar <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-24s %s\n", n, commands[n].summary)
	}
}

// run dispatches args[0]. Flags are parsed and checked before any connection opens
func run(ctx context.Context, cfg config.Conf, args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(out)
		if len(args) == 0 {
			return errUsage
		}
		return nil
	}
	c, ok := commands[args[0]]
	if !ok {
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
	a := &app{cfg: cfg, out: out, open: storeOpener}
	defer a.close()
	return c.run(ctx, a, args[1:])
}

// app holds the lazily opened store and modules of one invocation
type app struct {
	cfg  config.Conf
	out  io.Writer
	open func(ctx context.Context, cfg config.Conf) (*store.Store, error)

	st   *store.Store
	deps modkit.Deps
	locs *locationsmod.Module
}

// storeOpener is swapped in tests
var storeOpener = openStore

func openStore(ctx context.Context, cfg config.Conf) (*store.Store, error) {
	pg := cfg.Prefix("SERVICE_PGSQL_")
	return store.Open(ctx, store.Config{
		AppName: "weatherjar",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pg.MustString("DBURL"),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*logger.Get()))
}

func (a *app) connect(ctx context.Context) error {
	if a.st != nil {
		return nil
	}
	st, err := a.open(ctx, a.cfg)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "open database")
	}
	a.st = st
	a.deps = modkit.Deps{Cfg: a.cfg, PG: st.PG, Log: *logger.Get()}
	a.locs = locationsmod.New(a.deps)
	return nil
}

func (a *app) close() {
	if a.st != nil {
		if err := a.st.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close store")
		}
	}
}

func (a *app) ingest(ctx context.Context, variables string) (ingestdom.RunnerPort, ingestmod.Options, error) {
	if err := a.connect(ctx); err != nil {
		return nil, ingestmod.Options{}, err
	}
	m, err := ingestmod.New(a.deps, a.locs.Locations())
	if err != nil {
		return nil, ingestmod.Options{}, err
	}
	if variables == "" {
		return m.Runner(), m.Options(), nil
	}
	set, err := weather.SetByName(variables)
	if err != nil {
		return nil, ingestmod.Options{}, perr.WithField(err, "variables")
	}
	return m.ForSet(set), m.Options(), nil
}

func (a *app) summaries(ctx context.Context) (sumdom.RunnerPort, error) {
	if err := a.connect(ctx); err != nil {
		return nil, err
	}
	return summod.New(a.deps, a.locs.Locations()).Runner(), nil
}

// today is the current day in the configured timezone
func (a *app) today(tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, perr.WithField(perr.InvalidArgf("unknown timezone %q", tz), "timezone")
	}
	return ptime.Today(time.Now(), loc), nil
}

func flags(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errUsage
		}
		return perr.Newf(perr.ErrorCodeValidation, "%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return perr.Newf(perr.ErrorCodeValidation, "%s: unexpected arguments %s", fs.Name(), strings.Join(fs.Args(), " "))
	}
	return nil
}

func cmdMigrate(ctx context.Context, a *app, args []string) error {
	fs := flags("migrate", a.out)
	if err := parse(fs, args); err != nil {
		return err
	}
	url := a.cfg.Prefix("SERVICE_PGSQL_").MustString("DBURL")
	res, err := migrate.Up(url, *logger.C(ctx))
	if err != nil {
		return err
	}
	if err := a.connect(ctx); err != nil {
		return err
	}
	loc, err := a.locs.SeedDefault(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "schema at version %d, default location %q ready\n", res.To, loc.FriendlyName)
	return nil
}

func cmdImport(ctx context.Context, a *app, args []string) error {
	fs := flags("import-weather-data", a.out)
	start := fs.String("start", "", "first day YYYY-MM-DD (default CORE_WEATHER_START_DATE)")
	end := fs.String("end", "", "last day YYYY-MM-DD inclusive (default CORE_WEATHER_END_DATE)")
	vars := fs.String("variables", "", "variable set: "+strings.Join(weather.SetNames, " | "))
	if err := parse(fs, args); err != nil {
		return err
	}
	opts := ingestmod.FromConfig(a.cfg)
	r := weather.DateRange{Start: pstrings.Or(*start, opts.StartDate), End: pstrings.Or(*end, opts.EndDate)}
	if err := bind.Struct(r); err != nil {
		return err
	}
	if _, _, err := r.Bounds(); err != nil {
		return err
	}
	runner, _, err := a.ingest(ctx, *vars)
	if err != nil {
		return err
	}
	n, err := runner.Ingest(ctx, r.Start, r.End)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "inserted %d hourly rows for %s..%s\n", n, r.Start, r.End)
	return nil
}

func cmdUpdateHourly(ctx context.Context, a *app, args []string) error {
	fs := flags("update-hourly", a.out)
	vars := fs.String("variables", "", "variable set: "+strings.Join(weather.SetNames, " | "))
	if err := parse(fs, args); err != nil {
		return err
	}
	runner, opts, err := a.ingest(ctx, *vars)
	if err != nil {
		return err
	}
	today, err := a.today(opts.Timezone)
	if err != nil {
		return err
	}
	n, err := runner.UpdateHourly(ctx, today)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "inserted %d hourly rows through %s\n", n, ptime.FormatDate(today))
	return nil
}

// dailyMode turns the optional pair of days into a rebuild mode
func dailyMode(start, end string) (sumdom.Mode, error) {
	switch {
	case start == "" && end == "":
		return sumdom.FullRebuild(), nil
	case start == "" || end == "":
		return sumdom.Mode{}, perr.InvalidArgf("--start and --end go together")
	}
	r := weather.DateRange{Start: start, End: end}
	if err := bind.Struct(r); err != nil {
		return sumdom.Mode{}, err
	}
	from, to, err := r.Bounds()
	if err != nil {
		return sumdom.Mode{}, err
	}
	return sumdom.Range(from, to), nil
}

func cmdBuildDaily(ctx context.Context, a *app, args []string) error {
	fs := flags("build-daily-summaries", a.out)
	start := fs.String("start", "", "first day YYYY-MM-DD, omit both for a full rebuild")
	end := fs.String("end", "", "last day YYYY-MM-DD inclusive")
	if err := parse(fs, args); err != nil {
		return err
	}
	mode, err := dailyMode(*start, *end)
	if err != nil {
		return err
	}
	runner, err := a.summaries(ctx)
	if err != nil {
		return err
	}
	n, err := runner.RebuildDaily(ctx, mode)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %d daily summaries\n", n)
	return nil
}

func cmdUpdateDaily(ctx context.Context, a *app, args []string) error {
	fs := flags("update-daily", a.out)
	if err := parse(fs, args); err != nil {
		return err
	}
	runner, err := a.summaries(ctx)
	if err != nil {
		return err
	}
	today, err := a.today(a.locs.Options().Timezone)
	if err != nil {
		return err
	}
	n, err := runner.UpdateDaily(ctx, today)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %d daily summaries\n", n)
	return nil
}

func cmdBuildMonthly(ctx context.Context, a *app, args []string) error {
	fs := flags("build-monthly-summaries", a.out)
	if err := parse(fs, args); err != nil {
		return err
	}
	runner, err := a.summaries(ctx)
	if err != nil {
		return err
	}
	n, err := runner.RebuildMonthly(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %d monthly summaries\n", n)
	return nil
}

func cmdSummary(ctx context.Context, a *app, args []string) error {
	fs := flags("summary", a.out)
	date := fs.String("date", "", "day YYYY-MM-DD")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *date == "" {
		return perr.WithField(perr.InvalidArgf("--date is required"), "date")
	}
	if _, err := ptime.ParseDate(*date); err != nil {
		return perr.WithField(err, "date")
	}
	if err := a.connect(ctx); err != nil {
		return err
	}
	txt, err := querymod.New(a.deps, querymod.WithLocations(a.locs.Locations())).Query().SummaryText(ctx, *date)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, txt.MeanTemperature)
	fmt.Fprintln(a.out, txt.MaxWind)
	fmt.Fprintln(a.out, txt.PrecipitationSum)
	return nil
}

func cmdExport(ctx context.Context, a *app, args []string) (err error) {
	fs := flags("export-hourly-csv", a.out)
	out := fs.String("out", "", "destination file")
	start := fs.String("start", "", "first day YYYY-MM-DD, open when omitted")
	end := fs.String("end", "", "last day YYYY-MM-DD inclusive, open when omitted")
	vars := fs.String("variables", weather.Standard.Name, "variable set: "+strings.Join(weather.SetNames, " | "))
	measurement := fs.String("measurement", "", "measurement column (default CORE_EXPORT_MEASUREMENT)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *out == "" {
		return perr.WithField(perr.InvalidArgf("--out is required"), "out")
	}
	set, err := weather.SetByName(*vars)
	if err != nil {
		return perr.WithField(err, "variables")
	}
	if err := a.connect(ctx); err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	exp := exportmod.New(a.deps, a.locs.Locations()).Exporter()
	n, err := exp.ExportHourly(ctx, f, exportdom.Request{Start: *start, End: *end, Set: set, Measurement: *measurement})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "exported %d hourly rows to %s\n", n, *out)
	return nil
}
