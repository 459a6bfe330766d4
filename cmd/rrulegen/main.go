// Command rrulegen prints the RRULE, xCal or iCalendar form of a stored recurrence rule.
//
// The rule is read as JSON from a file or stdin, or loaded by event id from a SQLite
// database written by storage/sqlite.
//
//	rrulegen --format rrule < rule.json
//	rrulegen --format ics --db rules.db --event evt-42
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/storage"
	"github.com/cyp0633/librecur/storage/sqlite"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"
)

const (
	formatRRULE = "rrule"
	formatXCal  = "xcal"
	formatICS   = "ics"
)

// now stamps exported events
var now = time.Now

type options struct {
	format   string
	input    string
	location string
	uid      string
	db       string
	event    string
	verbose  bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, out, errOut io.Writer) int {
	opts, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printHelp(out)
		return 0
	}
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 2
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(errOut, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))

	loc, err := time.LoadLocation(opts.location)
	if err != nil {
		fmt.Fprintln(errOut, "error: location:", err)
		return 2
	}
	engine := recurrence.NewEngineWithConfig(recurrence.EngineConfig{Location: loc, Logger: logger})

	rule, err := loadRule(ctx, opts, stdin, logger)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	m, err := engine.ToModel(rule)
	if err != nil {
		logger.Error("rule cannot be decoded", "error", err)
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	if err := render(out, engine, opts, m); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	return 0
}

func parseFlags(args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("rrulegen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&opts.format, "format", "f", formatRRULE, "Output format: rrule, xcal or ics")
	fs.StringVarP(&opts.input, "input", "i", "-", "JSON file holding the stored rule, - for stdin")
	fs.StringVarP(&opts.location, "location", "l", "UTC", "Zone the anchor date is read in")
	fs.StringVar(&opts.uid, "uid", "", "UID of the exported event (ics only, random if empty)")
	fs.StringVar(&opts.db, "db", "", "SQLite database to load the rule from")
	fs.StringVar(&opts.event, "event", "", "Event id to load from --db")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	switch opts.format {
	case formatRRULE, formatXCal, formatICS:
	default:
		return options{}, fmt.Errorf("unknown format %q", opts.format)
	}
	if (opts.db == "") != (opts.event == "") {
		return options{}, errors.New("--db and --event must be given together")
	}
	return opts, nil
}

func loadRule(ctx context.Context, opts options, stdin io.Reader, logger *slog.Logger) (recurrence.StoredRule, error) {
	if opts.db != "" {
		store, err := sqlite.Open(ctx, opts.db, sqlite.WithLogger(logger))
		if err != nil {
			return recurrence.StoredRule{}, err
		}
		defer store.Close()

		rec, err := store.GetRule(ctx, opts.event)
		if storage.IsNotFound(err) {
			return recurrence.StoredRule{}, fmt.Errorf("event %s does not repeat", opts.event)
		}
		if err != nil {
			return recurrence.StoredRule{}, err
		}
		return rec.Rule, nil
	}

	r := stdin
	if opts.input != "-" {
		f, err := os.Open(opts.input)
		if err != nil {
			return recurrence.StoredRule{}, err
		}
		defer f.Close()
		r = f
	}

	var rule recurrence.StoredRule
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rule); err != nil {
		return recurrence.StoredRule{}, fmt.Errorf("read stored rule: %w", err)
	}
	return rule, nil
}

func render(out io.Writer, engine *recurrence.Engine, opts options, m recurrence.Model) error {
	switch opts.format {
	case formatXCal:
		doc, err := engine.XCal(m)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, doc)
		return err
	case formatICS:
		uid := opts.uid
		if uid == "" {
			uid = uuid.NewString()
		}
		cal, err := engine.NewCalendar(uid, now(), m)
		if err != nil {
			return err
		}
		return ical.NewEncoder(out).Encode(cal)
	default:
		text, err := engine.RRULE(m)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)
		return err
	}
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, strings.TrimLeft(`
Usage: rrulegen [flags]

Prints the RRULE, xCal or iCalendar form of a stored recurrence rule.

Flags:
  -f, --format string     Output format: rrule, xcal or ics (default "rrule")
  -i, --input string      JSON file holding the stored rule, - for stdin (default "-")
  -l, --location string   Zone the anchor date is read in (default "UTC")
      --uid string        UID of the exported event (ics only, random if empty)
      --db string         SQLite database to load the rule from
      --event string      Event id to load from --db
  -v, --verbose           Log debug output to stderr
`, "\n"))
}
