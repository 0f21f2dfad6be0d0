// Command gate-events prints a page of the gate events report: which
// students signed out, which came back, and when.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/billie-coop/fasttrack/internal/auth"
	"github.com/billie-coop/fasttrack/internal/config"
	"github.com/billie-coop/fasttrack/internal/gateapi"
	"github.com/billie-coop/fasttrack/internal/logging"
	"github.com/billie-coop/fasttrack/internal/report"
)

type options struct {
	api     string
	query   report.Query
	export  bool
	timeout time.Duration
	debug   bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("gate-events", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.api, "api", "", "backend base URL (default from config)")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", report.DefaultPerPage, "rows per page (5 to 50)")
	checked := fs.String("checked", "all", "all, in or out")
	search := fs.String("search", "", "name or matric no. filter")
	sort := fs.String("sort", "signout_time", "column to sort by")
	order := fs.String("order", "desc", "asc or desc")
	fs.BoolVar(&opts.export, "export", false, "print the CSV export URL instead of the report")
	fs.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	fs.BoolVar(&opts.debug, "debug", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	q := report.NewQuery()
	q.Page = max(*page, 1)
	q.PerPage = report.ClampPerPage(*perPage)
	q.Search = *search
	q.SortBy = report.SortKey(*sort)
	if err := q.SetChecked(*checked); err != nil {
		return options{}, err
	}
	if err := q.SetOrder(*order); err != nil {
		return options{}, err
	}
	opts.query = q
	return opts, nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "gate-events: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	log := logging.New(stderr, logging.Options{Debug: opts.debug})

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	mgr := config.NewManager(cwd)
	if err := mgr.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Get()
	if opts.api != "" {
		cfg.APIBaseURL = opts.api
	}
	if cfg.Token == "" {
		return auth.ErrNoToken
	}

	client := gateapi.New(cfg.APIBaseURL, cfg.Token,
		gateapi.WithTimeout(opts.timeout),
		gateapi.WithLogger(log.With("component", "gateapi")),
	)
	return report.Run(ctx, client, opts.query, opts.export, stdout)
}
