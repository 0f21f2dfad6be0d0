// Package main is the entry point for the fast-track gate console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/fasttrack/internal/auth"
	"github.com/billie-coop/fasttrack/internal/config"
	"github.com/billie-coop/fasttrack/internal/events"
	"github.com/billie-coop/fasttrack/internal/exeat"
	"github.com/billie-coop/fasttrack/internal/fasttrack"
	"github.com/billie-coop/fasttrack/internal/gateapi"
	"github.com/billie-coop/fasttrack/internal/logging"
	"github.com/billie-coop/fasttrack/internal/tui"
	"github.com/billie-coop/fasttrack/internal/tui/styles"
)

type options struct {
	api        string
	configPath string
	mode       exeat.Mode
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("fasttrack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.api, "api", "", "backend base URL, e.g. http://localhost:8089/api")
	fs.StringVar(&opts.configPath, "config", "", "config file (default .fasttrack/config.json)")
	mode := fs.String("mode", string(exeat.SignOut), "starting mode: sign_out or sign_in")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	m, err := exeat.ParseMode(*mode)
	if err != nil {
		return options{}, err
	}
	opts.mode = m
	return opts, nil
}

// loadConfig reads the config under dir and applies flag overrides.
func loadConfig(dir string, opts options) (*config.Manager, error) {
	mgr := config.NewManager(dir)
	if opts.configPath != "" {
		mgr = config.NewManagerForFile(dir, opts.configPath)
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg := mgr.Get()
	if opts.api != "" {
		cfg.APIBaseURL = opts.api
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return mgr, nil
}

// operatorName reads the display name from token. Opaque tokens have no
// name; an expired token is refused before the first request.
func operatorName(token string, now time.Time) (string, error) {
	claims, err := auth.Inspect(token, now)
	switch {
	case errors.Is(err, auth.ErrNotJWT):
		return "", nil
	case errors.Is(err, auth.ErrTokenExpired):
		return "", fmt.Errorf("%w (expired %s)", err, claims.ExpiresAt.Format(time.RFC1123))
	case err != nil:
		return "", err
	}
	return claims.Operator(), nil
}

func sessionOptions(ctx context.Context, cfg *config.Config, mode exeat.Mode, log logging.Logger) []fasttrack.Option {
	return []fasttrack.Option{
		fasttrack.WithMode(mode),
		fasttrack.WithLogger(log.With("component", "session")),
		fasttrack.WithDebounce(cfg.Debounce()),
		fasttrack.WithMinQueryLength(cfg.MinQueryLength),
		fasttrack.WithCapacity(cfg.QueueCapacity),
		fasttrack.WithPageSize(cfg.PageSize),
		fasttrack.WithContext(ctx),
	}
}

func run(args []string) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	mgr, err := loadConfig(cwd, opts)
	if err != nil {
		return err
	}
	cfg := mgr.Get()

	log, closer, err := logging.OpenFile(mgr.LogPath(), logging.Options{Debug: cfg.Debug})
	if err != nil {
		return err
	}
	defer closer.Close()

	token := cfg.Token
	if token == "" {
		if token, err = auth.PromptToken(os.Stdin, os.Stderr); err != nil {
			return err
		}
	}
	operator, err := operatorName(token, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info(ctx, "console starting", "api", cfg.APIBaseURL, "operator", operator, "mode", string(opts.mode))

	styles.SetDefaultManager(styles.NewManager(cfg.Theme))

	client := gateapi.New(cfg.APIBaseURL, token,
		gateapi.WithTimeout(cfg.RequestTimeout()),
		gateapi.WithLogger(log.With("component", "gateapi")),
	)

	broker := events.NewBroker()
	defer broker.Close()

	session := fasttrack.NewSession(client, broker, sessionOptions(ctx, cfg, opts.mode, log)...)
	defer session.Close()

	model := tui.New(session, broker,
		tui.WithOperator(operator),
		tui.WithLogger(log.With("component", "tui")),
		tui.WithContext(ctx),
	)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	log.Info(ctx, "console stopped")
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
