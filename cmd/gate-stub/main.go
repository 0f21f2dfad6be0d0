// Command gate-stub serves an in-memory gate backend for local runs of the
// console. It prints a staff token on startup.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/billie-coop/fasttrack/internal/auth"
	"github.com/billie-coop/fasttrack/internal/logging"
	"github.com/billie-coop/fasttrack/internal/stub"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gate-stub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the flags have defaults.
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("GATE_STUB_ADDR", ":8089"), "listen address")
	secret := flag.String("secret", envOr("GATE_STUB_SECRET", "dev-secret"), "HS256 token secret")
	roles := flag.String("roles", "security,admin", "comma separated roles allowed to use the staff API")
	seed := flag.Int("seed", 40, "number of approved requests to seed")
	pageSize := flag.Int("page-size", 10, "fast-track list page size")
	latency := flag.Duration("latency", 0, "delay added to every API response")
	ttl := flag.Duration("token-ttl", 12*time.Hour, "lifetime of the printed token")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	log := logging.New(os.Stderr, logging.Options{Debug: *debug})
	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}

	now := time.Now()
	store := stub.NewStore()
	stub.Seed(store, *seed, now)

	token, err := auth.Issue([]byte(*secret), "gate-officer", "Gate Officer", "security", *ttl, now)
	if err != nil {
		return err
	}

	server := stub.New(store, stub.Config{
		Secret:   []byte(*secret),
		Roles:    splitRoles(*roles),
		PageSize: *pageSize,
		Latency:  *latency,
		Logger:   log.With("component", "stub"),
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	log.Info(ctx, "gate stub listening", "addr", *addr, "requests", *seed, "latency", *latency)
	fmt.Printf("FASTTRACK_TOKEN=%s\n", token)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
