// Command districting-admin serves a run store over HTTP: JSON listings of
// instances and runs, an HTML map per run, and /debug/ pages with a tailsql
// SQL browser.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/districting/internal/districting/admin"
	"github.com/banshee-data/districting/internal/districting/storage/sqlite"
	"github.com/banshee-data/districting/internal/monitoring"
	"github.com/banshee-data/districting/internal/version"
)

const shutdownTimeout = 5 * time.Second

type options struct {
	DB     string
	Listen string
	Label  string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("districting-admin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.DB, "db", "districting.db", "SQLite run store")
	fs.StringVar(&o.Listen, "listen", "localhost:8090", "Listen address")
	fs.StringVar(&o.Label, "label", "", "Database label shown in the SQL browser")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, o, nil)
	stop()
	if err != nil {
		log.Fatalf("districting-admin: %v", err)
	}
}

// run serves the store named by o until ctx is done. The store is closed only
// after in-flight requests have drained. ready, when set, receives the bound
// address once the listener is open.
func run(ctx context.Context, o *options, ready func(net.Addr)) (err error) {
	if o.DB == "" {
		return errors.New("-db is required")
	}

	store, err := sqlite.Open(o.DB)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close run store: %w", cerr)
		}
	}()

	mux := http.NewServeMux()
	srv := admin.NewServer(store, o.Label)
	srv.AttachRoutes(mux)
	if err := srv.AttachAdminRoutes(mux); err != nil {
		return fmt.Errorf("failed to attach admin routes: %w", err)
	}

	ln, err := net.Listen("tcp", o.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", o.Listen, err)
	}
	monitoring.Logf("districting-admin %s serving %s on http://%s (debug at /debug/)", version.Version, o.DB, ln.Addr())
	if ready != nil {
		ready(ln.Addr())
	}
	return serve(ctx, ln, mux)
}

// serve runs an HTTP server on ln until ctx is done, then shuts it down and
// waits for active connections to finish.
func serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	served := make(chan struct{})
	shutdownErr := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
		case <-served:
			shutdownErr <- nil
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- server.Shutdown(shutdownCtx)
	}()

	err := server.Serve(ln)
	close(served)
	if !errors.Is(err, http.ErrServerClosed) {
		<-shutdownErr
		return fmt.Errorf("server failed: %w", err)
	}
	// Serve returns as soon as Shutdown begins; Shutdown returns once
	// connections are idle.
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
