// Package admin serves the run store over HTTP: a small JSON API, rendered
// maps of stored runs, and the tsweb debug pages with a tailsql browser.
package admin

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"

	"github.com/banshee-data/districting/internal/districting/render"
	"github.com/banshee-data/districting/internal/districting/storage/sqlite"
	"github.com/banshee-data/districting/internal/httputil"
	"github.com/banshee-data/districting/internal/monitoring"
)

// Server exposes one Store.
type Server struct {
	store *sqlite.Store
	label string
}

// NewServer returns a Server over store. label names the database in the
// SQL browser.
func NewServer(store *sqlite.Store, label string) *Server {
	if label == "" {
		label = "Districting runs"
	}
	return &Server{store: store, label: label}
}

// AttachRoutes registers the JSON API and map pages on mux.
func (s *Server) AttachRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/instances", s.handleListInstances)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /runs/{id}/map", s.handleRunMap)
}

// AttachAdminRoutes mounts the tsweb debugger with a tailsql browser over
// the store and a backup download.
func (s *Server) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://districting.db", s.store.DB(), &tailsql.DBOptions{
		Label: s.label,
	})

	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())
	debug.Handle("backup", "Create and download a backup of the run store now", http.HandlerFunc(s.handleBackup))
	return nil
}

func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListInstances(r.Context())
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []sqlite.InstanceRecord{}
	}
	httputil.WriteJSONOK(w, list)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context(), r.URL.Query().Get("instance_id"))
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []sqlite.RunSummary{}
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.WriteLookupError(w, err, sqlite.ErrNotFound)
		return
	}
	httputil.WriteJSONOK(w, run)
}

func (s *Server) handleRunMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	run, err := s.store.GetRun(ctx, r.PathValue("id"))
	if err != nil {
		httputil.WriteLookupError(w, err, sqlite.ErrNotFound)
		return
	}
	in, err := s.store.LoadInstance(ctx, run.InstanceID)
	if err != nil {
		httputil.WriteLookupError(w, err, sqlite.ErrNotFound)
		return
	}
	sol, err := run.Solution(in)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("%s k=%d (%s)", in.Name, run.K, run.Strategy)
	if err := render.HTMLMap(w, title, sol); err != nil {
		monitoring.Logf("admin: render map for run %s: %v", run.RunID, err)
	}
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	dir, err := os.MkdirTemp("", "districting-backup-")
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to create backup dir: %w", err))
		return
	}
	defer os.RemoveAll(dir)

	backupPath := filepath.Join(dir, "districting.db")
	if _, err := s.store.DB().ExecContext(r.Context(), "VACUUM INTO ?", backupPath); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to create backup: %w", err))
		return
	}
	f, err := os.Open(backupPath)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to open backup: %w", err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", "attachment; filename=districting.db.gz")
	w.Header().Set("Content-Type", "application/gzip")
	gz := gzip.NewWriter(w)
	defer gz.Close()
	if _, err := io.Copy(gz, f); err != nil {
		monitoring.Logf("admin: write backup: %v", err)
	}
}
