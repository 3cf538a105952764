package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/districting/internal/districting/storage/sqlite"
	"github.com/banshee-data/districting/internal/monitoring"
	"github.com/banshee-data/districting/internal/testutil"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func TestParseFlags(t *testing.T) {
	o, err := parseFlags(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, &options{DB: "districting.db", Listen: "localhost:8090"}, o)

	o, err = parseFlags([]string{"-db", "runs.db", "-listen", ":0", "-label", "Medellin"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, &options{DB: "runs.db", Listen: ":0", Label: "Medellin"}, o)

	_, err = parseFlags([]string{"-port", "1"}, io.Discard)
	assert.Error(t, err)
}

func TestRun_RequiresDB(t *testing.T) {
	err := run(context.Background(), &options{Listen: "127.0.0.1:0"}, nil)
	assert.ErrorContains(t, err, "-db is required")
}

func TestRun_ListenErrorClosesStore(t *testing.T) {
	path := testutil.TempDBPath(t)
	err := run(context.Background(), &options{DB: path, Listen: "127.0.0.1:notaport"}, nil)
	require.ErrorContains(t, err, "failed to listen")

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	path := testutil.TempDBPath(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrs := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, &options{DB: path, Listen: "127.0.0.1:0"}, func(a net.Addr) { addrs <- a })
	}()

	var addr net.Addr
	select {
	case addr = <-addrs:
	case err := <-done:
		t.Fatalf("run returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr.String() + "/api/instances")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestServe_WaitsForInFlightRequests(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		_, _ = io.WriteString(w, "drained")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, handler) }()

	type result struct {
		body string
		err  error
	}
	got := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			got <- result{err: err}
			return
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		got <- result{body: string(b), err: err}
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the handler")
	}
	cancel()

	select {
	case err := <-done:
		t.Fatalf("serve returned with a request in flight: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("serve did not return after the request finished")
	}

	r := <-got
	require.NoError(t, r.err)
	assert.Equal(t, "drained", r.body)
}
