package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"potholeai/internal/artifact"
	"potholeai/internal/classify"
	"potholeai/internal/config"
	"potholeai/internal/handlers"
	"potholeai/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, port int) *HTTPServer {
	t.Helper()
	cfg := &config.AppConfig{
		Environment: "test",
		HTTP: config.HTTPConfig{
			Host:         "127.0.0.1",
			Port:         port,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
		Classifier: config.ClassifierConfig{Command: "sh"},
	}
	store, err := artifact.NewStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	svc := service.NewAnalyseService(store, classify.Func(func(context.Context, artifact.Artifact) (classify.Result, error) {
		return classify.Result{Text: "plain (99.00%)"}, nil
	}), zerolog.Nop())
	return NewHTTPServer(cfg, zerolog.Nop(), handlers.NewHandlerSet(zerolog.Nop(), cfg, svc, nil))
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func waitForRoot(t *testing.T, url string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		res, err := http.Get(url)
		if err == nil {
			var body map[string]string
			decodeErr := json.NewDecoder(res.Body).Decode(&body)
			res.Body.Close()
			if decodeErr != nil || body["msg"] != "Hi I am working" {
				t.Fatalf("root body = %v (%v)", body, decodeErr)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func shutdown(t *testing.T, srv *HTTPServer, done <-chan error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("server returned %v after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, 0)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	waitForRoot(t, "http://"+ln.Addr().String()+"/")
	shutdown(t, srv, done)
}

func TestStartListensOnConfiguredAddr(t *testing.T) {
	port := freePort(t)
	srv := newTestServer(t, port)
	if srv.server.Addr != net.JoinHostPort("127.0.0.1", strconv.Itoa(port)) {
		t.Fatalf("addr = %q", srv.server.Addr)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	waitForRoot(t, "http://"+srv.server.Addr+"/")
	shutdown(t, srv, done)
}

func TestStartReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	srv := newTestServer(t, ln.Addr().(*net.TCPAddr).Port)
	if err := srv.Start(); err == nil {
		t.Fatal("expected listen error on a port already in use")
	}
}
