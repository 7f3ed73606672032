package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{
		Component: ComponentRouter,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level}),
	})
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, slog.LevelInfo)
	l.Info("routed", FieldBranch, "customer")
	out := buf.String()
	if !strings.Contains(out, "component=router") || !strings.Contains(out, "branch=customer") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentLoader).Warn("slow")
	if !strings.Contains(buf.String(), "component=loader") {
		t.Fatalf("expected loader component, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithResolution("customer", "ACME", "", "", 3, 2023).
		WithError(errors.New("boom")).
		WithRequestID("")
	if f[FieldCustomer] != "ACME" || f[FieldMonth] != 3 || f[FieldYear] != 2023 {
		t.Fatalf("unexpected fields: %v", f)
	}
	if _, ok := f[FieldDivision]; ok {
		t.Fatalf("empty division should be omitted")
	}
	if _, ok := f[FieldRequestID]; ok {
		t.Fatalf("empty request id should be omitted")
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatalf("ToSlice length mismatch")
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf, slog.LevelInfo)
	h := Middleware(base, func(*http.Request) string { return "req-1" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("expected request id in log, got %s", buf.String())
	}

	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}

func TestStructuredLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	app := New(Config{Handler: slog.NewTextHandler(&buf, nil)})
	NewStructuredLogger(app).LogAnswered(context.Background(), "acme march 2023", 1, true)
	out := buf.String()
	if !strings.Contains(out, "component=http") || !strings.Contains(out, "cache_hit=true") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	NewStructuredLogger(newBufferLogger(&buf, slog.LevelInfo)).
		LogError(context.Background(), "Reload failed", errors.New("boom"), OpReload, nil)
	out = buf.String()
	if !strings.Contains(out, "component=router") || !strings.Contains(out, "error=boom") || !strings.Contains(out, "operation=reload") {
		t.Fatalf("unexpected output: %s", out)
	}
}
