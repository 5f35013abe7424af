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

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: component, Output: buf})
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentHTTP)
	l.Info("hello")

	if l.Component() != ComponentHTTP {
		t.Errorf("Component() = %q", l.Component())
	}
	if !strings.Contains(buf.String(), "component=http") {
		t.Errorf("missing component in %q", buf.String())
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "level=INFO"},
		{404, "level=WARN"},
		{502, "level=ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l := newBufferLogger(&buf, ComponentTrace)
		r := httptest.NewRequest(http.MethodGet, "/ui/expenses?x=1", nil)
		l.LogHTTPEnd(context.Background(), r, tt.status, 3, "10.0.0.1")

		out := buf.String()
		if !strings.Contains(out, tt.level) {
			t.Errorf("status %d: expected %s in %q", tt.status, tt.level, out)
		}
		if !strings.Contains(out, "path=/ui/expenses") || !strings.Contains(out, "client_ip=10.0.0.1") {
			t.Errorf("status %d: missing request fields in %q", tt.status, out)
		}
	}
}

func TestLogExpenseCreatedAndError(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentExpense)
	l.LogExpenseCreated(context.Background(), "u1", "Lunch", "45.50", "c1", "Food", true)
	l.LogError(context.Background(), "write failed", errors.New("boom"), OpCreate, nil)

	out := buf.String()
	for _, want := range []string{"expense_description=Lunch", "amount=45.50", "has_photo=true", "user_id=u1", "error=boom", "operation=create"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got == nil || got.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %+v", got)
	}

	var buf bytes.Buffer
	base := newBufferLogger(&buf, ComponentHTTP).With(FieldRequestID, "req-1")
	ctx := NewContext(context.Background(), base)
	FromContext(ctx).Info("inside")

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("request id not propagated: %q", buf.String())
	}
}

func TestWithHTTPRequestSkipsEmpty(t *testing.T) {
	f := NewFields().WithHTTPRequest("GET", "/", "", "", "")
	if _, ok := f[FieldQuery]; ok {
		t.Error("empty query should be skipped")
	}
	if _, ok := f[FieldUserAgent]; ok {
		t.Error("empty user agent should be skipped")
	}
}

func TestWithComponentReplaces(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentApp).With("k", "v").WithComponent(ComponentWorker)
	l.Info("switched")

	out := buf.String()
	if strings.Contains(out, "component=app") {
		t.Errorf("old component leaked: %q", out)
	}
	if !strings.Contains(out, "component=worker") || !strings.Contains(out, "k=v") {
		t.Errorf("unexpected output %q", out)
	}
}
