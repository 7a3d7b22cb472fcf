package http

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/slots", nil)
	rec := httptest.NewRecorder()
	RequestLogger(next, logger).ServeHTTP(rec, req)

	line := buf.String()
	if !strings.Contains(line, "method=GET") {
		t.Fatalf("expected method in log line, got %q", line)
	}
	if !strings.Contains(line, "path=/slots") {
		t.Fatalf("expected path in log line, got %q", line)
	}
	if !strings.Contains(line, "status=418") {
		t.Fatalf("expected status in log line, got %q", line)
	}
}

func TestRequestLogger_RedactsInvitationTokens(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	for path, want := range map[string]string{
		"/invitations/supersecret":         "path=/invitations/[redacted]",
		"/invitations/supersecret/accept":  "path=/invitations/[redacted]/accept",
		"/invitations/supersecret/decline": "path=/invitations/[redacted]/decline",
		"/i/supersecret":                   "path=/i/[redacted]",
	} {
		buf.Reset()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		RequestLogger(next, logger).ServeHTTP(rec, req)

		line := buf.String()
		if !strings.Contains(line, want) {
			t.Fatalf("%s: expected %q in log line %q", path, want, line)
		}
		if strings.Contains(line, "supersecret") {
			t.Fatalf("%s: secret leaked into log line %q", path, line)
		}
	}
}
