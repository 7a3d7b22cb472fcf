package http

import (
	"log"
	"net/http"
	"time"
)

// RequestLogger logs method, path, status, and latency for every request.
// Invitation secrets travel in the URL path, so the path is logged only up
// to the token segment.
func RequestLogger(next http.Handler, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Printf(
			"request method=%s path=%s status=%d duration=%s",
			r.Method,
			redactPath(r.URL.Path),
			rec.status,
			time.Since(start),
		)
	})
}

// redactPath hides the invitation token in /invitations/{token}[/...] and
// invite-link paths /i/{token}.
func redactPath(path string) string {
	secret, action, ok := parseInvitationPath(path)
	if ok && secret != "" {
		if action != "" {
			return "/invitations/[redacted]/" + action
		}
		return "/invitations/[redacted]"
	}
	if rest, found := cutPathPrefix(path, "/i/"); found && rest != "" {
		return "/i/[redacted]"
	}
	return path
}

func cutPathPrefix(path, prefix string) (string, bool) {
	if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
		return path[len(prefix):], true
	}
	return "", false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
