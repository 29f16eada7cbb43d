package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/echochat/internal/handler/health"
)

type mockChecker struct{ err error }

func (m mockChecker) Check(_ context.Context) error { return m.err }

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]health.Checker
		wantStatus int
		wantOver   string
		wantChecks map[string]string
	}{
		{
			name:       "no checks",
			checks:     map[string]health.Checker{},
			wantStatus: http.StatusOK,
			wantOver:   "ok",
			wantChecks: map[string]string{},
		},
		{
			name: "static healthy",
			checks: map[string]health.Checker{
				"static": mockChecker{},
			},
			wantStatus: http.StatusOK,
			wantOver:   "ok",
			wantChecks: map[string]string{"static": "ok"},
		},
		{
			name: "static gone",
			checks: map[string]health.Checker{
				"static": mockChecker{err: errors.New("removed")},
				"other":  mockChecker{},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantOver:   "error",
			wantChecks: map[string]string{"static": "error", "other": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(slog.Default(), tt.checks)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body health.Response
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if body.Status != tt.wantOver {
				t.Errorf("status field = %q, want %q", body.Status, tt.wantOver)
			}
			if len(body.Checks) != len(tt.wantChecks) {
				t.Errorf("got %d checks, want %d", len(body.Checks), len(tt.wantChecks))
			}
			for name, want := range tt.wantChecks {
				if got := body.Checks[name].Status; got != want {
					t.Errorf("%s status = %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestCheckerTimeout(t *testing.T) {
	var deadline bool
	h := health.NewHandler(slog.Default(), map[string]health.Checker{
		"slow": health.CheckerFunc(func(ctx context.Context) error {
			_, deadline = ctx.Deadline()
			return nil
		}),
	})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !deadline {
		t.Error("checker context has no deadline")
	}
}
