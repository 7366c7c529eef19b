package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/notes-api/internal/api/middleware"
	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := middleware.NewCORSMiddleware([]string{"http://localhost:3000"})(next)

	tests := []struct {
		name          string
		method        string
		origin        string
		preflight     bool
		status        int
		allowedOrigin string
	}{
		{"allowed origin", http.MethodGet, "http://localhost:3000", false, http.StatusTeapot, "http://localhost:3000"},
		{"foreign origin", http.MethodGet, "http://evil.test", false, http.StatusTeapot, ""},
		{"no origin", http.MethodGet, "", false, http.StatusTeapot, ""},
		{"preflight", http.MethodOptions, "http://localhost:3000", true, http.StatusNoContent, "http://localhost:3000"},
		{"plain options", http.MethodOptions, "http://localhost:3000", false, http.StatusTeapot, "http://localhost:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/notes", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.allowedOrigin != "" {
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
			}
		})
	}
}
