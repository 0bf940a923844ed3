package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSMiddleware(t *testing.T) {
	var reached bool
	handler := corsMiddleware("https://app.example.com", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	tests := []struct {
		method  string
		reached bool
	}{
		{http.MethodOptions, false},
		{http.MethodPost, true},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			reached = false
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, "/splitledger.v1.GroupService/ListGroups", nil))

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
				t.Errorf("expected origin header, got %q", got)
			}
			if rec.Header().Get("Vary") != "Origin" {
				t.Error("expected Vary: Origin for a fixed origin")
			}
			if reached != tt.reached {
				t.Errorf("expected handler reached=%v, got %v", tt.reached, reached)
			}
		})
	}
}
