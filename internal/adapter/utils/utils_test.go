package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestGetNewUUID(t *testing.T) {
	a, b := GetNewUUID(), GetNewUUID()
	if a == b {
		t.Fatal("ids should differ")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("not a uuid: %v", err)
	}
}

func TestNewRouter_Mounts(t *testing.T) {
	r := NewRouter().Router

	tests := []struct {
		path string
		code int
	}{
		{"/metrics", http.StatusOK},
		{"/swagger", http.StatusMovedPermanently},
		{"/swagger/doc.json", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.code {
				t.Errorf("Code got %d, want %d", rec.Code, tt.code)
			}
		})
	}
}
