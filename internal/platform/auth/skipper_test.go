package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAuthSkipper(t *testing.T) {
	tests := map[string]bool{
		"/health":                    true,
		"/health/db":                 true,
		"/health/extra":              false,
		"/api/v1/calculations":       false,
		"/api/v1/interchange/bundle": false,
		"/fhir/$calculator-bundle":   false,
		"/":                          false,
	}

	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, path, nil)
			c := e.NewContext(req, httptest.NewRecorder())
			c.SetPath(path)

			if got := AuthSkipper(c); got != want {
				t.Errorf("AuthSkipper(%s) = %v, want %v", path, got, want)
			}
			if got := IsPublicPath(path); got != want {
				t.Errorf("IsPublicPath(%s) = %v, want %v", path, got, want)
			}
		})
	}
}
