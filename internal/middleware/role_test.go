package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func callWithRole(t *testing.T, mw echo.MiddlewareFunc, role interface{}) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec.Code
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole("ADMIN")

	t.Run("allowed role passes", func(t *testing.T) {
		if code := callWithRole(t, mw, "ADMIN"); code != http.StatusOK {
			t.Errorf("status = %d, want 200", code)
		}
	})
	t.Run("wrong role forbidden", func(t *testing.T) {
		if code := callWithRole(t, mw, "MEMBER"); code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", code)
		}
	})
	t.Run("missing role forbidden", func(t *testing.T) {
		if code := callWithRole(t, mw, nil); code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", code)
		}
	})
	t.Run("non-string role forbidden", func(t *testing.T) {
		if code := callWithRole(t, mw, 7); code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", code)
		}
	})
	t.Run("any of several roles", func(t *testing.T) {
		both := RequireRole("MEMBER", "ADMIN")
		if code := callWithRole(t, both, "MEMBER"); code != http.StatusOK {
			t.Errorf("status = %d, want 200", code)
		}
	})
}
