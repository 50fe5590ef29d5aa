package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medtrack/medtrack-api/internal/domain"
)

func newTestContext(t *testing.T, header string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestBearerToken(t *testing.T) {
	for _, tc := range []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc.def.ghi", "abc.def.ghi", true},
		{"", "", false},
		{"Basic dXNlcg==", "", false},
		{"Bearer ", "", false},
		{"Bearer", "", false},
	} {
		c := newTestContext(t, tc.header)
		token, ok := bearerToken(c)
		if ok != tc.ok || token != tc.token {
			t.Fatalf("header %q: got (%q, %v), want (%q, %v)", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}

func TestRequireAdminForbidsPatients(t *testing.T) {
	c := newTestContext(t, "")
	c.Set(contextUserKey, &domain.Principal{ID: 7, RoleID: domain.RolePatient})

	called := false
	handler := RequireAdmin()(func(c echo.Context) error {
		called = true
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if called {
		t.Fatal("patient must not reach an admin route")
	}
	if c.Response().Status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", c.Response().Status)
	}
}

func TestRequireAdminAllowsAdmins(t *testing.T) {
	c := newTestContext(t, "")
	c.Set(contextUserKey, &domain.Principal{ID: 1, RoleID: domain.RoleAdmin})

	called := false
	handler := RequireAdmin()(func(c echo.Context) error {
		called = true
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !called {
		t.Fatal("admin should reach the route")
	}
}

func TestRequireAdminWithoutPrincipal(t *testing.T) {
	c := newTestContext(t, "")

	handler := RequireAdmin()(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if c.Response().Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", c.Response().Status)
	}
}

func TestRequireSelfOrAdmin(t *testing.T) {
	t.Run("own reminders", func(t *testing.T) {
		c := newTestContext(t, "")
		c.Set(contextUserKey, &domain.Principal{ID: 7, RoleID: domain.RolePatient})
		if !requireSelfOrAdmin(c, 7) {
			t.Fatal("a patient may access their own reminders")
		}
	})

	t.Run("someone else's reminders", func(t *testing.T) {
		c := newTestContext(t, "")
		c.Set(contextUserKey, &domain.Principal{ID: 7, RoleID: domain.RolePatient})
		if requireSelfOrAdmin(c, 8) {
			t.Fatal("a patient must not access another user's reminders")
		}
		if c.Response().Status != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", c.Response().Status)
		}
	})

	t.Run("admin override", func(t *testing.T) {
		c := newTestContext(t, "")
		c.Set(contextUserKey, &domain.Principal{ID: 1, RoleID: domain.RoleAdmin})
		if !requireSelfOrAdmin(c, 8) {
			t.Fatal("an admin may access any user's reminders")
		}
	})
}
