package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hrimajin/internal/middleware"
)

func loginCookies(t *testing.T, s *testServer, password string) []*http.Cookie {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/login", map[string]string{"password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}
	return cookies
}

func TestEditModeGuardsMutations(t *testing.T) {
	s, cleanup := setupTestServer(t, true)
	defer cleanup()

	body := map[string]interface{}{"title": "Rahasia", "link": "/r", "imageDataUrl": pngDataURL(t, 2, 2), "hidden": true}

	w := s.do(t, http.MethodPost, "/api/cards", body)
	if w.Code != http.StatusUnauthorized || errorMessage(t, w) != middleware.EditModeMessage {
		t.Fatalf("expected 401 without edit session, got %d: %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/login", map[string]string{"password": "salah"})
	if w.Code != http.StatusUnauthorized || errorMessage(t, w) != passwordInvalidMessage {
		t.Fatalf("expected wrong password to be rejected, got %d: %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/login", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected missing password to be rejected, got %d", w.Code)
	}

	cookies := loginCookies(t, s, "admin123")

	w = s.do(t, http.MethodGet, "/api/session", nil, cookies...)
	if !strings.Contains(w.Body.String(), `"authenticated":true`) {
		t.Fatalf("expected active session, got %s", w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/cards", body, cookies...)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected create with session to succeed, got %d: %s", w.Code, w.Body.String())
	}

	var list cardListResponse
	decode(t, s.do(t, http.MethodGet, "/api/cards?includeHidden=true", nil, cookies...), &list)
	if len(list.Cards) != 1 || !list.Cards[0].Hidden {
		t.Fatalf("expected hidden card for edit session, got %+v", list.Cards)
	}

	decode(t, s.do(t, http.MethodGet, "/api/cards?includeHidden=true", nil), &list)
	if len(list.Cards) != 0 {
		t.Fatalf("expected hidden card to stay hidden without session, got %+v", list.Cards)
	}

	w = s.do(t, http.MethodPost, "/api/logout", nil, cookies...)
	if w.Code != http.StatusOK {
		t.Fatalf("expected logout to succeed, got %d", w.Code)
	}
	cleared := w.Result().Cookies()
	w = s.do(t, http.MethodGet, "/api/session", nil, cleared...)
	if !strings.Contains(w.Body.String(), `"authenticated":false`) {
		t.Fatalf("expected session cleared, got %s", w.Body.String())
	}
}

func TestLoginForm(t *testing.T) {
	s, cleanup := setupTestServer(t, true)
	defer cleanup()

	post := func(password string) *httptest.ResponseRecorder {
		form := url.Values{"password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		return w
	}

	w := post("salah")
	if w.Code != http.StatusUnauthorized || s.html.name != "login.html" {
		t.Fatalf("expected login page re-rendered with 401, got %d (%s)", w.Code, s.html.name)
	}
	data, ok := s.html.data.(gin.H)
	if !ok || data["error"] != passwordInvalidMessage {
		t.Fatalf("expected error in template data, got %#v", s.html.data)
	}

	w = post("admin123")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect home, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestLogoutGetRedirectsHome(t *testing.T) {
	s, cleanup := setupTestServer(t, true)
	defer cleanup()

	cookies := loginCookies(t, s, "admin123")
	w := s.do(t, http.MethodGet, "/logout", nil, cookies...)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect home, got %d %q", w.Code, w.Header().Get("Location"))
	}
}
