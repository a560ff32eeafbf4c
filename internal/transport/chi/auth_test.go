package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authHandler(keys []string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return BearerAuthMiddleware(keys)(ok)
}

func TestBearerAuth_DisabledWithoutKeys(t *testing.T) {
	h := authHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected pass-through without keys, got %d", rec.Code)
	}
}

func TestBearerAuth_ValidKey(t *testing.T) {
	h := authHandler([]string{"secret"})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for valid key, got %d", rec.Code)
	}
}

func TestBearerAuth_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic secret"},
		{"invalid key", "Bearer wrong"},
		{"empty token", "Bearer "},
	}

	h := authHandler([]string{"secret"})
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestBearerAuth_ExemptPaths(t *testing.T) {
	h := authHandler([]string{"secret"})

	for _, path := range []string{"/healthz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected exempt from auth, got %d", path, rec.Code)
		}
	}
}

func TestBearerAuth_BlankKeysDisable(t *testing.T) {
	h := authHandler([]string{"", ""})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("blank keys must disable auth, got %d", rec.Code)
	}
}
