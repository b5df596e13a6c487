package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ticketdesk/ticketdesk/internal/auth"
	"github.com/ticketdesk/ticketdesk/internal/model"
)

type stubVerifier struct {
	tokens map[string]*model.AuthContext
	seen   []string
}

func (s *stubVerifier) Verify(token string) (*model.AuthContext, error) {
	s.seen = append(s.seen, token)
	if ac, ok := s.tokens[token]; ok {
		return ac, nil
	}
	return nil, errors.New("bad token")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestAuth(t *testing.T) {
	alice := &model.AuthContext{UserID: "u1", Username: "alice"}
	verifier := &stubVerifier{tokens: map[string]*model.AuthContext{"good": alice}}

	var gotUser string
	handler := Auth(AuthConfig{Logger: discardLogger(), Verifier: verifier})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = auth.UserIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
	)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{"valid bearer", "Bearer good", http.StatusOK, ""},
		{"scheme case-insensitive", "bearer good", http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, MsgNoToken},
		{"bad signature", "Bearer forged", http.StatusUnauthorized, MsgInvalidToken},
		{"no token after scheme", "Bearer", http.StatusUnauthorized, MsgInvalidToken},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, MsgInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(http.MethodPost, "/tickets", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantError != "" {
				if got := decodeError(t, rec); got != tt.wantError {
					t.Errorf("error = %q, want %q", got, tt.wantError)
				}
				if gotUser != "" {
					t.Error("handler must not run on auth failure")
				}
				return
			}
			if gotUser != "u1" {
				t.Errorf("auth context not injected, user = %q", gotUser)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authCtx    *model.AuthContext
		wantStatus int
		wantError  string
	}{
		{"admin passes", &model.AuthContext{UserID: "a", IsAdmin: true}, http.StatusOK, ""},
		{"non-admin forbidden", &model.AuthContext{UserID: "u"}, http.StatusForbidden, MsgAdminRequired},
		{"no auth context", nil, http.StatusUnauthorized, MsgNoToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			if tt.authCtx != nil {
				req = req.WithContext(auth.ContextWithAuth(req.Context(), tt.authCtx))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantError != "" {
				if got := decodeError(t, rec); got != tt.wantError {
					t.Errorf("error = %q, want %q", got, tt.wantError)
				}
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Bearer abc":      "abc",
		"  Bearer  abc  ": "abc",
		"BEARER abc":      "abc",
		"Bearer":          "",
		"Token abc":       "",
		"abc":             "",
	}
	for header, want := range tests {
		if got := extractBearerToken(header); got != want {
			t.Errorf("extractBearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
