package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func captureCredential(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = Credential(r.Context())
	})
}

func TestAdminCredential_FormField(t *testing.T) {
	var got string
	form := url.Values{"password": {"secreto"}}
	req := httptest.NewRequest(http.MethodPost, "/draw", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	AdminCredential(captureCredential(&got)).ServeHTTP(httptest.NewRecorder(), req)

	if got != "secreto" {
		t.Errorf("expected form credential, got %q", got)
	}
}

func TestAdminCredential_BasicAuth(t *testing.T) {
	var got string
	req := httptest.NewRequest(http.MethodPost, "/draw", nil)
	req.SetBasicAuth("admin", "secreto")

	AdminCredential(captureCredential(&got)).ServeHTTP(httptest.NewRecorder(), req)

	if got != "secreto" {
		t.Errorf("expected basic auth credential, got %q", got)
	}
}

func TestAdminCredential_Absent(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no auth", func(r *http.Request) {}},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }},
		{"bad base64", func(r *http.Request) { r.Header.Set("Authorization", "Basic !!!") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := "unset"
			req := httptest.NewRequest(http.MethodPost, "/reset", nil)
			tt.setup(req)

			AdminCredential(captureCredential(&got)).ServeHTTP(httptest.NewRecorder(), req)

			if got != "" {
				t.Errorf("expected empty credential, got %q", got)
			}
		})
	}
}

func TestAdminCredential_WrongUserIsNotEmpty(t *testing.T) {
	var got string
	req := httptest.NewRequest(http.MethodPost, "/draw", nil)
	req.SetBasicAuth("root", "secreto")

	AdminCredential(captureCredential(&got)).ServeHTTP(httptest.NewRecorder(), req)

	if got == "" {
		t.Fatal("a wrong user must count as an attempt")
	}
	if got == "secreto" {
		t.Error("a wrong user must not pass the password through")
	}
}

type fakeChecker struct {
	drawn bool
	err   error
	calls int
}

func (f *fakeChecker) DrawDone(context.Context) (bool, error) {
	f.calls++
	return f.drawn, f.err
}

func TestDrawState(t *testing.T) {
	checker := &fakeChecker{drawn: true}
	var state State
	h := DrawState(checker)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state = DrawStateFrom(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !state.Drawn || state.Err != nil {
		t.Errorf("unexpected state %+v", state)
	}
	if checker.calls != 2 {
		t.Errorf("expected one durable check per request, got %d", checker.calls)
	}
}

func TestDrawState_StoreError(t *testing.T) {
	checker := &fakeChecker{err: errors.New("timeout")}
	var state State
	h := DrawState(checker)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state = DrawStateFrom(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if state.Err == nil {
		t.Error("expected store error to be exposed")
	}
}

func TestDrawStateFrom_Default(t *testing.T) {
	if s := DrawStateFrom(context.Background()); s.Drawn || s.Err != nil {
		t.Errorf("expected zero state, got %+v", s)
	}
}
