package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cuida-app/cuida/internal/item"
	"github.com/cuida-app/cuida/internal/session"
)

type staticCreds string

func (s staticCreds) Basic() string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc, creds Credentials) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}, creds)
}

func TestClient_NoSessionAbortsBeforeRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, staticCreds(""))

	ctx := context.Background()
	if err := c.CreateTask(ctx, &item.Item{Title: "x", Date: "2025-09-13"}); !errors.Is(err, ErrNoSession) {
		t.Errorf("CreateTask error = %v, want ErrNoSession", err)
	}
	if _, err := c.ListTasks(ctx, 2025); !errors.Is(err, ErrNoSession) {
		t.Errorf("ListTasks error = %v, want ErrNoSession", err)
	}
	if _, err := c.LookupElderly(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("LookupElderly error = %v, want ErrNoSession", err)
	}
	if called {
		t.Error("no request should reach the server without a session")
	}

	nilCreds := NewClient(Options{}, nil)
	if _, err := nilCreds.ListTasks(ctx, 2025); !errors.Is(err, ErrNoSession) {
		t.Errorf("nil credentials error = %v, want ErrNoSession", err)
	}
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/responsibles/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Basic "+session.BuildBasic("ana", "123") {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = io.WriteString(w, `{"id": 42, "name": "Ana Souza", "username": "ana"}`)
	}, nil)

	u, err := c.Login(context.Background(), "ana", "123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if u.ID != "42" || u.Name != "Ana Souza" || u.Username != "ana" {
		t.Errorf("unexpected profile: %+v", u)
	}
}

func TestClient_Login_EmptyBodyUsesUsername(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	u, err := c.Login(context.Background(), "ana", "123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if u.Username != "ana" || u.Name != "ana" {
		t.Errorf("unexpected profile: %+v", u)
	}
}

func TestClient_Login_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, nil)

	_, err := c.Login(context.Background(), "ana", "wrong")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	if err.Error() != "HTTP 401" {
		t.Errorf("message = %q, want HTTP 401", err.Error())
	}
}

func TestClient_Register(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/responsibles" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("registration must be anonymous")
		}
		var body registerRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if body.Name != "Ana" || body.Username != "ana" || body.Password != "123" || body.Email != "" {
			t.Errorf("unexpected body: %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": "u_1"}`)
	}, nil)

	u, err := c.Register(context.Background(), session.RegisterForm{Name: "Ana", Username: "ana", Password: "123", Confirm: "123"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.ID != "u_1" || u.Name != "Ana" || u.Username != "ana" {
		t.Errorf("unexpected profile: %+v", u)
	}
}

func TestClient_CreateTask(t *testing.T) {
	withLocal(t, time.FixedZone("BRT", -3*3600))

	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/responsibles/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Basic cred" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}, staticCreds("cred"))

	it := &item.Item{
		Kind:        item.KindMed,
		Title:       "Losartana",
		Date:        "2025-09-13",
		Time:        "08:00",
		Description: "after breakfast",
		Recurrence:  &item.Recurrence{Frequency: 1, Unit: item.FrequencyDaily},
	}
	if err := c.CreateTask(context.Background(), it); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	want := time.Date(2025, 9, 13, 8, 0, 0, 0, time.Local).UnixMilli()
	if got["description"] != "Losartana: after breakfast" {
		t.Errorf("description = %v", got["description"])
	}
	if got["startDate"] != float64(want) {
		t.Errorf("startDate = %v, want %d", got["startDate"], want)
	}
	if got["repeated"] != true || got["frequency"] != float64(1) || got["frequencyUnit"] != "DAILY" {
		t.Errorf("recurrence fields = %v %v %v", got["repeated"], got["frequency"], got["frequencyUnit"])
	}
}

func TestNewTaskRequest_Unique(t *testing.T) {
	req := NewTaskRequest(&item.Item{Title: "Visit", Date: "2025-09-13"})
	if req.Repeated || req.Frequency != 0 || req.FrequencyUnit != item.FrequencyUnique {
		t.Errorf("unexpected one-off request: %+v", req)
	}
	if req.Description != "Visit: " {
		t.Errorf("description = %q", req.Description)
	}

	req = NewTaskRequest(&item.Item{
		Title:      "Visit",
		Date:       "2025-09-13",
		Recurrence: &item.Recurrence{Frequency: 3, Unit: item.FrequencyUnique},
	})
	if req.Repeated || req.Frequency != 0 {
		t.Errorf("UNIQUE must force frequency 0: %+v", req)
	}
}

func TestClient_ListTasks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/responsibles/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"g": [{"id": 1, "description": "Cardiologist: exams", "date": "13 de setembro - 14:00"}]}`)
	}, staticCreds("cred"))

	items, err := c.ListTasks(context.Background(), 2025)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(items) != 1 || items[0].Date != "2025-09-13" || items[0].Title != "Cardiologist" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestClient_HTTPErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantMsg      string
		unauthorized bool
	}{
		{"body text", http.StatusBadRequest, "invalid start date\n", "invalid start date", false},
		{"empty body", http.StatusInternalServerError, "", "HTTP 500", false},
		{"forbidden", http.StatusForbidden, "", "HTTP 403", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, staticCreds("cred"))

			_, err := c.ListTasks(context.Background(), 2025)
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if httpErr.Status != tt.status || err.Error() != tt.wantMsg {
				t.Errorf("got %d %q, want %d %q", httpErr.Status, err.Error(), tt.status, tt.wantMsg)
			}
			if errors.Is(err, ErrUnauthorized) != tt.unauthorized {
				t.Errorf("errors.Is(ErrUnauthorized) = %v", !tt.unauthorized)
			}
		})
	}
}

func TestClient_LookupElderly(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantID  string
		wantNil bool
	}{
		{"registered", http.StatusOK, `{"id": 3, "name": "Dona Maria", "email": "maria@example.com", "lastCheckIn": "2025-09-12 08:00", "todayCheckInDone": true}`, "3", false},
		{"no content", http.StatusNoContent, "", "", true},
		{"empty body", http.StatusOK, "  ", "", true},
		{"invalid json", http.StatusOK, "{oops", "", true},
		{"missing id", http.StatusOK, `{"name": "x"}`, "", true},
		{"not found", http.StatusNotFound, "not found", "", true},
		{"unauthorized", http.StatusUnauthorized, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/elderly" || r.Header.Get("Authorization") != "Basic cred" {
					t.Errorf("unexpected request %s %q", r.URL.Path, r.Header.Get("Authorization"))
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, staticCreds("cred"))

			e, err := c.LookupElderly(context.Background())
			if err != nil {
				t.Fatalf("LookupElderly failed: %v", err)
			}
			if tt.wantNil {
				if e != nil {
					t.Errorf("expected not registered, got %+v", e)
				}
				return
			}
			if e == nil || e.ID != tt.wantID {
				t.Fatalf("expected id %s, got %+v", tt.wantID, e)
			}
			if e.Name != "Dona Maria" || e.LastCheckIn != "2025-09-12 08:00" || !e.TodayCheckInDone {
				t.Errorf("unexpected elderly: %+v", e)
			}
		})
	}
}

func TestClient_LookupElderly_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(Options{BaseURL: srv.URL}, staticCreds("cred"))
	if _, err := c.LookupElderly(context.Background()); err == nil {
		t.Error("expected a transport error")
	}
}

func TestClient_RegisterElderly(t *testing.T) {
	var body elderlyRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/elderly" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
	}, staticCreds("cred"))

	e, err := c.RegisterElderly(context.Background(), ElderlyForm{
		Name:     " Dona Maria ",
		Email:    "maria@example.com",
		Password: "abc",
		Confirm:  "abc",
	})
	if err != nil {
		t.Fatalf("RegisterElderly failed: %v", err)
	}
	if body.Name != "Dona Maria" || body.Email != "maria@example.com" || body.Password != "abc" {
		t.Errorf("unexpected body: %+v", body)
	}
	if e.Name != "Dona Maria" {
		t.Errorf("unexpected result: %+v", e)
	}
}

func TestElderlyForm_Validate(t *testing.T) {
	tests := []struct {
		name string
		form ElderlyForm
		msg  string
	}{
		{"missing name", ElderlyForm{Email: "a@b.co", Password: "x", Confirm: "x"}, "fill in all required fields"},
		{"bad email", ElderlyForm{Name: "M", Email: "nope", Password: "x", Confirm: "x"}, "enter a valid e-mail address"},
		{"mismatch", ElderlyForm{Name: "M", Email: "a@b.co", Password: "x", Confirm: "y"}, "passwords do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if err == nil || err.Error() != tt.msg {
				t.Errorf("error = %v, want %q", err, tt.msg)
			}
		})
	}
}

func withLocal(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}
