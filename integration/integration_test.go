package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/db"
	"github.com/cuida-app/cuida/internal/item"
	"github.com/cuida-app/cuida/internal/remote"
	"github.com/cuida-app/cuida/internal/session"
)

const (
	testUser     = "ana"
	testPassword = "segredo"
)

// service is an in-memory stand-in for the caregiving REST API.
type service struct {
	mu      sync.Mutex
	nextID  int
	records []map[string]any
	extra   []any
}

func (s *service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Basic "+session.BuildBasic(testUser, testPassword) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/responsibles/login":
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "name": "Ana Souza", "username": testUser})

	case r.Method == http.MethodPost && r.URL.Path == "/responsibles/tasks":
		var req remote.TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		start := time.UnixMilli(req.StartDate).In(time.Local)
		s.mu.Lock()
		s.nextID++
		s.records = append(s.records, map[string]any{
			"id":          s.nextID,
			"description": req.Description,
			"date":        remote.FormatPtDate(start.Format("2006-01-02"), start.Format("15:04")),
		})
		s.mu.Unlock()
		w.WriteHeader(http.StatusCreated)

	case r.Method == http.MethodGet && r.URL.Path == "/responsibles/tasks":
		s.mu.Lock()
		group := make([]any, 0, len(s.records)+len(s.extra))
		for _, rec := range s.records {
			group = append(group, rec)
		}
		group = append(group, s.extra...)
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"tarefas": group})

	default:
		http.NotFound(w, r)
	}
}

// env wires a local database, a session stored in it, and a client talking
// to a fake service.
type env struct {
	path    string
	repo    *db.SQLite
	sess    *session.Session
	client  *remote.Client
	service *service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "cuida.db")
	repo, err := db.New(path)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	sess, err := session.Open(ctx, repo)
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}

	svc := &service{}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	client := remote.NewClient(remote.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}, sess)
	return &env{path: path, repo: repo, sess: sess, client: client, service: svc}
}

func (e *env) login(t *testing.T) {
	t.Helper()
	err := e.sess.Login(context.Background(), e.client, session.LoginForm{Username: testUser, Password: testPassword})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

// save mirrors the remote save path: send the task, then keep a local copy.
func (e *env) save(t *testing.T, f item.Form) *item.Item {
	t.Helper()
	ctx := context.Background()
	it, err := item.New(f)
	if err != nil {
		t.Fatalf("invalid form %+v: %v", f, err)
	}
	if err := e.client.CreateTask(ctx, it); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if err := e.repo.UpsertItem(ctx, it); err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}
	return it
}

func titles(items []item.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestLoginStoresProfile(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	u := e.sess.User()
	if u == nil {
		t.Fatal("expected a signed-in user")
	}
	if u.ID != "7" || u.Name != "Ana Souza" || u.Username != testUser {
		t.Errorf("user = %+v", u)
	}

	basic, ok, err := e.repo.Get(context.Background(), session.KeyBasic)
	if err != nil || !ok {
		t.Fatalf("stored credential missing: ok=%v err=%v", ok, err)
	}
	if basic != session.BuildBasic(testUser, testPassword) {
		t.Errorf("stored credential = %q", basic)
	}
}

func TestLoginRejected(t *testing.T) {
	e := newEnv(t)
	err := e.sess.Login(context.Background(), e.client, session.LoginForm{Username: testUser, Password: "wrong"})
	if !errors.Is(err, remote.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	if e.sess.SignedIn() {
		t.Error("rejected login must not sign in")
	}
}

func TestRemoteRoundTrip(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()

	e.save(t, item.Form{Kind: "event", Title: "Cardiologist", Date: "2025-09-13", Time: "14:00", Description: "bring exams"})
	e.save(t, item.Form{Kind: "event", Title: "Dentist", Date: "2025-09-16", Time: "09:30"})
	e.save(t, item.Form{Kind: "event", Title: "Physio", Date: "2025-09-25", Time: "10:00"})

	week, err := agenda.Load(ctx, remote.NewFeed(e.client), "2025-09-13", agenda.PolicyRolling)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	all := week.AllItems()
	if len(all) != 2 {
		t.Fatalf("expected 2 items in window, got %v", titles(all))
	}
	first := week.Day(0).Items()
	if len(first) != 1 {
		t.Fatalf("expected 1 item on Sep 13, got %d", len(first))
	}
	if first[0].Title != "Cardiologist" || first[0].Description != "bring exams" || first[0].Time != "14:00" {
		t.Errorf("round trip lost data: %+v", first[0])
	}
	if got := week.DayByDate("2025-09-16").Items(); len(got) != 1 || got[0].Time != "09:30" {
		t.Errorf("Sep 16 bucket = %+v", got)
	}

	local, err := e.repo.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(local) != 3 {
		t.Errorf("expected 3 local copies, got %d", len(local))
	}
}

func TestRemoteSkipsMalformedRecords(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.save(t, item.Form{Kind: "event", Title: "Cardiologist", Date: "2025-09-13", Time: "14:00"})
	e.service.mu.Lock()
	e.service.extra = []any{
		map[string]any{"id": 90, "description": "No date", "date": "sometime"},
		map[string]any{"id": 91, "description": "Bad day: x", "date": "31 de fevereiro - 10:00"},
		"not an object",
		map[string]any{"id": 92, "description": "No clock", "date": "15 de setembro"},
	}
	e.service.mu.Unlock()

	items, err := e.client.ListTasks(context.Background(), 2025)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 usable records, got %v", titles(items))
	}
	if items[1].Title != "No clock" || items[1].Time != "00:00" || items[1].Date != "2025-09-15" {
		t.Errorf("record without clock = %+v", items[1])
	}
}

func TestRemoteWithoutSession(t *testing.T) {
	e := newEnv(t)

	week, err := agenda.Load(context.Background(), remote.NewFeed(e.client), "2025-09-13", agenda.PolicyRolling)
	if !errors.Is(err, remote.ErrNoSession) {
		t.Fatalf("error = %v, want ErrNoSession", err)
	}
	if week != nil {
		t.Error("expected no week on failure")
	}

	empty := agenda.EmptyWeek("2025-09-13", agenda.PolicyRolling)
	if empty.Window.Start() != "2025-09-13" || len(empty.AllItems()) != 0 {
		t.Errorf("empty week = %v", empty.Window)
	}
}

func TestSessionSharedBetweenProcesses(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	other, err := db.New(e.path)
	if err != nil {
		t.Fatalf("failed to open second handle: %v", err)
	}
	t.Cleanup(func() { _ = other.Close() })
	otherSess, err := session.Open(ctx, other)
	if err != nil {
		t.Fatalf("failed to open second session: %v", err)
	}

	var seen []session.State
	cancel := otherSess.Subscribe(func(s session.State) { seen = append(seen, s) })
	defer cancel()

	e.login(t)

	changed, err := otherSess.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if !changed {
		t.Fatal("expected Refresh to pick up the login")
	}
	if len(seen) != 1 || !seen[0].SignedIn || seen[0].User.Username != testUser {
		t.Errorf("subscriber saw %+v", seen)
	}

	changed, err = otherSess.Refresh(ctx)
	if err != nil || changed {
		t.Errorf("second Refresh = %v, %v; want no change", changed, err)
	}

	if err := e.sess.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if changed, _ := otherSess.Refresh(ctx); !changed || otherSess.SignedIn() {
		t.Error("expected the logout to reach the second session")
	}
}

func TestLocalRepeatingItemsAcrossWeeks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	it, err := item.New(item.Form{
		Kind:          "med",
		Title:         "Losartan",
		Dose:          "50mg",
		Date:          "2025-09-13",
		Time:          "20:00",
		Repeated:      true,
		Frequency:     2,
		FrequencyUnit: "daily",
	})
	if err != nil {
		t.Fatalf("item.New failed: %v", err)
	}
	if err := e.repo.UpsertItem(ctx, it); err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}

	tests := []struct {
		ref  string
		want []string
	}{
		{ref: "2025-09-13", want: []string{"2025-09-13", "2025-09-15", "2025-09-17", "2025-09-19"}},
		{ref: "2025-09-20", want: []string{"2025-09-21", "2025-09-23", "2025-09-25"}},
		{ref: "2025-09-06", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			week, err := agenda.Load(ctx, e.repo, tt.ref, agenda.PolicyRolling)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			all := week.AllItems()
			var got []string
			for _, occ := range all {
				got = append(got, occ.Date)
				if occ.ID != it.ID || occ.Dose != "50mg" {
					t.Errorf("occurrence lost its origin: %+v", occ)
				}
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("dates = %v, want %v", got, tt.want)
			}
		})
	}
}
