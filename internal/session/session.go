// Package session keeps the caregiver's Basic credential and profile.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cuida-app/cuida/internal/debuglog"
)

// Storage keys shared with every process that uses the same store.
const (
	KeyBasic = "auth_basic"
	KeyUser  = "auth_user"
)

// ErrNotSignedIn is returned when an operation needs a session and there is none.
var ErrNotSignedIn = errors.New("not signed in: run 'cuida login' first")

// Store is the key-value persistence the session lives in.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Authenticator checks credentials against a backend.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*User, error)
	Register(ctx context.Context, form RegisterForm) (*User, error)
}

// User is the signed-in caregiver's profile.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// State is a snapshot passed to subscribers.
type State struct {
	SignedIn bool
	User     *User
}

// Session is the explicit, shared authentication state.
type Session struct {
	store Store

	mu     sync.RWMutex
	basic  string
	user   *User
	nextID int
	subs   map[int]func(State)
}

// Open loads the session persisted in store.
func Open(ctx context.Context, store Store) (*Session, error) {
	s := &Session{store: store, subs: make(map[int]func(State))}
	basic, user, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	s.basic, s.user = basic, user
	return s, nil
}

// BuildBasic encodes "username:password" for the Authorization header.
func BuildBasic(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

// Basic returns the stored credential, or "" when signed out.
func (s *Session) Basic() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.basic
}

// User returns a copy of the signed-in profile, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SignedIn reports whether both the credential and the profile are present.
func (s *Session) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.basic != "" && s.user != nil
}

// Login validates the form, authenticates and persists the session.
// Nothing is stored when authentication fails.
func (s *Session) Login(ctx context.Context, auth Authenticator, form LoginForm) error {
	form = form.normalized()
	if err := form.Validate(); err != nil {
		return err
	}

	user, err := auth.Login(ctx, form.Username, form.Password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return s.set(ctx, BuildBasic(form.Username, form.Password), user)
}

// Register validates the form, creates the account and signs in with it.
func (s *Session) Register(ctx context.Context, auth Authenticator, form RegisterForm) error {
	form = form.normalized()
	if err := form.Validate(); err != nil {
		return err
	}

	user, err := auth.Register(ctx, form)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return s.set(ctx, BuildBasic(form.Username, form.Password), user)
}

// Logout removes both keys from the store.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, KeyBasic, KeyUser); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	s.mu.Lock()
	s.basic, s.user = "", nil
	s.mu.Unlock()

	debuglog.Log("SESSION", map[string]any{"action": "logout"})
	s.notify()
	return nil
}

// Refresh re-reads the store and notifies subscribers if another process
// changed the credentials since the last read.
func (s *Session) Refresh(ctx context.Context) (bool, error) {
	basic, user, err := s.read(ctx)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	changed := basic != s.basic || !sameUser(user, s.user)
	if changed {
		s.basic, s.user = basic, user
	}
	s.mu.Unlock()

	if changed {
		debuglog.Log("SESSION", map[string]any{"action": "external_change", "signed_in": basic != "" && user != nil})
		s.notify()
	}
	return changed, nil
}

// Subscribe registers fn to be called after every session change.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) set(ctx context.Context, basic string, user *User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := s.store.Set(ctx, KeyBasic, basic); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	if err := s.store.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	s.mu.Lock()
	s.basic = basic
	u := *user
	s.user = &u
	s.mu.Unlock()

	debuglog.Log("SESSION", map[string]any{"action": "signed_in", "username": user.Username})
	s.notify()
	return nil
}

// read loads both keys. An unreadable profile counts as signed out.
func (s *Session) read(ctx context.Context) (string, *User, error) {
	basic, _, err := s.store.Get(ctx, KeyBasic)
	if err != nil {
		return "", nil, fmt.Errorf("reading session: %w", err)
	}
	raw, ok, err := s.store.Get(ctx, KeyUser)
	if err != nil {
		return "", nil, fmt.Errorf("reading session: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return basic, nil, nil
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		debuglog.Error("session.read", err)
		return basic, nil, nil
	}
	return basic, &u, nil
}

func (s *Session) notify() {
	s.mu.RLock()
	state := State{SignedIn: s.basic != "" && s.user != nil}
	if s.user != nil {
		u := *s.user
		state.User = &u
	}
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(state)
	}
}

func sameUser(a, b *User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
