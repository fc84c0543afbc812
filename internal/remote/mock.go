package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/item"
	"github.com/cuida-app/cuida/internal/session"
)

// Latency is the simulated delay of each mock operation.
type Latency struct {
	Login    time.Duration
	Register time.Duration
	Save     time.Duration
}

// DefaultLatency mirrors the delays of the development mock.
var DefaultLatency = Latency{
	Login:    400 * time.Millisecond,
	Register: 600 * time.Millisecond,
	Save:     300 * time.Millisecond,
}

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errInvalidData        = errors.New("invalid registration data")
)

// Mock is an in-process Backend used when the service is not available.
// It keeps tasks in memory and serves them in the service's payload format.
type Mock struct {
	latency Latency
	creds   Credentials

	mu      sync.Mutex
	nextID  int
	tasks   []mockRecord
	elderly *Elderly
}

type mockRecord struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Date        string `json:"date"`
	month       string
}

// NewMock returns a mock backend with the given latency.
func NewMock(latency Latency, creds Credentials) *Mock {
	return &Mock{latency: latency, creds: creds, nextID: 1}
}

func (m *Mock) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *Mock) authorized() error {
	if m.creds == nil || m.creds.Basic() == "" {
		return ErrNoSession
	}
	return nil
}

// Login accepts any username of 2+ characters with a password of 3+.
func (m *Mock) Login(ctx context.Context, username, password string) (*session.User, error) {
	if err := m.wait(ctx, m.latency.Login); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if len(username) < 2 || len(password) < 3 {
		return nil, errInvalidCredentials
	}
	return &session.User{ID: mockUserID(), Name: username, Username: username}, nil
}

// Register accepts any form with name and username of 2+ characters and a
// password of 3+.
func (m *Mock) Register(ctx context.Context, form session.RegisterForm) (*session.User, error) {
	if err := m.wait(ctx, m.latency.Register); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(form.Name)
	username := strings.TrimSpace(form.Username)
	if len(name) < 2 || len(username) < 2 || len(form.Password) < 3 {
		return nil, errInvalidData
	}
	return &session.User{
		ID:       mockUserID(),
		Name:     name,
		Username: username,
		Email:    strings.TrimSpace(form.Email),
	}, nil
}

// CreateTask stores the task the way the service would return it.
func (m *Mock) CreateTask(ctx context.Context, it *item.Item) error {
	if err := m.authorized(); err != nil {
		return err
	}
	if err := m.wait(ctx, m.latency.Save); err != nil {
		return err
	}

	req := NewTaskRequest(it)
	start := time.UnixMilli(req.StartDate).In(time.Local)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, mockRecord{
		ID:          m.nextID,
		Description: req.Description,
		Date:        FormatPtDate(it.Date, start.Format("15:04")),
		month:       dateutil.Decode(it.Date).Format("2006-01"),
	})
	m.nextID++
	return nil
}

// ListTasks returns every stored task, grouped by month as the service does.
func (m *Mock) ListTasks(ctx context.Context, fallbackYear int) ([]item.Item, error) {
	if err := m.authorized(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	groups := make(map[string][]mockRecord)
	for _, rec := range m.tasks {
		groups[rec.month] = append(groups[rec.month], rec)
	}
	m.mu.Unlock()

	payload, err := json.Marshal(groups)
	if err != nil {
		return nil, fmt.Errorf("encoding tasks: %w", err)
	}
	return Normalize(payload, fallbackYear), nil
}

// LookupElderly returns the registered dependent, if any.
func (m *Mock) LookupElderly(ctx context.Context) (*Elderly, error) {
	if err := m.authorized(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.elderly == nil {
		return nil, nil
	}
	e := *m.elderly
	return &e, nil
}

// RegisterElderly stores the dependent.
func (m *Mock) RegisterElderly(ctx context.Context, form ElderlyForm) (*Elderly, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if err := m.authorized(); err != nil {
		return nil, err
	}
	if err := m.wait(ctx, m.latency.Save); err != nil {
		return nil, err
	}

	e := &Elderly{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(form.Name),
		Email: strings.TrimSpace(form.Email),
	}

	m.mu.Lock()
	m.elderly = e
	m.mu.Unlock()

	out := *e
	return &out, nil
}

func mockUserID() string {
	return "u_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
