package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cuida-app/cuida/internal/debuglog"
	"github.com/cuida-app/cuida/internal/validation"
)

// Elderly is the dependent registered by the caregiver.
type Elderly struct {
	ID               string
	Name             string
	Email            string
	LastCheckIn      string
	TodayCheckInDone bool
}

type elderlyRecord struct {
	ID               json.RawMessage `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	LastCheckIn      *string         `json:"lastCheckIn"`
	TodayCheckInDone bool            `json:"todayCheckInDone"`
}

// ElderlyForm is the registration form. Every field is required.
type ElderlyForm struct {
	Name     string `validate:"notblank"`
	Email    string `validate:"notblank,email"`
	Password string `validate:"notblank"`
	Confirm  string `validate:"eqfield=Password"`
}

// Validate checks the form before any network call.
func (f ElderlyForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	return validation.Struct(f, map[string]string{
		"name.notblank":     "fill in all required fields",
		"email.notblank":    "fill in all required fields",
		"email.email":       "enter a valid e-mail address",
		"password.notblank": "fill in all required fields",
		"confirm":           "passwords do not match",
	})
}

type elderlyRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LookupElderly returns the registered dependent, or nil when there is none.
// A 204, an empty or invalid body, a record without id and any non-success
// status all mean "not registered"; only transport failures are errors.
func (c *Client) LookupElderly(ctx context.Context) (*Elderly, error) {
	basic, err := c.authorized()
	if err != nil {
		return nil, err
	}

	data, _, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/elderly",
		auth:   basic,
	})
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			debuglog.Error("elderly lookup", err)
			return nil, nil
		}
		return nil, err
	}
	return decodeElderly(data), nil
}

func decodeElderly(data []byte) *Elderly {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	var rec elderlyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		debuglog.Error("elderly decode", err)
		return nil
	}
	id := idString(rec.ID)
	if id == "" {
		return nil
	}
	e := &Elderly{
		ID:               id,
		Name:             rec.Name,
		Email:            rec.Email,
		TodayCheckInDone: rec.TodayCheckInDone,
	}
	if rec.LastCheckIn != nil {
		e.LastCheckIn = *rec.LastCheckIn
	}
	return e
}

// RegisterElderly validates the form and sends it with POST /elderly.
// The returned record is the server's response, or the submitted data when
// the response has no body.
func (c *Client) RegisterElderly(ctx context.Context, form ElderlyForm) (*Elderly, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	basic, err := c.authorized()
	if err != nil {
		return nil, err
	}

	data, _, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/elderly",
		body: elderlyRequest{
			Name:     strings.TrimSpace(form.Name),
			Email:    strings.TrimSpace(form.Email),
			Password: form.Password,
		},
		auth: basic,
	})
	if err != nil {
		return nil, fmt.Errorf("registering elderly: %w", err)
	}

	if e := decodeElderly(data); e != nil {
		return e, nil
	}
	return &Elderly{Name: strings.TrimSpace(form.Name), Email: strings.TrimSpace(form.Email)}, nil
}
