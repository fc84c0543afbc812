package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cuida-app/cuida/internal/session"
)

// profile is the user record returned by the service. The id may be numeric.
type profile struct {
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// Login checks the credentials against GET /responsibles/login.
func (c *Client) Login(ctx context.Context, username, password string) (*session.User, error) {
	data, _, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/responsibles/login",
		auth:   session.BuildBasic(username, password),
	})
	if err != nil {
		return nil, err
	}
	return decodeProfile(data, session.User{Name: username, Username: username})
}

// Register creates the caregiver account with POST /responsibles.
func (c *Client) Register(ctx context.Context, form session.RegisterForm) (*session.User, error) {
	data, _, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/responsibles",
		body: registerRequest{
			Name:     form.Name,
			Username: form.Username,
			Password: form.Password,
			Email:    form.Email,
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeProfile(data, session.User{Name: form.Name, Username: form.Username, Email: form.Email})
}

// decodeProfile fills the blanks of the returned profile from fallback.
// An empty body yields fallback itself.
func decodeProfile(data []byte, fallback session.User) (*session.User, error) {
	u := fallback
	if len(strings.TrimSpace(string(data))) == 0 {
		return &u, nil
	}

	var p profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	if id := idString(p.ID); id != "" {
		u.ID = id
	}
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.Username != "" {
		u.Username = p.Username
	}
	if p.Email != "" {
		u.Email = p.Email
	}
	return &u, nil
}
