package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// clearOllamaEnv keeps the caller's shell from leaking into the defaults.
func clearOllamaEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CUIDA_LLM_MODEL", "")
	t.Setenv("CUIDA_LLM_BASE_URL", "")
	t.Setenv("OLLAMA_HOST", "")
}

func TestNewOllamaClient_Defaults(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		env         map[string]string
		wantModel   string
		wantBaseURL string
	}{
		{
			name:        "built-in defaults",
			wantModel:   defaultOllamaModel,
			wantBaseURL: defaultOllamaBaseURL,
		},
		{
			name:        "cuida env",
			env:         map[string]string{"CUIDA_LLM_MODEL": "qwen2.5", "CUIDA_LLM_BASE_URL": "http://gpu.lan:11434"},
			wantModel:   "qwen2.5",
			wantBaseURL: "http://gpu.lan:11434",
		},
		{
			name:        "ollama host without scheme",
			env:         map[string]string{"OLLAMA_HOST": "127.0.0.1:11500"},
			wantModel:   defaultOllamaModel,
			wantBaseURL: "http://127.0.0.1:11500",
		},
		{
			name:        "options win over env",
			opts:        Options{Model: "llama3", BaseURL: "http://box:11434"},
			env:         map[string]string{"CUIDA_LLM_MODEL": "qwen2.5", "OLLAMA_HOST": "other:1"},
			wantModel:   "llama3",
			wantBaseURL: "http://box:11434",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearOllamaEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			client, err := NewOllamaClient(tt.opts)
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if client.model != tt.wantModel {
				t.Errorf("model = %q, want %q", client.model, tt.wantModel)
			}
			if client.baseURL != tt.wantBaseURL {
				t.Errorf("baseURL = %q, want %q", client.baseURL, tt.wantBaseURL)
			}
		})
	}
}

// ollamaServer answers /api/chat with a single non-streamed message.
func ollamaServer(t *testing.T, content string, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"model":"llama3","created_at":"2025-09-13T10:00:00Z","message":{"role":"assistant","content":`+content+`},"done":true}`+"\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaClient_Chat(t *testing.T) {
	tests := []struct {
		name    string
		content string
		delay   time.Duration
		timeout time.Duration
		want    string
		wantErr error
	}{
		{name: "reply", content: `"Quiet week, two visits."`, want: "Quiet week, two visits."},
		{name: "blank reply", content: `"  "`, wantErr: ErrEmptyReply},
		{name: "slow model", content: `"late"`, delay: 2 * time.Second, timeout: 50 * time.Millisecond, wantErr: context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := ollamaServer(t, tt.content, tt.delay)
			client, err := NewOllamaClient(Options{Model: "llama3", BaseURL: srv.URL, Timeout: tt.timeout})
			if err != nil {
				t.Fatalf("NewOllamaClient: %v", err)
			}

			got, err := client.Chat(context.Background(), []Message{
				{Role: RoleSystem, Content: "You summarize caregiving weeks."},
				{Role: RoleUser, Content: "Sep 13: Cardiologist 14:00"},
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if !strings.Contains(err.Error(), "ollama llama3") {
					t.Errorf("error %q does not name the model", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Chat: %v", err)
			}
			if got != tt.want {
				t.Errorf("Chat = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOllamaClient_ChatJSON(t *testing.T) {
	srv := ollamaServer(t, `"{\"title\":\"Losartan\",\"time\":\"08:00\"}"`, 0)
	client, err := NewOllamaClient(Options{Model: "llama3", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOllamaClient: %v", err)
	}

	var d Draft
	if err := client.ChatJSON(context.Background(), []Message{{Role: RoleUser, Content: "losartan 8am"}}, &d); err != nil {
		t.Fatalf("ChatJSON: %v", err)
	}
	if d.Title != "Losartan" || d.Time != "08:00" {
		t.Errorf("draft = %+v", d)
	}
}

func TestToLangChainMessages_Roles(t *testing.T) {
	got := toLangChainMessages([]Message{
		{Role: RoleSystem}, {Role: "Assistant"}, {Role: RoleUser}, {Role: "tool"},
	})
	want := []string{"system", "ai", "human", "human"}
	for i, msg := range got {
		if string(msg.Role) != want[i] {
			t.Errorf("message %d role = %q, want %q", i, msg.Role, want[i])
		}
	}
}
