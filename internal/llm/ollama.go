package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.2"
)

// OllamaClient runs digests and drafts against a local Ollama server.
type OllamaClient struct {
	llm     *ollama.LLM
	model   string
	baseURL string
	timeout time.Duration
}

// NewOllamaClient creates a client from opts. An empty model falls back to
// CUIDA_LLM_MODEL and then llama3.2. An empty base URL falls back to
// CUIDA_LLM_BASE_URL, then OLLAMA_HOST, then the local default port.
func NewOllamaClient(opts Options) (*OllamaClient, error) {
	model := firstSet(opts.Model, os.Getenv("CUIDA_LLM_MODEL"), defaultOllamaModel)
	baseURL := firstSet(opts.BaseURL, os.Getenv("CUIDA_LLM_BASE_URL"), ollamaHost(), defaultOllamaBaseURL)

	client, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client for %s: %w", baseURL, err)
	}

	return &OllamaClient{
		llm:     client,
		model:   model,
		baseURL: baseURL,
		timeout: opts.Timeout,
	}, nil
}

// Chat returns the model's reply to a digest prompt.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.generate(ctx, messages)
}

// ChatJSON runs the prompt in JSON mode and decodes the reply into result.
func (c *OllamaClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.generate(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), result); err != nil {
		return fmt.Errorf("ollama %s: parsing JSON reply: %w (content: %s)", c.model, err, content)
	}
	return nil
}

func (c *OllamaClient) generate(ctx context.Context, messages []Message, extra ...llms.CallOption) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	callOpts := append([]llms.CallOption{llms.WithModel(c.model)}, extra...)
	resp, err := c.llm.GenerateContent(ctx, toLangChainMessages(messages), callOpts...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("ollama %s: no reply within %s: %w", c.model, c.timeout, context.DeadlineExceeded)
		}
		return "", fmt.Errorf("ollama %s at %s: %w", c.model, c.baseURL, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", fmt.Errorf("ollama %s: %w", c.model, ErrEmptyReply)
	}
	return resp.Choices[0].Content, nil
}

func toLangChainMessages(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := schema.ChatMessageTypeHuman
		switch strings.ToLower(msg.Role) {
		case RoleSystem:
			role = schema.ChatMessageTypeSystem
		case RoleAssistant:
			role = schema.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, msg.Content))
	}
	return out
}

// ollamaHost reads OLLAMA_HOST, which the ollama CLI allows without a scheme.
func ollamaHost() string {
	host := strings.TrimSpace(os.Getenv("OLLAMA_HOST"))
	if host != "" && !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
