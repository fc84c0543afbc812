package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIBaseURL = "http://localhost:1234/v1"

// OpenAIClient implements the Client interface for any OpenAI-compatible API,
// such as LM Studio or a hosted endpoint.
type OpenAIClient struct {
	client  openai.Client
	model   string
	baseURL string
	timeout time.Duration
}

// NewOpenAIClient creates a new OpenAI-compatible client.
// The API key is read from CUIDA_LLM_API_KEY or OPENAI_API_KEY; local
// servers accept any placeholder.
func NewOpenAIClient(opts Options) (*OpenAIClient, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, errors.New("openai model is required")
	}
	baseURL := firstSet(opts.BaseURL, defaultOpenAIBaseURL)

	apiKey := os.Getenv("CUIDA_LLM_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		apiKey = "local"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIClient{
		client:  client,
		model:   model,
		baseURL: baseURL,
		timeout: opts.Timeout,
	}, nil
}

// Chat sends messages to the LLM and returns the response.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("openai %s: no reply within %s: %w", c.model, c.timeout, context.DeadlineExceeded)
		}
		return "", fmt.Errorf("openai %s at %s: %w", c.model, c.baseURL, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai %s: %w", c.model, ErrEmptyReply)
	}

	return resp.Choices[0].Message.Content, nil
}

// ChatJSON sends messages and parses the response as JSON into the provided type.
func (c *OpenAIClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(extractJSON(content)), result); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, content)
	}

	return nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out[i] = openai.SystemMessage(msg.Content)
		case RoleAssistant:
			out[i] = openai.AssistantMessage(msg.Content)
		default:
			out[i] = openai.UserMessage(msg.Content)
		}
	}
	return out
}
