// Package chat asks an OpenAI-compatible chat completion API to explain a
// question to the learner.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/certbible/certprep/internal/quiz"
	"github.com/rs/zerolog"
)

var (
	// ErrUnavailable covers transport failures and non-2xx answers.
	ErrUnavailable = errors.New("chat service unavailable")
	// ErrEmptyReply is returned when the API answers without any choice.
	ErrEmptyReply = errors.New("chat service returned no reply")
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Context is the question the conversation is about.
type Context struct {
	Question quiz.Question
	Selected quiz.Label
}

type Config struct {
	URL         string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.With().Str("component", "chat_client").Logger(),
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// SystemPrompt renders the tutor instructions for qc.
func SystemPrompt(qc Context) string {
	var b strings.Builder
	b.WriteString("You are a helpful AI tutor. Use the following question context to help the user understand the topic better: ")
	fmt.Fprintf(&b, "Question: %s\nOptions:\n", qc.Question.Text)
	for _, l := range quiz.Labels {
		fmt.Fprintf(&b, "%s) %s\n", l, qc.Question.Option(l))
	}
	selected := string(qc.Selected)
	if selected == "" {
		selected = "none"
	}
	fmt.Fprintf(&b, "User selected: %s\nCorrect answer: %s", selected, qc.Question.CorrectAnswer)
	return b.String()
}

// Ask sends the system prompt, the prior turns and the new user message, and
// returns the assistant's reply.
func (c *Client) Ask(ctx context.Context, qc Context, history []Message, userMessage string) (string, error) {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: SystemPrompt(qc)})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: userMessage})

	payload, err := json.Marshal(completionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Msg("chat API returned non-success status")
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: decode body: %v", ErrUnavailable, err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyReply
	}
	return out.Choices[0].Message.Content, nil
}
