package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clearout/internal/services"
)

const defaultHTTPTimeout = 15 * time.Second

// Config captures the runtime settings required to talk to the vision model.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// LiveDescriber calls an OpenAI-compatible chat completion endpoint with the
// item images attached as data URLs. Failures and a missing API key degrade
// to an empty description; the stage deadline bounds the call, so there is no
// internal retry.
type LiveDescriber struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the describer.
type Option func(*LiveDescriber)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *LiveDescriber) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// NewLiveDescriber constructs a live describer using the supplied configuration.
func NewLiveDescriber(cfg Config, opts ...Option) *LiveDescriber {
	d := &LiveDescriber{
		cfg: Config{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimSpace(cfg.BaseURL),
			Model:   strings.TrimSpace(cfg.Model),
		},
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.cfg.BaseURL == "" {
		d.cfg.BaseURL = "https://openrouter.ai/api/v1/chat/completions"
	}
	return d
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (d *LiveDescriber) Describe(ctx context.Context, req Request) (Description, error) {
	if d.cfg.APIKey == "" {
		return Description{}, nil
	}
	if d.cfg.Model == "" {
		return Description{}, services.Wrap(services.ErrConfiguration, "vision", "describe", "model not configured", nil)
	}

	parts := []contentPart{{Type: "text", Text: UserPrompt}}
	for _, image := range req.Images {
		if len(image) == 0 {
			continue
		}
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)},
		})
	}

	payload := chatCompletionRequest{
		Model: d.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: []contentPart{{Type: "text", Text: SystemPrompt}}},
			{Role: "user", Content: parts},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	content, err := d.complete(ctx, payload)
	if err != nil {
		return Description{}, services.Wrap(services.ErrExternalTool, "vision", "describe", "chat completion", err)
	}
	var desc Description
	if err := decodeModelJSON(content, &desc); err != nil {
		return Description{}, fmt.Errorf("vision describe: parse payload: %w", err)
	}
	if err := Validate(desc); err != nil {
		return Description{}, err
	}
	return desc, nil
}

func (d *LiveDescriber) complete(ctx context.Context, payload chatCompletionRequest) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+d.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty content")
	}
	return content, nil
}

// decodeModelJSON decodes JSON from a model response, stripping code fences
// when the provider wraps the payload despite the response format.
func decodeModelJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("empty payload")
	}
	if err := json.Unmarshal([]byte(trimmed), target); err == nil {
		return nil
	}
	sanitized := stripCodeFenceBlock(trimmed)
	if start := strings.Index(sanitized, "{"); start >= 0 {
		if end := strings.LastIndex(sanitized, "}"); end > start {
			sanitized = strings.TrimSpace(sanitized[start : end+1])
		}
	}
	return json.Unmarshal([]byte(sanitized), target)
}

func stripCodeFenceBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
		body = strings.TrimLeft(body, " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
