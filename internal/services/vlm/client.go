package vlm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"duplex/internal/config"
)

const (
	defaultBaseURL     = "https://api.siliconflow.cn/v1"
	jsonResponseType   = "json_object"
	defaultHTTPTimeout = 30 * time.Second
	defaultDetail      = "low"
)

// Client wraps an OpenAI-compatible vision chat completion API and asks it
// one question: what is the dominant language of this page image.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	detail     string
	httpClient *http.Client
}

// Option customizes the classification client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a vision classification client from probe settings.
func NewClient(cfg config.Probe, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	detail := strings.TrimSpace(cfg.Detail)
	if detail == "" {
		detail = defaultDetail
	}
	client := &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:      strings.TrimSpace(cfg.Model),
		detail:     detail,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// PageVerdict captures the JSON payload returned by the model for one page.
type PageVerdict struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	Raw        string  `json:"-"`
}

// ClassifyPage sends one rendered page image and returns the model's verdict
// on the dominant language of its body text. The language comes back as a
// lowercase BCP 47 base tag ("en", "zh", "de").
func (c *Client) ClassifyPage(ctx context.Context, pngImage []byte) (PageVerdict, error) {
	var empty PageVerdict
	if len(pngImage) == 0 {
		return empty, errors.New("vlm classify: page image required")
	}
	if c.apiKey == "" {
		return empty, errors.New("vlm classify: api key required")
	}
	if c.model == "" {
		return empty, errors.New("vlm classify: model required")
	}
	endpoint, err := url.JoinPath(c.baseURL, "/chat/completions")
	if err != nil {
		return empty, fmt.Errorf("vlm classify: build url: %w", err)
	}
	encoded, err := json.Marshal(c.buildChatRequest(pngImage))
	if err != nil {
		return empty, fmt.Errorf("vlm classify: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return empty, fmt.Errorf("vlm classify: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("vlm classify: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("vlm classify: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, fmt.Errorf("vlm classify: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return empty, fmt.Errorf("vlm classify: decode response: %w", err)
	}
	if completion.Error != nil {
		return empty, fmt.Errorf("vlm classify: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return empty, errors.New("vlm classify: empty choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return empty, errors.New("vlm classify: empty content")
	}
	var parsed PageVerdict
	parsed.Raw = content
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return empty, fmt.Errorf("vlm classify: parse payload: %w", err)
	}
	parsed.Language = NormalizeLanguage(parsed.Language)
	if parsed.Language == "" {
		return empty, fmt.Errorf("vlm classify: no language in payload: %s", content)
	}
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}
	return parsed, nil
}

// NormalizeLanguage reduces a language name or tag to a lowercase base
// subtag: "zh-CN" and "Chinese (Simplified)" both collapse to "zh". Verdict
// languages and any target they are compared with must go through this.
func NormalizeLanguage(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if idx := strings.IndexAny(value, "-_ ("); idx > 0 {
		value = value[:idx]
	}
	switch value {
	case "chinese", "zho", "chi":
		return "zh"
	case "english", "eng":
		return "en"
	case "japanese", "jpn":
		return "ja"
	case "korean", "kor":
		return "ko"
	}
	return value
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
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

func (c *Client) buildChatRequest(pngImage []byte) chatCompletionRequest {
	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngImage)
	return chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: LanguageClassificationPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: "Identify the dominant language of the body text on this page."},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURI, Detail: c.detail}},
			}},
		},
		Temperature: 0,
		ResponseFormat: map[string]string{
			"type": jsonResponseType,
		},
	}
}
