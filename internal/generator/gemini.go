package generator

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

	"autopost/internal/models"
)

// Config holds Gemini client settings, read from the application config file.
type Config struct {
	APIURL      string
	APIKey      string
	Model       string
	Temperature float64
}

const (
	defaultGeminiURL   = "https://generativelanguage.googleapis.com"
	defaultGeminiModel = "gemini-2.5-flash"
	defaultTemperature = 0.9
)

var (
	ErrMissingAPIKey    = errors.New("gemini api key is not configured")
	ErrEmptyCompletion  = errors.New("gemini returned an empty completion")
	ErrUnknownPostType  = errors.New("unknown content type")
	errUnexpectedStatus = errors.New("unexpected http status")
)

// GeminiClient generates post text via the Gemini generateContent REST API.
type GeminiClient struct {
	client      *http.Client
	apiURL      string
	apiKey      string
	model       string
	temperature float64
}

func NewGeminiClient(cfg Config) *GeminiClient {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultGeminiURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = defaultTemperature
	}
	return &GeminiClient{
		client:      &http.Client{Timeout: 60 * time.Second},
		apiURL:      apiURL,
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: temp,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate produces one post for the given content type as the configured persona.
func (c *GeminiClient) Generate(ctx context.Context, contentType models.ContentType, persona string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	prompt, err := promptFor(contentType)
	if err != nil {
		return "", err
	}

	reqBody := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{Temperature: c.temperature},
	}
	if strings.TrimSpace(persona) != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: persona}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.apiURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w from gemini: %d: %s", errUnexpectedStatus, resp.StatusCode, truncate(string(body), 200))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := Sanitize(sb.String())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// promptFor maps a content type to its generation instruction.
func promptFor(ct models.ContentType) (string, error) {
	switch ct {
	case models.ContentTypeA:
		return promptTrendLinked, nil
	case models.ContentTypeB:
		return promptStandalone, nil
	case models.ContentTypeC:
		return promptPromotion, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPostType, ct)
	}
}

const promptTrendLinked = `Write exactly one short social media post, in the persona's voice, ` +
	`reacting to something currently in the news within the persona's field. ` +
	`Open with a hook, include one concrete detail or number, end on a dry aside. ` +
	`80-250 characters, no hashtags, no calls to action. Output only the post text.`

const promptStandalone = `Write exactly one short social media post, in the persona's voice, ` +
	`drawn from the persona's own experience or daily life; no news references. ` +
	`One theme only, one short anecdote at most, end without a moral or summary. ` +
	`80-250 characters, no hashtags, no calls to action. Output only the post text.`

const promptPromotion = `Write exactly one short social media post, in the persona's voice, ` +
	`casually mentioning a longer article the persona has written, without pressure to read it. ` +
	`80-200 characters, no hashtags, no pushy phrasing. Output only the post text.`

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
