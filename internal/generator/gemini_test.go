package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"autopost/internal/models"
)

func TestGenerate_Success(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	var gotReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []struct {
				Content geminiContent `json:"content"`
			}{
				{Content: geminiContent{Parts: []geminiPart{{Text: `"**bold** take on things"`}}}},
			},
		})
	}))
	defer srv.Close()

	c := NewGeminiClient(Config{APIURL: srv.URL, APIKey: "test-key"})
	text, err := c.Generate(context.Background(), models.ContentTypeA, "a botanist")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "bold take on things" {
		t.Fatalf("text = %q, want sanitized output", text)
	}
	if gotPath != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header = %q", gotKey)
	}
	if gotReq.SystemInstruction == nil || gotReq.SystemInstruction.Parts[0].Text != "a botanist" {
		t.Fatalf("persona not sent as system instruction: %+v", gotReq.SystemInstruction)
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Parts[0].Text == "" {
		t.Fatalf("prompt not sent: %+v", gotReq.Contents)
	}
}

func TestGenerate_PromptVariesByType(t *testing.T) {
	t.Parallel()

	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompts = append(prompts, req.Contents[0].Parts[0].Text)
		_ = json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []struct {
				Content geminiContent `json:"content"`
			}{
				{Content: geminiContent{Parts: []geminiPart{{Text: "ok"}}}},
			},
		})
	}))
	defer srv.Close()

	c := NewGeminiClient(Config{APIURL: srv.URL, APIKey: "k"})
	for _, ct := range []models.ContentType{models.ContentTypeA, models.ContentTypeB, models.ContentTypeC} {
		if _, err := c.Generate(context.Background(), ct, ""); err != nil {
			t.Fatalf("generate %s: %v", ct, err)
		}
	}
	if len(prompts) != 3 || prompts[0] == prompts[1] || prompts[1] == prompts[2] {
		t.Fatalf("expected three distinct prompts, got %d", len(prompts))
	}
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	t.Parallel()
	c := NewGeminiClient(Config{})
	if _, err := c.Generate(context.Background(), models.ContentTypeA, ""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestGenerate_UnknownContentType(t *testing.T) {
	t.Parallel()
	c := NewGeminiClient(Config{APIKey: "k"})
	if _, err := c.Generate(context.Background(), "Z", ""); !errors.Is(err, ErrUnknownPostType) {
		t.Fatalf("err = %v, want ErrUnknownPostType", err)
	}
}

func TestGenerate_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429,"message":"quota"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewGeminiClient(Config{APIURL: srv.URL, APIKey: "k"})
	if _, err := c.Generate(context.Background(), models.ContentTypeA, ""); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestGenerate_EmptyCompletion(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(geminiResponse{})
	}))
	defer srv.Close()

	c := NewGeminiClient(Config{APIURL: srv.URL, APIKey: "k"})
	if _, err := c.Generate(context.Background(), models.ContentTypeB, ""); !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("err = %v, want ErrEmptyCompletion", err)
	}
}
