package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/recipegen"
)

func TestGenerate_SendsChatRequestAndReadsResult(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "<h3 id=\"recipe-heading\">Skyr med bær</h3>"}}],
			"usage": {"total_tokens": 412}
		}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, "sk-test").Generate(context.Background(), "skyr, blåbær")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "gpt-3.5-turbo" || gotReq.Temperature != 0.8 || gotReq.MaxTokens != 800 {
		t.Errorf("request params = %+v", gotReq)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Content != "skyr, blåbær" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
	if got.TokensUsed != 412 {
		t.Errorf("TokensUsed = %d, want 412", got.TokensUsed)
	}
	if got.Body == "" {
		t.Error("empty recipe body")
	}
}

func TestGenerate_Non2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "sk-test").Generate(context.Background(), "x")
	if !errors.Is(err, recipegen.ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestGenerate_EmptyChoicesFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [], "usage": {"total_tokens": 0}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "sk-test").Generate(context.Background(), "x")
	if !errors.Is(err, recipegen.ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}
