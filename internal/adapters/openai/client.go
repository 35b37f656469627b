// Package openai implements the recipe generation gateway against the OpenAI
// chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/recipegen"
)

const (
	model       = "gpt-3.5-turbo"
	temperature = 0.8
	maxTokens   = 800

	defaultTimeout = 60 * time.Second
)

// systemPrompt constrains the model to one complete recipe in the HTML shape
// the frontend renders.
const systemPrompt = "Lav kun 1 opskrift på få udvalgte ingredienser. Dit svar skal være komplet og under 800 tokens." +
	"Overskrift skal være <h3> med id: recipe-heading, ingredients skal være <ul> og fremgangsmåde skal være <ol>. begge i hver deres <div> med overskrifter i <strong>" +
	"Derudover skal hvert element i fremgangsmåden markeres med <strong> også."

// Client talks to the OpenAI API. It implements recipegen.Gateway.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	MaxTokens        int           `json:"max_tokens"`
	TopP             float64       `json:"top_p"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	PresencePenalty  float64       `json:"presence_penalty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *Client) Generate(ctx context.Context, ingredients string) (recipegen.Result, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: ingredients},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		TopP:        1.0,
	})
	if err != nil {
		return recipegen.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return recipegen.Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return recipegen.Result{}, fmt.Errorf("%w: %v", recipegen.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return recipegen.Result{}, fmt.Errorf("%w: status %d", recipegen.ErrGenerationFailed, resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return recipegen.Result{}, fmt.Errorf("%w: %v", recipegen.ErrGenerationFailed, err)
	}
	if len(out.Choices) == 0 {
		return recipegen.Result{}, fmt.Errorf("%w: empty choices", recipegen.ErrGenerationFailed)
	}

	return recipegen.Result{
		Body:       out.Choices[0].Message.Content,
		TokensUsed: out.Usage.TotalTokens,
	}, nil
}
