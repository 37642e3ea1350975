// Package assistant calls a hosted language model to help authors write posts.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"
)

// Request is the author's draft plus the instruction for the model.
type Request struct {
	Title      string `json:"title" validate:"max=255"`
	Content    string `json:"content"`
	UserPrompt string `json:"userPrompt" validate:"required,max=2000"`
}

func (r *Request) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	r.UserPrompt = strings.TrimSpace(r.UserPrompt)
}

type Result struct {
	GeneratedText string `json:"generatedText"`
	Format        string `json:"format"`
}

// Generator is implemented by GeminiClient.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type GeminiClient struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60*time.Second).
		SetHeader("Content-Type", "application/json")
	return &GeminiClient{client: client, apiKey: apiKey, model: model}
}

// Prompt assembles the text sent to the model.
func Prompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are a writing assistant for a blogging platform. Answer in Markdown.\n")
	if req.Title != "" {
		b.WriteString("\nTitle: ")
		b.WriteString(req.Title)
		b.WriteString("\n")
	}
	if req.Content != "" {
		b.WriteString("\nCurrent draft:\n")
		b.WriteString(req.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nRequest: ")
	b.WriteString(req.UserPrompt)
	return b.String()
}

func (g *GeminiClient) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Title == "" && req.Content == "" {
		return nil, errs.Validation("title or content is required")
	}
	if g.apiKey == "" {
		return nil, errs.Upstream("Writing assistant is not configured", nil)
	}

	var out generateResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(generateRequest{Contents: []content{{Parts: []part{{Text: Prompt(req)}}}}}).
		SetResult(&out).
		Post("/v1beta/models/" + g.model + ":generateContent")
	if err != nil {
		return nil, errs.Upstream("Writing assistant is unavailable", errors.Wrap(err, "call gemini"))
	}
	if resp.IsError() {
		return nil, errs.Upstream("Writing assistant is unavailable",
			errors.Errorf("gemini returned %d: %s", resp.StatusCode(), resp.String()))
	}

	var text strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errs.Upstream("Writing assistant returned no text", nil)
	}
	return &Result{GeneratedText: text.String(), Format: "markdown"}, nil
}
