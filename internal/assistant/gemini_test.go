package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"# Better "},{"text":"title"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGeminiClient(srv.URL, "secret", "test-model")
	res, err := g.Generate(context.Background(), Request{Title: "Go tips", UserPrompt: "Improve the title"})
	require.NoError(t, err)
	assert.Equal(t, "# Better title", res.GeneratedText)
	assert.Equal(t, "markdown", res.Format)

	require.Len(t, got.Contents, 1)
	assert.Contains(t, got.Contents[0].Parts[0].Text, "Title: Go tips")
	assert.Contains(t, got.Contents[0].Parts[0].Text, "Request: Improve the title")
}

func TestGenerateRequiresTitleOrContent(t *testing.T) {
	g := NewGeminiClient("http://127.0.0.1:1", "secret", "")
	_, err := g.Generate(context.Background(), Request{UserPrompt: "anything"})
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestGenerateUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGeminiClient(srv.URL, "secret", "m")
	_, err := g.Generate(context.Background(), Request{Content: "draft", UserPrompt: "shorten"})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindUpstream))
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := NewGeminiClient(srv.URL, "secret", "m").Generate(context.Background(), Request{Title: "t", UserPrompt: "p"})
	assert.True(t, errs.Is(err, errs.KindUpstream))
}
