package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiaryDraft_Fenced(t *testing.T) {
	raw := "```json\n{\"title\": \"A Great Day\", \"content\": \"Today was wonderful.\"}\n```"

	draft, err := ParseDiaryDraft(raw)
	require.NoError(t, err)
	assert.Equal(t, "A Great Day", draft.Title)
	assert.Equal(t, "Today was wonderful.", draft.Content)
}

func TestParseDiaryDraft_Unfenced(t *testing.T) {
	raw := `{"title": "T", "content": "C"}`

	draft, err := ParseDiaryDraft(raw)
	require.NoError(t, err)
	assert.Equal(t, "T", draft.Title)
	assert.Equal(t, "C", draft.Content)
}

func TestParseDiaryDraft_Malformed(t *testing.T) {
	raw := "```json\noops, não é json\n```"

	_, err := ParseDiaryDraft(raw)
	require.Error(t, err)

	var perr *DiaryParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, raw, perr.Raw)
	assert.Error(t, perr.Err)
}

func TestParseDiaryDraft_MissingTitleDefaults(t *testing.T) {
	draft, err := ParseDiaryDraft(`{"content": "só conteúdo"}`)
	require.NoError(t, err)
	assert.Equal(t, DefaultDiaryTitle, draft.Title)
	assert.Equal(t, "só conteúdo", draft.Content)
}

func TestParseDiaryDraft_MissingContentTolerated(t *testing.T) {
	draft, err := ParseDiaryDraft(`{"title": "só título"}`)
	require.NoError(t, err)
	assert.Equal(t, "só título", draft.Title)
	assert.Equal(t, "", draft.Content)
}

func newGeminiTestClient(srv *httptest.Server) *GeminiClient {
	g := NewGeminiClient("test-key", "gemini-1.5-flash")
	g.BaseURL = srv.URL
	g.HTTPClient = srv.Client()
	return g
}

func TestGenerateDiary_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-1.5-flash")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "contents")

		modelText := "```json\n{\"title\":\"A Great Day\",\"content\":\"Today was wonderful.\"}\n```"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"parts": []map[string]any{{"text": modelText}},
				}},
			},
		})
	}))
	defer srv.Close()

	g := newGeminiTestClient(srv)
	conversation := []map[string]string{{"role": "user", "text": "Had a great day"}}

	draft, err := g.GenerateDiary(context.Background(), conversation)
	require.NoError(t, err)
	assert.Equal(t, "A Great Day", draft.Title)
	assert.Equal(t, "Today was wonderful.", draft.Content)
}

func TestGenerateDiary_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	g := newGeminiTestClient(srv)
	_, err := g.GenerateDiary(context.Background(), "conversa")
	require.ErrorIs(t, err, ErrEmptyGeneration)
}

func TestGenerateDiary_MalformedCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"not a diary"}]}}]}`))
	}))
	defer srv.Close()

	g := newGeminiTestClient(srv)
	_, err := g.GenerateDiary(context.Background(), "conversa")

	var perr *DiaryParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "not a diary", perr.Raw)
}

func TestGenerateDiary_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := newGeminiTestClient(srv)
	_, err := g.GenerateDiary(context.Background(), "conversa")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyGeneration)
}

func TestGenerateDiary_NoKey(t *testing.T) {
	g := NewGeminiClient("", "")
	_, err := g.GenerateDiary(context.Background(), "conversa")
	require.Error(t, err)
}
