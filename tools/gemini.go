package tools

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
)

// DefaultDiaryTitle is used when the model prose satisfied the request but
// left the title field out.
const DefaultDiaryTitle = "제목없음"

// ErrEmptyGeneration means the model returned no usable candidate at all
// (blocked or empty response). Distinct from a parse failure.
var ErrEmptyGeneration = errors.New("empty response from model (no candidate text found)")

// DiaryDraft is the structured diary extracted from the model output.
type DiaryDraft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DiaryParseError carries the raw model output alongside the JSON decode
// failure so the caller can log what the model actually produced.
type DiaryParseError struct {
	Raw string
	Err error
}

func (e *DiaryParseError) Error() string {
	return fmt.Sprintf("failed to parse diary data: %v (raw=%q)", e.Err, e.Raw)
}

func (e *DiaryParseError) Unwrap() error { return e.Err }

// GeminiClient calls the Gemini generateContent REST API.
type GeminiClient struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiClient{
		APIKey:     strings.TrimSpace(apiKey),
		Model:      model,
		BaseURL:    "https://generativelanguage.googleapis.com",
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GenerateDiary asks the model to distill a conversation transcript into a
// first-person diary entry and returns the parsed draft.
func (g *GeminiClient) GenerateDiary(ctx context.Context, conversation any) (DiaryDraft, error) {
	if g.APIKey == "" {
		return DiaryDraft{}, fmt.Errorf("gemini api key not set")
	}

	convJSON, err := json.Marshal(conversation)
	if err != nil {
		return DiaryDraft{}, fmt.Errorf("marshal conversation: %w", err)
	}

	prompt := "다음 대화를 바탕으로 User의 입장에서 일기 항목을 작성해 주세요. " +
		"일기에는 제목이 포함되어야 하며 User의 경험과 대화에 대한 생각을 서술해야 합니다. " +
		"결과를 다음 형식으로 작성해 주세요: { \"title\": \"일기 제목\", \"content\": \"일기 내용\" }\n\n" +
		string(convJSON)

	reqBody := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": prompt}}},
		},
	}

	b, _ := json.Marshal(reqBody)

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.BaseURL, g.Model, g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return DiaryDraft{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return DiaryDraft{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return DiaryDraft{}, fmt.Errorf("gemini error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return DiaryDraft{}, err
	}

	raw := ""
	for _, cand := range parsed.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				raw = part.Text
				break
			}
		}
		if raw != "" {
			break
		}
	}
	if raw == "" {
		return DiaryDraft{}, ErrEmptyGeneration
	}

	return ParseDiaryDraft(raw)
}

func (g *GeminiClient) httpClient() *http.Client {
	if g.HTTPClient != nil {
		return g.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// ParseDiaryDraft strips markdown code fences from the model output and
// decodes the {"title","content"} object. A missing title falls back to
// DefaultDiaryTitle and a missing content to ""; anything that is not JSON
// after fence-stripping is a *DiaryParseError, never a silent empty diary.
func ParseDiaryDraft(raw string) (DiaryDraft, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var draft DiaryDraft
	if err := json.Unmarshal([]byte(cleaned), &draft); err != nil {
		return DiaryDraft{}, &DiaryParseError{Raw: raw, Err: err}
	}

	if strings.TrimSpace(draft.Title) == "" {
		draft.Title = DefaultDiaryTitle
	}
	return draft, nil
}
