package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

// SentimentResult is the canonical (sentiment, score) pair after the
// negative-sentence override has been applied.
type SentimentResult struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// ClovaError is a non-success response from the sentiment provider. Nothing
// may be persisted for the diary being classified when this is returned.
type ClovaError struct {
	Status int
	Body   string
}

func (e *ClovaError) Error() string {
	return fmt.Sprintf("clova sentiment error %d: %s", e.Status, e.Body)
}

// clovaResponse mirrors the provider payload. Only the first sentence is
// consulted for the negative override.
type clovaResponse struct {
	Document struct {
		Sentiment  string `json:"sentiment"`
		Confidence struct {
			Positive float64 `json:"positive"`
			Negative float64 `json:"negative"`
			Neutral  float64 `json:"neutral"`
		} `json:"confidence"`
	} `json:"document"`
	Sentences []struct {
		NegativeSentiment struct {
			Sentiment string `json:"sentiment"`
		} `json:"negativeSentiment"`
	} `json:"sentences"`
}

// ClovaClient calls the Clova sentiment analysis API.
type ClovaClient struct {
	APIKeyID   string
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClovaClient(apiKeyID, apiKey string) *ClovaClient {
	return &ClovaClient{
		APIKeyID:   strings.TrimSpace(apiKeyID),
		APIKey:     strings.TrimSpace(apiKey),
		BaseURL:    "https://naveropenapi.apigw.ntruss.com",
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Classify sends the text for document-level sentiment with negative
// sub-classification enabled and resolves the final (sentiment, score) pair.
func (c *ClovaClient) Classify(ctx context.Context, text string) (SentimentResult, error) {
	if c.APIKeyID == "" || c.APIKey == "" {
		return SentimentResult{}, fmt.Errorf("clova api credentials not set")
	}

	reqBody := map[string]any{
		"content": text,
		"config": map[string]any{
			"negativeClassification": true,
		},
	}

	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/sentiment-analysis/v1/analyze", bytes.NewReader(b))
	if err != nil {
		return SentimentResult{}, err
	}
	req.Header.Set("X-NCP-APIGW-API-KEY-ID", c.APIKeyID)
	req.Header.Set("X-NCP-APIGW-API-KEY", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return SentimentResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return SentimentResult{}, &ClovaError{Status: resp.StatusCode, Body: string(body)}
	}

	var parsed clovaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return SentimentResult{}, err
	}

	return resolveSentiment(parsed), nil
}

func (c *ClovaClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// resolveSentiment applies the first sentence's negative sub-label over the
// document label when present. The score is always the max of the
// document-level confidences, even when the override replaced the label.
func resolveSentiment(r clovaResponse) SentimentResult {
	sentiment := r.Document.Sentiment
	if sentiment == "" {
		sentiment = "neutral"
	}

	if len(r.Sentences) > 0 && r.Sentences[0].NegativeSentiment.Sentiment != "" {
		sentiment = r.Sentences[0].NegativeSentiment.Sentiment
	}

	score := math.Max(r.Document.Confidence.Positive,
		math.Max(r.Document.Confidence.Negative, r.Document.Confidence.Neutral))

	return SentimentResult{Sentiment: sentiment, Score: score}
}
