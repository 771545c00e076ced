/*
Package content calls the external lesson-companion service.

PURPOSE:
  Given a lesson's title and description the service returns a short
  natural-language summary and a handful of multiple-choice quiz items.
  The call is strictly best-effort: on any failure — disabled config,
  network error, non-200 status, malformed payload — the client returns a
  fixed fallback summary and an empty quiz. It never returns an error and
  it never touches ledger state.

CONTRACT:
  POST <url>  {"title": ..., "description": ...}
  200         {"summary": ..., "quiz": [{"question", "options", "answerIndex"}]}
*/
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// FallbackSummary is served whenever the helper cannot.
const FallbackSummary = "Could not generate summary at this time."

// QuizItem is one multiple-choice question.
type QuizItem struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answerIndex"`
}

// Companion is what the caller renders next to a lesson.
type Companion struct {
	Summary string     `json:"summary"`
	Quiz    []QuizItem `json:"quiz"`
}

// Client talks to the companion service. The zero value is a disabled
// client that always serves the fallback.
type Client struct {
	url  string
	key  string
	http *http.Client
}

// New builds a client. An empty url disables it.
func New(url, key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:  url,
		key:  key,
		http: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a helper endpoint is configured.
func (c *Client) Enabled() bool { return c != nil && c.url != "" }

func fallback() Companion {
	return Companion{Summary: FallbackSummary, Quiz: []QuizItem{}}
}

// Generate fetches the companion for a lesson. Every failure path degrades
// to the fallback; the ledger's correctness never depends on this call.
func (c *Client) Generate(ctx context.Context, title, description string) Companion {
	if !c.Enabled() {
		return fallback()
	}

	payload, err := json.Marshal(map[string]string{
		"title":       title,
		"description": description,
	})
	if err != nil {
		return fallback()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fallback()
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fallback()
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fallback()
	}

	var out Companion
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fallback()
	}
	if out.Summary == "" {
		out.Summary = FallbackSummary
	}
	if out.Quiz == nil {
		out.Quiz = []QuizItem{}
	}
	return out
}
