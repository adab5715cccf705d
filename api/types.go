package api

import (
	"encoding/json"
	"strings"
)

// Object is an API resource kept as the server sent it.
type Object struct {
	Raw          json.RawMessage
	Organization string
}

func (o *Object) MarshalJSON() ([]byte, error) {
	return o.Raw, nil
}

/* ENGINES */

type EngineUpdate struct {
	Replicas *int `json:"replicas,omitempty"`
}

// Legacy generation request
type GenerateRequest struct {
	Completions *int     `json:"completions,omitempty"`
	Context     *string  `json:"context,omitempty"`
	Length      *int     `json:"length,omitempty"`
	Stream      bool     `json:"stream,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Logprobs    *int     `json:"logprobs,omitempty"`
	Stop        *string  `json:"stop,omitempty"`
	Model       *string  `json:"model,omitempty"`
}

type GenerateResponse struct {
	Object string          `json:"object"`
	Data   []GeneratedText `json:"data"`
}

type GeneratedText struct {
	Text         TokenText       `json:"text"`
	FinishReason string          `json:"finish_reason,omitempty"`
	Logprobs     json.RawMessage `json:"logprobs,omitempty"`
}

// TokenText accepts either a plain string or a list of token strings.
type TokenText []string

func (t *TokenText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = TokenText{s}
		return nil
	}
	var tokens []string
	if err := json.Unmarshal(b, &tokens); err != nil {
		return err
	}
	*t = tokens
	return nil
}

func (t TokenText) String() string {
	return strings.Join(t, "")
}

type SearchRequest struct {
	Query          string   `json:"query"`
	Documents      []string `json:"documents,omitempty"`
	File           string   `json:"file,omitempty"`
	MaxRerank      int      `json:"max_rerank"`
	ReturnMetadata bool     `json:"return_metadata"`
}

type SearchResponse struct {
	Object string         `json:"object"`
	Data   []SearchResult `json:"data"`
}

type SearchResult struct {
	Document int             `json:"document"`
	Score    float64         `json:"score"`
	Text     string          `json:"text,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

/* COMPLETIONS */

type CompletionRequest struct {
	Prompt      *string  `json:"prompt,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	N           *int     `json:"n,omitempty"`
	Logprobs    *int     `json:"logprobs,omitempty"`
	Stop        *string  `json:"stop,omitempty"`
	Stream      bool     `json:"stream,omitempty"`
	Echo        bool     `json:"echo"`
}

type Completion struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index        int             `json:"index"`
	Text         string          `json:"text"`
	Logprobs     json.RawMessage `json:"logprobs,omitempty"`
	FinishReason string          `json:"finish_reason,omitempty"`
}
