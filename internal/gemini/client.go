// Package gemini is a minimal client for the Gemini generateContent
// API with function-calling support. It covers exactly what the agent
// wrapper needs: system instruction, multi-turn contents, function
// declarations and thought-flagged parts.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Typed errors for the failure classes callers branch on.
var (
	ErrUnauthorized = errors.New("gemini: invalid or missing API key")
	ErrRateLimited  = errors.New("gemini: rate limited")
	ErrUnavailable  = errors.New("gemini: service unavailable")
)

// Client wraps the generateContent endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a Gemini client authenticating with apiKey.
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// WithBaseURL points the client at a different endpoint, for tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Content is one turn of the conversation.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a fragment of a turn: text, a tool invocation requested by
// the model, or a tool result supplied by the caller. Thought marks
// reasoning-only fragments that must not surface to users.
type Part struct {
	Text             string            `json:"text,omitempty"`
	Thought          bool              `json:"thought,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// FunctionCall is the model asking for a tool invocation.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// FunctionResponse carries a tool result back to the model.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// FunctionDeclaration describes a callable tool to the model.
type FunctionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type generateRequest struct {
	SystemInstruction *systemInstruction `json:"systemInstruction,omitempty"`
	Contents          []Content          `json:"contents"`
	Tools             []toolSet          `json:"tools,omitempty"`
}

type systemInstruction struct {
	Parts []Part `json:"parts"`
}

type toolSet struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

type generateResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

// Generate runs one generateContent exchange and returns the parts of
// the first candidate.
func (c *Client) Generate(ctx context.Context, model, instruction string, contents []Content, tools []FunctionDeclaration) ([]Part, error) {
	payload := generateRequest{Contents: contents}
	if instruction != "" {
		payload.SystemInstruction = &systemInstruction{Parts: []Part{{Text: instruction}}}
	}
	if len(tools) > 0 {
		payload.Tools = []toolSet{{FunctionDeclarations: tools}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrUnavailable
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini error: %s - %s", resp.Status, string(errorBody))
	}

	var response generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}
	if len(response.Candidates) == 0 {
		return nil, errors.New("gemini empty response")
	}
	return response.Candidates[0].Content.Parts, nil
}
