package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"satn_chatbot/internal/adapters/httpretry"
	"satn_chatbot/internal/domain"
)

// NoAnswer is returned when the model produced no text.
const NoAnswer = "Sorry, I couldn't generate a response right now."

const instructions = `You are Neryx, the multilingual AI assistant for SA Thomson Nerys & Co.,
a real-estate investment and advisory firm operating in Australia, Sri Lanka, and Dubai.

Tone:
- Professional, trustworthy, and investment-focused.
- Clear, concise, and friendly.

Language requirements:
- Always reply in the same language as the user message when possible.
- Supported languages: "en" English, "si" Sinhala, "ta" Tamil.
- If the provided lang code is missing or unknown, auto-detect from the text and reply in that language.

Domain rules:
- You specialise in property investment (residential and commercial), off-the-plan projects
  and new developments, cashflow, yields, capital growth, and portfolio strategy.
- If asked about specific property listings or availability and you don't have direct data,
  be transparent, then ask clarifying questions (budget, location, timeline) and give high-level guidance.
- Do NOT invent specific property IDs, prices, or addresses that are not provided.

Style:
- Short paragraphs, bullet points where helpful.
- Avoid over-selling; focus on data-driven, risk-aware investment advice.`

type Client struct {
	base  string
	key   string
	model string
	http  *httpretry.Client
}

func New(base, key, model string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		key:   key,
		model: model,
		http:  httpretry.New("openai", rps, 60*time.Second),
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model        string `json:"model"`
	Instructions string `json:"instructions"`
	Input        any    `json:"input"`
}

type response struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// buildInput is a single string for a first turn, otherwise a message list
// with the prior turns before the tagged current one.
func buildInput(lang, text string, history []domain.Turn) any {
	prompt := strings.TrimSpace(fmt.Sprintf("[lang=%s] %s", lang, text))
	if len(history) == 0 {
		return prompt
	}
	msgs := make([]message, 0, len(history)+1)
	for _, t := range history {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		role := "user"
		if t.Role == "assistant" {
			role = "assistant"
		}
		msgs = append(msgs, message{Role: role, Content: t.Text})
	}
	return append(msgs, message{Role: "user", Content: prompt})
}

func (r response) text() string {
	if s := strings.TrimSpace(r.OutputText); s != "" {
		return s
	}
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" {
				if s := strings.TrimSpace(c.Text); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// Answer asks the Responses API for a reply in lang. Transport failures wrap domain.ErrUpstream.
func (c *Client) Answer(ctx context.Context, lang, text string, history []domain.Turn) (string, error) {
	body, err := json.Marshal(request{Model: c.model, Instructions: instructions, Input: buildInput(lang, text, history)})
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(ctx, "responses", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/responses", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.key)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("%w: openai: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: openai decode: %v", domain.ErrUpstream, err)
	}
	if s := out.text(); s != "" {
		return s, nil
	}
	return NoAnswer, nil
}
