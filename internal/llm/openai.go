package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI calls the OpenAI chat completions API (or any compatible
// endpoint via base URL override in the underlying client config).
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float64
}

// NewOpenAI creates a new OpenAI client.
func NewOpenAI(apiKey, model string, temperature float64) *OpenAI {
	return &OpenAI{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
	}
}

// Complete sends a prompt as a single-turn chat completion with JSON
// response format.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (*Response, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: float32(o.temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai api: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api: empty choices")
	}

	return &Response{
		Content:    resp.Choices[0].Message.Content,
		Provider:   "openai",
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
