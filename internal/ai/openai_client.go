package ai

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultBlockMessage = "Blocked by safety filter."

type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient talks to api.openai.com unless baseURL points at another
// OpenAI-compatible endpoint.
func NewOpenAIClient(apiKey, model, baseURL string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAIClient) GetReply(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "content_filter" {
			log.Printf("[ai] blocked by provider: %s", apiErr.Message)
			return "", &BlockedError{Reason: "content_filter", Message: blockMessage(apiErr.Message)}
		}
		log.Println("[ai] OpenAI error:", err)
		return "", err
	}

	if len(resp.Choices) == 0 {
		log.Println("[ai] empty choices")
		return "", ErrEmptyReply
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		log.Println("[ai] finish_reason=content_filter")
		return "", &BlockedError{Reason: string(choice.FinishReason), Message: defaultBlockMessage}
	}

	raw := choice.Message.Content
	if strings.TrimSpace(raw) == "" {
		if choice.Message.Refusal != "" {
			log.Printf("[ai] refusal: %s", choice.Message.Refusal)
			return "", &BlockedError{Reason: "refusal", Message: choice.Message.Refusal}
		}
		log.Println("[ai] empty content")
		return "", ErrEmptyReply
	}

	log.Println("[ai] RAW RESPONSE >>>")
	log.Println(raw)
	log.Println("<<< END RESPONSE")

	return raw, nil
}

func blockMessage(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return defaultBlockMessage
	}
	return msg
}
