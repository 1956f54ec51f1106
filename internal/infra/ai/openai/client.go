package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/medinsight/internal/domain/ai"
	"github.com/bryanwahyu/medinsight/internal/infra/ai/prompt"
)

const (
	defaultMaxTokens = 2048
	visionMaxTokens  = 1000
)

type Client struct {
	*openai.Client
	Model       string
	VisionModel string
	MaxTokens   int
	Temperature float32
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model, VisionModel: model, Temperature: 0.3}
}

// NewClientWithConfig lets tests point the client at an httptest server.
func NewClientWithConfig(cfg openai.ClientConfig, model string) *Client {
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, VisionModel: model, Temperature: 0.3}
}

// CompleteJSON runs one chat completion in JSON-object mode.
func (c *Client) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	model := c.model(c.Model)
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	setLimits(&req, model, maxTokens, c.Temperature)
	return c.send(ctx, req)
}

// ReadImage sends the file as a base64 data URL and returns the model's transcription.
func (c *Client) ReadImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	model := c.model(c.VisionModel)
	url := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt.VisionExtract},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    url,
					Detail: openai.ImageURLDetailHigh,
				}},
			},
		}},
	}
	setLimits(&req, model, visionMaxTokens, 0)
	return c.send(ctx, req)
}

func (c *Client) model(m string) string {
	if m == "" {
		return openai.GPT4o
	}
	return m
}

// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of
// MaxTokens; they also reject a custom temperature.
func setLimits(req *openai.ChatCompletionRequest, model string, maxTokens int, temperature float32) {
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxTokens
		return
	}
	req.MaxTokens = maxTokens
	// temperature is omitempty; a literal zero would fall back to the API default of 1
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}
	req.Temperature = temperature
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func (c *Client) send(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %w: %v", ai.ErrTransport, ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("%w: failed to create chat completion: %w", ai.ErrTransport, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ai.ErrTransport)
	}
	return resp.Choices[0].Message.Content, nil
}
