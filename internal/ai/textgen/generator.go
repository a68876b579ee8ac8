package textgen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"
)

const (
	DefaultModel      = "gpt-4o"
	DefaultMaxRetries = 2

	// Retry backoff bounds. Attempt n waits 2^n seconds clamped to
	// [minBackoff, maxBackoff].
	minBackoff = 2 * time.Second
	maxBackoff = 10 * time.Second
)

// ErrEmptyResponse is returned when the model produced no text. It is
// retryable: truncated or safety-filtered completions usually succeed
// on a second attempt.
var ErrEmptyResponse = errors.New("model returned empty response")

// Generator produces text for outlines and page descriptions.
type Generator struct {
	client     *openai.Client
	model      string
	maxRetries int
}

// Option configures a Generator.
type Option func(*Generator)

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(g *Generator) { g.model = model }
}

// WithMaxRetries sets how many times a failed call is retried.
func WithMaxRetries(n int) Option {
	return func(g *Generator) { g.maxRetries = n }
}

// NewGenerator creates a text generator.
func NewGenerator(apiKey string, opts ...Option) *Generator {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	g := &Generator{
		client:     &client,
		model:      DefaultModel,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Backoff returns the wait before retry attempt n (1-based).
func Backoff(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d < minBackoff {
		return minBackoff
	}
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// withRetry runs call up to maxRetries+1 times with exponential backoff.
func (g *Generator) withRetry(ctx context.Context, call func() (string, error)) (string, error) {
	var lastErr error
	attempts := g.maxRetries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := call()
		if err == nil {
			return text, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		wait := Backoff(attempt)
		logx.Warnf("Text generation failed, retrying (%d/%d) in %v: %v", attempt, attempts, wait, err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}

	return "", lastErr
}

// GenerateText generates free-form text for a prompt.
func (g *Generator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return g.withRetry(ctx, func() (string, error) {
		return g.complete(ctx, systemPrompt, userPrompt, false)
	})
}

// GenerateJSON generates text in JSON mode. The caller is responsible
// for unmarshaling the result.
func (g *Generator) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return g.withRetry(ctx, func() (string, error) {
		return g.complete(ctx, systemPrompt, userPrompt, true)
	})
}

func (g *Generator) complete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       g.model,
		Temperature: openai.Float(0.3),
		MaxTokens:   openai.Int(4000),
	}

	if jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		}
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}

	return content, nil
}

// GenerateWithImage generates text conditioned on an image (vision).
// Used to describe uploaded reference images.
func (g *Generator) GenerateWithImage(ctx context.Context, systemPrompt, userPrompt string, imageData []byte) (string, error) {
	dataURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(imageData))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						{
							OfText: &openai.ChatCompletionContentPartTextParam{
								Type: constant.Text("text"),
								Text: userPrompt,
							},
						},
						{
							OfImageURL: &openai.ChatCompletionContentPartImageParam{
								Type: constant.ImageURL("image_url"),
								ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
									URL:    dataURL,
									Detail: "high",
								},
							},
						},
					},
				},
			},
		},
	}

	return g.withRetry(ctx, func() (string, error) {
		completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages:    messages,
			Model:       g.model,
			Temperature: openai.Float(0.3),
			MaxTokens:   openai.Int(2000),
		})
		if err != nil {
			return "", fmt.Errorf("vision completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return "", ErrEmptyResponse
		}
		content := completion.Choices[0].Message.Content
		if strings.TrimSpace(content) == "" {
			return "", ErrEmptyResponse
		}
		return content, nil
	})
}

// StripCodeFence removes a surrounding markdown code fence from model
// output. Models in JSON mode occasionally still wrap the payload.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
