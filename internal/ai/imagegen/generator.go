package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// Slides are 16:9; the widest landscape size the image API offers.
	slideImageSize = openai.ImageGenerateParamsSize1792x1024

	defaultMaxRetries = 2
	minBackoff        = 2 * time.Second
	maxBackoff        = 10 * time.Second
)

// ErrNoImage is returned when the model response carried no image data.
var ErrNoImage = errors.New("model returned no image data")

// Generator renders slide images from page descriptions.
type Generator struct {
	client     *openai.Client
	model      string
	maxRetries int
}

// NewGenerator creates a slide image generator.
func NewGenerator(apiKey, model string) *Generator {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &Generator{
		client:     &client,
		model:      model,
		maxRetries: defaultMaxRetries,
	}
}

func backoff(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d < minBackoff {
		return minBackoff
	}
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (g *Generator) withRetry(ctx context.Context, call func() ([]byte, error)) ([]byte, error) {
	var lastErr error
	attempts := g.maxRetries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := call()
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		wait := backoff(attempt)
		logx.Warnf("Image generation failed, retrying (%d/%d) in %v: %v", attempt, attempts, wait, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

// Generate renders a slide image for the prompt and returns PNG bytes.
func (g *Generator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	return g.withRetry(ctx, func() ([]byte, error) {
		resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
			Prompt:         prompt,
			Model:          openai.ImageModel(g.model),
			Size:           slideImageSize,
			ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
			N:              openai.Int(1),
		})
		if err != nil {
			return nil, fmt.Errorf("image generation: %w", err)
		}
		if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
			return nil, ErrNoImage
		}

		data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
		if err != nil {
			return nil, fmt.Errorf("decode image payload: %w", err)
		}
		return data, nil
	})
}

// Edit re-renders an existing slide image following an instruction,
// keeping the original composition as the base.
func (g *Generator) Edit(ctx context.Context, imageData []byte, instruction string) ([]byte, error) {
	return g.withRetry(ctx, func() ([]byte, error) {
		resp, err := g.client.Images.Edit(ctx, openai.ImageEditParams{
			Image: openai.ImageEditParamsImageUnion{
				OfFile: openai.File(bytes.NewReader(imageData), "page.png", "image/png"),
			},
			Prompt: instruction,
			Model:  openai.ImageModel(g.model),
			N:      openai.Int(1),
		})
		if err != nil {
			return nil, fmt.Errorf("image edit: %w", err)
		}
		if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
			return nil, ErrNoImage
		}

		data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
		if err != nil {
			return nil, fmt.Errorf("decode image payload: %w", err)
		}
		return data, nil
	})
}
