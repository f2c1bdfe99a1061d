package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"lumafab/internal/domain"
	"lumafab/internal/providers/genai"
)

// Generator produces new images from text and transforms existing ones.
type Generator interface {
	GenerateScene(ctx context.Context, promptText string) (*domain.GeneratedImage, error)
	IsolateSubject(ctx context.Context, img domain.GeneratedImage, instruction string) (*domain.GeneratedImage, error)
}

// IsolationInstruction asks the model to strip the scene down to the bare
// printable lampshade framework.
const IsolationInstruction = "Transform this lamp shade into a clean technical photograph showing ONLY the " +
	"3D-printed SKELETAL FRAMEWORK itself, without the light bulb or any environment/furniture. " +
	"Remove all lighting effects, the bulb, the table/surface, and background. Show just the white " +
	"PLA plastic struts forming the open wireframe structure on a pure white background with even, " +
	"shadowless lighting. Keep the exact same skeletal pattern and framework. Orthographic view, " +
	"centered. This should be just the lamp shade component that can be 3D printed."

// GeminiOptions configures the Gemini-backed generator.
type GeminiOptions struct {
	Client *genai.Client
	Model  string
}

// GeminiGenerator drives the streamed image-generation protocol: the first
// chunk carrying inline image data supplies the bytes and mime type, text
// chunks accumulate into a scene description.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(opts GeminiOptions) (*GeminiGenerator, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("gemini client is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash-image-preview"
	}
	return &GeminiGenerator{client: opts.Client, model: model}, nil
}

// Configured reports whether the underlying transport has credentials.
func (g *GeminiGenerator) Configured() bool {
	return g != nil && g.client.Configured()
}

func (g *GeminiGenerator) GenerateScene(ctx context.Context, promptText string) (*domain.GeneratedImage, error) {
	req := genai.Request{
		Contents: []genai.Content{{
			Role:  "user",
			Parts: []genai.Part{{Text: promptText}},
		}},
		GenerationConfig: &genai.GenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}
	return g.consumeImageStream(ctx, req, true)
}

func (g *GeminiGenerator) IsolateSubject(ctx context.Context, img domain.GeneratedImage, instruction string) (*domain.GeneratedImage, error) {
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("%w: source image is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(instruction) == "" {
		instruction = IsolationInstruction
	}
	mime := img.MimeType
	if mime == "" {
		mime = "image/png"
	}
	req := genai.Request{
		Contents: []genai.Content{{
			Role: "user",
			Parts: []genai.Part{
				{InlineData: &genai.InlineData{MimeType: mime, Data: base64.StdEncoding.EncodeToString(img.Data)}},
				{Text: instruction},
			},
		}},
		GenerationConfig: &genai.GenerationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}
	return g.consumeImageStream(ctx, req, false)
}

// consumeImageStream reads streamed chunks until the response ends. Only
// the first inline payload is kept; once present, further image chunks are
// discarded and, when no description is wanted, the stream is abandoned
// early.
func (g *GeminiGenerator) consumeImageStream(ctx context.Context, req genai.Request, wantDescription bool) (*domain.GeneratedImage, error) {
	var result domain.GeneratedImage
	var description strings.Builder
	err := g.client.StreamGenerateContent(ctx, g.model, req, func(chunk *genai.Response) error {
		if inline := chunk.FirstInline(); inline != nil {
			if len(result.Data) > 0 {
				return nil
			}
			data, err := base64.StdEncoding.DecodeString(inline.Data)
			if err != nil {
				return fmt.Errorf("decode inline image: %w", err)
			}
			result.Data = data
			result.MimeType = inline.MimeType
			if result.MimeType == "" {
				result.MimeType = "image/png"
			}
			if !wantDescription {
				return io.EOF
			}
			return nil
		}
		if wantDescription {
			description.WriteString(chunk.FirstText())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, domain.ErrNoImage
	}
	result.Description = strings.TrimSpace(description.String())
	return &result, nil
}
