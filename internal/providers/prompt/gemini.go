package prompt

import (
	"context"
	"fmt"
	"strings"

	"lumafab/internal/domain"
	"lumafab/internal/providers/genai"
)

// GeminiOptions configures the Gemini-backed optimizer.
type GeminiOptions struct {
	Client *genai.Client
	Model  string
	// Fallback is consulted whenever the remote call or text extraction
	// fails. Defaults to the static template optimizer.
	Fallback Optimizer
	// OnFallback, when set, is invoked with the reason and underlying error
	// before the fallback path runs.
	OnFallback func(reason string, err error)
}

// GeminiOptimizer rewrites the user's wish into a full scene prompt with a
// bilingual rubric. The model is given an unbounded thinking budget; the
// rubric pins the technical template and the closed style vocabulary so
// the model only contributes interpretation, not specification.
type GeminiOptimizer struct {
	client     *genai.Client
	model      string
	fallback   Optimizer
	onFallback func(reason string, err error)
}

func NewGeminiOptimizer(opts GeminiOptions) (*GeminiOptimizer, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("gemini client is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStaticOptimizer()
	}
	return &GeminiOptimizer{
		client:     opts.Client,
		model:      model,
		fallback:   fallback,
		onFallback: opts.OnFallback,
	}, nil
}

func (g *GeminiOptimizer) Optimize(ctx context.Context, req OptimizeRequest) (string, error) {
	if !g.client.Configured() {
		return g.useFallback(ctx, req, "not_configured", domain.ErrServiceUnavailable)
	}
	payload := genai.Request{
		Contents: []genai.Content{{
			Role:  "user",
			Parts: []genai.Part{{Text: g.buildRubric(req)}},
		}},
		GenerationConfig: &genai.GenerationConfig{
			ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: -1},
		},
	}
	resp, err := g.client.GenerateContent(ctx, g.model, payload)
	if err != nil {
		return g.useFallback(ctx, req, "request_failed", err)
	}
	text := strings.TrimSpace(resp.FirstText())
	if text == "" {
		return g.useFallback(ctx, req, "empty_response", nil)
	}
	return text, nil
}

func (g *GeminiOptimizer) useFallback(ctx context.Context, req OptimizeRequest, reason string, err error) (string, error) {
	if g.onFallback != nil {
		g.onFallback(reason, err)
	}
	return g.fallback.Optimize(ctx, req)
}

func (g *GeminiOptimizer) buildRubric(req OptimizeRequest) string {
	return fmt.Sprintf(`Du är en expert på att skapa detaljerade bildprompter för AI-genererade lampdesigner.

ANVÄNDARENS ÖNSKAN: %q

MALL FÖR LAMPDESIGN:
- Elegant 3D-printed table lampshade
- Maximum 40cm height and 30cm width
- Designed for E27 socket mounting system with integrated fixture attachment ring at base
- Photographed on %s
- Scandinavian minimalist interior
- Warm 2700K light emanating through translucent white biodegradable filament
- Professional product photography, soft natural lighting

TILLGÄNGLIGA STILAR ATT VÄLJA FRÅN ELLER KOMBINERA:
%s

Baserat på användarens önskan ovan, skapa en detaljerad och kreativ bildprompt som:
1. Tolkar och inkorporerar användarens önskan på ett meningsfullt sätt
2. Väljer och kombinerar lämpliga stilar från listan, med utgångspunkt i %q
3. Lägger till specifika designdetaljer som passar användarens vision
4. Behåller alla tekniska specifikationer från mallen
5. Skapar en sammanhängande och visuellt tilltalande beskrivning

Svara ENDAST med den färdiga bildprompten på engelska, inget annat. Prompten ska vara en enda mening/paragraf.`,
		req.UserPrompt, req.Environment, strings.Join(domain.Styles, ", "), req.Style)
}
