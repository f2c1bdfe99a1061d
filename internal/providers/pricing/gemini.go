package pricing

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lumafab/internal/domain"
	"lumafab/internal/providers/genai"
)

// Estimator derives a retail price for a lampshade from an image of it.
type Estimator interface {
	Estimate(ctx context.Context, img domain.GeneratedImage, description string) (*domain.PriceEstimate, error)
}

const rubricPrompt = `Du är en expert på att prissätta 3D-printade lampskärmar baserat på deras komplexitet och design.

REFERENSPRISER (utgångspunkter):
- Enkel lampskärm (minimal geometri, få detaljer): 2.495 kr
- Medium lampskärm (moderat komplexitet, organiska former): 3.495 kr
- Komplex lampskärm (intrikata detaljer, geometriska mönster, mesh): 4.495 kr
- Mycket komplex lampskärm (hög detaljrikedom, flera lager, avancerad geometri): 5.995 kr

BEDÖMNINGSKRITERIER:
1. **Geometrisk komplexitet** - Hur komplicerad är formen? Kurvor, vinklar, symmetri?
2. **Detaljnivå** - Hur många små detaljer och mönster finns det?
3. **Printtid** - Mer komplex design = längre printtid = högre kostnad
4. **Materialåtgång** - Mesh/öppna strukturer använder mindre material än solida former
5. **Svårighetsgrad** - Risk för misslyckad print ökar kostnaden

INSTRUKTIONER:
1. Analysera bilden noggrant
2. Bedöm lampans komplexitet baserat på kriterierna ovan
3. Välj ett pris från referenspriserna eller ett mellanting
4. Svara ENDAST med ett JSON-objekt i detta format:

{
  "price": 3495,
  "reasoning": "Kort motivering (1-2 meningar på svenska)",
  "complexity": "simple|medium|complex|very_complex"
}

Svara BARA med JSON, ingen annan text.`

// GeminiOptions configures the Gemini-backed estimator.
type GeminiOptions struct {
	Client *genai.Client
	Model  string
	// Fetcher retrieves remote images when the caller only supplies a URL.
	// Defaults to a plain HTTP client.
	Fetcher *http.Client
	// OnDegraded, when set, is invoked whenever the estimate falls back to
	// the default because the model reply was unusable.
	OnDegraded func(reason string, err error)
}

// GeminiEstimator asks a vision-capable model to grade the design against
// a fixed rubric. Model misbehavior never propagates: the estimate
// degrades to domain.FallbackEstimate so pricing can never block checkout.
type GeminiEstimator struct {
	client     *genai.Client
	model      string
	fetcher    *http.Client
	onDegraded func(reason string, err error)
}

func NewGeminiEstimator(opts GeminiOptions) (*GeminiEstimator, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("gemini client is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = &http.Client{Timeout: 30 * time.Second}
	}
	return &GeminiEstimator{
		client:     opts.Client,
		model:      model,
		fetcher:    fetcher,
		onDegraded: opts.OnDegraded,
	}, nil
}

func (g *GeminiEstimator) Estimate(ctx context.Context, img domain.GeneratedImage, description string) (*domain.PriceEstimate, error) {
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("%w: image is required", domain.ErrInvalidInput)
	}
	mime := img.MimeType
	if mime == "" {
		mime = "image/png"
	}
	userPrompt := "Analysera denna lampskärm och bedöm dess komplexitet."
	if description = strings.TrimSpace(description); description != "" {
		userPrompt = fmt.Sprintf("Analysera denna lampskärm och bedöm dess komplexitet. Beskrivning: %s", description)
	}
	payload := genai.Request{
		Contents: []genai.Content{{
			Role: "user",
			Parts: []genai.Part{
				{Text: rubricPrompt},
				{InlineData: &genai.InlineData{MimeType: mime, Data: base64.StdEncoding.EncodeToString(img.Data)}},
				{Text: userPrompt},
			},
		}},
		GenerationConfig: &genai.GenerationConfig{
			ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: -1},
		},
	}
	resp, err := g.client.GenerateContent(ctx, g.model, payload)
	if err != nil {
		return g.degrade("request_failed", err), nil
	}
	estimate, err := parseEstimate(resp.FirstText())
	if err != nil {
		return g.degrade("unparseable_response", err), nil
	}
	if estimate.Price < domain.MinSanePrice || estimate.Price > domain.MaxSanePrice {
		return g.degrade("price_out_of_range", fmt.Errorf("price %d outside [%d,%d]", estimate.Price, domain.MinSanePrice, domain.MaxSanePrice)), nil
	}
	if !estimate.Complexity.Valid() {
		return g.degrade("unknown_complexity", fmt.Errorf("complexity %q", estimate.Complexity)), nil
	}
	return estimate, nil
}

// FetchImage downloads a remote image so callers holding only a URL can
// still request an estimate.
func (g *GeminiEstimator) FetchImage(ctx context.Context, rawURL string) (domain.GeneratedImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.GeneratedImage{}, fmt.Errorf("%w: invalid image url", domain.ErrInvalidInput)
	}
	resp, err := g.fetcher.Do(req)
	if err != nil {
		return domain.GeneratedImage{}, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return domain.GeneratedImage{}, &domain.ExternalServiceError{Service: "image-fetch", Status: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 32*1024*1024))
	if err != nil {
		return domain.GeneratedImage{}, fmt.Errorf("read image: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/png"
	}
	return domain.GeneratedImage{Data: data, MimeType: mime}, nil
}

func (g *GeminiEstimator) degrade(reason string, err error) *domain.PriceEstimate {
	if g.onDegraded != nil {
		g.onDegraded(reason, err)
	}
	fallback := domain.FallbackEstimate()
	return &fallback
}

// parseEstimate locates the first brace-delimited JSON object in the model
// reply and decodes it, tolerating commentary the model may emit around it.
func parseEstimate(text string) (*domain.PriceEstimate, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}
	var estimate domain.PriceEstimate
	if err := json.Unmarshal([]byte(text[start:end+1]), &estimate); err != nil {
		return nil, fmt.Errorf("decode estimate: %w", err)
	}
	return &estimate, nil
}
