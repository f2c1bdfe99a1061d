package prompt

import (
	"context"
	"fmt"
	"strings"
)

// OptimizeRequest carries the user's wish plus the style/environment pair
// the pipeline already picked for this request.
type OptimizeRequest struct {
	UserPrompt  string
	Style       string
	Environment string
}

// Optimizer turns a free-form user wish into a full image prompt.
type Optimizer interface {
	Optimize(ctx context.Context, req OptimizeRequest) (string, error)
}

const (
	geminiProviderName = "gemini"
	staticProviderName = "static"

	basePrompt = "Elegant 3D-printed table lampshade, maximum 40cm height and 30cm width, " +
		"designed for E27 socket mounting system with integrated fixture attachment ring at base"
	promptSuffix = "creating intricate shadow play when illuminated, photographed on %s, " +
		"Scandinavian minimalist interior, warm 2700K light emanating through the translucent " +
		"white biodegradable filament, professional product photography, soft natural lighting"
)

// StaticOptimizer assembles the scene prompt deterministically from the
// fixed template. It never fails, which makes it the terminal fallback of
// the optimization stage.
type StaticOptimizer struct{}

func NewStaticOptimizer() *StaticOptimizer {
	return &StaticOptimizer{}
}

func (s *StaticOptimizer) Optimize(_ context.Context, req OptimizeRequest) (string, error) {
	stylePart := req.Style
	if wish := strings.TrimSpace(req.UserPrompt); wish != "" {
		stylePart = fmt.Sprintf("%s style, %s details", wish, req.Style)
	}
	return fmt.Sprintf("%s, %s, "+promptSuffix, basePrompt, stylePart, req.Environment), nil
}
