package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"lumafab/internal/infra"
	"lumafab/internal/journal"
	"lumafab/internal/pipeline"
	"lumafab/internal/providers/directus"
	"lumafab/internal/providers/image"
	"lumafab/internal/providers/meshy"
	"lumafab/internal/providers/pricing"
)

type App struct {
	Logger    zerolog.Logger
	Config    *infra.Config
	Pipeline  *pipeline.Pipeline
	Generator image.Generator
	Estimator *pricing.GeminiEstimator
	Meshy     *meshy.Client
	Directus  *directus.Client
	Journal   *journal.Journal

	// ProxyClient fetches allow-listed remote assets. Falls back to the
	// default client when unset.
	ProxyClient *http.Client
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Error: code, Message: message})
}

func (a *App) proxyClient() *http.Client {
	if a.ProxyClient != nil {
		return a.ProxyClient
	}
	return http.DefaultClient
}
