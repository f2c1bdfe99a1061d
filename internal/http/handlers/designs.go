package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"lumafab/internal/domain"
	"lumafab/internal/i18n"
	"lumafab/internal/middleware"
)

type designGenerateRequest struct {
	UserPrompt string `json:"userPrompt"`
	Generate3D bool   `json:"generate3D"`
}

type model3DResponse struct {
	TaskID       string                `json:"taskId"`
	Status       domain.MeshTaskStatus `json:"status"`
	Progress     int                   `json:"progress"`
	ModelURLs    *domain.ModelURLs     `json:"modelUrls,omitempty"`
	ThumbnailURL string                `json:"thumbnailUrl,omitempty"`
	TextureURLs  []domain.TextureURLs  `json:"textureUrls,omitempty"`
	TaskError    string                `json:"taskError,omitempty"`
}

type designGenerateResponse struct {
	Image         string           `json:"image"`
	Description   string           `json:"description"`
	Style         string           `json:"style"`
	Environment   string           `json:"environment"`
	IsolatedImage string           `json:"isolatedImage,omitempty"`
	Model3D       *model3DResponse `json:"model3D,omitempty"`
	Warning       string           `json:"warning,omitempty"`
}

func (a *App) DesignsGenerate(w http.ResponseWriter, r *http.Request) {
	var req designGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())

	res, err := a.Pipeline.Generate(r.Context(), domain.GenerationRequest{
		UserPrompt: req.UserPrompt,
		Want3D:     req.Generate3D,
	})
	if err != nil {
		a.pipelineError(w, r, locale, err)
		return
	}

	resp := designGenerateResponse{
		Image:       res.Scene.DataURI(),
		Description: res.Scene.Description,
		Style:       res.Style,
		Environment: res.Environment,
		Warning:     res.Warning,
	}
	if res.Isolated != nil {
		resp.IsolatedImage = res.Isolated.DataURI()
	}
	if res.Mesh != nil {
		resp.Model3D = meshResponse(res.Mesh)
	} else if res.TaskID != "" {
		resp.Model3D = &model3DResponse{TaskID: res.TaskID, Status: domain.MeshStatusPending}
	}
	a.json(w, http.StatusOK, resp)
}

type isolateRequest struct {
	ImageData string `json:"imageData"`
}

func (a *App) DesignsIsolate(w http.ResponseWriter, r *http.Request) {
	var req isolateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	img, err := domain.ParseDataURI(req.ImageData)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "imageData is required")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())

	isolated, err := a.Generator.IsolateSubject(r.Context(), img, "")
	if err != nil {
		a.pipelineError(w, r, locale, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"image":    isolated.DataURI(),
		"mimeType": isolated.MimeType,
	})
}

// pipelineError maps pipeline and provider failures onto the external error
// contract: caller mistakes 400, missing upstream credentials 503, upstream
// rejections 502, everything else 500.
func (a *App) pipelineError(w http.ResponseWriter, r *http.Request, locale string, err error) {
	var upstream *domain.ExternalServiceError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		a.error(w, http.StatusServiceUnavailable, "service_unavailable", i18n.T(locale, "service_unconfigured"))
	case errors.As(err, &upstream):
		a.Logger.Error().Err(err).Str("service", upstream.Service).Msg("upstream call failed")
		a.error(w, http.StatusBadGateway, "upstream_error", i18n.T(locale, "generation_failed"))
	case errors.Is(err, domain.ErrNoImage):
		a.error(w, http.StatusBadGateway, "no_image", i18n.T(locale, "generation_failed"))
	default:
		a.Logger.Error().Err(err).Msg("generation failed")
		a.error(w, http.StatusInternalServerError, "internal", i18n.T(locale, "generation_failed"))
	}
}

func meshResponse(task *domain.MeshTask) *model3DResponse {
	return &model3DResponse{
		TaskID:       task.ID,
		Status:       task.Status,
		Progress:     task.Progress,
		ModelURLs:    task.ModelURLs,
		ThumbnailURL: task.ThumbnailURL,
		TextureURLs:  task.TextureURLs,
		TaskError:    task.Error,
	}
}
