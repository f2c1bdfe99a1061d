package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lumafab/internal/domain"
	"lumafab/internal/i18n"
	"lumafab/internal/middleware"
	"lumafab/internal/providers/meshy"
)

type convertRequest struct {
	ImageData         string `json:"imageData"`
	WaitForCompletion *bool  `json:"waitForCompletion"`
}

func (a *App) ModelsConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	if !a.Meshy.Configured() {
		a.error(w, http.StatusServiceUnavailable, "service_unavailable", i18n.T(locale, "service_unconfigured"))
		return
	}
	img, err := domain.ParseDataURI(req.ImageData)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "imageData is required")
		return
	}

	// Geometry only, same as the pipeline: prints don't carry textures.
	noTexture := false
	taskID, err := a.Meshy.CreateTask(r.Context(), meshy.SourceImage{
		Data:     img.Data,
		MIMEType: img.MimeType,
	}, meshy.TaskOptions{ShouldTexture: &noTexture})
	if err != nil {
		a.meshError(w, locale, err)
		return
	}

	wait := req.WaitForCompletion == nil || *req.WaitForCompletion
	if !wait {
		a.json(w, http.StatusAccepted, model3DResponse{TaskID: taskID, Status: domain.MeshStatusPending})
		return
	}

	task, err := a.Meshy.WaitForCompletion(r.Context(), taskID, a.Config.MeshMaxPollAttempts, a.Config.MeshInitialPollDelay)
	if err != nil {
		a.meshError(w, locale, err)
		return
	}
	a.json(w, http.StatusOK, meshResponse(task))
}

func (a *App) ModelStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "task id required")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	if !a.Meshy.Configured() {
		a.error(w, http.StatusServiceUnavailable, "service_unavailable", i18n.T(locale, "service_unconfigured"))
		return
	}
	task, err := a.Meshy.TaskStatus(r.Context(), taskID)
	if err != nil {
		a.meshError(w, locale, err)
		return
	}
	a.json(w, http.StatusOK, meshResponse(task))
}

func (a *App) meshError(w http.ResponseWriter, locale string, err error) {
	var failed *domain.TaskFailedError
	var timeout *domain.TimeoutError
	var upstream *domain.ExternalServiceError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		a.error(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
	case errors.As(err, &failed):
		a.json(w, http.StatusBadGateway, map[string]any{
			"error":   "task_failed",
			"taskId":  failed.TaskID,
			"status":  failed.Status,
			"message": failed.Message,
		})
	case errors.As(err, &timeout):
		a.json(w, http.StatusGatewayTimeout, map[string]any{
			"error":   "timeout",
			"taskId":  timeout.TaskID,
			"message": "conversion still running; poll the task for the result",
		})
	case errors.As(err, &upstream):
		a.Logger.Error().Err(err).Str("service", upstream.Service).Msg("mesh service call failed")
		a.error(w, http.StatusBadGateway, "upstream_error", "mesh conversion service rejected the request")
	default:
		a.Logger.Error().Err(err).Msg("mesh conversion failed")
		a.error(w, http.StatusInternalServerError, "internal", "mesh conversion failed")
	}
}
