package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"lumafab/internal/domain"
	"lumafab/internal/i18n"
	"lumafab/internal/middleware"
)

type priceEstimateRequest struct {
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
	Style       string `json:"style"`
	Environment string `json:"environment"`
}

type priceEstimateResponse struct {
	Success        bool              `json:"success"`
	Price          int               `json:"price"`
	Reasoning      string            `json:"reasoning"`
	Complexity     domain.Complexity `json:"complexity"`
	FormattedPrice string            `json:"formattedPrice"`
}

func (a *App) PricingEstimate(w http.ResponseWriter, r *http.Request) {
	var req priceEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	if strings.TrimSpace(req.ImageURL) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "imageUrl is required")
		return
	}

	var img domain.GeneratedImage
	var err error
	if strings.HasPrefix(req.ImageURL, "data:") {
		img, err = domain.ParseDataURI(req.ImageURL)
	} else {
		img, err = a.Estimator.FetchImage(r.Context(), req.ImageURL)
	}
	if err != nil {
		a.Logger.Warn().Err(err).Msg("price estimation image unavailable")
		a.error(w, http.StatusBadRequest, "bad_request", i18n.T(locale, "price_failed"))
		return
	}

	parts := make([]string, 0, 3)
	if req.Description != "" {
		parts = append(parts, req.Description)
	}
	if req.Style != "" {
		parts = append(parts, "Stil: "+req.Style)
	}
	if req.Environment != "" {
		parts = append(parts, "Miljö: "+req.Environment)
	}

	estimate, err := a.Estimator.Estimate(r.Context(), img, strings.Join(parts, ". "))
	if err != nil {
		a.pipelineError(w, r, locale, err)
		return
	}
	a.json(w, http.StatusOK, priceEstimateResponse{
		Success:        true,
		Price:          estimate.Price,
		Reasoning:      estimate.Reasoning,
		Complexity:     estimate.Complexity,
		FormattedPrice: i18n.FormatSEK(locale, estimate.Price),
	})
}
