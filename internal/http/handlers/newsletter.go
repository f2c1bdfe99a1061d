package handlers

import (
	"encoding/json"
	"net/http"

	"lumafab/internal/domain"
	"lumafab/internal/i18n"
	"lumafab/internal/middleware"
)

type newsletterRequest struct {
	Email string `json:"email"`
}

func (a *App) NewsletterSubscribe(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	if !domain.ValidEmail(req.Email) {
		a.error(w, http.StatusBadRequest, "invalid_email", i18n.T(locale, "invalid_email"))
		return
	}
	if !a.Directus.Configured() {
		a.error(w, http.StatusServiceUnavailable, "service_unavailable", i18n.T(locale, "service_unconfigured"))
		return
	}

	_, err := a.Directus.CreateItem(r.Context(), "customers", map[string]any{
		"email":                 req.Email,
		"newsletter_subscribed": true,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("newsletter signup failed")
		a.error(w, http.StatusBadGateway, "newsletter_failed", i18n.T(locale, "newsletter_failed"))
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": i18n.T(locale, "newsletter_subscribed"),
	})
}
