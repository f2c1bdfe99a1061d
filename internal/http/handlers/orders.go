package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lumafab/internal/domain"
	"lumafab/internal/i18n"
	"lumafab/internal/middleware"
)

type orderRequest struct {
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	Address     string             `json:"address"`
	City        string             `json:"city"`
	PostalCode  string             `json:"postalCode"`
	Notes       string             `json:"notes"`
	LampDetails domain.LampDetails `json:"lampDetails"`
}

func (a *App) OrdersCreate(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())

	order := domain.Order{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Notes:      req.Notes,
		Lamp:       req.LampDetails,
		Status:     domain.OrderStatusPending,
		OrderDate:  time.Now().UTC(),
	}
	if err := order.Validate(); err != nil {
		code := "bad_request"
		msg := err.Error()
		if strings.Contains(msg, "email") {
			code = "invalid_email"
			msg = i18n.T(locale, "invalid_email")
		}
		a.error(w, http.StatusBadRequest, code, msg)
		return
	}
	if !a.Directus.Configured() {
		a.error(w, http.StatusServiceUnavailable, "service_unavailable", i18n.T(locale, "service_unconfigured"))
		return
	}

	// Custom designs arrive as data URIs; catalog lamps reference a hosted
	// image. Uploads are best-effort, an order without its picture still
	// beats a lost order.
	var lampImageID string
	lampImageURL := order.Lamp.ImageURL
	if strings.HasPrefix(lampImageURL, "data:image") {
		if img, err := domain.ParseDataURI(lampImageURL); err == nil {
			name := fmt.Sprintf("lamp-%d.png", time.Now().UnixMilli())
			id, upErr := a.Directus.UploadFile(r.Context(), name, img.MimeType, img.Data)
			if upErr != nil {
				a.Logger.Warn().Err(upErr).Msg("order image upload failed")
			} else {
				lampImageID = id
			}
		}
		lampImageURL = ""
	}

	payload := map[string]any{
		"customer_name":        order.Name,
		"customer_email":       order.Email,
		"customer_phone":       order.Phone,
		"delivery_address":     order.Address,
		"delivery_city":        order.City,
		"delivery_postal_code": order.PostalCode,
		"customer_notes":       nullable(order.Notes),
		"lamp_image":           nullable(lampImageID),
		"lamp_image_url":       nullable(lampImageURL),
		"lamp_description":     nullable(order.Lamp.Description),
		"lamp_style":           nullable(order.Lamp.Style),
		"lamp_environment":     nullable(order.Lamp.Environment),
		"is_custom_design":     order.Lamp.IsCustom,
		"estimated_price":      nullableInt(order.Lamp.EstimatedPrice),
		"price_reasoning":      nullable(order.Lamp.PriceReasoning),
		"status":               order.Status,
		"order_date":           order.OrderDate.Format(time.RFC3339),
	}

	raw, err := a.Directus.CreateItem(r.Context(), "orders", payload)
	if err != nil {
		a.Logger.Error().Err(err).Msg("order creation failed")
		a.error(w, http.StatusBadGateway, "order_failed", i18n.T(locale, "order_failed"))
		return
	}

	var created struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		a.Logger.Warn().Err(err).Msg("order response missing id")
	}
	a.Journal.OrderMirrored(r.Context(), fmt.Sprint(created.ID), order.Email, string(order.Status), order.Lamp)

	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": i18n.T(locale, "order_received"),
		"orderId": created.ID,
	})
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
