package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"lumafab/internal/providers/genai"
	"lumafab/internal/providers/pricing"
)

func pricingApp(t *testing.T, handler http.HandlerFunc) (*App, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	client := genai.NewClient(genai.Options{APIKey: "k", BaseURL: srv.URL})
	estimator, err := pricing.NewGeminiEstimator(pricing.GeminiOptions{Client: client})
	if err != nil {
		t.Fatalf("NewGeminiEstimator: %v", err)
	}
	app := &App{Logger: zerolog.Nop(), Config: testConfig(), Estimator: estimator}
	return app, srv.Close
}

func estimateReply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{"parts": []map[string]any{{"text": body}}},
			}},
		})
	}
}

func TestPricingEstimateFormatsSwedishPrice(t *testing.T) {
	app, done := pricingApp(t, estimateReply(`{"price":4495,"reasoning":"Komplex struktur","complexity":"complex"}`))
	defer done()

	req := httptest.NewRequest("POST", "/v1/pricing/estimate",
		strings.NewReader(`{"imageUrl":"data:image/png;base64,AQID","description":"lattice","style":"organic lattice"}`))
	rr := record(app.PricingEstimate, withLocale(req, "sv"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp priceEstimateResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Price != 4495 || resp.Complexity != "complex" {
		t.Fatalf("resp = %+v", resp)
	}
	if !strings.HasSuffix(resp.FormattedPrice, " kr") || !strings.Contains(resp.FormattedPrice, "4") {
		t.Fatalf("formattedPrice = %q", resp.FormattedPrice)
	}
}

func TestPricingEstimateFallsBackOnGarbage(t *testing.T) {
	app, done := pricingApp(t, estimateReply("I cannot price this."))
	defer done()

	req := httptest.NewRequest("POST", "/v1/pricing/estimate",
		strings.NewReader(`{"imageUrl":"data:image/png;base64,AQID"}`))
	rr := record(app.PricingEstimate, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp priceEstimateResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Price != 3495 || resp.Complexity != "medium" {
		t.Fatalf("fallback resp = %+v", resp)
	}
}

func TestPricingEstimateRequiresImageURL(t *testing.T) {
	app, done := pricingApp(t, estimateReply(`{}`))
	defer done()

	req := httptest.NewRequest("POST", "/v1/pricing/estimate", strings.NewReader(`{"description":"x"}`))
	rr := record(app.PricingEstimate, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
