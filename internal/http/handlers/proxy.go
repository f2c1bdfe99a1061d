package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
)

// AssetProxy re-serves mesh binaries from the allow-listed asset host so the
// browser's model viewer is not blocked by CORS. Anything outside the
// allowlist is rejected before a single outbound byte is sent.
func (a *App) AssetProxy(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "url parameter is required")
		return
	}
	if !strings.HasPrefix(rawURL, a.Config.AssetProxyPrefix) {
		a.error(w, http.StatusBadRequest, "bad_request", "url host is not allowed")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "malformed url")
		return
	}
	resp, err := a.proxyClient().Do(req)
	if err != nil {
		a.Logger.Error().Err(err).Str("url", rawURL).Msg("asset proxy fetch failed")
		a.error(w, http.StatusBadGateway, "upstream_error", "failed to fetch asset")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.error(w, http.StatusBadGateway, "upstream_error", "asset fetch returned "+strconv.Itoa(resp.StatusCode))
		return
	}

	w.Header().Set("Content-Type", "model/gltf-binary")
	if resp.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		a.Logger.Warn().Err(err).Str("url", rawURL).Msg("asset proxy stream interrupted")
	}
}
