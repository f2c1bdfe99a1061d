package handlers

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lumafab/internal/domain"
	"lumafab/internal/infra"
	"lumafab/internal/middleware"
	"lumafab/internal/pipeline"
	"lumafab/internal/providers/directus"
	"lumafab/internal/providers/meshy"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type stubGenerator struct {
	scene      *domain.GeneratedImage
	sceneErr   error
	isolated   *domain.GeneratedImage
	isolateErr error
}

func (s *stubGenerator) GenerateScene(context.Context, string) (*domain.GeneratedImage, error) {
	if s.sceneErr != nil {
		return nil, s.sceneErr
	}
	return s.scene, nil
}

func (s *stubGenerator) IsolateSubject(context.Context, domain.GeneratedImage, string) (*domain.GeneratedImage, error) {
	if s.isolateErr != nil {
		return nil, s.isolateErr
	}
	return s.isolated, nil
}

func testConfig() *infra.Config {
	return &infra.Config{
		AssetProxyPrefix:     "https://assets.meshy.ai/",
		DefaultLocale:        "sv",
		MeshMaxPollAttempts:  5,
		MeshInitialPollDelay: time.Millisecond,
	}
}

func testApp(t *testing.T, gen *stubGenerator, meshyClient *meshy.Client) *App {
	t.Helper()
	p, err := pipeline.New(pipeline.Options{
		Generator:        gen,
		Meshy:            meshyClient,
		Rand:             rand.New(rand.NewSource(1)),
		PollMaxAttempts:  5,
		PollInitialDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return &App{
		Logger:    zerolog.Nop(),
		Config:    testConfig(),
		Pipeline:  p,
		Generator: gen,
		Meshy:     meshyClient,
	}
}

func withLocale(r *http.Request, locale string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.LocaleKey, locale))
}

func directusApp(t *testing.T, srvURL, token string) *App {
	t.Helper()
	return &App{
		Logger:   zerolog.Nop(),
		Config:   testConfig(),
		Directus: directus.NewClient(directus.Options{BaseURL: srvURL, Token: token}),
	}
}

func record(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}
