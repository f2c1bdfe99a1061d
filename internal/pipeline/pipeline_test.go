package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"lumafab/internal/domain"
	"lumafab/internal/providers/meshy"
)

type stubGenerator struct {
	scene        *domain.GeneratedImage
	sceneErr     error
	isolated     *domain.GeneratedImage
	isolateErr   error
	sceneCalls   int
	isolateCalls int
	lastPrompt   string
}

func (s *stubGenerator) GenerateScene(_ context.Context, promptText string) (*domain.GeneratedImage, error) {
	s.sceneCalls++
	s.lastPrompt = promptText
	if s.sceneErr != nil {
		return nil, s.sceneErr
	}
	return s.scene, nil
}

func (s *stubGenerator) IsolateSubject(_ context.Context, _ domain.GeneratedImage, _ string) (*domain.GeneratedImage, error) {
	s.isolateCalls++
	if s.isolateErr != nil {
		return nil, s.isolateErr
	}
	return s.isolated, nil
}

func sceneImage() *domain.GeneratedImage {
	return &domain.GeneratedImage{Data: []byte{0x89, 0x50}, MimeType: "image/png", Description: "a lamp"}
}

func isolatedImage() *domain.GeneratedImage {
	return &domain.GeneratedImage{Data: []byte{0x89, 0x51}, MimeType: "image/png"}
}

func newPipeline(t *testing.T, gen *stubGenerator, client *meshy.Client) *Pipeline {
	t.Helper()
	p, err := New(Options{
		Generator:        gen,
		Meshy:            client,
		Rand:             rand.New(rand.NewSource(1)),
		PollMaxAttempts:  5,
		PollInitialDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func TestGenerateWithout3D(t *testing.T) {
	gen := &stubGenerator{scene: sceneImage()}
	p := newPipeline(t, gen, nil)

	res, err := p.Generate(context.Background(), domain.GenerationRequest{UserPrompt: "flowing waves"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gen.sceneCalls != 1 || gen.isolateCalls != 0 {
		t.Fatalf("calls = %d/%d, want 1/0", gen.sceneCalls, gen.isolateCalls)
	}
	if !contains(domain.Styles, res.Style) {
		t.Fatalf("style %q not in vocabulary", res.Style)
	}
	if !contains(domain.Environments, res.Environment) {
		t.Fatalf("environment %q not in vocabulary", res.Environment)
	}
	if !strings.Contains(res.Prompt, "flowing waves") || !strings.Contains(res.Prompt, res.Environment) {
		t.Fatalf("prompt missing inputs: %q", res.Prompt)
	}
	if !strings.Contains(gen.lastPrompt, res.Style) {
		t.Fatalf("generator received prompt without style: %q", gen.lastPrompt)
	}
	if res.Scene.Description != "a lamp" {
		t.Fatalf("scene description = %q", res.Scene.Description)
	}
	if res.Isolated != nil || res.TaskID != "" || res.Warning != "" {
		t.Fatalf("unexpected 3d fields: %+v", res)
	}
}

func TestGenerateSceneFailureAborts(t *testing.T) {
	gen := &stubGenerator{sceneErr: domain.ErrNoImage}
	p := newPipeline(t, gen, nil)

	_, err := p.Generate(context.Background(), domain.GenerationRequest{Want3D: true})
	if !errors.Is(err, domain.ErrNoImage) {
		t.Fatalf("err = %v, want ErrNoImage", err)
	}
}

func TestGenerateIsolationFailureSkipsConversion(t *testing.T) {
	var meshyCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&meshyCalls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	client := meshy.NewClient(meshy.Options{BaseURL: srv.URL, APIKey: "k"})

	gen := &stubGenerator{scene: sceneImage(), isolateErr: domain.ErrNoImage}
	p := newPipeline(t, gen, client)

	res, err := p.Generate(context.Background(), domain.GenerationRequest{Want3D: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Warning == "" || !strings.Contains(res.Warning, "isolation") {
		t.Fatalf("warning = %q", res.Warning)
	}
	if res.Isolated != nil || res.TaskID != "" || res.Mesh != nil {
		t.Fatalf("unexpected 3d fields: %+v", res)
	}
	if n := atomic.LoadInt32(&meshyCalls); n != 0 {
		t.Fatalf("mesh service reached %d times, want 0", n)
	}
}

func TestGenerateMeshyUnconfigured(t *testing.T) {
	gen := &stubGenerator{scene: sceneImage(), isolated: isolatedImage()}
	p := newPipeline(t, gen, meshy.NewClient(meshy.Options{BaseURL: "http://127.0.0.1:1"}))

	res, err := p.Generate(context.Background(), domain.GenerationRequest{Want3D: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Isolated == nil {
		t.Fatal("isolated image missing")
	}
	if !strings.Contains(res.Warning, "not configured") {
		t.Fatalf("warning = %q", res.Warning)
	}
	if res.TaskID != "" || res.Mesh != nil {
		t.Fatalf("unexpected mesh fields: %+v", res)
	}
}

func TestGenerateFull3D(t *testing.T) {
	var polls int32
	var created struct {
		ImageURL      string `json:"image_url"`
		ShouldTexture *bool  `json:"should_texture"`
		Polycount     int    `json:"target_polycount"`
		Topology      string `json:"topology"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
				t.Errorf("decode create payload: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]string{"result": "task-7"})
		default:
			n := atomic.AddInt32(&polls, 1)
			status := "IN_PROGRESS"
			body := map[string]any{"id": "task-7", "status": status, "progress": 40}
			if n >= 2 {
				body["status"] = "SUCCEEDED"
				body["progress"] = 100
				body["model_urls"] = map[string]string{"glb": "https://assets.meshy.ai/task-7/model.glb"}
				body["thumbnail_url"] = "https://assets.meshy.ai/task-7/preview.png"
			}
			json.NewEncoder(w).Encode(body)
		}
	}))
	defer srv.Close()

	gen := &stubGenerator{scene: sceneImage(), isolated: isolatedImage()}
	p := newPipeline(t, gen, meshy.NewClient(meshy.Options{BaseURL: srv.URL, APIKey: "k"}))

	res, err := p.Generate(context.Background(), domain.GenerationRequest{UserPrompt: "spiral", Want3D: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.TaskID != "task-7" {
		t.Fatalf("TaskID = %q", res.TaskID)
	}
	if res.Mesh == nil || res.Mesh.Status != domain.MeshStatusSucceeded {
		t.Fatalf("mesh = %+v", res.Mesh)
	}
	if res.Mesh.ModelURLs == nil || res.Mesh.ModelURLs.GLB == "" {
		t.Fatalf("model urls missing: %+v", res.Mesh)
	}
	if res.Warning != "" {
		t.Fatalf("warning = %q", res.Warning)
	}
	if created.ShouldTexture == nil || *created.ShouldTexture {
		t.Fatalf("should_texture = %v, want false", created.ShouldTexture)
	}
	if created.Polycount != 30000 || created.Topology != "triangle" {
		t.Fatalf("task options = %+v", created)
	}
	if !strings.HasPrefix(created.ImageURL, "data:image/png;base64,") {
		t.Fatalf("image_url = %q", created.ImageURL)
	}
}

func TestGenerateMeshFailureKeepsTaskID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"result": "task-9"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":         "task-9",
			"status":     "FAILED",
			"task_error": map[string]string{"message": "mesh exploded"},
		})
	}))
	defer srv.Close()

	gen := &stubGenerator{scene: sceneImage(), isolated: isolatedImage()}
	p := newPipeline(t, gen, meshy.NewClient(meshy.Options{BaseURL: srv.URL, APIKey: "k"}))

	res, err := p.Generate(context.Background(), domain.GenerationRequest{Want3D: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.TaskID != "task-9" {
		t.Fatalf("TaskID = %q, want task-9", res.TaskID)
	}
	if res.Mesh != nil {
		t.Fatalf("mesh = %+v, want nil", res.Mesh)
	}
	if !strings.Contains(res.Warning, "mesh exploded") {
		t.Fatalf("warning = %q", res.Warning)
	}
}

func TestGenerateCancelDuringPolling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"result": "task-3"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "task-3", "status": "PENDING"})
	}))
	defer srv.Close()

	gen := &stubGenerator{scene: sceneImage(), isolated: isolatedImage()}
	p, err := New(Options{
		Generator:        gen,
		Meshy:            meshy.NewClient(meshy.Options{BaseURL: srv.URL, APIKey: "k"}),
		Rand:             rand.New(rand.NewSource(1)),
		PollMaxAttempts:  5,
		PollInitialDelay: time.Hour,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if _, err := p.Generate(ctx, domain.GenerationRequest{Want3D: true}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
