// Package pipeline drives a design request through prompt optimization,
// image generation, subject isolation and mesh conversion. Results are
// built additively: a failure after the scene image exists degrades the
// response instead of discarding work already paid for.
package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lumafab/internal/domain"
	"lumafab/internal/journal"
	"lumafab/internal/providers/image"
	"lumafab/internal/providers/meshy"
	"lumafab/internal/providers/prompt"
	"lumafab/internal/storage"
)

// GenerationResult is the additive outcome of one pipeline run. Scene is
// always set on success; the later fields fill in as far as the run got.
type GenerationResult struct {
	DesignID    uuid.UUID
	Style       string
	Environment string
	Prompt      string
	Scene       domain.GeneratedImage
	Isolated    *domain.GeneratedImage
	TaskID      string
	Mesh        *domain.MeshTask
	Warning     string
}

type Options struct {
	Optimizer prompt.Optimizer
	Generator image.Generator
	Meshy     *meshy.Client
	Journal   *journal.Journal
	Archive   *storage.FileStore
	Logger    zerolog.Logger
	Rand      *rand.Rand

	PollMaxAttempts  int
	PollInitialDelay time.Duration
}

type Pipeline struct {
	optimizer prompt.Optimizer
	generator image.Generator
	meshy     *meshy.Client
	journal   *journal.Journal
	archive   *storage.FileStore
	logger    zerolog.Logger
	rand      *rand.Rand

	pollMaxAttempts  int
	pollInitialDelay time.Duration
}

func New(opts Options) (*Pipeline, error) {
	if opts.Generator == nil {
		return nil, errors.New("pipeline: image generator is required")
	}
	optimizer := opts.Optimizer
	if optimizer == nil {
		optimizer = prompt.NewStaticOptimizer()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	maxAttempts := opts.PollMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	initialDelay := opts.PollInitialDelay
	if initialDelay <= 0 {
		initialDelay = 5 * time.Second
	}
	return &Pipeline{
		optimizer:        optimizer,
		generator:        opts.Generator,
		meshy:            opts.Meshy,
		journal:          opts.Journal,
		archive:          opts.Archive,
		logger:           opts.Logger,
		rand:             rng,
		pollMaxAttempts:  maxAttempts,
		pollInitialDelay: initialDelay,
	}, nil
}

// Generate runs the full design pipeline for one request.
func (p *Pipeline) Generate(ctx context.Context, req domain.GenerationRequest) (*GenerationResult, error) {
	res := &GenerationResult{
		Style:       domain.Styles[p.rand.Intn(len(domain.Styles))],
		Environment: domain.Environments[p.rand.Intn(len(domain.Environments))],
	}

	optimized, err := p.optimizer.Optimize(ctx, prompt.OptimizeRequest{
		UserPrompt:  req.UserPrompt,
		Style:       res.Style,
		Environment: res.Environment,
	})
	if err != nil {
		// The optimizer chain ends in the static template, which cannot
		// fail. Guard anyway so a misbehaving implementation degrades
		// instead of aborting.
		p.logger.Warn().Err(err).Msg("pipeline: optimizer failed, using static template")
		optimized, _ = prompt.NewStaticOptimizer().Optimize(ctx, prompt.OptimizeRequest{
			UserPrompt:  req.UserPrompt,
			Style:       res.Style,
			Environment: res.Environment,
		})
	}
	res.Prompt = optimized

	res.DesignID = p.journal.DesignStarted(ctx, req.UserPrompt, optimized, res.Style, res.Environment)

	scene, err := p.generator.GenerateScene(ctx, optimized)
	if err != nil {
		p.journal.DesignStatus(ctx, res.DesignID, "FAILED", map[string]any{"stage": "generate"})
		return nil, err
	}
	res.Scene = *scene
	p.archiveImage(ctx, res.DesignID, "scene", res.Scene)

	if !req.Want3D {
		p.journal.DesignStatus(ctx, res.DesignID, "COMPLETE", nil)
		return res, nil
	}

	isolated, err := p.generator.IsolateSubject(ctx, res.Scene, "")
	if err != nil {
		// Never hand the styled scene to the mesh service: props and
		// backdrop would end up in the geometry.
		p.logger.Warn().Err(err).Str("design_id", res.DesignID.String()).Msg("pipeline: isolation failed, skipping 3d conversion")
		res.Warning = "subject isolation failed; 3D conversion skipped"
		p.journal.DesignStatus(ctx, res.DesignID, "COMPLETE", map[string]any{"warning": "isolation_failed"})
		return res, nil
	}
	res.Isolated = isolated
	p.archiveImage(ctx, res.DesignID, "isolated", *isolated)

	if !p.meshy.Configured() {
		res.Warning = "3D conversion unavailable: mesh service not configured"
		p.journal.DesignStatus(ctx, res.DesignID, "COMPLETE", map[string]any{"warning": "meshy_unconfigured"})
		return res, nil
	}

	noTexture := false
	taskID, err := p.meshy.CreateTask(ctx, meshy.SourceImage{
		Data:     isolated.Data,
		MIMEType: isolated.MimeType,
	}, meshy.TaskOptions{
		// Geometry only: the shade is printed in plain filament, so
		// textures would be wasted work.
		ShouldTexture: &noTexture,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn().Err(err).Str("design_id", res.DesignID.String()).Msg("pipeline: mesh task creation failed")
		res.Warning = "3D conversion failed to start"
		p.journal.DesignStatus(ctx, res.DesignID, "COMPLETE", map[string]any{"warning": "mesh_create_failed"})
		return res, nil
	}
	res.TaskID = taskID
	p.journal.MeshTaskCreated(ctx, res.DesignID, taskID)

	task, err := p.meshy.WaitForCompletion(ctx, taskID, p.pollMaxAttempts, p.pollInitialDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var failed *domain.TaskFailedError
		var timeout *domain.TimeoutError
		switch {
		case errors.As(err, &failed):
			res.Warning = "3D conversion failed: " + failed.Message
		case errors.As(err, &timeout):
			res.Warning = "3D conversion still running; poll the task for the result"
		default:
			res.Warning = "3D conversion status unavailable; poll the task for the result"
		}
		p.logger.Warn().Err(err).Str("task_id", taskID).Msg("pipeline: mesh conversion did not complete")
		p.journal.DesignStatus(ctx, res.DesignID, "COMPLETE", map[string]any{"warning": "mesh_incomplete", "task_id": taskID})
		return res, nil
	}
	res.Mesh = task
	p.journal.DesignStatus(ctx, res.DesignID, "COMPLETE", map[string]any{"task_id": taskID})
	return res, nil
}

func (p *Pipeline) archiveImage(ctx context.Context, designID uuid.UUID, stage string, img domain.GeneratedImage) {
	if p.archive == nil {
		return
	}
	if _, err := p.archive.SaveDesignImage(ctx, designID.String(), stage, img); err != nil {
		p.logger.Warn().Err(err).Str("design_id", designID.String()).Str("stage", stage).Msg("pipeline: archive write failed")
	}
}
