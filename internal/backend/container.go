package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"orchd/pkg/types"
)

// backoffCap bounds the health-poll delay growth during a container cold
// start.
const backoffCap = 15 * time.Second

// ContainerAdapter manages per-model containerized inference servers via
// the docker CLI and reaches them over HTTP at the model's endpoint.
type ContainerAdapter struct {
	dockerBin       string
	healthInterval  time.Duration
	healthAttempts  int
	generateTimeout time.Duration
	client          *http.Client
	log             zerolog.Logger
	// run executes the docker CLI; replaced in tests.
	run func(ctx context.Context, name string, args ...string) error
}

// ContainerOptions configure a ContainerAdapter. Zero values get defaults.
type ContainerOptions struct {
	DockerBin       string
	HealthInterval  time.Duration
	HealthAttempts  int
	GenerateTimeout time.Duration
	Logger          zerolog.Logger
}

// NewContainerAdapter constructs the adapter for container-backed models.
func NewContainerAdapter(opts ContainerOptions) *ContainerAdapter {
	if opts.DockerBin == "" {
		opts.DockerBin = "docker"
	}
	if opts.HealthInterval <= 0 {
		opts.HealthInterval = 2 * time.Second
	}
	if opts.HealthAttempts <= 0 {
		opts.HealthAttempts = 60
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 300 * time.Second
	}
	a := &ContainerAdapter{
		dockerBin:       opts.DockerBin,
		healthInterval:  opts.HealthInterval,
		healthAttempts:  opts.HealthAttempts,
		generateTimeout: opts.GenerateTimeout,
		client:          newHTTPClient(5 * time.Second),
		log:             opts.Logger,
	}
	a.run = a.runDocker
	return a
}

func (a *ContainerAdapter) Kind() types.BackendKind { return types.BackendContainer }

// SupportsExplicitUnload is true: stopping the container releases its
// VRAM.
func (a *ContainerAdapter) SupportsExplicitUnload() bool { return true }

func (a *ContainerAdapter) runDocker(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (a *ContainerAdapter) HealthCheck(ctx context.Context, desc types.ModelDescriptor) bool {
	return probeHealth(ctx, a.client, desc.Endpoint, healthProbeTimeout)
}

// Load starts the model's container and polls its health endpoint with a
// capped backoff until it answers or the attempt budget runs out.
func (a *ContainerAdapter) Load(ctx context.Context, desc types.ModelDescriptor) error {
	start := time.Now()
	if err := a.run(ctx, a.dockerBin, "start", desc.Container); err != nil {
		return ErrLoadRefused(desc.ID, err)
	}
	delay := a.healthInterval
	for attempt := 0; attempt < a.healthAttempts; attempt++ {
		if a.HealthCheck(ctx, desc) {
			a.log.Info().
				Str("model", desc.ID).
				Str("container", desc.Container).
				Dur("took", time.Since(start)).
				Int("attempts", attempt+1).
				Msg("container healthy")
			return nil
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ErrLoadTimeout(desc.ID)
		}
		if delay *= 2; delay > backoffCap {
			delay = backoffCap
		}
	}
	return ErrLoadTimeout(desc.ID)
}

// Unload stops the container. Best-effort: the caller's bookkeeping is
// already committed when this runs.
func (a *ContainerAdapter) Unload(ctx context.Context, desc types.ModelDescriptor) error {
	if err := a.run(ctx, a.dockerBin, "stop", desc.Container); err != nil {
		return fmt.Errorf("unload %s: %w", desc.ID, err)
	}
	return nil
}

func (a *ContainerAdapter) Generate(ctx context.Context, desc types.ModelDescriptor, msgs []types.ChatMessage, params types.GenParams) (string, error) {
	if !a.HealthCheck(ctx, desc) {
		return "", ErrUnavailable(desc.ID)
	}
	ctx, cancel := context.WithTimeout(ctx, a.generateTimeout)
	defer cancel()
	text, err := doChat(ctx, a.client, desc.Endpoint, desc.ID, msgs, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrGenerationTimeout(desc.ID)
		}
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", ErrGeneration(desc.ID, err)
	}
	return text, nil
}
