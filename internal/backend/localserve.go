package backend

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"orchd/pkg/types"
)

const healthProbeTimeout = 2 * time.Second

// LocalServeAdapter talks to the shared local model-serving daemon. The
// daemon pages models in lazily on first use, so Load is a one-token
// warm-up call; it has no unload primitive, so Unload only flips
// bookkeeping upstream.
type LocalServeAdapter struct {
	baseURL         string
	loadTimeout     time.Duration
	generateTimeout time.Duration
	client          *http.Client
	log             zerolog.Logger
}

// LocalServeOptions configure a LocalServeAdapter. Zero durations get
// defaults.
type LocalServeOptions struct {
	BaseURL         string
	LoadTimeout     time.Duration
	GenerateTimeout time.Duration
	Logger          zerolog.Logger
}

// NewLocalServeAdapter constructs the adapter for the local daemon.
func NewLocalServeAdapter(opts LocalServeOptions) *LocalServeAdapter {
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 60 * time.Second
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 120 * time.Second
	}
	return &LocalServeAdapter{
		baseURL:         opts.BaseURL,
		loadTimeout:     opts.LoadTimeout,
		generateTimeout: opts.GenerateTimeout,
		client:          newHTTPClient(5 * time.Second),
		log:             opts.Logger,
	}
}

func (a *LocalServeAdapter) Kind() types.BackendKind { return types.BackendLocalServe }

// SupportsExplicitUnload is false: the daemon frees memory on its own
// idle policy, out of our control.
func (a *LocalServeAdapter) SupportsExplicitUnload() bool { return false }

func (a *LocalServeAdapter) endpoint(desc types.ModelDescriptor) string {
	if desc.Endpoint != "" {
		return desc.Endpoint
	}
	return a.baseURL
}

func (a *LocalServeAdapter) HealthCheck(ctx context.Context, desc types.ModelDescriptor) bool {
	return probeHealth(ctx, a.client, a.endpoint(desc), healthProbeTimeout)
}

// Load warms the model up with a single-token completion so the daemon
// pages it into VRAM before real traffic arrives.
func (a *LocalServeAdapter) Load(ctx context.Context, desc types.ModelDescriptor) error {
	if !a.HealthCheck(ctx, desc) {
		return ErrLoadRefused(desc.ID, errors.New("serving daemon unreachable"))
	}
	ctx, cancel := context.WithTimeout(ctx, a.loadTimeout)
	defer cancel()
	warm := []types.ChatMessage{{Role: "user", Content: "ping"}}
	_, err := doChat(ctx, a.client, a.endpoint(desc), desc.ID, warm, types.GenParams{MaxLength: 1})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrLoadTimeout(desc.ID)
		}
		return ErrLoadRefused(desc.ID, err)
	}
	a.log.Debug().Str("model", desc.ID).Msg("warm-up complete")
	return nil
}

// Unload is a logical no-op: the daemon reclaims memory on its own.
func (a *LocalServeAdapter) Unload(ctx context.Context, desc types.ModelDescriptor) error {
	a.log.Debug().Str("model", desc.ID).Msg("unload is bookkeeping only for local_serve")
	return nil
}

func (a *LocalServeAdapter) Generate(ctx context.Context, desc types.ModelDescriptor, msgs []types.ChatMessage, params types.GenParams) (string, error) {
	if !a.HealthCheck(ctx, desc) {
		return "", ErrUnavailable(desc.ID)
	}
	ctx, cancel := context.WithTimeout(ctx, a.generateTimeout)
	defer cancel()
	text, err := doChat(ctx, a.client, a.endpoint(desc), desc.ID, msgs, params)
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
