package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"orchd/internal/backend"
	"orchd/internal/broadcast"
	"orchd/internal/config"
	"orchd/internal/httpapi"
	"orchd/internal/orchestrator"
	"orchd/internal/registry"
	"orchd/pkg/types"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "orchd",
		Short:         "VRAM-budgeted orchestrator for local LLM backends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var (
		cfgPath       string
		addr          string
		vramGB        float64
		mode          string
		defaultModel  string
		graceWindowS  int
		localServeURL string
		dockerBin     string
		corsOrigins   string
	)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the orchestrator daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Config
			if cfgPath != "" {
				var err error
				cfg, err = config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
			}
			// Flags override file values; file values override flag defaults.
			f := cmd.Flags()
			if f.Changed("addr") || cfg.Addr == "" {
				cfg.Addr = addr
			}
			if f.Changed("vram-budget-gb") || cfg.TotalVRAMGB == 0 {
				cfg.TotalVRAMGB = vramGB
			}
			if f.Changed("mode") || cfg.Mode == "" {
				cfg.Mode = mode
			}
			if f.Changed("default-model") {
				cfg.DefaultModel = defaultModel
			}
			if f.Changed("grace-window-s") || cfg.GraceWindowS == 0 {
				cfg.GraceWindowS = graceWindowS
			}
			if f.Changed("local-serve-url") || cfg.LocalServe.BaseURL == "" {
				cfg.LocalServe.BaseURL = localServeURL
			}
			if f.Changed("docker-bin") {
				cfg.Container.DockerBin = dockerBin
			}
			if f.Changed("cors-origins") {
				cfg.CORS.Enabled = true
				cfg.CORS.AllowedOrigins = splitCSV(corsOrigins)
			}
			return runServe(cfg)
		},
	}

	serve.Flags().StringVar(&cfgPath, "config", envStr("ORCHD_CONFIG", ""), "Path to config file (.yaml/.json/.toml)")
	serve.Flags().StringVar(&addr, "addr", envStr("ORCHD_ADDR", ":8090"), "HTTP listen address")
	serve.Flags().Float64Var(&vramGB, "vram-budget-gb", 24, "VRAM budget in GB shared by all models")
	serve.Flags().StringVar(&mode, "mode", string(types.ModeBalanced), "Initial operational mode")
	serve.Flags().StringVar(&defaultModel, "default-model", "", "Model id used when a request omits one")
	serve.Flags().IntVar(&graceWindowS, "grace-window-s", 180, "Seconds after a request during which a model is deprioritized for eviction")
	serve.Flags().StringVar(&localServeURL, "local-serve-url", "http://127.0.0.1:8100", "Base URL of the shared local serving daemon")
	serve.Flags().StringVar(&dockerBin, "docker-bin", "docker", "Docker binary for container-backed models")
	serve.Flags().StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins (enables CORS)")
	root.AddCommand(serve)

	return root
}

func runServe(cfg config.Config) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("component", "orchd").Logger()

	reg, err := registry.New(cfg.Models, cfg.Modes)
	if err != nil {
		return fmt.Errorf("model catalog: %w", err)
	}

	var initialMode types.Mode
	if cfg.Mode != "" {
		initialMode, err = types.ParseMode(cfg.Mode)
		if err != nil {
			return err
		}
	}

	adapters := map[types.BackendKind]backend.Adapter{
		types.BackendLocalServe: backend.NewLocalServeAdapter(backend.LocalServeOptions{
			BaseURL:         cfg.LocalServe.BaseURL,
			LoadTimeout:     time.Duration(cfg.LocalServe.LoadTimeoutS) * time.Second,
			GenerateTimeout: time.Duration(cfg.LocalServe.GenerateTimeoutS) * time.Second,
			Logger:          log.With().Str("backend", "local_serve").Logger(),
		}),
		types.BackendContainer: backend.NewContainerAdapter(backend.ContainerOptions{
			DockerBin:       cfg.Container.DockerBin,
			HealthInterval:  time.Duration(cfg.Container.HealthIntervalS) * time.Second,
			HealthAttempts:  cfg.Container.HealthAttempts,
			GenerateTimeout: time.Duration(cfg.Container.GenerateTimeoutS) * time.Second,
			Logger:          log.With().Str("backend", "container").Logger(),
		}),
	}

	bc := broadcast.New(log.With().Str("component", "broadcast").Logger())
	defer bc.Close()

	orch := orchestrator.New(orchestrator.Config{
		Registry:     reg,
		Adapters:     adapters,
		TotalVRAMGB:  cfg.TotalVRAMGB,
		InitialMode:  initialMode,
		DefaultModel: resolveDefaultModel(cfg.DefaultModel, reg, initialMode),
		GraceWindow:  time.Duration(cfg.GraceWindowS) * time.Second,
		Publisher:    bc,
		Logger:       log.With().Str("component", "orchestrator").Logger(),
	})

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders)

	mux := httpapi.NewMux(orch, bc)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Warm the default and embedding models so the first request does not
	// pay the load. Best-effort: failures are visible in /status.
	go preload(baseCtx, orch, reg, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("mode", string(orch.Mode())).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	// Loaded models stay resident in their backends across restarts; only
	// the HTTP server is drained.
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
	return nil
}

// resolveDefaultModel falls back to the first preferred generation model
// of the initial mode when the config names none.
func resolveDefaultModel(configured string, reg *registry.Registry, mode types.Mode) string {
	if configured != "" {
		return configured
	}
	if mode == "" {
		mode = types.ModeBalanced
	}
	for _, id := range reg.PreferredModelsFor(mode) {
		if desc, ok := reg.Get(id); ok && desc.Role == types.RoleGeneration {
			return id
		}
	}
	return ""
}

// preload warms the default model plus every embedding model.
func preload(ctx context.Context, orch *orchestrator.Orchestrator, reg *registry.Registry, log zerolog.Logger) {
	ids := make([]string, 0, 2)
	if id := orch.DefaultModel(); id != "" {
		ids = append(ids, id)
	}
	for _, desc := range reg.All() {
		if desc.Role == types.RoleEmbedding {
			ids = append(ids, desc.ID)
		}
	}
	for _, id := range ids {
		if err := orch.LoadModel(ctx, id); err != nil {
			log.Warn().Err(err).Str("model", id).Msg("preload failed")
		}
	}
}

// splitCSV splits a comma-separated flag value, trimming whitespace and
// dropping empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
