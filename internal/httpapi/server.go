package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orchd/internal/broadcast"
	"orchd/internal/orchestrator"
	"orchd/pkg/types"
)

// Service defines the orchestrator methods required by the HTTP API layer.
type Service interface {
	Models() []types.ModelDescriptor
	Status() types.StatusSnapshot
	LoadModel(ctx context.Context, id string) error
	UnloadModel(id string) error
	ResetModel(id string) error
	SwitchMode(ctx context.Context, mode types.Mode) error
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)
	Ready() bool
}

func NewMux(svc Service, stream *broadcast.Broadcaster) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(MetricsMiddleware)

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: svc.Models()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Post("/load", func(w http.ResponseWriter, r *http.Request) {
		id, ok := decodeModelName(w, r)
		if !ok {
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := svc.LoadModel(ctx, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/unload", func(w http.ResponseWriter, r *http.Request) {
		id, ok := decodeModelName(w, r)
		if !ok {
			return
		}
		if err := svc.UnloadModel(id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/reset", func(w http.ResponseWriter, r *http.Request) {
		id, ok := decodeModelName(w, r)
		if !ok {
			return
		}
		if err := svc.ResetModel(id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/mode", func(w http.ResponseWriter, r *http.Request) {
		var req types.ModeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		mode, err := types.ParseMode(req.Mode)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		err = svc.SwitchMode(ctx, mode)
		if err == nil {
			writeJSON(w, http.StatusOK, types.ModeSwitchResponse{Mode: string(mode)})
			return
		}
		if orchestrator.IsPartialModeSwitch(err) {
			writeJSON(w, http.StatusMultiStatus, types.ModeSwitchResponse{
				Mode:   string(mode),
				Errors: orchestrator.ModeSwitchErrors(err),
			})
			return
		}
		writeError(w, err)
	})

	r.Post("/generate", func(w http.ResponseWriter, r *http.Request) {
		var req types.GenerateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if len(req.Messages) == 0 {
			writeJSONError(w, http.StatusBadRequest, "messages are required")
			return
		}
		for _, m := range req.Messages {
			if strings.TrimSpace(m.Content) == "" {
				writeJSONError(w, http.StatusBadRequest, "message content is required")
				return
			}
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Str("path", r.URL.Path).Str("model", req.ModelID)
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("generate start")
		}

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		resp, err := svc.Generate(ctx, req)
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusForError(err)
			writeJSONError(w, status, err.Error())
			if lvl >= LevelInfo && zlog != nil {
				z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Err(err).Msg("generate end")
			}
			return
		}
		writeJSON(w, http.StatusOK, resp)
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Int("status", http.StatusOK).Dur("dur", time.Since(start))
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("generate end")
		}
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		if stream == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "status stream disabled")
			return
		}
		serveStatusSocket(w, r, svc, stream)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// decodeJSON enforces content type and size limits, then decodes into v.
// Writes the error response itself and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// decodeModelName handles the shared {model_name} payload of the model
// lifecycle endpoints.
func decodeModelName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req types.LoadRequest
	if !decodeJSON(w, r, &req) {
		return "", false
	}
	if strings.TrimSpace(req.ModelName) == "" {
		writeJSONError(w, http.StatusBadRequest, "model_name is required")
		return "", false
	}
	return req.ModelName, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && zlog != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}
