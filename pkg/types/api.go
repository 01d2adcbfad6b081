package types

// ChatMessage is one turn of a chat-style prompt.
type ChatMessage struct {
	// One of "system", "user", "assistant".
	// example: user
	Role string `json:"role" example:"user"`
	// Message text.
	// example: Summarize the attached document.
	Content string `json:"content" example:"Summarize the attached document."`
}

// GenerateRequest is the payload for POST /generate.
type GenerateRequest struct {
	// Model identifier. If empty, the server default is used.
	// example: qwen2.5-14b
	ModelID string `json:"model_id,omitempty" example:"qwen2.5-14b"`
	// Ordered message history.
	Messages []ChatMessage `json:"messages"`
	// Maximum number of new tokens; 0 uses the model default.
	// example: 1024
	MaxLength int `json:"max_length,omitempty" example:"1024"`
	// Sampling temperature; 0 uses the model default.
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability; 0 uses the model default.
	// example: 0.9
	TopP float64 `json:"top_p,omitempty" example:"0.9"`
	// Top-K sampling; 0 uses the model default.
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
}

// GenerateResponse is the non-streaming completion result.
type GenerateResponse struct {
	// Model that produced the completion.
	// example: qwen2.5-14b
	ModelID string `json:"model_id" example:"qwen2.5-14b"`
	// Generated text.
	Text string `json:"text"`
}

// LoadRequest is the payload for POST /load, /unload and /reset.
type LoadRequest struct {
	// Model identifier to operate on.
	// example: qwen2.5-14b
	ModelName string `json:"model_name" example:"qwen2.5-14b"`
}

// ModeRequest is the payload for POST /mode.
type ModeRequest struct {
	// Target operational mode.
	// example: business_deep
	Mode string `json:"mode" example:"business_deep"`
}

// ModeSwitchResponse reports a mode switch outcome. Errors is non-empty
// when one or more preferred models failed to load; the mode is still
// applied in that case.
type ModeSwitchResponse struct {
	// Mode now in effect.
	// example: business_deep
	Mode string `json:"mode" example:"business_deep"`
	// Per-model load failures, keyed by model id.
	Errors map[string]string `json:"errors,omitempty"`
}

// ModelsResponse wraps the catalog returned by GET /models.
type ModelsResponse struct {
	Models []ModelDescriptor `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not found: mixtral
	Error string `json:"error" example:"model not found: mixtral"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// ModelStatus describes one model inside a StatusSnapshot.
type ModelStatus struct {
	// Human-friendly label.
	// example: Qwen 2.5 14B
	DisplayName string `json:"display_name" example:"Qwen 2.5 14B"`
	// Backend kind serving this model.
	// example: local_serve
	Backend string `json:"backend" example:"local_serve"`
	// unloaded, loading, loaded or error.
	// example: loaded
	Status ModelStatusValue `json:"status" example:"loaded"`
	// Number of in-flight generation calls using this model.
	// example: 1
	ActiveRequests int `json:"active_requests" example:"1"`
	// Last time a request used this model (unix seconds, 0 = never).
	// example: 1700000000
	LastUsedUnix int64 `json:"last_used_unix" example:"1700000000"`
	// Set when status is error.
	ErrorMessage *string `json:"error_message"`
}

// SystemStatus is the system block of a StatusSnapshot.
type SystemStatus struct {
	// Current operational mode.
	// example: balanced
	Mode string `json:"mode" example:"balanced"`
	// Fixed VRAM budget in GB.
	// example: 24
	TotalVRAMGB float64 `json:"total_vram_gb" example:"24"`
	// Bookkeeping sum over loaded models, never measured from the device.
	// example: 18.5
	UsedVRAMGB float64 `json:"used_vram_gb" example:"18.5"`
	// Sum of active requests across all models.
	// example: 2
	TotalRequestsActive int `json:"total_requests_active" example:"2"`
	// Daemon uptime in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// StatusSnapshot is returned by GET /status and pushed on the websocket
// stream on every state change.
type StatusSnapshot struct {
	System SystemStatus           `json:"system"`
	Models map[string]ModelStatus `json:"models"`
}
