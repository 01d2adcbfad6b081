package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"orchd/internal/orchestrator"
	"orchd/pkg/types"
)

type mockService struct {
	models  []types.ModelDescriptor
	status  types.StatusSnapshot
	ready   bool
	genResp types.GenerateResponse

	loadErr, unloadErr, resetErr, modeErr, genErr error

	gotLoad, gotUnload, gotReset string
	gotMode                      types.Mode
	gotGen                       types.GenerateRequest
}

func (m *mockService) Models() []types.ModelDescriptor {
	return append([]types.ModelDescriptor(nil), m.models...)
}
func (m *mockService) Status() types.StatusSnapshot { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }
func (m *mockService) LoadModel(ctx context.Context, id string) error {
	m.gotLoad = id
	return m.loadErr
}
func (m *mockService) UnloadModel(id string) error { m.gotUnload = id; return m.unloadErr }
func (m *mockService) ResetModel(id string) error  { m.gotReset = id; return m.resetErr }
func (m *mockService) SwitchMode(ctx context.Context, mode types.Mode) error {
	m.gotMode = mode
	return m.modeErr
}
func (m *mockService) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	m.gotGen = req
	return m.genResp, m.genErr
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestModelsHandler(t *testing.T) {
	svc := &mockService{models: []types.ModelDescriptor{{ID: "m1"}, {ID: "m2"}}}
	r := NewMux(svc, nil)
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.ModelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Models) != 2 {
		t.Fatalf("models len=%d", len(body.Models))
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusSnapshot{System: types.SystemStatus{Mode: "balanced", TotalVRAMGB: 24}}}
	r := NewMux(svc, nil)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var snap types.StatusSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("json: %v", err)
	}
	if snap.System.Mode != "balanced" || snap.System.TotalVRAMGB != 24 {
		t.Fatalf("snapshot=%+v", snap.System)
	}
}

func TestLoadHandler(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc, nil)
	w := postJSON(t, r, "/load", `{"model_name":"m1"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotLoad != "m1" {
		t.Fatalf("loaded=%q", svc.gotLoad)
	}
}

func TestLoadHandlerValidation(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc, nil)

	if w := postJSON(t, r, "/load", `{"model_name":""}`); w.Code != http.StatusBadRequest {
		t.Fatalf("empty name status=%d", w.Code)
	}
	if w := postJSON(t, r, "/load", `{not json`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json status=%d", w.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/load", bytes.NewBufferString(`{"model_name":"m1"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("missing content-type status=%d", w.Code)
	}
}

func TestLoadHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{orchestrator.ErrNotFound("m1"), http.StatusNotFound},
		{orchestrator.ErrInsufficientVRAM("m1", 20, 4), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		svc := &mockService{loadErr: tc.err}
		r := NewMux(svc, nil)
		w := postJSON(t, r, "/load", `{"model_name":"m1"}`)
		if w.Code != tc.want {
			t.Fatalf("err=%v status=%d want=%d", tc.err, w.Code, tc.want)
		}
		var body types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("json: %v", err)
		}
		if body.Code != tc.want || body.Error == "" {
			t.Fatalf("body=%+v", body)
		}
	}
}

func TestUnloadHandlerInUse(t *testing.T) {
	svc := &mockService{unloadErr: orchestrator.ErrModelInUse("m1")}
	r := NewMux(svc, nil)
	w := postJSON(t, r, "/unload", `{"model_name":"m1"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestResetHandler(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc, nil)
	w := postJSON(t, r, "/reset", `{"model_name":"m1"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if svc.gotReset != "m1" {
		t.Fatalf("reset=%q", svc.gotReset)
	}
}

func TestModeHandler(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc, nil)
	w := postJSON(t, r, "/mode", `{"mode":"solo"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotMode != types.ModeSolo {
		t.Fatalf("mode=%q", svc.gotMode)
	}
	var body types.ModeSwitchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Mode != "solo" || len(body.Errors) != 0 {
		t.Fatalf("body=%+v", body)
	}
}

func TestModeHandlerInvalid(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc, nil)
	if w := postJSON(t, r, "/mode", `{"mode":"turbo"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if svc.gotMode != "" {
		t.Fatalf("service called with invalid mode %q", svc.gotMode)
	}
}

func TestModeHandlerPartialSwitch(t *testing.T) {
	svc := &mockService{modeErr: orchestrator.ErrPartialModeSwitch(
		types.ModeBusinessDeep,
		map[string]error{"nemotron-22b": errors.New("container refused")},
	)}
	r := NewMux(svc, nil)
	w := postJSON(t, r, "/mode", `{"mode":"business_deep"}`)
	if w.Code != http.StatusMultiStatus {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.ModeSwitchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Mode != "business_deep" {
		t.Fatalf("mode=%q", body.Mode)
	}
	if body.Errors["nemotron-22b"] != "container refused" {
		t.Fatalf("errors=%v", body.Errors)
	}
}

func TestGenerateHandler(t *testing.T) {
	svc := &mockService{genResp: types.GenerateResponse{ModelID: "m1", Text: "hi"}}
	r := NewMux(svc, nil)
	w := postJSON(t, r, "/generate", `{"model_id":"m1","messages":[{"role":"user","content":"hello"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body types.GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Text != "hi" || body.ModelID != "m1" {
		t.Fatalf("body=%+v", body)
	}
	if svc.gotGen.ModelID != "m1" || len(svc.gotGen.Messages) != 1 {
		t.Fatalf("request=%+v", svc.gotGen)
	}
}

func TestGenerateHandlerValidation(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc, nil)
	if w := postJSON(t, r, "/generate", `{"model_id":"m1","messages":[]}`); w.Code != http.StatusBadRequest {
		t.Fatalf("empty messages status=%d", w.Code)
	}
	if w := postJSON(t, r, "/generate", `{"messages":[{"role":"user","content":"  "}]}`); w.Code != http.StatusBadRequest {
		t.Fatalf("blank content status=%d", w.Code)
	}
}

func TestHealthAndReady(t *testing.T) {
	svc := &mockService{ready: false}
	r := NewMux(svc, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz=%d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz not ready=%d", w.Code)
	}

	svc.ready = true
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readyz ready=%d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := NewMux(&mockService{}, nil)
	// Prime the request counter so the family is present in the scrape.
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "orchd_http_requests_total") {
		t.Fatal("expected orchd_http_requests_total in metrics output")
	}
}
