package orchestrator

import (
	"context"

	"orchd/pkg/types"
)

// Generate runs the full request flow for the API layer: resolve the
// model, pin it with BeginRequest, call the adapter, release on every
// exit path, then mark the model used. The adapter performs no retries
// and neither do we; a failure surfaces immediately.
func (o *Orchestrator) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	id := req.ModelID
	if id == "" {
		id = o.defaultModel
		if id == "" {
			return types.GenerateResponse{}, ErrNotFound("(unspecified)")
		}
	}
	st, ok := o.models[id]
	if !ok {
		return types.GenerateResponse{}, ErrNotFound(id)
	}

	release, err := o.BeginRequest(ctx, id)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	defer release()

	params := mergeParams(st.desc.Defaults, req)
	text, err := o.adapterFor(st.desc).Generate(ctx, st.desc, req.Messages, params)
	release()
	_ = o.MarkUsed(id)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	return types.GenerateResponse{ModelID: id, Text: text}, nil
}

// mergeParams copies the model defaults and applies request overrides.
func mergeParams(defaults types.GenParams, req types.GenerateRequest) types.GenParams {
	p := defaults
	if req.MaxLength > 0 {
		p.MaxLength = req.MaxLength
	}
	if req.Temperature > 0 {
		p.Temperature = req.Temperature
	}
	if req.TopP > 0 {
		p.TopP = req.TopP
	}
	if req.TopK > 0 {
		p.TopK = req.TopK
	}
	return p
}
