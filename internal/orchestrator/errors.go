package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"orchd/pkg/types"
)

// notFoundError signals an id that is not in the catalog.
type notFoundError struct{ id string }

func (e notFoundError) Error() string { return "model not found: " + e.id }

// ErrNotFound returns an error for an unknown model id.
func ErrNotFound(id string) error { return notFoundError{id: id} }

// IsNotFound reports whether err indicates a missing model id.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// insufficientVRAMError signals that eviction could not free enough budget.
type insufficientVRAMError struct {
	id     string
	needed float64
	free   float64
}

func (e insufficientVRAMError) Error() string {
	return fmt.Sprintf("insufficient vram for %s: need %.1fGB, %.1fGB free after eviction", e.id, e.needed, e.free)
}

// ErrInsufficientVRAM constructs an insufficientVRAMError.
func ErrInsufficientVRAM(id string, needed, free float64) error {
	return insufficientVRAMError{id: id, needed: needed, free: free}
}

// IsInsufficientVRAM reports whether err indicates an aborted admission.
func IsInsufficientVRAM(err error) bool {
	_, ok := err.(insufficientVRAMError)
	return ok
}

// modelInUseError signals an unload attempted while requests are in flight.
type modelInUseError struct{ id string }

func (e modelInUseError) Error() string { return "model in use: " + e.id }

// ErrModelInUse constructs a modelInUseError.
func ErrModelInUse(id string) error { return modelInUseError{id: id} }

// IsModelInUse reports whether err indicates a pinned model.
func IsModelInUse(err error) bool {
	_, ok := err.(modelInUseError)
	return ok
}

// invalidStateError signals an operation not permitted in the model's
// current lifecycle state (e.g. unload while loading).
type invalidStateError struct {
	id     string
	status types.ModelStatusValue
	op     string
}

func (e invalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s while %s", e.op, e.id, e.status)
}

// ErrInvalidState constructs an invalidStateError.
func ErrInvalidState(id string, status types.ModelStatusValue, op string) error {
	return invalidStateError{id: id, status: status, op: op}
}

// IsInvalidState reports whether err indicates a disallowed transition.
func IsInvalidState(err error) bool {
	_, ok := err.(invalidStateError)
	return ok
}

// partialModeSwitchError aggregates per-model failures during a mode
// switch. The mode value itself was still updated.
type partialModeSwitchError struct {
	mode types.Mode
	errs map[string]error
}

func (e partialModeSwitchError) Error() string {
	ids := make([]string, 0, len(e.errs))
	for id := range e.errs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id+": "+e.errs[id].Error())
	}
	return fmt.Sprintf("mode %s applied with failures: %s", e.mode, strings.Join(parts, "; "))
}

// ErrPartialModeSwitch constructs a partialModeSwitchError.
func ErrPartialModeSwitch(mode types.Mode, errs map[string]error) error {
	return partialModeSwitchError{mode: mode, errs: errs}
}

// IsPartialModeSwitch reports whether err carries per-model switch failures.
func IsPartialModeSwitch(err error) bool {
	_, ok := err.(partialModeSwitchError)
	return ok
}

// ModeSwitchErrors extracts the per-model failure messages from a
// partial mode switch error, or nil if err is not one.
func ModeSwitchErrors(err error) map[string]string {
	pe, ok := err.(partialModeSwitchError)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(pe.errs))
	for id, e := range pe.errs {
		out[id] = e.Error()
	}
	return out
}
