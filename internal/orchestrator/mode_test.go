package orchestrator

import (
	"context"
	"errors"
	"testing"

	"orchd/pkg/types"
)

func TestSwitchModeInvalid(t *testing.T) {
	o, _ := newTestOrch(t, 24, nil)
	if err := o.SwitchMode(context.Background(), types.Mode("turbo")); err == nil {
		t.Fatal("expected invalid mode error")
	}
	if got := o.Mode(); got != types.ModeBalanced {
		t.Fatalf("mode = %s, want balanced (unchanged)", got)
	}
}

func TestSwitchModeLoadsPreferredAndEmbedding(t *testing.T) {
	o, _ := newTestOrch(t, 24, nil)
	if err := o.SwitchMode(context.Background(), types.ModeDevelopment); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if got := o.Mode(); got != types.ModeDevelopment {
		t.Fatalf("mode = %s, want development", got)
	}
	for _, id := range []string{"alpha", "bravo", "embed"} {
		if got := statusOf(o, id); got != types.StatusLoaded {
			t.Fatalf("%s = %s, want loaded", id, got)
		}
	}
}

func TestSwitchModeSoloEvictsOtherGeneration(t *testing.T) {
	o, _ := newTestOrch(t, 24, nil)
	mustLoad(t, o, "alpha")
	mustLoad(t, o, "bravo")

	if err := o.SwitchMode(context.Background(), types.ModeSolo); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if got := statusOf(o, "alpha"); got != types.StatusUnloaded {
		t.Fatalf("alpha = %s, want unloaded", got)
	}
	if got := statusOf(o, "bravo"); got != types.StatusUnloaded {
		t.Fatalf("bravo = %s, want unloaded", got)
	}
	if got := statusOf(o, "delta"); got != types.StatusLoaded {
		t.Fatalf("delta = %s, want loaded", got)
	}
	if got := statusOf(o, "embed"); got != types.StatusLoaded {
		t.Fatalf("embed = %s, want loaded (exempt from solo)", got)
	}
}

func TestSwitchModeSoloInUseReportsFailure(t *testing.T) {
	o, _ := newTestOrch(t, 24, nil)
	release, err := o.BeginRequest(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer release()

	err = o.SwitchMode(context.Background(), types.ModeSolo)
	if !IsPartialModeSwitch(err) {
		t.Fatalf("expected partial mode switch, got %v", err)
	}
	if got := o.Mode(); got != types.ModeSolo {
		t.Fatalf("mode = %s, want solo (always updated)", got)
	}
	failures := ModeSwitchErrors(err)
	if _, ok := failures["alpha"]; !ok {
		t.Fatalf("failures = %v, want alpha (in use)", failures)
	}
	// delta cannot fit alongside pinned alpha
	if _, ok := failures["delta"]; !ok {
		t.Fatalf("failures = %v, want delta (no budget)", failures)
	}
	if got := statusOf(o, "alpha"); got != types.StatusLoaded {
		t.Fatalf("alpha = %s, want still loaded", got)
	}
}

func TestSwitchModePartialLoadFailure(t *testing.T) {
	o, fa := newTestOrch(t, 24, nil)
	fa.loadErr = errors.New("container refused")

	err := o.SwitchMode(context.Background(), types.ModeBusinessDeep)
	if !IsPartialModeSwitch(err) {
		t.Fatalf("expected partial mode switch, got %v", err)
	}
	if got := o.Mode(); got != types.ModeBusinessDeep {
		t.Fatalf("mode = %s, want business_deep", got)
	}
	if got := statusOf(o, "delta"); got != types.StatusError {
		t.Fatalf("delta = %s, want error", got)
	}
	ms := o.Status().Models["delta"]
	if ms.ErrorMessage == nil || *ms.ErrorMessage == "" {
		t.Fatal("expected error message on delta status")
	}
}
