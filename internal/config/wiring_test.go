package config

import (
	"testing"
	"time"

	"github.com/joeycumines/btflow/runner"
	"github.com/joeycumines/btflow/tool"
)

func TestApplyRunnerOptions_ResolvesFromConfigOverDefault(t *testing.T) {
	t.Parallel()
	s := DefaultSchema()
	c := NewConfig()
	c.SetGlobalOption("runner.max-fps", "30")
	c.SetGlobalOption("runner.checkpoint-interval", "5")

	opts := ApplyRunnerOptions(c, s, runner.RunOptions{MaxTicks: 100, ThreadID: "t"})
	if opts.MaxFPS != 30 {
		t.Errorf("expected MaxFPS 30, got %v", opts.MaxFPS)
	}
	if opts.CheckpointInterval != 5 {
		t.Errorf("expected CheckpointInterval 5, got %d", opts.CheckpointInterval)
	}
	if opts.MaxTicks != 100 || opts.ThreadID != "t" {
		t.Error("ApplyRunnerOptions must not clobber fields it doesn't own")
	}
}

func TestApplyRunnerOptions_FallsBackToSchemaDefault(t *testing.T) {
	t.Parallel()
	s := DefaultSchema()
	c := NewConfig()

	opts := ApplyRunnerOptions(c, s, runner.RunOptions{})
	if opts.MaxFPS != 60 {
		t.Errorf("expected default MaxFPS 60, got %v", opts.MaxFPS)
	}
}

func TestSetupTimeout_ParsesConfiguredDuration(t *testing.T) {
	t.Parallel()
	s := DefaultSchema()
	c := NewConfig()
	c.SetGlobalOption("runner.setup-timeout", "5s")
	if got := SetupTimeout(c, s); got != 5*time.Second {
		t.Errorf("expected 5s, got %s", got)
	}
}

func TestCheckpointDir_EnvOverridesConfig(t *testing.T) {
	s := DefaultSchema()
	c := NewConfig()
	c.SetGlobalOption("checkpoint.dir", "/config/dir")
	t.Setenv("BTFLOW_CHECKPOINT_DIR", "/env/dir")

	if got := CheckpointDir(c, s); got != "/env/dir" {
		t.Errorf("expected env override, got %q", got)
	}
}

func TestNewCheckpointerFromConfig_CreatesDirFromConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir() + "/checkpoints"
	s := DefaultSchema()
	c := NewConfig()
	c.SetGlobalOption("checkpoint.dir", dir)

	cp, err := NewCheckpointerFromConfig(c, s)
	if err != nil {
		t.Fatalf("NewCheckpointerFromConfig returned error: %v", err)
	}
	if cp == nil {
		t.Fatal("expected a non-nil Checkpointer")
	}
	if err := cp.Save("thread", 1, nil, nil); err != nil {
		t.Fatalf("Save into configured dir failed: %v", err)
	}
}

func TestApplyToolRuntimeOptions_SetsAllFields(t *testing.T) {
	t.Parallel()
	s := DefaultSchema()
	c := NewConfig()
	c.SetGlobalOption("tool.max-retries", "4")
	c.SetGlobalOption("tool.retry-backoff", "250ms")
	c.SetGlobalOption("tool.prefer-injected", "false")
	c.SetGlobalOption("tool.observation-format", "json")

	rt := tool.NewToolRuntime(nil, nil)
	ApplyToolRuntimeOptions(c, s, rt)

	if rt.MaxRetries != 4 {
		t.Errorf("expected MaxRetries 4, got %d", rt.MaxRetries)
	}
	if rt.RetryBackoff != 250*time.Millisecond {
		t.Errorf("expected RetryBackoff 250ms, got %s", rt.RetryBackoff)
	}
	if rt.PreferInjected {
		t.Error("expected PreferInjected false")
	}
	if rt.ObservationFormat != "json" {
		t.Errorf("expected ObservationFormat json, got %q", rt.ObservationFormat)
	}
}

func TestStateAllowUnknownKeysAndTraceEnabled(t *testing.T) {
	t.Parallel()
	s := DefaultSchema()
	c := NewConfig()

	if StateAllowUnknownKeys(c, s) {
		t.Error("expected default state.allow-unknown-keys false")
	}
	if !TraceEnabled(c, s) {
		t.Error("expected default trace.enabled true")
	}

	c.SetGlobalOption("state.allow-unknown-keys", "true")
	c.SetGlobalOption("trace.enabled", "false")
	if !StateAllowUnknownKeys(c, s) {
		t.Error("expected state.allow-unknown-keys true after override")
	}
	if TraceEnabled(c, s) {
		t.Error("expected trace.enabled false after override")
	}
}
