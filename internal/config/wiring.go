package config

import (
	"strconv"
	"time"

	"github.com/joeycumines/btflow/checkpoint"
	"github.com/joeycumines/btflow/runner"
	"github.com/joeycumines/btflow/tool"
)

// ApplyRunnerOptions resolves runner.max-fps and runner.checkpoint-interval
// from cfg (through schema's env/config/default precedence, see
// Schema.Resolve) onto opts, leaving every field a caller already set
// (MaxTicks, ThreadID, Checkpointer) untouched.
func ApplyRunnerOptions(cfg *Config, schema *ConfigSchema, opts runner.RunOptions) runner.RunOptions {
	if v := schema.Resolve(cfg, "runner.max-fps"); v != "" {
		if fps, err := strconv.ParseFloat(v, 64); err == nil {
			opts.MaxFPS = fps
		}
	}
	if v := schema.Resolve(cfg, "runner.checkpoint-interval"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.CheckpointInterval = n
		}
	}
	return opts
}

// SetupTimeout resolves runner.setup-timeout, the bound passed to
// Tree.Setup.
func SetupTimeout(cfg *Config, schema *ConfigSchema) time.Duration {
	d, _ := time.ParseDuration(schema.Resolve(cfg, "runner.setup-timeout"))
	return d
}

// CheckpointDir resolves checkpoint.dir, honoring its BTFLOW_CHECKPOINT_DIR
// env override ahead of any config-file value (schema.go's EnvVar
// registration).
func CheckpointDir(cfg *Config, schema *ConfigSchema) string {
	return schema.Resolve(cfg, "checkpoint.dir")
}

// NewCheckpointerFromConfig resolves checkpoint.dir and constructs a
// Checkpointer rooted there.
func NewCheckpointerFromConfig(cfg *Config, schema *ConfigSchema) (*checkpoint.Checkpointer, error) {
	return checkpoint.NewCheckpointer(CheckpointDir(cfg, schema))
}

// ApplyToolRuntimeOptions sets rt's MaxRetries, RetryBackoff,
// PreferInjected, and ObservationFormat from cfg's tool.* options.
func ApplyToolRuntimeOptions(cfg *Config, schema *ConfigSchema, rt *tool.ToolRuntime) {
	if v := schema.Resolve(cfg, "tool.max-retries"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			rt.MaxRetries = n
		}
	}
	if v := schema.Resolve(cfg, "tool.retry-backoff"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			rt.RetryBackoff = d
		}
	}
	if v := schema.Resolve(cfg, "tool.prefer-injected"); v != "" {
		if b, err := parseBool(v); err == nil {
			rt.PreferInjected = b
		}
	}
	if v := schema.Resolve(cfg, "tool.observation-format"); v != "" {
		rt.ObservationFormat = v
	}
}

// StateAllowUnknownKeys resolves state.allow-unknown-keys, the
// allowUnknown argument to state.NewStateStore.
func StateAllowUnknownKeys(cfg *Config, schema *ConfigSchema) bool {
	b, _ := parseBool(schema.Resolve(cfg, "state.allow-unknown-keys"))
	return b
}

// TraceEnabled resolves trace.enabled, gating whether a caller constructs
// a trace.Tracer at all or passes nil to skip span/event emission.
func TraceEnabled(cfg *Config, schema *ConfigSchema) bool {
	b, _ := parseBool(schema.Resolve(cfg, "trace.enabled"))
	return b
}
